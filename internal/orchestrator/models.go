// internal/orchestrator/models.go
package orchestrator

import (
	"context"

	"paperforge/internal/assembler"
	"paperforge/internal/dispatcher"
)

// BatchSpec describes one user-initiated generation that may span several
// upstream calls. Prompt renders the prompt text for a batch of n items.
type BatchSpec struct {
	TotalCount int
	MaxBatch   int
	Prompt     func(n int) string
	Attachment *assembler.MergedDocument

	// OnProgress, when set, receives the running aggregate after each
	// successful batch. Earlier batches are never reordered or overwritten.
	OnProgress func(batchIndex int, aggregate string)
}

// AggregateResult is the ordered concatenation of all successful batch texts.
// CountMatchesRequested is advisory: a mismatch is surfaced as a warning, the
// content is still usable.
type AggregateResult struct {
	Text                  string
	BatchSizes            []int
	ItemsFound            int
	CountMatchesRequested bool
}

// Requester is the slice of the dispatcher the orchestrator needs; tests
// substitute a scripted fake.
type Requester interface {
	Dispatch(ctx context.Context, req dispatcher.GenerationRequest, candidates []dispatcher.EndpointCandidate) (*dispatcher.Result, error)
}
