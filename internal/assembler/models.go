// internal/assembler/models.go
package assembler

import "context"

// SourceDocument is one selected chapter PDF. ID is the catalog identity used
// as the byte-cache key; Name is the display name the merge order derives
// from. Data may carry pre-loaded bytes, otherwise the Fetcher is consulted.
type SourceDocument struct {
	ID   string
	Name string
	Data []byte
}

// MergedDocument is the single PDF produced from an ordered set of sources.
type MergedDocument struct {
	Data      []byte
	PageCount int
	Filename  string
}

// Fetcher resolves source bytes for documents selected from the catalog.
type Fetcher interface {
	Fetch(ctx context.Context, src SourceDocument) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, src SourceDocument) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, src SourceDocument) ([]byte, error) {
	return f(ctx, src)
}
