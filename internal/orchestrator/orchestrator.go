// internal/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"strings"
	"time"

	apperrors "paperforge/internal/common/errors"
	"paperforge/internal/common/logger"
	"paperforge/internal/common/metrics"
	"paperforge/internal/dispatcher"
)

// Config carries the batching and retry parameters. Zero values fall back to
// the observed upstream limits (30 items per batch, 3 attempts, 500ms initial
// backoff doubling per attempt).
type Config struct {
	MaxBatch       int
	Attempts       int
	InitialBackoff time.Duration
}

// Orchestrator splits a large generation request into bounded sequential
// batches and assembles the results in order. Batches are never issued
// concurrently: sequencing bounds upstream load and guarantees ordering.
type Orchestrator struct {
	requester  Requester
	candidates []dispatcher.EndpointCandidate
	cfg        Config
	logger     logger.Logger
	sleep      func(time.Duration)
}

func New(requester Requester, candidates []dispatcher.EndpointCandidate, cfg Config, log logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = 30
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	return &Orchestrator{
		requester:  requester,
		candidates: candidates,
		cfg:        cfg,
		logger:     log.With(map[string]interface{}{"component": "orchestrator"}),
		sleep:      time.Sleep,
	}
}

// Partition splits total into contiguous batch sizes of at most maxBatch,
// remainder last. Batch boundaries never split an item.
func Partition(total, maxBatch int) []int {
	if total <= 0 {
		return nil
	}
	if maxBatch <= 0 {
		maxBatch = 30
	}

	var sizes []int
	for remaining := total; remaining > 0; remaining -= maxBatch {
		if remaining < maxBatch {
			sizes = append(sizes, remaining)
		} else {
			sizes = append(sizes, maxBatch)
		}
	}
	return sizes
}

// GenerateBatched runs the whole generation. Any batch that exhausts its
// attempts fails the operation outright and the partial aggregate is
// withheld: a partial exam paper is worse than none.
func (o *Orchestrator) GenerateBatched(ctx context.Context, spec BatchSpec) (*AggregateResult, error) {
	if spec.TotalCount <= 0 {
		return nil, apperrors.NewInvalidRequestError("requested item count must be positive")
	}
	if spec.Prompt == nil {
		return nil, apperrors.NewInvalidRequestError("prompt template is required")
	}

	maxBatch := spec.MaxBatch
	if maxBatch <= 0 {
		maxBatch = o.cfg.MaxBatch
	}
	sizes := Partition(spec.TotalCount, maxBatch)

	var aggregate strings.Builder
	for i, size := range sizes {
		req := dispatcher.GenerationRequest{
			Prompt:            spec.Prompt(size),
			Attachment:        spec.Attachment,
			ExpectedItemCount: size,
		}

		text, err := o.runBatch(ctx, i, req)
		if err != nil {
			metrics.BatchesTotal.WithLabelValues("exhausted").Inc()
			return nil, err
		}
		metrics.BatchesTotal.WithLabelValues("success").Inc()

		if aggregate.Len() > 0 {
			aggregate.WriteString("\n\n")
		}
		aggregate.WriteString(strings.TrimSpace(text))

		if spec.OnProgress != nil {
			spec.OnProgress(i, aggregate.String())
		}
	}

	result := &AggregateResult{
		Text:       aggregate.String(),
		BatchSizes: sizes,
		ItemsFound: CountItems(aggregate.String()),
	}
	result.CountMatchesRequested = result.ItemsFound == spec.TotalCount

	if !result.CountMatchesRequested {
		o.logger.Warn("aggregate item count does not match requested total", map[string]interface{}{
			"requested": spec.TotalCount,
			"found":     result.ItemsFound,
		})
	}

	return result, nil
}

// runBatch gives one batch up to cfg.Attempts dispatch calls with doubling
// backoff between them.
func (o *Orchestrator) runBatch(ctx context.Context, batchIndex int, req dispatcher.GenerationRequest) (string, error) {
	var lastErr error
	backoff := o.cfg.InitialBackoff

	for attempt := 0; attempt < o.cfg.Attempts; attempt++ {
		if attempt > 0 {
			o.sleep(backoff)
			backoff *= 2
		}

		if ctx.Err() != nil {
			return "", apperrors.NewBatchExhaustedError(batchIndex, attempt, ctx.Err())
		}

		res, err := o.requester.Dispatch(ctx, req, o.candidates)
		if err == nil {
			return res.Text, nil
		}
		lastErr = err

		o.logger.Warn("batch attempt failed", map[string]interface{}{
			"batch":   batchIndex,
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}

	return "", apperrors.NewBatchExhaustedError(batchIndex, o.cfg.Attempts, lastErr)
}
