// internal/orchestrator/orchestrator_test.go
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "paperforge/internal/common/errors"
	"paperforge/internal/dispatcher"
)

// fakeRequester scripts per-call outcomes. failuresFor maps a call ordinal
// (1-based, across all batches and attempts) to an error.
type fakeRequester struct {
	calls       int
	failuresFor map[int]error
	respond     func(call int, req dispatcher.GenerationRequest) string
}

func (f *fakeRequester) Dispatch(_ context.Context, req dispatcher.GenerationRequest, _ []dispatcher.EndpointCandidate) (*dispatcher.Result, error) {
	f.calls++
	if err, ok := f.failuresFor[f.calls]; ok {
		return nil, err
	}
	text := fmt.Sprintf("batch of %d", req.ExpectedItemCount)
	if f.respond != nil {
		text = f.respond(f.calls, req)
	}
	return &dispatcher.Result{Text: text}, nil
}

func newTestOrchestrator(req Requester) *Orchestrator {
	o := New(req, nil, Config{}, nil)
	o.sleep = func(time.Duration) {}
	return o
}

func numberedItems(from, count int) string {
	out := ""
	for i := 0; i < count; i++ {
		out += fmt.Sprintf("%d. question text\n", from+i)
	}
	return out
}

func TestPartition(t *testing.T) {
	tests := []struct {
		total    int
		maxBatch int
		want     []int
	}{
		{65, 30, []int{30, 30, 5}},
		{30, 30, []int{30}},
		{31, 30, []int{30, 1}},
		{5, 30, []int{5}},
		{0, 30, nil},
		{-3, 30, nil},
		{90, 30, []int{30, 30, 30}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d items max %d", tt.total, tt.maxBatch), func(t *testing.T) {
			assert.Equal(t, tt.want, Partition(tt.total, tt.maxBatch))
		})
	}
}

func TestGenerateBatched_SingleBatch(t *testing.T) {
	req := &fakeRequester{
		respond: func(_ int, r dispatcher.GenerationRequest) string {
			return numberedItems(1, r.ExpectedItemCount)
		},
	}
	o := newTestOrchestrator(req)

	result, err := o.GenerateBatched(context.Background(), BatchSpec{
		TotalCount: 10,
		Prompt:     func(n int) string { return fmt.Sprintf("give me %d", n) },
	})

	require.NoError(t, err)
	assert.Equal(t, 1, req.calls)
	assert.Equal(t, []int{10}, result.BatchSizes)
	assert.Equal(t, 10, result.ItemsFound)
	assert.True(t, result.CountMatchesRequested)
}

func TestGenerateBatched_MultiBatchAggregatesInOrder(t *testing.T) {
	req := &fakeRequester{
		respond: func(call int, r dispatcher.GenerationRequest) string {
			return fmt.Sprintf("== part %d ==\n%s", call, numberedItems(1, r.ExpectedItemCount))
		},
	}
	o := newTestOrchestrator(req)

	var progress []string
	result, err := o.GenerateBatched(context.Background(), BatchSpec{
		TotalCount: 65,
		Prompt:     func(n int) string { return fmt.Sprintf("give me %d", n) },
		OnProgress: func(_ int, aggregate string) {
			progress = append(progress, aggregate)
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []int{30, 30, 5}, result.BatchSizes)
	assert.Equal(t, 3, req.calls)

	// Ordered concatenation, earlier batches never overwritten.
	p1 := "== part 1 =="
	p2 := "== part 2 =="
	p3 := "== part 3 =="
	assert.Contains(t, result.Text, p1)
	assert.Contains(t, result.Text, p2)
	assert.Contains(t, result.Text, p3)

	require.Len(t, progress, 3)
	assert.Contains(t, progress[0], p1)
	assert.NotContains(t, progress[0], p2)
	assert.Contains(t, progress[2], p3)
	assert.Contains(t, progress[2], p1, "progress carries the full aggregate so far")
}

func TestGenerateBatched_RetriesThenSucceeds(t *testing.T) {
	var delays []time.Duration
	req := &fakeRequester{
		failuresFor: map[int]error{
			1: apperrors.NewTimeoutError("upstream"),
			2: apperrors.NewNetworkError("upstream", errors.New("connection refused")),
		},
	}
	o := New(req, nil, Config{}, nil)
	o.sleep = func(d time.Duration) { delays = append(delays, d) }

	result, err := o.GenerateBatched(context.Background(), BatchSpec{
		TotalCount: 5,
		Prompt:     func(n int) string { return "p" },
	})

	require.NoError(t, err)
	assert.Equal(t, 3, req.calls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, delays)
	assert.Equal(t, "batch of 5", result.Text)
}

func TestGenerateBatched_ExhaustedBatchDiscardsEverything(t *testing.T) {
	// Batch 1 (calls 1) succeeds; batch 2 (calls 2..4) exhausts all attempts.
	req := &fakeRequester{
		failuresFor: map[int]error{
			2: apperrors.NewTimeoutError("upstream"),
			3: apperrors.NewTimeoutError("upstream"),
			4: apperrors.NewTimeoutError("upstream"),
		},
	}
	o := newTestOrchestrator(req)

	result, err := o.GenerateBatched(context.Background(), BatchSpec{
		TotalCount: 60,
		Prompt:     func(n int) string { return "p" },
	})

	assert.Nil(t, result, "partial aggregate is withheld")
	assert.Equal(t, apperrors.ErrCodeBatchExhausted, apperrors.CodeOf(err))
	assert.Equal(t, 4, req.calls)
}

func TestGenerateBatched_CountMismatchIsAdvisory(t *testing.T) {
	req := &fakeRequester{
		respond: func(_ int, r dispatcher.GenerationRequest) string {
			// One item short of what was asked.
			return numberedItems(1, r.ExpectedItemCount-1)
		},
	}
	o := newTestOrchestrator(req)

	result, err := o.GenerateBatched(context.Background(), BatchSpec{
		TotalCount: 10,
		Prompt:     func(n int) string { return "p" },
	})

	require.NoError(t, err, "mismatch never fails the generation")
	assert.Equal(t, 9, result.ItemsFound)
	assert.False(t, result.CountMatchesRequested)
}

func TestGenerateBatched_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	req := &fakeRequester{
		failuresFor: map[int]error{1: apperrors.NewTimeoutError("upstream")},
	}
	o := New(req, nil, Config{}, nil)
	o.sleep = func(time.Duration) { cancel() }

	_, err := o.GenerateBatched(ctx, BatchSpec{
		TotalCount: 5,
		Prompt:     func(n int) string { return "p" },
	})

	assert.Equal(t, apperrors.ErrCodeBatchExhausted, apperrors.CodeOf(err))
	assert.Equal(t, 1, req.calls, "no further attempts after cancellation")
}

func TestGenerateBatched_InvalidSpecs(t *testing.T) {
	o := newTestOrchestrator(&fakeRequester{})

	_, err := o.GenerateBatched(context.Background(), BatchSpec{TotalCount: 0, Prompt: func(int) string { return "p" }})
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, apperrors.CodeOf(err))

	_, err = o.GenerateBatched(context.Background(), BatchSpec{TotalCount: 5})
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, apperrors.CodeOf(err))
}
