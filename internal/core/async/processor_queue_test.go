package async

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/core"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/adapter"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/llm"
)

func newProcessor(t *testing.T) *core.Processor {
	t.Helper()
	reg, err := adapter.DefaultRegistry()
	require.NoError(t, err)
	return core.NewProcessor(nil, reg)
}

type collector struct {
	mu      sync.Mutex
	results []JobResult
}

func (c *collector) handle(r JobResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

func TestProcessorQueue_RunsJobs(t *testing.T) {
	proc := newProcessor(t)
	var got collector
	q := NewProcessorQueue(proc, nil, WithWorkers(3), WithQueueSize(2), WithResultHandler(got.handle))

	ctx := context.Background()
	jobs := []Job{
		{Source: "ok-br.txt", Input: "Salário Bruto R$ 5.000,00\nLíquido a Receber R$ 4.200,00", Country: "br"},
		{Source: "ok-fr.txt", Input: map[string]any{"ocr_text": "Salaire brut 3 000,00"}, Country: "FR"},
		{Source: "empty.txt", Input: "   ", Country: "br"},
		{Source: "de.txt", Input: "Bruttolohn 4000", Country: "de"},
	}
	ids := make(map[string]uuid.UUID)
	for _, j := range jobs {
		id, err := q.Enqueue(ctx, j)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)
		ids[j.Source] = id
	}
	q.Shutdown(ctx)

	require.Len(t, got.results, len(jobs))
	bySource := map[string]JobResult{}
	for _, r := range got.results {
		bySource[r.Job.Source] = r
	}
	assert.Equal(t, constants.JobStatusSucceeded, bySource["ok-br.txt"].Status)
	assert.Equal(t, constants.JobStatusSucceeded, bySource["ok-fr.txt"].Status)
	assert.Equal(t, constants.France, bySource["ok-fr.txt"].Result.Data.Country)
	assert.Equal(t, constants.JobStatusFailed, bySource["empty.txt"].Status)
	assert.Equal(t, constants.JobStatusFailed, bySource["de.txt"].Status)
	assert.Equal(t, "Unsupported country: de", bySource["de.txt"].Result.Error)

	for src, id := range ids {
		st, ok := q.Status(id)
		require.True(t, ok, src)
		assert.Equal(t, bySource[src].Status, st, src)
	}
}

func TestProcessorQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(newProcessor(t), nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	_, err := q.Enqueue(context.Background(), Job{Input: "x", Country: "br"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

type blockingExtractor struct {
	release chan struct{}
}

func (b *blockingExtractor) Extract(ctx context.Context, _ any, _ string, _ llm.FallbackFunc) *core.Result {
	<-b.release
	return &core.Result{Success: false, Error: "blocked"}
}

func TestProcessorQueue_BackpressureHonoursContext(t *testing.T) {
	ex := &blockingExtractor{release: make(chan struct{})}
	q := NewProcessorQueue(ex, nil, WithWorkers(1), WithQueueSize(1))

	bg := context.Background()
	first, err := q.Enqueue(bg, Job{Source: "running"})
	require.NoError(t, err)

	// wait for the worker to pick up the first job so the buffer is empty
	require.Eventually(t, func() bool {
		st, _ := q.Status(first)
		return st == constants.JobStatusRunning
	}, time.Second, 5*time.Millisecond)

	_, err = q.Enqueue(bg, Job{Source: "buffered"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(bg, 20*time.Millisecond)
	defer cancel()
	_, err = q.Enqueue(ctx, Job{Source: "overflow"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(ex.release)
	q.Shutdown(bg)

	st, ok := q.Status(first)
	require.True(t, ok)
	assert.Equal(t, constants.JobStatusFailed, st)
}

func TestProcessorQueue_KeepsCallerID(t *testing.T) {
	var got collector
	q := NewProcessorQueue(newProcessor(t), nil, WithResultHandler(got.handle))
	id := uuid.New()
	gotID, err := q.Enqueue(context.Background(), Job{ID: id, Input: "Vencimento base 1.000,00", Country: "pt"})
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	q.Shutdown(context.Background())

	require.Len(t, got.results, 1)
	assert.Equal(t, id, got.results[0].Job.ID)
	assert.False(t, got.results[0].Job.SubmittedAt.IsZero())
}

func TestProcessorQueue_StatusRetention(t *testing.T) {
	q := NewProcessorQueue(newProcessor(t), nil, WithWorkers(1), WithStatusRetention(2))

	ctx := context.Background()
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		id, err := q.Enqueue(ctx, Job{Input: "Salário Bruto R$ 5.000,00", Country: "br"})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	q.Shutdown(ctx)

	for _, id := range ids[:3] {
		_, ok := q.Status(id)
		assert.False(t, ok)
	}
	for _, id := range ids[3:] {
		st, ok := q.Status(id)
		require.True(t, ok)
		assert.Equal(t, constants.JobStatusSucceeded, st)
	}
	assert.Len(t, q.statuses, 2)
}
