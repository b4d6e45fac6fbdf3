package async

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/payslip-extractor/constants"
	"github.com/joseph-ayodele/payslip-extractor/internal/core"
	"github.com/joseph-ayodele/payslip-extractor/internal/core/llm"
)

// Job is one extraction to run in the background.
type Job struct {
	ID          uuid.UUID
	Source      string // file path or caller label, for logs and reports
	Input       any    // anything core.ParseInput accepts
	Country     string
	Fallback    llm.FallbackFunc
	SubmittedAt time.Time
}

// JobResult is handed to the queue's ResultHandler once a job finishes.
type JobResult struct {
	Job     Job
	Status  constants.JobStatus
	Result  *core.Result
	Elapsed time.Duration
}

type ResultHandler func(JobResult)

// Extractor is what the queue runs jobs against; *core.Processor satisfies it.
type Extractor interface {
	Extract(ctx context.Context, input any, country string, fallback llm.FallbackFunc) *core.Result
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) (uuid.UUID, error)
	Status(id uuid.UUID) (constants.JobStatus, bool)
	Shutdown(ctx context.Context)
}
