package storage

import (
	"context"

	"github.com/poiesic/scenedex/core"
)

// JobRepository tracks the lifecycle of the current video ingestion job.
// This system processes one video at a time: Create is expected to be
// preceded by Truncate, and Current reports the most recent job.
type JobRepository interface {
	// Create persists a new job with a sequence-generated ID.
	// Sets InsertedAt/UpdatedAt timestamps. Returns the job with its ID populated.
	Create(ctx context.Context, job *core.VideoJob) (*core.VideoJob, error)

	// Current returns the most recently created job, or nil (with nil error)
	// when no job exists. The nil job is the "no index" sentinel surfaced
	// to status pollers.
	Current(ctx context.Context) (*core.VideoJob, error)

	// UpdateProgress sets the progress percentage of a job.
	// Returns ErrNotFound if the job doesn't exist. Callers enforce
	// monotonicity; the repository stores whatever it is given.
	UpdateProgress(ctx context.Context, id core.ID, progress int) error

	// SetStatus sets the terminal (or initial) status of a job.
	// Returns ErrNotFound if the job doesn't exist.
	SetStatus(ctx context.Context, id core.ID, status core.JobStatus) error

	// Truncate removes all job records. Idempotent.
	Truncate(ctx context.Context) error

	// Close releases repository resources.
	Close() error
}

// FrameRepository stores frame evidence and answers visual-modality
// vector queries.
type FrameRepository interface {
	// AddFrameEvidence persists frame evidence rows in order. Rows with a
	// zero ID get a deterministic content-derived one; identical content
	// overwrites rather than duplicates. Rows are immutable once written.
	AddFrameEvidence(ctx context.Context, frames ...*core.FrameEvidence) ([]*core.FrameEvidence, error)

	// TopK returns up to k frame hits ordered by cosine similarity to the
	// query vector, highest first. The query vector must be unit-normalized.
	TopK(ctx context.Context, vector []float32, k int) ([]core.FrameHit, error)

	// CountByVideo returns the number of frame evidence rows for a job.
	CountByVideo(ctx context.Context, videoID core.ID) (int, error)

	// Truncate removes all frame evidence. Idempotent.
	Truncate(ctx context.Context) error

	// Close releases repository resources.
	Close() error
}

// TextRepository stores transcript-segment evidence and answers
// text-modality vector queries.
type TextRepository interface {
	// AddTextEvidence persists text evidence rows in order. Rows with a
	// zero ID get a deterministic content-derived one; identical content
	// overwrites rather than duplicates. Rows are immutable once written.
	AddTextEvidence(ctx context.Context, segments ...*core.TextEvidence) ([]*core.TextEvidence, error)

	// TopK returns up to k text hits ordered by cosine similarity to the
	// query vector, highest first. The query vector must be unit-normalized.
	TopK(ctx context.Context, vector []float32, k int) ([]core.TextHit, error)

	// Truncate removes all text evidence. Idempotent.
	Truncate(ctx context.Context) error

	// Close releases repository resources.
	Close() error
}
