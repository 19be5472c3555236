package ingestion

import (
	"context"
	"log/slog"

	"github.com/poiesic/scenedex/core"
	"github.com/poiesic/scenedex/storage"
)

const (
	// audioPhaseProgress is reported once when the audio phase completes.
	audioPhaseProgress = 10

	// maxVideoPhaseProgress caps progress during the video phase; 100 is
	// reserved for the finish step.
	maxVideoPhaseProgress = 99

	// finishedProgress is reported just before the job is marked completed.
	finishedProgress = 100
)

// progressReporter persists job progress with monotonic, clamped updates.
// Writes are fire-and-forget: a failed write is logged and skipped so a
// storage hiccup never aborts ingestion. The skipped value is retried
// implicitly by the next strictly larger report.
type progressReporter struct {
	jobs   storage.JobRepository
	jobID  core.ID
	last   int
	logger *slog.Logger
}

func newProgressReporter(jobs storage.JobRepository, jobID core.ID, logger *slog.Logger) *progressReporter {
	return &progressReporter{
		jobs:   jobs,
		jobID:  jobID,
		logger: logger,
	}
}

// report persists pct if it strictly exceeds the last persisted value.
// Values above 100 are clamped.
func (r *progressReporter) report(ctx context.Context, pct int) {
	if pct > finishedProgress {
		pct = finishedProgress
	}
	if pct <= r.last {
		return
	}
	if err := r.jobs.UpdateProgress(ctx, r.jobID, pct); err != nil {
		r.logger.Warn("progress update failed",
			"job_id", r.jobID, "progress", pct, "err", err)
		return
	}
	r.last = pct
}

// reportVideo maps a frame timestamp to the video phase's 10..99 band and
// reports it. When the total duration is unknown the report is skipped;
// progress then stays at the audio phase value until the finish step.
func (r *progressReporter) reportVideo(ctx context.Context, timestamp, totalDuration float64) {
	if totalDuration <= 0 {
		return
	}
	r.report(ctx, videoProgress(timestamp, totalDuration))
}

// videoProgress computes 10 + floor((timestamp/totalDuration)*89),
// clamped into [10, 99].
func videoProgress(timestamp, totalDuration float64) int {
	pct := audioPhaseProgress + int((timestamp/totalDuration)*89)
	if pct < audioPhaseProgress {
		pct = audioPhaseProgress
	}
	if pct > maxVideoPhaseProgress {
		pct = maxVideoPhaseProgress
	}
	return pct
}
