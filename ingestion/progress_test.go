package ingestion

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/scenedex/core"
	"github.com/poiesic/scenedex/storage"
	"github.com/poiesic/scenedex/storage/badger"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestVideoProgress(t *testing.T) {
	tests := []struct {
		name      string
		timestamp float64
		total     float64
		want      int
	}{
		{"start of video", 0, 100, 10},
		{"midpoint", 50, 100, 54},
		{"near end clamps to 99", 100, 100, 99},
		{"past end clamps to 99", 150, 100, 99},
		{"negative timestamp clamps to 10", -5, 100, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, videoProgress(tt.timestamp, tt.total))
		})
	}
}

func TestProgressReporterMonotonic(t *testing.T) {
	jobs, _, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	ctx := context.Background()
	job, err := jobs.Create(ctx, &core.VideoJob{
		Title:      "clip.mp4",
		SourcePath: "/videos/clip.mp4",
		Status:     core.JobStatusProcessing,
	})
	require.NoError(t, err)

	reporter := newProgressReporter(jobs, job.Id, discardLogger())

	readProgress := func() int {
		current, err := jobs.Current(ctx)
		require.NoError(t, err)
		require.NotNil(t, current)
		return current.Progress
	}

	reporter.report(ctx, 10)
	assert.Equal(t, 10, readProgress())

	// Equal and lower values are not written.
	reporter.report(ctx, 10)
	reporter.report(ctx, 5)
	assert.Equal(t, 10, readProgress())

	reporter.report(ctx, 42)
	assert.Equal(t, 42, readProgress())

	// Values above 100 are clamped.
	reporter.report(ctx, 250)
	assert.Equal(t, 100, readProgress())
}

func TestProgressReporterSkipsUnknownDuration(t *testing.T) {
	jobs, _, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	ctx := context.Background()
	job, err := jobs.Create(ctx, &core.VideoJob{
		Title:      "clip.mp4",
		SourcePath: "/videos/clip.mp4",
		Status:     core.JobStatusProcessing,
	})
	require.NoError(t, err)

	reporter := newProgressReporter(jobs, job.Id, discardLogger())
	reporter.reportVideo(ctx, 12.5, 0)

	current, err := jobs.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, current.Progress)
}

// failingJobRepo fails every progress write.
type failingJobRepo struct {
	storage.JobRepository
}

func (f *failingJobRepo) UpdateProgress(ctx context.Context, id core.ID, progress int) error {
	return errors.New("disk on fire")
}

func TestProgressReporterSwallowsWriteFailures(t *testing.T) {
	jobs, _, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	ctx := context.Background()
	job, err := jobs.Create(ctx, &core.VideoJob{
		Title:      "clip.mp4",
		SourcePath: "/videos/clip.mp4",
		Status:     core.JobStatusProcessing,
	})
	require.NoError(t, err)

	reporter := newProgressReporter(&failingJobRepo{JobRepository: jobs}, job.Id, discardLogger())

	// Must not panic or advance the high-water mark.
	reporter.report(ctx, 50)
	assert.Equal(t, 0, reporter.last)
}
