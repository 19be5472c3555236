package badger

import (
	"context"
	"testing"

	"github.com/poiesic/scenedex/core"
	"github.com/poiesic/scenedex/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupJobRepo(t *testing.T) storage.JobRepository {
	t.Helper()

	jobRepo, frameRepo, textRepo, backend, err := NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		textRepo.Close()
		frameRepo.Close()
		jobRepo.Close()
		backend.Close()
	})

	return jobRepo
}

func TestJobRepositoryCreate(t *testing.T) {
	repo := setupJobRepo(t)
	ctx := context.Background()

	job, err := repo.Create(ctx, &core.VideoJob{
		Title:      "clip.mp4",
		SourcePath: "uploads/clip.mp4",
		Status:     core.JobStatusProcessing,
	})
	require.NoError(t, err)
	assert.NotZero(t, job.Id)
	assert.False(t, job.InsertedAt.IsZero())

	t.Run("invalid job rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, &core.VideoJob{Title: "", SourcePath: "x", Status: core.JobStatusProcessing})
		assert.ErrorIs(t, err, core.ErrEmptyTitle)
	})
}

func TestJobRepositoryCurrent(t *testing.T) {
	repo := setupJobRepo(t)
	ctx := context.Background()

	t.Run("no job reports sentinel", func(t *testing.T) {
		current, err := repo.Current(ctx)
		require.NoError(t, err)
		assert.Nil(t, current)
	})

	t.Run("returns most recent job", func(t *testing.T) {
		first, err := repo.Create(ctx, &core.VideoJob{
			Title: "a.mp4", SourcePath: "uploads/a.mp4", Status: core.JobStatusProcessing,
		})
		require.NoError(t, err)

		second, err := repo.Create(ctx, &core.VideoJob{
			Title: "b.mp4", SourcePath: "uploads/b.mp4", Status: core.JobStatusProcessing,
		})
		require.NoError(t, err)
		require.Greater(t, second.Id, first.Id)

		current, err := repo.Current(ctx)
		require.NoError(t, err)
		require.NotNil(t, current)
		assert.Equal(t, second.Id, current.Id)
		assert.Equal(t, "b.mp4", current.Title)
	})
}

func TestJobRepositoryUpdateProgress(t *testing.T) {
	repo := setupJobRepo(t)
	ctx := context.Background()

	job, err := repo.Create(ctx, &core.VideoJob{
		Title: "clip.mp4", SourcePath: "uploads/clip.mp4", Status: core.JobStatusProcessing,
	})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateProgress(ctx, job.Id, 42))

	current, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, current.Progress)

	t.Run("missing job", func(t *testing.T) {
		err := repo.UpdateProgress(ctx, job.Id+100, 10)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestJobRepositorySetStatus(t *testing.T) {
	repo := setupJobRepo(t)
	ctx := context.Background()

	job, err := repo.Create(ctx, &core.VideoJob{
		Title: "clip.mp4", SourcePath: "uploads/clip.mp4", Status: core.JobStatusProcessing,
	})
	require.NoError(t, err)

	require.NoError(t, repo.SetStatus(ctx, job.Id, core.JobStatusCompleted))

	current, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.JobStatusCompleted, current.Status)

	t.Run("invalid status rejected", func(t *testing.T) {
		err := repo.SetStatus(ctx, job.Id, core.JobStatus(9))
		assert.ErrorIs(t, err, core.ErrInvalidJobStatus)
	})
}

func TestJobRepositoryTruncate(t *testing.T) {
	repo := setupJobRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &core.VideoJob{
		Title: "clip.mp4", SourcePath: "uploads/clip.mp4", Status: core.JobStatusProcessing,
	})
	require.NoError(t, err)

	require.NoError(t, repo.Truncate(ctx))

	current, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	// Idempotent
	require.NoError(t, repo.Truncate(ctx))
}
