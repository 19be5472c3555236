package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/scenedex/core"
	"github.com/poiesic/scenedex/storage"
)

// JobRepository implements storage.JobRepository for BadgerDB.
type JobRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.JobRepository = (*JobRepository)(nil)

// NewJobRepository creates a new JobRepository.
func NewJobRepository(backend *Backend) (*JobRepository, error) {
	idSeq, err := backend.GetSequence(videoJobIDSeq)
	if err != nil {
		return nil, err
	}

	return &JobRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *JobRepository) Close() error {
	return r.idSeq.Release()
}

// Create persists a new job with a sequence-generated ID.
func (r *JobRepository) Create(ctx context.Context, job *core.VideoJob) (*core.VideoJob, error) {
	if err := core.ValidateVideoJob(job); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		job.Id = core.ID(nextID)

		job.InsertedAt = time.Now().UTC()
		job.UpdatedAt = job.InsertedAt

		key := makeVideoJobKey(job.Id)
		value := storage.MarshalVideoJob(job)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return job, err
}

// Current returns the most recently created job, or nil when none exists.
func (r *JobRepository) Current(ctx context.Context) (*core.VideoJob, error) {
	var current *core.VideoJob

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(videoJobPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var job *core.VideoJob
			err := iter.Item().Value(func(val []byte) error {
				var err error
				job, err = storage.UnmarshalVideoJob(val)
				return err
			})
			if err != nil {
				return err
			}
			// Keys are formatted decimals, so lexicographic iteration
			// order is not numeric; compare decoded IDs.
			if current == nil || job.Id > current.Id {
				current = job
			}
		}
		return nil
	}, false)

	return current, err
}

// UpdateProgress sets the progress percentage of a job.
func (r *JobRepository) UpdateProgress(ctx context.Context, id core.ID, progress int) error {
	return r.mutate(id, func(job *core.VideoJob) {
		job.Progress = progress
	})
}

// SetStatus sets the status of a job.
func (r *JobRepository) SetStatus(ctx context.Context, id core.ID, status core.JobStatus) error {
	if err := core.ValidateJobStatus(status); err != nil {
		return err
	}
	return r.mutate(id, func(job *core.VideoJob) {
		job.Status = status
	})
}

// Truncate removes all job records.
func (r *JobRepository) Truncate(ctx context.Context) error {
	return r.backend.DropPrefixes([]byte(videoJobPrefix + ":"))
}

// mutate applies fn to the stored job and writes it back.
func (r *JobRepository) mutate(id core.ID, fn func(job *core.VideoJob)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeVideoJobKey(id)
		item, err := tx.Get(key)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var job *core.VideoJob
		if err := item.Value(func(val []byte) error {
			var err error
			job, err = storage.UnmarshalVideoJob(val)
			return err
		}); err != nil {
			return err
		}

		fn(job)
		job.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalVideoJob(job)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
