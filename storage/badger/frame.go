package badger

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/scenedex/core"
	"github.com/poiesic/scenedex/storage"
)

// FrameRepository implements storage.FrameRepository for BadgerDB.
type FrameRepository struct {
	backend *Backend
}

var _ storage.FrameRepository = (*FrameRepository)(nil)

// NewFrameRepository creates a new FrameRepository.
func NewFrameRepository(backend *Backend) (*FrameRepository, error) {
	return &FrameRepository{
		backend: backend,
	}, nil
}

// Close releases repository resources.
func (r *FrameRepository) Close() error {
	return nil
}

// AddFrameEvidence persists frame evidence rows in order.
func (r *FrameRepository) AddFrameEvidence(ctx context.Context, frames ...*core.FrameEvidence) ([]*core.FrameEvidence, error) {
	for _, frame := range frames {
		if err := core.ValidateFrameEvidence(frame); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, frame := range frames {
			// Use content-based ID if not set
			if frame.Id == 0 {
				frame.Id = core.IDFromContent(frame.Tuple())
			}

			key := makeFrameKey(frame.Id)
			if err := tx.Set(key, storage.MarshalFrameEvidence(frame)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return frames, err
}

// TopK returns up to k frame hits by cosine similarity, highest first.
func (r *FrameRepository) TopK(ctx context.Context, vector []float32, k int) ([]core.FrameHit, error) {
	if k <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var hits []core.FrameHit

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(frameRecPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var frame *core.FrameEvidence
			err := iter.Item().Value(func(val []byte) error {
				var err error
				frame, err = storage.UnmarshalFrameEvidence(val)
				return err
			})
			if err != nil {
				return err
			}
			if len(frame.Vector) == 0 {
				continue
			}

			hits = append(hits, core.FrameHit{
				Timestamp: frame.Timestamp,
				ImagePath: frame.ImagePath,
				Score:     dotProduct(vector, frame.Vector),
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(hits, func(a, b core.FrameHit) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(hits) > k {
		hits = hits[:k]
	}

	return hits, nil
}

// CountByVideo returns the number of frame evidence rows for a job.
func (r *FrameRepository) CountByVideo(ctx context.Context, videoID core.ID) (int, error) {
	count := 0

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(frameRecPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var frame *core.FrameEvidence
			err := iter.Item().Value(func(val []byte) error {
				var err error
				frame, err = storage.UnmarshalFrameEvidence(val)
				return err
			})
			if err != nil {
				return err
			}
			if frame.VideoId == videoID {
				count++
			}
		}
		return nil
	}, false)

	return count, err
}

// Truncate removes all frame evidence.
func (r *FrameRepository) Truncate(ctx context.Context) error {
	return r.backend.DropPrefixes([]byte(frameRecPrefix + ":"))
}
