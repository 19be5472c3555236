package badger

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/scenedex/core"
	"github.com/poiesic/scenedex/storage"
)

// TextRepository implements storage.TextRepository for BadgerDB.
type TextRepository struct {
	backend *Backend
}

var _ storage.TextRepository = (*TextRepository)(nil)

// NewTextRepository creates a new TextRepository.
func NewTextRepository(backend *Backend) (*TextRepository, error) {
	return &TextRepository{
		backend: backend,
	}, nil
}

// Close releases repository resources.
func (r *TextRepository) Close() error {
	return nil
}

// AddTextEvidence persists text evidence rows in order.
func (r *TextRepository) AddTextEvidence(ctx context.Context, segments ...*core.TextEvidence) ([]*core.TextEvidence, error) {
	for _, segment := range segments {
		if err := core.ValidateTextEvidence(segment); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, segment := range segments {
			// Use content-based ID if not set
			if segment.Id == 0 {
				segment.Id = core.IDFromContent(segment.Tuple())
			}

			key := makeTextKey(segment.Id)
			if err := tx.Set(key, storage.MarshalTextEvidence(segment)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return segments, err
}

// TopK returns up to k text hits by cosine similarity, highest first.
func (r *TextRepository) TopK(ctx context.Context, vector []float32, k int) ([]core.TextHit, error) {
	if k <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var hits []core.TextHit

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(textRecPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var segment *core.TextEvidence
			err := iter.Item().Value(func(val []byte) error {
				var err error
				segment, err = storage.UnmarshalTextEvidence(val)
				return err
			})
			if err != nil {
				return err
			}
			if len(segment.Vector) == 0 {
				continue
			}

			hits = append(hits, core.TextHit{
				StartTime: segment.StartTime,
				EndTime:   segment.EndTime,
				Text:      segment.Text,
				Score:     dotProduct(vector, segment.Vector),
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(hits, func(a, b core.TextHit) int {
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

// Truncate removes all text evidence.
func (r *TextRepository) Truncate(ctx context.Context) error {
	return r.backend.DropPrefixes([]byte(textRecPrefix + ":"))
}
