package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/scenedex/ai"
	"github.com/poiesic/scenedex/core"
	"github.com/poiesic/scenedex/storage"
)

// Searcher answers natural-language queries over the indexed video.
type Searcher struct {
	frames        storage.FrameRepository
	texts         storage.TextRepository
	embedder      ai.Embedder
	frameEmbedder ai.FrameEmbedder
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	frames storage.FrameRepository,
	texts storage.TextRepository,
	provider ai.Provider,
	opts ...Option,
) (*Searcher, error) {
	if frames == nil {
		return nil, ErrFrameRepositoryRequired
	}
	if texts == nil {
		return nil, ErrTextRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		frames:        frames,
		texts:         texts,
		embedder:      provider.Embedder(),
		frameEmbedder: provider.FrameEmbedder(),
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// QueryOptions tunes one search call.
type QueryOptions struct {
	// TimeWindow is the fusion clustering radius in seconds.
	TimeWindow float64
	// WeightVisual scales the visual modality's contribution.
	WeightVisual float64
	// WeightText scales the text modality's contribution.
	WeightText float64
	// TopK is the per-modality hit count fetched from the stores.
	TopK int
	// Limit caps the number of fused scenes returned.
	Limit int
	// Monitor observes the search stages. Optional.
	Monitor SearchMonitor
}

// DefaultQueryOptions returns the standard search configuration:
// top 5 hits per modality, equal weights, a 5 second window, and at
// most 20 scenes.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		TimeWindow:   5.0,
		WeightVisual: 1.0,
		WeightText:   1.0,
		TopK:         5,
		Limit:        20,
	}
}

// Search runs a query with DefaultQueryOptions.
func (s *Searcher) Search(ctx context.Context, query string) ([]core.SceneResult, error) {
	return s.SearchWithOptions(ctx, query, DefaultQueryOptions())
}

// SearchWithOptions embeds the query in both modality spaces, fetches the
// per-modality top hits, and fuses them into ranked scenes. Both vector
// queries see whatever evidence is committed; search may run while an
// ingestion job is still writing.
func (s *Searcher) SearchWithOptions(ctx context.Context, query string, opts QueryOptions) ([]core.SceneResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	monitor := opts.Monitor
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	// The same query string is embedded twice: the CLIP text tower for
	// cross-modal frame retrieval, the sentence embedder for transcripts.
	visualVec, err := s.frameEmbedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error embedding query in frame space", "query", query, "err", err)
		return nil, err
	}
	textVec, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error embedding query in text space", "query", query, "err", err)
		return nil, err
	}

	frameHits, err := s.frames.TopK(ctx, core.NormalizeVector(visualVec), opts.TopK)
	if err != nil {
		s.logger.Error("error querying frame evidence", "err", err)
		return nil, err
	}
	monitor.AfterVisualQuery(frameHits)

	textHits, err := s.texts.TopK(ctx, core.NormalizeVector(textVec), opts.TopK)
	if err != nil {
		s.logger.Error("error querying text evidence", "err", err)
		return nil, err
	}
	monitor.AfterTextQuery(textHits)

	scenes := FuseResults(frameHits, textHits, FuseOptions{
		TimeWindow:   opts.TimeWindow,
		WeightVisual: opts.WeightVisual,
		WeightText:   opts.WeightText,
	})
	if opts.Limit > 0 && len(scenes) > opts.Limit {
		scenes = scenes[:opts.Limit]
	}

	monitor.Finish(scenes)
	return scenes, nil
}
