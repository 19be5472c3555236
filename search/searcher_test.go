package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/scenedex/ai"
	"github.com/poiesic/scenedex/ai/mock"
	"github.com/poiesic/scenedex/core"
	"github.com/poiesic/scenedex/storage"
	"github.com/poiesic/scenedex/storage/badger"
)

// fixedProvider returns controlled query vectors so similarity scores in
// the tests are exact.
func fixedProvider(frameVec, textVec []float32) ai.Provider {
	frameEmbedder := mock.NewMockFrameEmbedder()
	frameEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return frameVec, nil
	}
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return textVec, nil
	}
	return mock.NewMockProviderWithServices(embedder, frameEmbedder)
}

func seedEvidence(t *testing.T) (storage.FrameRepository, storage.TextRepository) {
	t.Helper()

	_, frames, texts, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	ctx := context.Background()
	_, err = frames.AddFrameEvidence(ctx,
		&core.FrameEvidence{
			VideoId:   1,
			Timestamp: 1.0,
			ImagePath: "frames/1/frame_0.jpg",
			Vector:    []float32{1, 0, 0, 0},
		},
		&core.FrameEvidence{
			VideoId:   1,
			Timestamp: 30.0,
			ImagePath: "frames/1/frame_30.jpg",
			Vector:    []float32{0, 1, 0, 0},
		},
	)
	require.NoError(t, err)

	_, err = texts.AddTextEvidence(ctx, &core.TextEvidence{
		VideoId:   1,
		StartTime: 1.2,
		EndTime:   3.0,
		Text:      "ignition sequence start",
		Vector:    []float32{1, 0, 0, 0},
	})
	require.NoError(t, err)

	return frames, texts
}

type recordingMonitor struct {
	started     bool
	visualHits  int
	textHits    int
	finishCount int
}

func (m *recordingMonitor) Start(_ string)                     { m.started = true }
func (m *recordingMonitor) AfterVisualQuery(h []core.FrameHit) { m.visualHits = len(h) }
func (m *recordingMonitor) AfterTextQuery(h []core.TextHit)    { m.textHits = len(h) }
func (m *recordingMonitor) Finish(_ []core.SceneResult)        { m.finishCount++ }

func TestSearcherSearch(t *testing.T) {
	frames, texts := seedEvidence(t)
	provider := fixedProvider([]float32{1, 0, 0, 0}, []float32{1, 0, 0, 0})

	searcher, err := NewSearcher(frames, texts, provider)
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "rocket ignition")
	require.NoError(t, err)
	require.Len(t, results, 2)

	// The frame at t=1.0 and the transcript at t=1.2 fuse into one
	// hybrid scene; the unrelated frame at t=30 trails with zero score.
	assert.Equal(t, core.MatchTypeHybrid, results[0].MatchType)
	assert.InDelta(t, 2.0, results[0].Score, 1e-6)
	assert.InDelta(t, 1.0, results[0].Timestamp, 1e-9)
	assert.Equal(t, "frames/1/frame_0.jpg", results[0].PreviewPath)
	assert.Equal(t, "ignition sequence start", results[0].TranscriptSnippet)

	assert.Equal(t, core.MatchTypeSingle, results[1].MatchType)
	assert.InDelta(t, 0.0, results[1].Score, 1e-6)
}

func TestSearcherMonitorCallbacks(t *testing.T) {
	frames, texts := seedEvidence(t)
	provider := fixedProvider([]float32{1, 0, 0, 0}, []float32{1, 0, 0, 0})

	searcher, err := NewSearcher(frames, texts, provider)
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	opts := DefaultQueryOptions()
	opts.Monitor = monitor

	_, err = searcher.SearchWithOptions(context.Background(), "anything", opts)
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.Equal(t, 2, monitor.visualHits)
	assert.Equal(t, 1, monitor.textHits)
	assert.Equal(t, 1, monitor.finishCount)
}

func TestSearcherLimit(t *testing.T) {
	frames, texts := seedEvidence(t)
	provider := fixedProvider([]float32{1, 0, 0, 0}, []float32{1, 0, 0, 0})

	searcher, err := NewSearcher(frames, texts, provider)
	require.NoError(t, err)

	opts := DefaultQueryOptions()
	opts.Limit = 1
	results, err := searcher.SearchWithOptions(context.Background(), "anything", opts)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearcherEmptyQuery(t *testing.T) {
	frames, texts := seedEvidence(t)
	searcher, err := NewSearcher(frames, texts, mock.NewMockProvider())
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearcherEmbeddingFailure(t *testing.T) {
	frames, texts := seedEvidence(t)

	frameEmbedder := mock.NewMockFrameEmbedder()
	frameEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("clip server down")
	}
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), frameEmbedder)

	searcher, err := NewSearcher(frames, texts, provider)
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), "anything")
	assert.Error(t, err)
}

func TestNewSearcherValidation(t *testing.T) {
	frames, texts := seedEvidence(t)
	provider := mock.NewMockProvider()

	_, err := NewSearcher(nil, texts, provider)
	assert.ErrorIs(t, err, ErrFrameRepositoryRequired)

	_, err = NewSearcher(frames, nil, provider)
	assert.ErrorIs(t, err, ErrTextRepositoryRequired)

	_, err = NewSearcher(frames, texts, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}
