package search

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/scenedex/core"
)

func TestFuseResultsEmptyInput(t *testing.T) {
	results := FuseResults(nil, nil, DefaultFuseOptions())
	require.NotNil(t, results)
	assert.Empty(t, results)
}

func TestFuseResultsCrossModalCluster(t *testing.T) {
	visual := []core.FrameHit{
		{Timestamp: 1.0, ImagePath: "frames/1/frame_0.jpg", Score: 0.9},
		{Timestamp: 2.0, ImagePath: "frames/1/frame_1.jpg", Score: 0.5},
	}
	text := []core.TextHit{
		{StartTime: 1.2, EndTime: 3.0, Text: "liftoff confirmed", Score: 0.8},
	}

	results := FuseResults(visual, text, DefaultFuseOptions())
	require.Len(t, results, 1)

	scene := results[0]
	assert.Equal(t, core.MatchTypeHybrid, scene.MatchType)
	assert.InDelta(t, 1.7, scene.Score, 1e-9)
	assert.InDelta(t, 1.0, scene.Timestamp, 1e-9, "representative time is the strongest member's")
	assert.Equal(t, "frames/1/frame_0.jpg", scene.PreviewPath)
	assert.Equal(t, "liftoff confirmed", scene.TranscriptSnippet)
	assert.InDelta(t, 1.0, scene.StartTime, 1e-9)
	assert.InDelta(t, 2.0, scene.EndTime, 1e-9)
}

func TestFuseResultsSplitsDistantHits(t *testing.T) {
	visual := []core.FrameHit{
		{Timestamp: 1.0, Score: 0.9},
		{Timestamp: 20.0, Score: 0.8},
	}

	results := FuseResults(visual, nil, DefaultFuseOptions())
	require.Len(t, results, 2)
	assert.Equal(t, core.MatchTypeSingle, results[0].MatchType)
	assert.Equal(t, core.MatchTypeSingle, results[1].MatchType)
	assert.InDelta(t, 1.0, results[0].Timestamp, 1e-9)
	assert.InDelta(t, 20.0, results[1].Timestamp, 1e-9)
}

func TestFuseResultsSeedWindowNotTransitive(t *testing.T) {
	// 8.0 is within the window of 4.0 but not of the seed at 0.0, so it
	// must form its own scene.
	visual := []core.FrameHit{
		{Timestamp: 0.0, Score: 0.9},
		{Timestamp: 4.0, Score: 0.5},
		{Timestamp: 8.0, Score: 0.4},
	}

	results := FuseResults(visual, nil, DefaultFuseOptions())
	require.Len(t, results, 2)
	assert.InDelta(t, 0.0, results[0].Timestamp, 1e-9)
	assert.InDelta(t, 8.0, results[1].Timestamp, 1e-9)
}

func TestFuseResultsInputOrderInvariance(t *testing.T) {
	visual := []core.FrameHit{
		{Timestamp: 1.0, ImagePath: "a.jpg", Score: 0.9},
		{Timestamp: 7.0, ImagePath: "b.jpg", Score: 0.9},
		{Timestamp: 3.0, ImagePath: "c.jpg", Score: 0.4},
	}
	text := []core.TextHit{
		{StartTime: 2.0, EndTime: 4.0, Text: "one", Score: 0.7},
		{StartTime: 8.0, EndTime: 9.0, Text: "two", Score: 0.7},
	}

	want := FuseResults(visual, text, DefaultFuseOptions())

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffledVisual := append([]core.FrameHit(nil), visual...)
		shuffledText := append([]core.TextHit(nil), text...)
		rng.Shuffle(len(shuffledVisual), func(a, b int) {
			shuffledVisual[a], shuffledVisual[b] = shuffledVisual[b], shuffledVisual[a]
		})
		rng.Shuffle(len(shuffledText), func(a, b int) {
			shuffledText[a], shuffledText[b] = shuffledText[b], shuffledText[a]
		})

		got := FuseResults(shuffledVisual, shuffledText, DefaultFuseOptions())
		assert.Equal(t, want, got)
	}
}

func TestFuseResultsZeroVisualWeight(t *testing.T) {
	visual := []core.FrameHit{
		{Timestamp: 1.0, ImagePath: "a.jpg", Score: 0.9},
		{Timestamp: 40.0, ImagePath: "b.jpg", Score: 0.8},
	}
	text := []core.TextHit{
		{StartTime: 2.0, EndTime: 4.0, Text: "hello", Score: 0.6},
	}

	opts := DefaultFuseOptions()
	opts.WeightVisual = 0

	results := FuseResults(visual, text, opts)
	require.Len(t, results, 2)

	// The text-bearing cluster keeps only the text contribution and is
	// no longer hybrid; the visual-only cluster degenerates to zero.
	assert.InDelta(t, 0.6, results[0].Score, 1e-9)
	assert.Equal(t, core.MatchTypeSingle, results[0].MatchType)
	assert.InDelta(t, 0.0, results[1].Score, 1e-9)
}

func TestFuseResultsExactTimeClaim(t *testing.T) {
	// A text hit at a bit-identical time to the seed joins the seed's
	// cluster: the seed claims its own time only after the membership
	// sweep. Exact collisions happen routinely, a frame at t=0.0 against
	// a transcript segment starting at 0.0 for instance.
	visual := []core.FrameHit{{Timestamp: 2.0, ImagePath: "a.jpg", Score: 0.9}}
	text := []core.TextHit{{StartTime: 2.0, EndTime: 3.0, Text: "hello", Score: 0.8}}

	results := FuseResults(visual, text, DefaultFuseOptions())
	require.Len(t, results, 1)
	assert.Equal(t, core.MatchTypeHybrid, results[0].MatchType)
	assert.InDelta(t, 1.7, results[0].Score, 1e-9)
	assert.Equal(t, "hello", results[0].TranscriptSnippet)
	assert.Equal(t, "a.jpg", results[0].PreviewPath)
}

func TestFuseResultsNonPositiveWindow(t *testing.T) {
	visual := []core.FrameHit{
		{Timestamp: 1.0, Score: 0.9},
		{Timestamp: 1.5, Score: 0.8},
		{Timestamp: 2.0, Score: 0.7},
	}

	opts := DefaultFuseOptions()
	opts.TimeWindow = 0

	results := FuseResults(visual, nil, opts)
	assert.Len(t, results, 3, "no merging across distinct times")
}

func TestFuseResultsPlaceholders(t *testing.T) {
	t.Run("text only", func(t *testing.T) {
		text := []core.TextHit{{StartTime: 1.0, EndTime: 2.0, Text: "hello", Score: 0.5}}
		results := FuseResults(nil, text, DefaultFuseOptions())
		require.Len(t, results, 1)
		assert.Equal(t, PlaceholderPreview, results[0].PreviewPath)
		assert.Equal(t, "hello", results[0].TranscriptSnippet)
	})

	t.Run("visual only", func(t *testing.T) {
		visual := []core.FrameHit{{Timestamp: 1.0, ImagePath: "a.jpg", Score: 0.5}}
		results := FuseResults(visual, nil, DefaultFuseOptions())
		require.Len(t, results, 1)
		assert.Equal(t, "a.jpg", results[0].PreviewPath)
		assert.Equal(t, PlaceholderSnippet, results[0].TranscriptSnippet)
	})
}

func TestFuseResultsRanksByTotalScore(t *testing.T) {
	// The second seed's cluster gains a text member and must outrank the
	// stronger single-modality seed.
	visual := []core.FrameHit{
		{Timestamp: 50.0, ImagePath: "a.jpg", Score: 0.9},
		{Timestamp: 1.0, ImagePath: "b.jpg", Score: 0.8},
	}
	text := []core.TextHit{
		{StartTime: 2.0, EndTime: 4.0, Text: "hello", Score: 0.6},
	}

	results := FuseResults(visual, text, DefaultFuseOptions())
	require.Len(t, results, 2)
	assert.InDelta(t, 1.4, results[0].Score, 1e-9)
	assert.Equal(t, core.MatchTypeHybrid, results[0].MatchType)
	assert.InDelta(t, 0.9, results[1].Score, 1e-9)
}
