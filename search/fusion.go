package search

import (
	"math"
	"slices"

	"github.com/poiesic/scenedex/core"
)

const (
	// PlaceholderPreview stands in for a scene with no visual evidence.
	PlaceholderPreview = "no_image.jpg"

	// PlaceholderSnippet stands in for a scene with no transcript evidence.
	PlaceholderSnippet = "..."
)

// FuseOptions tunes the clustering and scoring of FuseResults.
type FuseOptions struct {
	// TimeWindow is the clustering radius in seconds around a cluster's
	// seed. Non-positive means no merging across distinct times.
	TimeWindow float64

	// WeightVisual multiplies every visual hit's similarity score.
	WeightVisual float64

	// WeightText multiplies every text hit's similarity score.
	WeightText float64
}

// DefaultFuseOptions are the values used by the search surface:
// a 5 second window with both modalities weighted equally.
func DefaultFuseOptions() FuseOptions {
	return FuseOptions{
		TimeWindow:   5.0,
		WeightVisual: 1.0,
		WeightText:   1.0,
	}
}

type modality int

const (
	modalityVisual modality = iota
	modalityText
)

// candidate is one hit of either modality, flattened for clustering.
// time is its clustering identity: two candidates count as the same
// instant only when their times are bit-identical.
type candidate struct {
	time     float64
	score    float64 // weighted
	modality modality

	imagePath string
	startTime float64
	endTime   float64
	text      string
}

// FuseResults merges the visual and text hit lists into one ranked scene
// list. Hits are clustered greedily around the strongest unclaimed hit;
// each member's time within TimeWindow of the seed joins the cluster
// (near the seed only, membership does not chain further). A cluster
// scores the sum of its best visual and best text weighted scores, so
// cross-modal agreement outranks single-modality strength. Empty inputs
// yield an empty, non-nil slice.
func FuseResults(visual []core.FrameHit, text []core.TextHit, opts FuseOptions) []core.SceneResult {
	candidates := make([]candidate, 0, len(visual)+len(text))
	for _, hit := range visual {
		candidates = append(candidates, candidate{
			time:      hit.Timestamp,
			score:     float64(hit.Score) * opts.WeightVisual,
			modality:  modalityVisual,
			imagePath: hit.ImagePath,
		})
	}
	for _, hit := range text {
		candidates = append(candidates, candidate{
			time:      hit.StartTime,
			score:     float64(hit.Score) * opts.WeightText,
			modality:  modalityText,
			startTime: hit.StartTime,
			endTime:   hit.EndTime,
			text:      hit.Text,
		})
	}

	// Total order, not just score-descending: the tie-breaks make the
	// output independent of the input order of same-valued hit lists.
	slices.SortFunc(candidates, func(a, b candidate) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		case a.time < b.time:
			return -1
		case a.time > b.time:
			return 1
		default:
			return int(a.modality) - int(b.modality)
		}
	})

	// Claimed candidates are tracked by exact time value. The seed's own
	// time is claimed only after the sweep, so a hit of the other modality
	// at a bit-identical time still joins the seed's cluster.
	claimed := make(map[float64]struct{}, len(candidates))
	results := make([]core.SceneResult, 0, len(candidates))

	for i, seed := range candidates {
		if _, ok := claimed[seed.time]; ok {
			continue
		}

		members := []candidate{seed}
		for _, other := range candidates[i+1:] {
			if _, ok := claimed[other.time]; ok {
				continue
			}
			if math.Abs(other.time-seed.time) <= opts.TimeWindow {
				claimed[other.time] = struct{}{}
				members = append(members, other)
			}
		}
		claimed[seed.time] = struct{}{}

		results = append(results, buildScene(seed, members))
	}

	slices.SortStableFunc(results, func(a, b core.SceneResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	return results
}

// buildScene reduces one cluster to a SceneResult. The best member per
// modality contributes its score (max, not sum) and its artifact; the
// seed, being the strongest member overall, is the representative time.
func buildScene(seed candidate, members []candidate) core.SceneResult {
	var (
		bestVisual, bestText           *candidate
		bestVisualScore, bestTextScore float64
		minTime                        = seed.time
		maxTime                        = seed.time
	)

	for i := range members {
		m := &members[i]
		if m.time < minTime {
			minTime = m.time
		}
		if m.time > maxTime {
			maxTime = m.time
		}
		switch m.modality {
		case modalityVisual:
			if bestVisual == nil || m.score > bestVisualScore {
				bestVisual = m
				bestVisualScore = m.score
			}
		case modalityText:
			if bestText == nil || m.score > bestTextScore {
				bestText = m
				bestTextScore = m.score
			}
		}
	}

	scene := core.SceneResult{
		Timestamp:         seed.time,
		StartTime:         minTime,
		EndTime:           maxTime,
		Score:             bestVisualScore + bestTextScore,
		MatchType:         core.MatchTypeSingle,
		PreviewPath:       PlaceholderPreview,
		TranscriptSnippet: PlaceholderSnippet,
	}
	if bestVisual != nil {
		scene.PreviewPath = bestVisual.imagePath
	}
	if bestText != nil {
		scene.TranscriptSnippet = bestText.text
	}
	if bestVisualScore > 0 && bestTextScore > 0 {
		scene.MatchType = core.MatchTypeHybrid
	}
	return scene
}
