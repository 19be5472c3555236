package main

import (
	"fmt"
	"os"

	"github.com/poiesic/scenedex/core"
	"github.com/poiesic/scenedex/search"
)

// printMonitor dumps the per-modality hits behind a --verbose search.
type printMonitor struct{}

var _ search.SearchMonitor = (*printMonitor)(nil)

func (m *printMonitor) Start(query string) {
	fmt.Fprintf(os.Stderr, "query: %q\n", query)
}

func (m *printMonitor) AfterVisualQuery(hits []core.FrameHit) {
	fmt.Fprintf(os.Stderr, "visual hits: %d\n", len(hits))
	for _, hit := range hits {
		fmt.Fprintf(os.Stderr, "  t=%.1fs [%.3f] %s\n", hit.Timestamp, hit.Score, hit.ImagePath)
	}
}

func (m *printMonitor) AfterTextQuery(hits []core.TextHit) {
	fmt.Fprintf(os.Stderr, "text hits: %d\n", len(hits))
	for _, hit := range hits {
		fmt.Fprintf(os.Stderr, "  t=%.1f-%.1fs [%.3f] %q\n", hit.StartTime, hit.EndTime, hit.Score, hit.Text)
	}
}

func (m *printMonitor) Finish(results []core.SceneResult) {
	fmt.Fprintf(os.Stderr, "fused scenes: %d\n", len(results))
}
