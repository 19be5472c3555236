package search

import "github.com/poiesic/scenedex/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps during search.
type SearchMonitor interface {
	Start(query string)
	AfterVisualQuery(hits []core.FrameHit)
	AfterTextQuery(hits []core.TextHit)
	Finish(results []core.SceneResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                     {}
func (n *noopMonitor) AfterVisualQuery(_ []core.FrameHit) {}
func (n *noopMonitor) AfterTextQuery(_ []core.TextHit)    {}
func (n *noopMonitor) Finish(_ []core.SceneResult)        {}
