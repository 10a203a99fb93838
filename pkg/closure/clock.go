package closure

import "math"

// InvalidatePreviousRun advances the invalidation clock and returns the value
// that marks a vertex as finalized in the upcoming traversal.
//
// When the clock is at its maximum, every vertex stamp is reset to 0 and the
// clock restarts at 1, so "stamp == active" keeps meaning "finalized in this
// traversal" across the wrap.
func (g *CompleteGraph) InvalidatePreviousRun() uint64 {
	if g.activeTimestamp == math.MaxUint64 {
		g.activeTimestamp = 0
		for i := range g.vertices {
			g.vertices[i].timestamp = 0
		}
		if g.logger != nil {
			g.logger.Debug("invalidation clock wrapped", "vertices", len(g.vertices))
		}
		g.recorder.RecordClockWrap()
	}
	g.activeTimestamp++
	return g.activeTimestamp
}

// finalized reports whether v was finalized in the current traversal.
func (g *CompleteGraph) finalized(v VertexIndex) bool {
	return g.vertices[v].timestamp == g.activeTimestamp
}

// finalize stamps v with the current clock.
func (g *CompleteGraph) finalize(v VertexIndex) {
	g.vertices[v].timestamp = g.activeTimestamp
}

// forceTimestamp sets the clock directly. Tests use it to simulate a wrap.
func (g *CompleteGraph) forceTimestamp(ts uint64) {
	g.activeTimestamp = ts
}
