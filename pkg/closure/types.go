package closure

import (
	"log/slog"
	"time"
)

// VertexIndex is a dense vertex identifier in [0, VertexNum).
type VertexIndex = int

// Weight is a non-negative integer edge or path weight.
type Weight = int64

// WeightedEdge is an undirected skeleton edge.
type WeightedEdge struct {
	A      VertexIndex `json:"a"`
	B      VertexIndex `json:"b"`
	Weight Weight      `json:"weight"`
}

// Entry is the finalized state of a vertex after a traversal: the predecessor
// on a shortest path and the total weight from the source.
type Entry struct {
	Previous VertexIndex `json:"previous"`
	Weight   Weight      `json:"weight"`
}

// ResultMap maps each finalized non-source vertex to its Entry.
type ResultMap map[VertexIndex]Entry

// Step is one hop of a Path: the vertex reached and the weight of the hop.
type Step struct {
	Vertex VertexIndex `json:"vertex"`
	Weight Weight      `json:"weight"`
}

// Path is a shortest path from a source (excluded) to a destination
// (included) together with its total weight.
type Path struct {
	Steps  []Step `json:"steps"`
	Weight Weight `json:"weight"`
}

// Len returns the number of hops.
func (p Path) Len() int {
	return len(p.Steps)
}

// Vertices returns the visited vertices in forward order, excluding the source.
func (p Path) Vertices() []VertexIndex {
	out := make([]VertexIndex, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = s.Vertex
	}
	return out
}

// Recorder receives engine events. Implementations must be cheap; they are
// called on every traversal.
type Recorder interface {
	RecordTraversal(finalized int, earlyExit bool, duration time.Duration)
	RecordPathQuery(status string)
	RecordClockWrap()
}

// Path query statuses passed to Recorder.RecordPathQuery.
const (
	PathStatusFound    = "found"
	PathStatusNotFound = "not_found"
	PathStatusInvalid  = "invalid"
)

type noopRecorder struct{}

func (noopRecorder) RecordTraversal(int, bool, time.Duration) {}
func (noopRecorder) RecordPathQuery(string)                   {}
func (noopRecorder) RecordClockWrap()                         {}

// Option configures a CompleteGraph.
type Option func(*CompleteGraph)

// WithLogger sets the logger used for clock wraps and invariant faults.
// A nil logger disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(g *CompleteGraph) {
		g.logger = l
	}
}

// WithRecorder sets the metrics sink. A nil recorder disables recording.
func WithRecorder(r Recorder) Option {
	return func(g *CompleteGraph) {
		if r == nil {
			r = noopRecorder{}
		}
		g.recorder = r
	}
}
