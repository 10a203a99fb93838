// Package closure computes the shortest-path closure of a sparse weighted
// undirected skeleton graph on demand.
//
// A CompleteGraph is built once from a vertex count and an edge list. Each
// query runs one single-source Dijkstra traversal with a deterministic
// tie-break between equal-weight predecessors, so zero-weight edges and
// zero-weight cycles terminate and give reproducible predecessor chains.
//
// # Fast clear
//
// Visited state is a per-vertex timestamp compared against a per-graph clock.
// Starting a traversal advances the clock instead of clearing every vertex;
// only when the clock reaches its maximum are all stamps physically reset.
//
// # Thread Safety
//
// CompleteGraph is NOT thread-safe: at most one traversal may be in flight per
// instance. Use Clone() to get an independent engine per goroutine.
//
// # Example
//
//	g, err := closure.New(4, []closure.WeightedEdge{
//	    {A: 0, B: 1, Weight: 10},
//	    {A: 1, B: 2, Weight: 10},
//	    {A: 0, B: 2, Weight: 5},
//	    {A: 2, B: 3, Weight: 1},
//	})
//	path, err := g.ShortestPath(0, 3) // [(2,5) (3,1)], weight 6
package closure

import (
	"log/slog"
	"sort"

	"qecgraph/pkg/apperror"
)

// neighbor is one adjacency entry.
type neighbor struct {
	vertex VertexIndex
	weight Weight
}

// vertex holds the adjacency of one vertex, sorted by neighbor index, and the
// clock value of the last traversal that finalized it.
type vertex struct {
	neighbors []neighbor
	timestamp uint64
}

// CompleteGraph is the shortest-path engine over an immutable skeleton graph.
type CompleteGraph struct {
	vertices        []vertex
	activeTimestamp uint64

	logger   *slog.Logger
	recorder Recorder
}

// New builds the engine from a skeleton graph.
//
// Each edge is inserted into both endpoints' adjacency. A later edge between
// the same pair overwrites the earlier one. Self-loops are accepted and never
// affect distances.
//
// Returns:
//   - CodeInvalidIndex if vertexNum is negative or an endpoint is out of range
//   - CodeNegativeWeight if an edge weight is negative
func New(vertexNum int, edges []WeightedEdge, opts ...Option) (*CompleteGraph, error) {
	if vertexNum < 0 {
		return nil, apperror.NewWithField(apperror.CodeInvalidIndex,
			"vertex count must be non-negative", "vertex_num").
			WithDetails("vertex_num", vertexNum)
	}

	adjacency := make([]map[VertexIndex]Weight, vertexNum)
	for i, e := range edges {
		if e.A < 0 || e.A >= vertexNum || e.B < 0 || e.B >= vertexNum {
			return nil, apperror.Newf(apperror.CodeInvalidIndex,
				"edge %d (%d, %d) references a vertex outside [0, %d)", i, e.A, e.B, vertexNum).
				WithDetails("edge", i)
		}
		if e.Weight < 0 {
			return nil, apperror.Newf(apperror.CodeNegativeWeight,
				"edge %d (%d, %d) has negative weight %d", i, e.A, e.B, e.Weight).
				WithDetails("edge", i)
		}
		for _, pair := range [2][2]VertexIndex{{e.A, e.B}, {e.B, e.A}} {
			if adjacency[pair[0]] == nil {
				adjacency[pair[0]] = make(map[VertexIndex]Weight, 4)
			}
			adjacency[pair[0]][pair[1]] = e.Weight
		}
	}

	g := &CompleteGraph{
		vertices: make([]vertex, vertexNum),
		recorder: noopRecorder{},
	}
	for v, m := range adjacency {
		list := make([]neighbor, 0, len(m))
		for u, w := range m {
			list = append(list, neighbor{vertex: u, weight: w})
		}
		sort.Slice(list, func(i, j int) bool { return list[i].vertex < list[j].vertex })
		g.vertices[v].neighbors = list
	}

	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// VertexNum returns the number of vertices.
func (g *CompleteGraph) VertexNum() int {
	return len(g.vertices)
}

// Neighbors returns the skeleton neighbors of v in ascending vertex order.
// The returned slice is a copy.
func (g *CompleteGraph) Neighbors(v VertexIndex) ([]WeightedEdge, error) {
	if err := g.checkIndex(v, "vertex"); err != nil {
		return nil, err
	}
	list := g.vertices[v].neighbors
	out := make([]WeightedEdge, len(list))
	for i, n := range list {
		out[i] = WeightedEdge{A: v, B: n.vertex, Weight: n.weight}
	}
	return out, nil
}

// EdgeWeight returns the skeleton edge weight between a and b.
func (g *CompleteGraph) EdgeWeight(a, b VertexIndex) (Weight, bool) {
	if a < 0 || a >= len(g.vertices) {
		return 0, false
	}
	list := g.vertices[a].neighbors
	i := sort.Search(len(list), func(i int) bool { return list[i].vertex >= b })
	if i < len(list) && list[i].vertex == b {
		return list[i].weight, true
	}
	return 0, false
}

// Clone returns an independent engine over the same skeleton graph.
// Adjacency is shared read-only; the clock and vertex stamps are copied.
func (g *CompleteGraph) Clone() *CompleteGraph {
	c := &CompleteGraph{
		vertices:        make([]vertex, len(g.vertices)),
		activeTimestamp: g.activeTimestamp,
		logger:          g.logger,
		recorder:        g.recorder,
	}
	copy(c.vertices, g.vertices)
	return c
}

func (g *CompleteGraph) checkIndex(v VertexIndex, field string) error {
	if v < 0 || v >= len(g.vertices) {
		return apperror.NewWithField(apperror.CodeInvalidIndex,
			"vertex index out of range", field).
			WithDetails("vertex", v).
			WithDetails("vertex_num", len(g.vertices))
	}
	return nil
}
