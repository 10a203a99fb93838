package example

import (
	"fmt"
	"math"

	"qecgraph/pkg/apperror"
	"qecgraph/pkg/domain"
)

// ComputeWeights derives integer half weights from edge probabilities, scaled
// so the largest equals maxHalfWeight. A weight that rounds to 0 becomes 1.
func (g *Graph) ComputeWeights(maxHalfWeight int64) error {
	if maxHalfWeight <= 0 {
		return apperror.New(apperror.CodeInvalidArgument, "max half weight must be positive").
			WithField("max_half_weight")
	}
	weights := make([]float64, len(g.Edges))
	maxWeight := 0.0
	for i, e := range g.Edges {
		w, err := WeightOfP(e.P)
		if err != nil {
			return apperror.Wrap(err, apperror.CodeInvalidArgument, fmt.Sprintf("edge %d", i))
		}
		weights[i] = w
		if w > maxWeight {
			maxWeight = w
		}
	}
	if maxWeight <= 0 {
		return apperror.New(apperror.CodeInvalidArgument, "max weight is not expected to be 0")
	}
	for i := range g.Edges {
		hw := int64(math.Round(float64(maxHalfWeight) * weights[i] / maxWeight))
		if hw == 0 {
			hw = 1
		}
		g.Edges[i].HalfWeight = hw
	}
	return nil
}

// SanityCheck rejects empty graphs, duplicate edges, vertices without edges
// and vertices referencing the same edge twice.
func (g *Graph) SanityCheck() error {
	if len(g.Vertices) == 0 || len(g.Edges) == 0 {
		return apperror.ErrEmptyGraph
	}

	existing := make(map[[2]int]int, len(g.Edges))
	for idx, e := range g.Edges {
		key := [2]int{e.A, e.B}
		if e.A > e.B {
			key = [2]int{e.B, e.A}
		}
		if prev, ok := existing[key]; ok {
			return apperror.Newf(apperror.CodeDuplicateEdge,
				"duplicate edge %d and %d with incident vertices %d and %d", prev, idx, e.A, e.B)
		}
		existing[key] = idx
	}

	for v, vertex := range g.Vertices {
		if len(vertex.NeighborEdges) == 0 {
			return apperror.Newf(apperror.CodeIsolatedNode, "vertex %d does not have any neighbor edges", v)
		}
		seen := make(map[int]struct{}, len(vertex.NeighborEdges))
		for _, idx := range vertex.NeighborEdges {
			if _, ok := seen[idx]; ok {
				return apperror.Newf(apperror.CodeDuplicateEdge, "duplicate referred edge %d from vertex %d", idx, v)
			}
			seen[idx] = struct{}{}
		}
	}
	return nil
}

// SetProbability sets P on every edge.
func (g *Graph) SetProbability(p float64) {
	for i := range g.Edges {
		g.Edges[i].P = p
	}
}

// SetErasureProbability sets Pe on every edge.
func (g *Graph) SetErasureProbability(pe float64) {
	for i := range g.Edges {
		g.Edges[i].Pe = pe
	}
}

// FillVertices recreates vertexNum blank vertices and links every edge into
// both endpoints' NeighborEdges.
func (g *Graph) FillVertices(vertexNum int) error {
	g.Vertices = make([]CodeVertex, vertexNum)
	for idx, e := range g.Edges {
		if e.A < 0 || e.A >= vertexNum || e.B < 0 || e.B >= vertexNum {
			return apperror.Newf(apperror.CodeInvalidIndex,
				"edge %d (%d, %d) references a vertex outside [0, %d)", idx, e.A, e.B, vertexNum)
		}
		g.Vertices[e.A].NeighborEdges = append(g.Vertices[e.A].NeighborEdges, idx)
		g.Vertices[e.B].NeighborEdges = append(g.Vertices[e.B].NeighborEdges, idx)
	}
	return nil
}

// Positions returns the position of every vertex.
func (g *Graph) Positions() []domain.Position {
	out := make([]domain.Position, len(g.Vertices))
	for i, v := range g.Vertices {
		out[i] = v.Position
	}
	return out
}

// Initializer exports the skeleton graph. Edge weights are 2*HalfWeight.
func (g *Graph) Initializer() *domain.Initializer {
	in := &domain.Initializer{
		VertexNum:       len(g.Vertices),
		WeightedEdges:   make([][3]int64, len(g.Edges)),
		VirtualVertices: []int{},
	}
	for i, e := range g.Edges {
		in.WeightedEdges[i] = [3]int64{int64(e.A), int64(e.B), e.HalfWeight * 2}
	}
	for i, v := range g.Vertices {
		if v.IsVirtual {
			in.VirtualVertices = append(in.VirtualVertices, i)
		}
	}
	return in
}

// SetSyndrome replaces the syndrome vertices and erased edges.
func (g *Graph) SetSyndrome(pattern domain.SyndromePattern) error {
	for _, v := range pattern.SyndromeVertices {
		if v < 0 || v >= len(g.Vertices) {
			return apperror.NewWithField(apperror.CodeInvalidIndex,
				fmt.Sprintf("syndrome vertex %d out of range", v), "syndrome_vertices")
		}
	}
	for _, e := range pattern.Erasures {
		if e < 0 || e >= len(g.Edges) {
			return apperror.NewWithField(apperror.CodeInvalidIndex,
				fmt.Sprintf("erasure %d out of range", e), "erasures")
		}
	}

	for i := range g.Vertices {
		g.Vertices[i].IsSyndrome = false
	}
	for _, v := range pattern.SyndromeVertices {
		g.Vertices[v].IsSyndrome = true
	}
	for i := range g.Edges {
		g.Edges[i].IsErasure = false
	}
	for _, e := range pattern.Erasures {
		g.Edges[e].IsErasure = true
	}
	return nil
}

// Syndrome returns the current syndrome vertices and erased edges in
// ascending order.
func (g *Graph) Syndrome() domain.SyndromePattern {
	pattern := domain.SyndromePattern{
		SyndromeVertices: []int{},
		Erasures:         []int{},
	}
	for i, v := range g.Vertices {
		if v.IsSyndrome {
			pattern.SyndromeVertices = append(pattern.SyndromeVertices, i)
		}
	}
	for i, e := range g.Edges {
		if e.IsErasure {
			pattern.Erasures = append(pattern.Erasures, i)
		}
	}
	return pattern
}

// IsVirtual reports whether vertex v is a boundary vertex.
func (g *Graph) IsVirtual(v int) bool { return g.Vertices[v].IsVirtual }

// IsSyndrome reports whether vertex v currently shows a syndrome.
func (g *Graph) IsSyndrome(v int) bool { return g.Vertices[v].IsSyndrome }

// ReorderVertices renumbers vertices so that new index i holds old vertex
// sequential[i]. sequential must be a permutation of all vertex indices.
func (g *Graph) ReorderVertices(sequential []int) error {
	n := len(g.Vertices)
	if len(sequential) != n {
		return apperror.Newf(apperror.CodeInvalidArgument,
			"amount of vertices must be same: got %d, want %d", len(sequential), n)
	}
	oldToNew := make([]int, n)
	for i := range oldToNew {
		oldToNew[i] = -1
	}
	for newIdx, oldIdx := range sequential {
		if oldIdx < 0 || oldIdx >= n || oldToNew[oldIdx] != -1 {
			return apperror.Newf(apperror.CodeInvalidArgument,
				"vertex order is not a permutation at position %d", newIdx)
		}
		oldToNew[oldIdx] = newIdx
	}

	vertices := make([]CodeVertex, n)
	for newIdx, oldIdx := range sequential {
		vertices[newIdx] = g.Vertices[oldIdx]
	}
	g.Vertices = vertices
	for i := range g.Edges {
		g.Edges[i].A = oldToNew[g.Edges[i].A]
		g.Edges[i].B = oldToNew[g.Edges[i].B]
	}
	return nil
}

// clone deep-copies the graph.
func (g *Graph) clone() Graph {
	c := Graph{
		Vertices: make([]CodeVertex, len(g.Vertices)),
		Edges:    append([]CodeEdge(nil), g.Edges...),
	}
	for i, v := range g.Vertices {
		v.NeighborEdges = append([]int(nil), v.NeighborEdges...)
		c.Vertices[i] = v
	}
	return c
}
