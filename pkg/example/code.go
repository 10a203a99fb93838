// Package example builds decoding graphs for common error-correcting code
// topologies and samples random or replayed syndrome patterns on them.
//
// A code is a set of vertices (stabilizer measurements, some of them virtual
// boundary vertices) and edges (independent error mechanisms that flip both
// endpoints). Edge probabilities are turned into integer weights with
// ComputeWeights, and Initializer exports the skeleton graph consumed by the
// closure engine.
//
// These builders are conveniences for testing and benchmarking the engine;
// they do not model a physical noise channel accurately.
package example

import (
	"math"
	"math/rand/v2"

	"github.com/RoaringBitmap/roaring"

	"qecgraph/pkg/apperror"
	"qecgraph/pkg/domain"
)

// CodeVertex is a stabilizer measurement bit.
type CodeVertex struct {
	Position domain.Position
	// NeighborEdges indexes into the owning Graph's Edges.
	NeighborEdges []int
	// IsVirtual marks a boundary vertex that never reports a syndrome.
	IsVirtual  bool
	IsSyndrome bool
}

// CodeEdge flips the measurement result of its two vertices.
type CodeEdge struct {
	A, B int
	// P is the flip probability; Pe the probability the edge is erased.
	P, Pe      float64
	HalfWeight int64
	IsErasure  bool
}

// Graph holds the vertices and edges of a code. Topologies embed it.
type Graph struct {
	Vertices []CodeVertex
	Edges    []CodeEdge
}

// Code is implemented by every topology and by replay/parallel wrappers.
type Code interface {
	// Base returns the mutable vertex and edge storage.
	Base() *Graph
	// GenerateRandomErrors samples the next syndrome pattern.
	GenerateRandomErrors(seed uint64) (domain.SyndromePattern, error)
}

// Base implements Code.
func (g *Graph) Base() *Graph { return g }

// WeightOfP converts an error probability into an unscaled weight ln((1-p)/p).
func WeightOfP(p float64) (float64, error) {
	if !(p > 0 && p <= 0.5) {
		return 0, apperror.Newf(apperror.CodeInvalidArgument, "probability %v outside (0, 0.5]", p).
			WithField("p")
	}
	return math.Log((1 - p) / p), nil
}

// VertexNum returns the number of vertices.
func (g *Graph) VertexNum() int { return len(g.Vertices) }

// newEdge creates an edge with zero probabilities.
func newEdge(a, b int) CodeEdge {
	return CodeEdge{A: a, B: b}
}

// GenerateRandomErrors resets syndromes and samples every edge with a PCG
// generator seeded by seed. An erased edge flips with probability 0.5, any
// other edge with its P. A flip toggles the syndrome of each non-virtual
// endpoint.
func (g *Graph) GenerateRandomErrors(seed uint64) (domain.SyndromePattern, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	toggled := roaring.New()

	for i := range g.Edges {
		e := &g.Edges[i]
		p := e.P
		e.IsErasure = rng.Float64() < e.Pe
		if e.IsErasure {
			p = 0.5
		}
		if rng.Float64() < p {
			for _, v := range [2]int{e.A, e.B} {
				if g.Vertices[v].IsVirtual {
					continue
				}
				if toggled.Contains(uint32(v)) {
					toggled.Remove(uint32(v))
				} else {
					toggled.Add(uint32(v))
				}
			}
		}
	}

	for i := range g.Vertices {
		g.Vertices[i].IsSyndrome = toggled.Contains(uint32(i))
	}
	return g.Syndrome(), nil
}
