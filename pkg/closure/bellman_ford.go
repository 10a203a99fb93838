package closure

import (
	"context"
	"fmt"

	"qecgraph/pkg/apperror"
)

// =============================================================================
// Bellman-Ford Reference
// =============================================================================
//
// Brute-force single-source distances used to cross-check the engine. Edges
// are relaxed in both directions in input order until a full pass changes
// nothing.
//
// Time Complexity: O(V * E)
// Space Complexity: O(V)
// =============================================================================

// BellmanFord returns the distance from source to every vertex and whether it
// is reachable. Unreachable vertices have reachable[v] == false and dist 0.
// Invalid edges are skipped; callers validate with New first.
func BellmanFord(vertexNum int, edges []WeightedEdge, source VertexIndex) (dist []Weight, reachable []bool) {
	dist = make([]Weight, vertexNum)
	reachable = make([]bool, vertexNum)
	if source < 0 || source >= vertexNum {
		return dist, reachable
	}
	reachable[source] = true

	relax := func(from, to VertexIndex, w Weight) bool {
		if !reachable[from] {
			return false
		}
		if d := dist[from] + w; !reachable[to] || d < dist[to] {
			dist[to] = d
			reachable[to] = true
			return true
		}
		return false
	}

	for iter := 0; iter < vertexNum; iter++ {
		changed := false
		for _, e := range edges {
			if e.A < 0 || e.A >= vertexNum || e.B < 0 || e.B >= vertexNum || e.Weight < 0 {
				continue
			}
			if relax(e.A, e.B, e.Weight) {
				changed = true
			}
			if relax(e.B, e.A, e.Weight) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return dist, reachable
}

// Edges returns the deduplicated skeleton edges with A <= B in ascending order.
func (g *CompleteGraph) Edges() []WeightedEdge {
	var out []WeightedEdge
	for a := range g.vertices {
		for _, n := range g.vertices[a].neighbors {
			if a <= n.vertex {
				out = append(out, WeightedEdge{A: a, B: n.vertex, Weight: n.weight})
			}
		}
	}
	return out
}

// Verify runs a full traversal from source and compares every distance with
// BellmanFord. It also checks that each predecessor is a neighbor and that the
// hop weight matches the skeleton edge.
//
// Returns a CodeAlgorithmMismatch error describing the first divergence.
func Verify(g *CompleteGraph, source VertexIndex) error {
	result, err := g.ShortestDistances(source)
	if err != nil {
		return err
	}
	dist, reachable := BellmanFord(g.VertexNum(), g.Edges(), source)

	for v := 0; v < g.VertexNum(); v++ {
		if v == source {
			if _, ok := result[v]; ok {
				return mismatch(source, v, "source present in result map")
			}
			continue
		}
		e, ok := result[v]
		if ok != reachable[v] {
			return mismatch(source, v, fmt.Sprintf("reachability: engine=%t reference=%t", ok, reachable[v]))
		}
		if !ok {
			continue
		}
		if e.Weight != dist[v] {
			return mismatch(source, v, fmt.Sprintf("distance: engine=%d reference=%d", e.Weight, dist[v]))
		}
		w, adjacent := g.EdgeWeight(e.Previous, v)
		if !adjacent {
			return mismatch(source, v, fmt.Sprintf("predecessor %d is not a neighbor", e.Previous))
		}
		prev := Weight(0)
		if e.Previous != source {
			prev = result[e.Previous].Weight
		}
		if prev+w != e.Weight {
			return mismatch(source, v, fmt.Sprintf("hop via %d does not add up: %d + %d != %d", e.Previous, prev, w, e.Weight))
		}
	}
	return nil
}

// VerifyAll runs Verify from every vertex, checking ctx between sources.
func VerifyAll(ctx context.Context, g *CompleteGraph) error {
	for s := 0; s < g.VertexNum(); s++ {
		if err := ctx.Err(); err != nil {
			return apperror.Wrap(err, apperror.CodeCanceled, "verification interrupted").
				WithDetails("source", s)
		}
		if err := Verify(g, s); err != nil {
			return err
		}
	}
	return nil
}

func mismatch(source, v VertexIndex, msg string) error {
	return apperror.Newf(apperror.CodeAlgorithmMismatch, "source %d, vertex %d: %s", source, v, msg).
		WithDetails("source", source).
		WithDetails("vertex", v)
}
