package closure

import (
	"context"
	"time"

	"qecgraph/pkg/apperror"
)

// =============================================================================
// Dijkstra's Algorithm with Early Termination
// =============================================================================
//
// Single-source shortest paths over the skeleton graph. The frontier holds at
// most one tentative entry per vertex; relaxation replaces an entry only when
// the new candidate is strictly Better, so equal-weight alternatives are
// settled by the index tie-break instead of the visit order.
//
// Time Complexity: O((V + E) log V) with the keyed binary heap
// Space Complexity: O(V) for the frontier and the result map
//
// Neighbors are scanned in ascending vertex order, which together with the
// tie-break makes every run over the same graph and source reproducible.
// =============================================================================

// noTerminate is a terminate target that never matches a vertex.
const noTerminate VertexIndex = -1

// ShortestDistances runs a full traversal from source and returns, for every
// reachable vertex other than source, its predecessor and distance.
func (g *CompleteGraph) ShortestDistances(source VertexIndex) (ResultMap, error) {
	if err := g.checkIndex(source, "source"); err != nil {
		return nil, err
	}
	return g.traverse(source, noTerminate)
}

// ShortestDistancesTo runs a traversal from source that stops as soon as
// terminate is finalized. The entry for terminate, when present, equals the
// one a full traversal would produce; other entries may be missing.
func (g *CompleteGraph) ShortestDistancesTo(source, terminate VertexIndex) (ResultMap, error) {
	if err := g.checkIndex(source, "source"); err != nil {
		return nil, err
	}
	if err := g.checkIndex(terminate, "terminate"); err != nil {
		return nil, err
	}
	return g.traverse(source, terminate)
}

// ShortestDistancesContext checks ctx before starting and then runs an
// uninterruptible traversal. Pass a negative terminate for a full run.
func (g *CompleteGraph) ShortestDistancesContext(ctx context.Context, source, terminate VertexIndex) (ResultMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeCanceled, "traversal not started")
	}
	if terminate < 0 {
		return g.ShortestDistances(source)
	}
	return g.ShortestDistancesTo(source, terminate)
}

// traverse is the shared traversal. Indices are already validated.
func (g *CompleteGraph) traverse(source, terminate VertexIndex) (ResultMap, error) {
	start := time.Now()
	g.InvalidatePreviousRun()

	pq := acquireFrontier()
	defer releaseFrontier(pq)

	result := make(ResultMap)
	earlyExit := false

	pq.Push(source, Candidate{Weight: 0, Previous: source})

	for {
		target, cand, ok := pq.Pop()
		if !ok {
			break
		}

		if g.finalized(target) {
			return nil, g.invariantFault(source, target)
		}
		g.finalize(target)

		if target != source {
			result[target] = Entry{Previous: cand.Previous, Weight: cand.Weight}
			if target == terminate {
				earlyExit = true
				break
			}
		}

		for _, n := range g.vertices[target].neighbors {
			next := Candidate{Weight: cand.Weight + n.weight, Previous: target}
			if existing, pending := pq.Priority(n.vertex); pending {
				if Better(n.vertex, next, existing) {
					pq.Update(n.vertex, next)
				}
			} else if !g.finalized(n.vertex) {
				pq.Push(n.vertex, next)
			}
		}
	}

	g.recorder.RecordTraversal(len(result), earlyExit, time.Since(start))
	return result, nil
}

// invariantFault reports a vertex finalized twice in one traversal.
func (g *CompleteGraph) invariantFault(source, target VertexIndex) error {
	err := apperror.NewCritical(apperror.CodeInternal, "vertex finalized twice in one traversal").
		WithDetails("source", source).
		WithDetails("vertex", target).
		WithDetails("timestamp", g.activeTimestamp)
	if g.logger != nil {
		g.logger.Error("frontier consistency violation",
			"source", source,
			"vertex", target,
			"timestamp", g.activeTimestamp,
		)
	}
	return err
}
