package closure

import (
	"qecgraph/pkg/apperror"
)

// ShortestPath returns the minimum-weight path from a to b in the order
// a -> Steps[0].Vertex -> ... -> Steps[len-1].Vertex == b. Each step carries
// the weight of its own hop; Weight is the total.
//
// Returns:
//   - CodeInvalidIndex if a or b is out of range
//   - CodeInvalidArgument if a == b
//   - CodeNotFound if b is unreachable from a
func (g *CompleteGraph) ShortestPath(a, b VertexIndex) (Path, error) {
	if err := g.checkIndex(a, "source"); err != nil {
		g.recorder.RecordPathQuery(PathStatusInvalid)
		return Path{}, err
	}
	if err := g.checkIndex(b, "target"); err != nil {
		g.recorder.RecordPathQuery(PathStatusInvalid)
		return Path{}, err
	}
	if a == b {
		g.recorder.RecordPathQuery(PathStatusInvalid)
		return Path{}, apperror.Wrap(apperror.ErrSameEndpoints, apperror.CodeInvalidArgument,
			apperror.ErrSameEndpoints.Message).WithDetails("vertex", a)
	}
	result, err := g.ShortestDistancesTo(a, b)
	if err != nil {
		g.recorder.RecordPathQuery(PathStatusInvalid)
		return Path{}, err
	}

	path, err := reconstruct(result, a, b)
	if err != nil {
		g.recorder.RecordPathQuery(PathStatusNotFound)
		return Path{}, err
	}
	g.recorder.RecordPathQuery(PathStatusFound)
	return path, nil
}

// reconstruct walks predecessors back from b to a and reverses the steps.
// Hop weights are the difference of consecutive cumulative weights.
func reconstruct(result ResultMap, a, b VertexIndex) (Path, error) {
	last, ok := result[b]
	if !ok {
		return Path{}, apperror.Newf(apperror.CodeNotFound, "vertex %d is unreachable from %d", b, a).
			WithDetails("source", a).
			WithDetails("target", b)
	}

	steps := make([]Step, 0, 8)
	for v := b; v != a; {
		e, ok := result[v]
		if !ok || len(steps) > len(result) {
			return Path{}, apperror.NewCritical(apperror.CodeInternal, "broken predecessor chain").
				WithDetails("vertex", v)
		}
		steps = append(steps, Step{Vertex: v, Weight: e.Weight})
		if n := len(steps); n > 1 {
			steps[n-2].Weight -= e.Weight
		}
		v = e.Previous
	}

	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return Path{Steps: steps, Weight: last.Weight}, nil
}
