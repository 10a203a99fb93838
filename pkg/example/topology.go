package example

import (
	"math"

	"qecgraph/pkg/apperror"
	"qecgraph/pkg/domain"
)

// =============================================================================
// Code Topologies
// =============================================================================
//
// Every layout uses rows of d+1 vertices: d-1 real stabilizers followed by two
// virtual boundary vertices at positions d-1 (right) and d (left). Layered
// codes stack td = rounds+1 copies of the d-row planar layer; the last layer
// is a perfect measurement round.
// =============================================================================

// RepetitionCode is a code-capacity repetition code.
type RepetitionCode struct{ Graph }

// PlanarCode is a code-capacity planar surface code (X stabilizers).
type PlanarCode struct{ Graph }

// PhenomenologicalCode is a planar code with noisy measurement rounds.
type PhenomenologicalCode struct{ Graph }

// CircuitLevelCode adds diagonal space-time edges to PhenomenologicalCode.
type CircuitLevelCode struct{ Graph }

var (
	_ Replica[*RepetitionCode]       = (*RepetitionCode)(nil)
	_ Replica[*PlanarCode]           = (*PlanarCode)(nil)
	_ Replica[*PhenomenologicalCode] = (*PhenomenologicalCode)(nil)
	_ Replica[*CircuitLevelCode]     = (*CircuitLevelCode)(nil)
	_ Code                           = (*Parallel[*PlanarCode])(nil)
)

func (c *RepetitionCode) Clone() *RepetitionCode             { return &RepetitionCode{c.clone()} }
func (c *PlanarCode) Clone() *PlanarCode                     { return &PlanarCode{c.clone()} }
func (c *PhenomenologicalCode) Clone() *PhenomenologicalCode { return &PhenomenologicalCode{c.clone()} }
func (c *CircuitLevelCode) Clone() *CircuitLevelCode         { return &CircuitLevelCode{c.clone()} }

func checkDistance(d int) error {
	if d < 3 || d%2 == 0 {
		return apperror.Newf(apperror.CodeInvalidArgument, "d must be odd integer >= 3, got %d", d).
			WithField("d")
	}
	return nil
}

func checkRounds(rounds int) error {
	if rounds < 0 {
		return apperror.Newf(apperror.CodeInvalidArgument, "noisy measurement rounds must be non-negative, got %d", rounds).
			WithField("rounds")
	}
	return nil
}

// finish sets a uniform probability and computes weights.
func (g *Graph) finish(p float64, maxHalfWeight int64) error {
	g.SetProbability(p)
	return g.ComputeWeights(maxHalfWeight)
}

// NewRepetitionCode builds a distance-d repetition code with d+1 vertices.
func NewRepetitionCode(d int, p float64, maxHalfWeight int64) (*RepetitionCode, error) {
	code, err := CreateRepetitionCode(d)
	if err != nil {
		return nil, err
	}
	if err := code.finish(p, maxHalfWeight); err != nil {
		return nil, err
	}
	return code, nil
}

// CreateRepetitionCode builds the layout without probabilities or weights.
func CreateRepetitionCode(d int) (*RepetitionCode, error) {
	if err := checkDistance(d); err != nil {
		return nil, err
	}
	vertexNum := (d - 1) + 2
	edges := make([]CodeEdge, 0, d)
	for i := 0; i < d-1; i++ {
		edges = append(edges, newEdge(i, i+1))
	}
	edges = append(edges, newEdge(0, d)) // left-most edge

	code := &RepetitionCode{Graph{Edges: edges}}
	if err := code.FillVertices(vertexNum); err != nil {
		return nil, err
	}
	code.Vertices[d-1].IsVirtual = true
	code.Vertices[d].IsVirtual = true
	for i := 0; i < d; i++ {
		code.Vertices[i].Position = domain.Position{I: 0, J: float64(i), T: 0}
	}
	code.Vertices[d].Position = domain.Position{I: 0, J: -1, T: 0}
	return code, nil
}

// NewPlanarCode builds a distance-d planar code with d rows of d+1 vertices.
func NewPlanarCode(d int, p float64, maxHalfWeight int64) (*PlanarCode, error) {
	code, err := CreatePlanarCode(d)
	if err != nil {
		return nil, err
	}
	if err := code.finish(p, maxHalfWeight); err != nil {
		return nil, err
	}
	return code, nil
}

// CreatePlanarCode builds the layout without probabilities or weights.
func CreatePlanarCode(d int) (*PlanarCode, error) {
	if err := checkDistance(d); err != nil {
		return nil, err
	}
	g, err := layered(d, 1, false, 0)
	if err != nil {
		return nil, err
	}
	return &PlanarCode{g}, nil
}

// NewPhenomenologicalCode builds rounds+1 planar layers joined by
// measurement-error edges.
func NewPhenomenologicalCode(d, rounds int, p float64, maxHalfWeight int64) (*PhenomenologicalCode, error) {
	code, err := CreatePhenomenologicalCode(d, rounds)
	if err != nil {
		return nil, err
	}
	if err := code.finish(p, maxHalfWeight); err != nil {
		return nil, err
	}
	return code, nil
}

// CreatePhenomenologicalCode builds the layout without probabilities or weights.
func CreatePhenomenologicalCode(d, rounds int) (*PhenomenologicalCode, error) {
	if err := checkDistance(d); err != nil {
		return nil, err
	}
	if err := checkRounds(rounds); err != nil {
		return nil, err
	}
	g, err := layered(d, rounds+1, false, 0.5)
	if err != nil {
		return nil, err
	}
	return &PhenomenologicalCode{g}, nil
}

// NewCircuitLevelCode builds a circuit-level code whose diagonal edges have
// error rate p/3.
func NewCircuitLevelCode(d, rounds int, p float64, maxHalfWeight int64) (*CircuitLevelCode, error) {
	return NewCircuitLevelCodeDiagonal(d, rounds, p, maxHalfWeight, p/3)
}

// NewCircuitLevelCodeDiagonal builds a circuit-level code with diagonalP on
// every edge whose endpoints are more than one unit apart (Manhattan).
func NewCircuitLevelCodeDiagonal(d, rounds int, p float64, maxHalfWeight int64, diagonalP float64) (*CircuitLevelCode, error) {
	code, err := CreateCircuitLevelCode(d, rounds)
	if err != nil {
		return nil, err
	}
	code.SetProbability(p)
	if diagonalP != p {
		for i, e := range code.Edges {
			a, b := code.Vertices[e.A].Position, code.Vertices[e.B].Position
			if math.Abs(a.I-b.I)+math.Abs(a.J-b.J)+math.Abs(a.T-b.T) > 1 {
				code.Edges[i].P = diagonalP
			}
		}
	}
	if err := code.ComputeWeights(maxHalfWeight); err != nil {
		return nil, err
	}
	return code, nil
}

// CreateCircuitLevelCode builds the layout without probabilities or weights.
func CreateCircuitLevelCode(d, rounds int) (*CircuitLevelCode, error) {
	if err := checkDistance(d); err != nil {
		return nil, err
	}
	if err := checkRounds(rounds); err != nil {
		return nil, err
	}
	g, err := layered(d, rounds+1, true, 0.5)
	if err != nil {
		return nil, err
	}
	return &CircuitLevelCode{g}, nil
}

// layered builds td planar layers of d rows. Inter-layer edges connect each
// real vertex to its copy in the next layer; with diagonals it also connects
// to the next layer's (row, i+1), (row+1, i) and (row+1, i+1) when those are
// real vertices. jOffset shifts the J coordinate of every position.
func layered(d, td int, diagonals bool, jOffset float64) (Graph, error) {
	rowVertexNum := (d - 1) + 2
	tVertexNum := rowVertexNum * d
	vertexNum := tVertexNum * td

	var edges []CodeEdge
	for t := 0; t < td; t++ {
		tBias := t * tVertexNum
		for row := 0; row < d; row++ {
			bias := tBias + row*rowVertexNum
			for i := 0; i < d-1; i++ {
				edges = append(edges, newEdge(bias+i, bias+i+1))
			}
			edges = append(edges, newEdge(bias, bias+d)) // left-most edge
			if row+1 < d {
				for i := 0; i < d-1; i++ {
					edges = append(edges, newEdge(bias+i, bias+i+rowVertexNum))
				}
			}
		}
		if t+1 >= td {
			continue
		}
		// inter-layer connection
		for row := 0; row < d; row++ {
			bias := tBias + row*rowVertexNum
			for i := 0; i < d-1; i++ {
				edges = append(edges, newEdge(bias+i, bias+i+tVertexNum))
				if !diagonals {
					continue
				}
				for _, diff := range [3][2]int{{0, 1}, {1, 0}, {1, 1}} {
					newRow, newI := row+diff[0], i+diff[1]
					if newRow < d && newI < d-1 {
						newBias := tBias + newRow*rowVertexNum + tVertexNum
						edges = append(edges, newEdge(bias+i, newBias+newI))
					}
				}
			}
		}
	}

	g := Graph{Edges: edges}
	if err := g.FillVertices(vertexNum); err != nil {
		return Graph{}, err
	}
	for t := 0; t < td; t++ {
		for row := 0; row < d; row++ {
			bias := t*tVertexNum + row*rowVertexNum
			g.Vertices[bias+d-1].IsVirtual = true
			g.Vertices[bias+d].IsVirtual = true
			for i := 0; i < d; i++ {
				g.Vertices[bias+i].Position = domain.Position{I: float64(row), J: float64(i) + jOffset, T: float64(t)}
			}
			g.Vertices[bias+d].Position = domain.Position{I: float64(row), J: -1 + jOffset, T: float64(t)}
		}
	}
	return g, nil
}
