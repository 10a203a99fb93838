package replay

import (
	"qecgraph/pkg/apperror"
	"qecgraph/pkg/domain"
	"qecgraph/pkg/example"
)

// Reader is a code whose graph comes from a replay file and whose
// GenerateRandomErrors returns the stored patterns in order.
type Reader struct {
	example.Graph
	patterns []domain.SyndromePattern
	index    int
}

var _ example.Code = (*Reader)(nil)

// NewReader rebuilds the code graph from f. Edge weights must be even.
func NewReader(f *File) (*Reader, error) {
	in := f.Initializer
	r := &Reader{
		Graph: example.Graph{
			Edges: make([]example.CodeEdge, 0, len(in.WeightedEdges)),
		},
		patterns: f.Patterns,
	}
	for i, e := range in.WeightedEdges {
		if e[2]%2 != 0 {
			return nil, apperror.Newf(apperror.CodeInvalidFormat, "edge %d weight %d must be even", i, e[2])
		}
		r.Edges = append(r.Edges, example.CodeEdge{A: int(e[0]), B: int(e[1]), HalfWeight: e[2] / 2})
	}
	if err := r.FillVertices(in.VertexNum); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidFormat, "rebuild vertices")
	}
	for i, pos := range f.Positions {
		r.Vertices[i].Position = pos
	}
	for _, v := range in.VirtualVertices {
		r.Vertices[v].IsVirtual = true
	}
	return r, nil
}

// Open reads path and builds a Reader.
func Open(path string) (*Reader, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewReader(f)
}

// GenerateRandomErrors returns the next stored pattern and applies it to the
// graph. The seed is ignored. Reading past the last pattern is an error.
func (r *Reader) GenerateRandomErrors(uint64) (domain.SyndromePattern, error) {
	if r.index >= len(r.patterns) {
		return domain.SyndromePattern{}, apperror.Wrap(apperror.ErrPatternsExhausted, apperror.CodeNotFound,
			"reading syndrome pattern more than in the file, generate the file with more data points").
			WithDetails("patterns", len(r.patterns))
	}
	p := r.patterns[r.index]
	if err := r.SetSyndrome(p); err != nil {
		return domain.SyndromePattern{}, apperror.Wrap(err, apperror.CodeInvalidFormat, "pattern does not fit the graph").
			WithDetails("pattern", r.index)
	}
	r.index++
	return p, nil
}

// Remaining returns the number of unread patterns.
func (r *Reader) Remaining() int { return len(r.patterns) - r.index }

// Rewind restarts reading from the first pattern.
func (r *Reader) Rewind() { r.index = 0 }
