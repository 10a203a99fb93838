package runner

import (
	"context"
	"maps"

	"github.com/RoaringBitmap/roaring"

	"qecgraph/pkg/apperror"
	"qecgraph/pkg/closure"
	"qecgraph/pkg/domain"
)

// PathFunc возвращает кратчайший путь между a и b на g
type PathFunc func(ctx context.Context, g *closure.CompleteGraph, a, b closure.VertexIndex) (closure.Path, error)

// Direct считает путь на движке без кэша
func Direct(_ context.Context, g *closure.CompleteGraph, a, b closure.VertexIndex) (closure.Path, error) {
	return g.ShortestPath(a, b)
}

// Closure полный граф на синдромных вершинах одного сценария
type Closure struct {
	SyndromeNum int
	// Weights вес кратчайшего пути для каждой достижимой пары (a, b), a < b
	Weights map[[2]int]closure.Weight
	// Boundary вес пути до ближайшей виртуальной вершины
	Boundary    map[int]closure.Weight
	Unreachable int
	Finalized   int
}

// Paths возвращает число найденных путей между синдромными вершинами
func (c *Closure) Paths() int { return len(c.Weights) }

// Equal сравнивает два замыкания по весам
func (c *Closure) Equal(other *Closure) bool {
	return c.SyndromeNum == other.SyndromeNum &&
		c.Unreachable == other.Unreachable &&
		maps.Equal(c.Weights, other.Weights) &&
		maps.Equal(c.Boundary, other.Boundary)
}

// VirtualSet собирает множество виртуальных вершин
func VirtualSet(in *domain.Initializer) *roaring.Bitmap {
	bm := roaring.New()
	for _, v := range in.VirtualVertices {
		bm.Add(uint32(v))
	}
	return bm
}

// ComputeClosure запускает обход из каждой синдромной вершины и запрашивает
// путь до каждой следующей. Вес пути обязан совпасть с весом из обхода.
// Недостижимые пары считаются, но не являются ошибкой.
func ComputeClosure(ctx context.Context, g *closure.CompleteGraph, pattern domain.SyndromePattern,
	virtual *roaring.Bitmap, path PathFunc) (*Closure, error) {
	sv := pattern.SyndromeVertices
	c := &Closure{
		SyndromeNum: len(sv),
		Weights:     make(map[[2]int]closure.Weight, len(sv)*(len(sv)-1)/2+1),
		Boundary:    make(map[int]closure.Weight, len(sv)),
	}

	for i, a := range sv {
		if err := ctx.Err(); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeCanceled, "closure interrupted").
				WithDetails("source", a)
		}

		dist, err := g.ShortestDistances(a)
		if err != nil {
			return nil, err
		}
		c.Finalized += len(dist)

		if virtual != nil && !virtual.IsEmpty() {
			if w, ok := nearest(dist, virtual); ok {
				c.Boundary[a] = w
			}
		}

		for _, b := range sv[i+1:] {
			p, err := path(ctx, g, a, b)
			if apperror.Is(err, apperror.CodeNotFound) {
				c.Unreachable++
				continue
			}
			if err != nil {
				return nil, err
			}
			e, ok := dist[b]
			if !ok || e.Weight != p.Weight {
				return nil, apperror.Newf(apperror.CodeAlgorithmMismatch,
					"path %d->%d weight %d disagrees with traversal", a, b, p.Weight).
					WithDetails("source", a).
					WithDetails("target", b)
			}
			c.Weights[[2]int{a, b}] = p.Weight
		}
	}
	return c, nil
}

func nearest(dist closure.ResultMap, virtual *roaring.Bitmap) (closure.Weight, bool) {
	var (
		best  closure.Weight
		found bool
	)
	it := virtual.Iterator()
	for it.HasNext() {
		e, ok := dist[int(it.Next())]
		if ok && (!found || e.Weight < best) {
			best, found = e.Weight, true
		}
	}
	return best, found
}
