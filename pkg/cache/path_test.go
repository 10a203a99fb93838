package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qecgraph/pkg/apperror"
	"qecgraph/pkg/closure"
	"qecgraph/pkg/domain"
)

type lookupCounter struct {
	hits, misses int
}

func (c *lookupCounter) RecordCacheLookup(hit bool) {
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

func testGraph(t *testing.T) (*domain.Initializer, *closure.CompleteGraph) {
	t.Helper()
	in := &domain.Initializer{
		VertexNum:     4,
		WeightedEdges: [][3]int64{{0, 1, 10}, {1, 2, 10}, {0, 2, 5}, {2, 3, 1}},
	}
	g, err := in.Build()
	require.NoError(t, err)
	return in, g
}

func TestPathCache_ShortestPath(t *testing.T) {
	in, g := testGraph(t)
	c := newTestCache(t, nil)
	rec := &lookupCounter{}
	pc := NewPathCache(c, in, time.Minute).WithRecorder(rec)
	ctx := context.Background()

	want, err := g.ShortestPath(0, 3)
	require.NoError(t, err)

	first, err := pc.ShortestPath(ctx, g, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, want, first)
	assert.Equal(t, 0, rec.hits)
	assert.Equal(t, 1, rec.misses)

	second, err := pc.ShortestPath(ctx, g, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, want, second)
	assert.Equal(t, 1, rec.hits)

	assert.True(t, exists(t, c, BuildPathKey(pc.GraphHash(), 0, 3)))

	// Обратное направление хранится отдельно
	_, found, err := pc.Get(ctx, 3, 0)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPathCache_SharedAcrossEqualGraphs(t *testing.T) {
	in, g := testGraph(t)
	c := newTestCache(t, nil)
	ctx := context.Background()

	_, err := NewPathCache(c, in, 0).ShortestPath(ctx, g, 1, 3)
	require.NoError(t, err)

	reordered := &domain.Initializer{
		VertexNum:       4,
		WeightedEdges:   [][3]int64{{3, 2, 1}, {2, 0, 5}, {2, 1, 10}, {1, 0, 10}},
		VirtualVertices: []int{3},
	}
	p, found, err := NewPathCache(c, reordered, 0).Get(ctx, 1, 3)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(11), p.Weight)
}

func TestPathCache_ErrorsNotCached(t *testing.T) {
	in, g := testGraph(t)
	c := newTestCache(t, nil)
	pc := NewPathCache(c, in, 0)
	ctx := context.Background()

	_, err := pc.ShortestPath(ctx, g, 2, 2)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidArgument))

	_, err = pc.ShortestPath(ctx, g, 0, 9)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidIndex))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalKeys)
}

func TestPathCache_CorruptEntry(t *testing.T) {
	in, g := testGraph(t)
	c := newTestCache(t, nil)
	pc := NewPathCache(c, in, 0)
	ctx := context.Background()

	key := BuildPathKey(pc.GraphHash(), 0, 3)
	require.NoError(t, c.Set(ctx, key, []byte("{broken"), 0))

	_, found, err := pc.Get(ctx, 0, 3)
	require.NoError(t, err)
	assert.False(t, found)

	assert.False(t, exists(t, c, key))

	p, err := pc.ShortestPath(ctx, g, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(6), p.Weight)
}

func TestPathCache_Invalidate(t *testing.T) {
	in, g := testGraph(t)
	c := newTestCache(t, nil)
	pc := NewPathCache(c, in, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "path:othergraph:0:1", []byte("{}"), 0))
	for _, b := range []int{1, 2, 3} {
		_, err := pc.ShortestPath(ctx, g, 0, b)
		require.NoError(t, err)
	}

	n, err := pc.Invalidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	assert.True(t, exists(t, c, "path:othergraph:0:1"))
}

func TestPathCache_ClosedCache(t *testing.T) {
	in, g := testGraph(t)
	c := NewMemoryCache(nil)
	require.NoError(t, c.Close())

	_, err := NewPathCache(c, in, 0).ShortestPath(context.Background(), g, 0, 3)
	assert.ErrorIs(t, err, ErrCacheClosed)
}
