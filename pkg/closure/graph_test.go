package closure

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"qecgraph/pkg/apperror"
)

func concreteGraph(t *testing.T) *CompleteGraph {
	t.Helper()
	g, err := New(4, []WeightedEdge{
		{A: 0, B: 1, Weight: 10},
		{A: 1, B: 2, Weight: 10},
		{A: 0, B: 2, Weight: 5},
		{A: 2, B: 3, Weight: 1},
	})
	require.NoError(t, err)
	return g
}

func zeroCycleGraph(t *testing.T) *CompleteGraph {
	t.Helper()
	g, err := New(5, []WeightedEdge{
		{A: 0, B: 1, Weight: 0},
		{A: 1, B: 2, Weight: 0},
		{A: 2, B: 3, Weight: 0},
		{A: 3, B: 0, Weight: 0},
		{A: 0, B: 4, Weight: 7},
	})
	require.NoError(t, err)
	return g
}

// randomEdges builds a random sparse graph that may contain zero weights,
// duplicate pairs and disconnected vertices.
func randomEdges(rng *rand.Rand, n, m int, maxWeight int64) []WeightedEdge {
	edges := make([]WeightedEdge, 0, m)
	for i := 0; i < m; i++ {
		a := rng.IntN(n)
		b := rng.IntN(n)
		if a == b {
			continue
		}
		edges = append(edges, WeightedEdge{A: a, B: b, Weight: rng.Int64N(maxWeight + 1)})
	}
	return edges
}

// lastWins keeps the final weight of each undirected pair, matching New.
func lastWins(edges []WeightedEdge) map[[2]int]Weight {
	out := make(map[[2]int]Weight, len(edges))
	for _, e := range edges {
		a, b := e.A, e.B
		if a > b {
			a, b = b, a
		}
		out[[2]int{a, b}] = e.Weight
	}
	return out
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		edges []WeightedEdge
		code  apperror.ErrorCode
	}{
		{"negative vertex count", -1, nil, apperror.CodeInvalidIndex},
		{"endpoint too large", 3, []WeightedEdge{{A: 0, B: 3, Weight: 1}}, apperror.CodeInvalidIndex},
		{"negative endpoint", 3, []WeightedEdge{{A: -1, B: 2, Weight: 1}}, apperror.CodeInvalidIndex},
		{"negative weight", 3, []WeightedEdge{{A: 0, B: 1, Weight: -1}}, apperror.CodeNegativeWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.n, tt.edges)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.True(t, apperror.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestNew_EmptyGraph(t *testing.T) {
	g, err := New(0, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, g.VertexNum())

	_, err = g.ShortestDistances(0)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidIndex))
}

func TestNew_DuplicateEdgeOverwrites(t *testing.T) {
	g, err := New(2, []WeightedEdge{
		{A: 0, B: 1, Weight: 9},
		{A: 1, B: 0, Weight: 3},
	})
	require.NoError(t, err)

	w, ok := g.EdgeWeight(0, 1)
	require.True(t, ok)
	assert.Equal(t, Weight(3), w)

	result, err := g.ShortestDistances(0)
	require.NoError(t, err)
	assert.Equal(t, Entry{Previous: 0, Weight: 3}, result[1])
}

func TestNeighbors_SortedCopy(t *testing.T) {
	g, err := New(5, []WeightedEdge{
		{A: 2, B: 4, Weight: 1},
		{A: 2, B: 0, Weight: 2},
		{A: 3, B: 2, Weight: 3},
	})
	require.NoError(t, err)

	list, err := g.Neighbors(2)
	require.NoError(t, err)
	assert.Equal(t, []WeightedEdge{
		{A: 2, B: 0, Weight: 2},
		{A: 2, B: 3, Weight: 3},
		{A: 2, B: 4, Weight: 1},
	}, list)

	list[0].Weight = 100
	again, _ := g.Neighbors(2)
	assert.Equal(t, Weight(2), again[0].Weight)

	_, err = g.Neighbors(5)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidIndex))
}

func TestShortestPath_Concrete(t *testing.T) {
	g := concreteGraph(t)

	p, err := g.ShortestPath(0, 3)
	require.NoError(t, err)

	assert.Equal(t, []Step{{Vertex: 2, Weight: 5}, {Vertex: 3, Weight: 1}}, p.Steps)
	assert.Equal(t, Weight(6), p.Weight)
	assert.Equal(t, []VertexIndex{2, 3}, p.Vertices())
	assert.Equal(t, 2, p.Len())
}

func TestShortestPath_Errors(t *testing.T) {
	g, err := New(4, []WeightedEdge{{A: 0, B: 1, Weight: 1}})
	require.NoError(t, err)

	_, err = g.ShortestPath(1, 1)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidArgument))
	assert.ErrorIs(t, err, apperror.ErrSameEndpoints)

	// index checks come before the equal-endpoints check
	_, err = g.ShortestPath(-1, -1)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidIndex))
	_, err = g.ShortestPath(4, 4)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidIndex))

	_, err = g.ShortestPath(0, 3)
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))

	_, err = g.ShortestPath(0, 4)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidIndex))

	_, err = g.ShortestPath(-1, 0)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidIndex))
}

func TestShortestDistances_ZeroWeightCycle(t *testing.T) {
	g := zeroCycleGraph(t)

	done := make(chan ResultMap, 1)
	go func() {
		result, err := g.ShortestDistances(1)
		assert.NoError(t, err)
		done <- result
	}()

	var result ResultMap
	select {
	case result = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("traversal over zero-weight cycle did not terminate")
	}

	assert.Equal(t, ResultMap{
		0: {Previous: 1, Weight: 0},
		2: {Previous: 1, Weight: 0},
		3: {Previous: 2, Weight: 0},
		4: {Previous: 0, Weight: 7},
	}, result)

	// Predecessor chain from 4 reaches the source.
	v, hops := 4, 0
	for v != 1 {
		v = result[v].Previous
		hops++
		require.Less(t, hops, 5)
	}

	p, err := g.ShortestPath(1, 4)
	require.NoError(t, err)
	assert.Equal(t, []Step{{Vertex: 0, Weight: 0}, {Vertex: 4, Weight: 7}}, p.Steps)
}

func TestShortestDistances_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 13))
	edges := randomEdges(rng, 40, 120, 3)
	g, err := New(40, edges)
	require.NoError(t, err)

	for s := 0; s < 40; s++ {
		first, err := g.ShortestDistances(s)
		require.NoError(t, err)
		second, err := g.ShortestDistances(s)
		require.NoError(t, err)
		assert.Equal(t, first, second, "source %d", s)
	}
}

func TestShortestDistancesTo_MatchesFullRun(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	edges := randomEdges(rng, 30, 80, 4)
	g, err := New(30, edges)
	require.NoError(t, err)

	for s := 0; s < 30; s++ {
		full, err := g.ShortestDistances(s)
		require.NoError(t, err)
		for target := 0; target < 30; target++ {
			partial, err := g.ShortestDistancesTo(s, target)
			require.NoError(t, err)

			want, reachable := full[target]
			got, present := partial[target]
			if target == s {
				assert.False(t, present)
				continue
			}
			assert.Equal(t, reachable, present, "s=%d t=%d", s, target)
			if present {
				assert.Equal(t, want, got, "s=%d t=%d", s, target)
				assert.LessOrEqual(t, len(partial), len(full))
			}
		}
	}
}

func TestShortestDistances_MatchesGonumBellmanFord(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 42))

	for round := 0; round < 10; round++ {
		n := 5 + rng.IntN(40)
		edges := randomEdges(rng, n, n*2, 5)
		g, err := New(n, edges)
		require.NoError(t, err)

		ref := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
		for i := 0; i < n; i++ {
			ref.AddNode(simple.Node(i))
		}
		for pair, w := range lastWins(edges) {
			ref.SetWeightedEdge(ref.NewWeightedEdge(simple.Node(pair[0]), simple.Node(pair[1]), float64(w)))
		}

		for s := 0; s < n; s++ {
			result, err := g.ShortestDistances(s)
			require.NoError(t, err)

			shortest, ok := path.BellmanFordFrom(simple.Node(s), ref)
			require.True(t, ok)

			for v := 0; v < n; v++ {
				if v == s {
					continue
				}
				want := shortest.WeightTo(int64(v))
				e, present := result[v]
				if math.IsInf(want, 1) {
					assert.False(t, present, "round %d s=%d v=%d", round, s, v)
					continue
				}
				require.True(t, present, "round %d s=%d v=%d", round, s, v)
				assert.Equal(t, want, float64(e.Weight), "round %d s=%d v=%d", round, s, v)
			}
		}
	}
}

func TestShortestPath_ConsistentWithDistances(t *testing.T) {
	rng := rand.New(rand.NewPCG(8, 9))
	edges := randomEdges(rng, 25, 60, 6)
	g, err := New(25, edges)
	require.NoError(t, err)

	for a := 0; a < 25; a++ {
		full, err := g.ShortestDistances(a)
		require.NoError(t, err)
		for b := 0; b < 25; b++ {
			if a == b {
				continue
			}
			p, err := g.ShortestPath(a, b)
			if _, ok := full[b]; !ok {
				assert.True(t, apperror.Is(err, apperror.CodeNotFound))
				continue
			}
			require.NoError(t, err)
			require.NotEmpty(t, p.Steps)
			assert.Equal(t, b, p.Steps[len(p.Steps)-1].Vertex)

			var sum Weight
			prev := a
			for _, s := range p.Steps {
				w, ok := g.EdgeWeight(prev, s.Vertex)
				require.True(t, ok, "hop %d->%d is not a skeleton edge", prev, s.Vertex)
				assert.Equal(t, w, s.Weight)
				sum += s.Weight
				prev = s.Vertex
			}
			assert.Equal(t, p.Weight, sum)
			assert.Equal(t, full[b].Weight, p.Weight)
		}
	}
}

func TestInvalidatePreviousRun_Wrap(t *testing.T) {
	g := concreteGraph(t)
	fresh := concreteGraph(t)

	// Leave stamps equal to 1 behind, the value the clock restarts at.
	_, err := g.ShortestDistances(0)
	require.NoError(t, err)

	g.forceTimestamp(math.MaxUint64)

	got, err := g.ShortestDistances(0)
	require.NoError(t, err)
	want, err := fresh.ShortestDistances(0)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, uint64(1), g.activeTimestamp)

	p, err := g.ShortestPath(0, 3)
	require.NoError(t, err)
	assert.Equal(t, Weight(6), p.Weight)
}

func TestInvalidatePreviousRun_Monotonic(t *testing.T) {
	g := concreteGraph(t)

	assert.Equal(t, uint64(1), g.InvalidatePreviousRun())
	assert.Equal(t, uint64(2), g.InvalidatePreviousRun())

	g.forceTimestamp(math.MaxUint64 - 1)
	assert.Equal(t, uint64(math.MaxUint64), g.InvalidatePreviousRun())
	assert.Equal(t, uint64(1), g.InvalidatePreviousRun())
	for i := range g.vertices {
		assert.Zero(t, g.vertices[i].timestamp)
	}
}

func TestTraverse_InvariantFault(t *testing.T) {
	g := concreteGraph(t)

	// A stamp from the future makes the source look finalized on first pop.
	g.vertices[0].timestamp = g.activeTimestamp + 1

	_, err := g.ShortestDistances(0)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeInternal))
	assert.True(t, apperror.IsCritical(err))
}

func TestShortestDistancesContext(t *testing.T) {
	g := concreteGraph(t)

	ctx, cancel := context.WithCancel(context.Background())
	result, err := g.ShortestDistancesContext(ctx, 0, -1)
	require.NoError(t, err)
	assert.Len(t, result, 3)

	result, err = g.ShortestDistancesContext(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, Entry{Previous: 0, Weight: 5}, result[2])

	cancel()
	_, err = g.ShortestDistancesContext(ctx, 0, -1)
	assert.True(t, apperror.Is(err, apperror.CodeCanceled))
}

func TestClone_Independent(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 22))
	edges := randomEdges(rng, 60, 180, 5)
	g, err := New(60, edges)
	require.NoError(t, err)

	want := make([]ResultMap, 60)
	for s := range want {
		want[s], err = g.ShortestDistances(s)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		c := g.Clone()
		wg.Add(1)
		go func(c *CompleteGraph) {
			defer wg.Done()
			for s := 0; s < 60; s++ {
				got, err := c.ShortestDistances(s)
				assert.NoError(t, err)
				assert.Equal(t, want[s], got)
			}
		}(c)
	}
	wg.Wait()
}

type countingRecorder struct {
	traversals int
	earlyExits int
	wraps      int
	paths      map[string]int
}

func (r *countingRecorder) RecordTraversal(_ int, earlyExit bool, _ time.Duration) {
	r.traversals++
	if earlyExit {
		r.earlyExits++
	}
}

func (r *countingRecorder) RecordPathQuery(status string) {
	if r.paths == nil {
		r.paths = make(map[string]int)
	}
	r.paths[status]++
}

func (r *countingRecorder) RecordClockWrap() { r.wraps++ }

func TestRecorder(t *testing.T) {
	rec := &countingRecorder{}
	g, err := New(4, []WeightedEdge{
		{A: 0, B: 1, Weight: 10},
		{A: 1, B: 2, Weight: 10},
		{A: 0, B: 2, Weight: 5},
	}, WithRecorder(rec), WithLogger(nil))
	require.NoError(t, err)

	_, _ = g.ShortestDistances(0)
	_, _ = g.ShortestPath(0, 2)
	_, _ = g.ShortestPath(0, 3)
	_, _ = g.ShortestPath(1, 1)
	g.forceTimestamp(math.MaxUint64)
	_, _ = g.ShortestDistances(0)

	assert.Equal(t, 4, rec.traversals)
	assert.Equal(t, 1, rec.earlyExits)
	assert.Equal(t, 1, rec.wraps)
	assert.Equal(t, 1, rec.paths[PathStatusFound])
	assert.Equal(t, 1, rec.paths[PathStatusNotFound])
	assert.Equal(t, 1, rec.paths[PathStatusInvalid])
}

func TestFrontierPool_Reuse(t *testing.T) {
	f := acquireFrontier()
	f.Push(3, Candidate{Weight: 1, Previous: 0})
	releaseFrontier(f)
	releaseFrontier(nil)

	f2 := acquireFrontier()
	defer releaseFrontier(f2)
	assert.Equal(t, 0, f2.Len())
}

func BenchmarkShortestDistances(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 1))
	const n = 2000
	g, err := New(n, randomEdges(rng, n, n*3, 100))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := g.ShortestDistances(i % n); err != nil {
			b.Fatal(err)
		}
	}
}
