package frontier

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intLess(a, b int) bool { return a < b }

func TestFrontier_PopOrder(t *testing.T) {
	f := New[string](intLess, 4)

	f.Push("c", 30)
	f.Push("a", 10)
	f.Push("d", 40)
	f.Push("b", 20)

	require.Equal(t, 4, f.Len())

	var got []string
	for {
		key, _, ok := f.Pop()
		if !ok {
			break
		}
		got = append(got, key)
	}

	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
	assert.Equal(t, 0, f.Len())
}

func TestFrontier_PopEmpty(t *testing.T) {
	f := New[int](intLess, 0)

	key, priority, ok := f.Pop()
	assert.False(t, ok)
	assert.Zero(t, key)
	assert.Zero(t, priority)

	_, _, ok = f.Peek()
	assert.False(t, ok)
}

func TestFrontier_Priority(t *testing.T) {
	f := New[int](intLess, 2)
	f.Push(7, 3)

	p, ok := f.Priority(7)
	require.True(t, ok)
	assert.Equal(t, 3, p)

	_, ok = f.Priority(8)
	assert.False(t, ok)

	// Lookup does not remove
	assert.True(t, f.Contains(7))
	assert.Equal(t, 1, f.Len())
}

func TestFrontier_UpdateDecrease(t *testing.T) {
	f := New[int](intLess, 3)
	f.Push(1, 10)
	f.Push(2, 20)
	f.Push(3, 30)

	require.True(t, f.Update(3, 5))

	key, priority, ok := f.Pop()
	require.True(t, ok)
	assert.Equal(t, 3, key)
	assert.Equal(t, 5, priority)
}

func TestFrontier_UpdateIncrease(t *testing.T) {
	f := New[int](intLess, 3)
	f.Push(1, 10)
	f.Push(2, 20)
	f.Push(3, 30)

	require.True(t, f.Update(1, 25))

	order := make([]int, 0, 3)
	for f.Len() > 0 {
		key, _, _ := f.Pop()
		order = append(order, key)
	}
	assert.Equal(t, []int{2, 1, 3}, order)
}

func TestFrontier_UpdateMissing(t *testing.T) {
	f := New[int](intLess, 1)
	assert.False(t, f.Update(42, 1))

	f.Push(42, 1)
	f.Pop()
	assert.False(t, f.Update(42, 1), "popped key is no longer pending")
}

func TestFrontier_DuplicatePushPanics(t *testing.T) {
	f := New[int](intLess, 1)
	f.Push(1, 1)

	assert.Panics(t, func() { f.Push(1, 2) })
}

func TestFrontier_PushAfterPop(t *testing.T) {
	f := New[int](intLess, 1)
	f.Push(1, 1)
	f.Pop()

	assert.NotPanics(t, func() { f.Push(1, 5) })
	p, ok := f.Priority(1)
	require.True(t, ok)
	assert.Equal(t, 5, p)
}

func TestFrontier_Reset(t *testing.T) {
	f := New[int](intLess, 8)
	for i := 0; i < 8; i++ {
		f.Push(i, i)
	}

	f.Reset()

	assert.Equal(t, 0, f.Len())
	assert.False(t, f.Contains(3))
	_, _, ok := f.Pop()
	assert.False(t, ok)

	// Reusable after reset
	f.Push(3, 1)
	assert.True(t, f.Contains(3))
}

func TestFrontier_StructPriority(t *testing.T) {
	type cand struct {
		weight int64
		prev   int
	}
	f := New[int](func(a, b cand) bool { return a.weight < b.weight }, 2)
	f.Push(1, cand{weight: 4, prev: 0})
	f.Push(2, cand{weight: 2, prev: 0})

	f.Update(1, cand{weight: 1, prev: 2})

	key, p, ok := f.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, key)
	assert.Equal(t, cand{weight: 1, prev: 2}, p)
}

// TestFrontier_RandomizedAgainstSort drives random pushes and updates and checks
// that pops come out sorted and the index stays consistent.
func TestFrontier_RandomizedAgainstSort(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for round := 0; round < 20; round++ {
		f := New[int](intLess, 0)
		want := make(map[int]int)

		for i := 0; i < 200; i++ {
			key := rng.IntN(100)
			priority := rng.IntN(1000)
			if f.Contains(key) {
				require.True(t, f.Update(key, priority))
			} else {
				f.Push(key, priority)
			}
			want[key] = priority
		}
		require.Equal(t, len(want), f.Len())

		expected := make([]int, 0, len(want))
		for _, p := range want {
			expected = append(expected, p)
		}
		sort.Ints(expected)

		got := make([]int, 0, len(want))
		for {
			key, p, ok := f.Pop()
			if !ok {
				break
			}
			assert.Equal(t, want[key], p)
			got = append(got, p)
		}
		assert.Equal(t, expected, got)
	}
}

func BenchmarkFrontier_PushPop(b *testing.B) {
	rng := rand.New(rand.NewPCG(7, 7))
	priorities := make([]int, 1024)
	for i := range priorities {
		priorities[i] = rng.IntN(1 << 20)
	}
	f := New[int](intLess, len(priorities))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for k, p := range priorities {
			f.Push(k, p)
		}
		for f.Len() > 0 {
			f.Pop()
		}
	}
}
