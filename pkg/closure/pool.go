package closure

import (
	"sync"

	"qecgraph/pkg/frontier"
)

// =============================================================================
// Frontier Pool
// =============================================================================

// frontierPool reuses frontiers across traversals to keep the heap and key
// index allocations off the hot path. It is safe for concurrent use, so clones
// driven from different goroutines share it.
var frontierPool = sync.Pool{
	New: func() any {
		return frontier.New[VertexIndex](candidateLess, 64)
	},
}

// acquireFrontier obtains an empty frontier from the pool.
// Call releaseFrontier() when done.
func acquireFrontier() *frontier.Frontier[VertexIndex, Candidate] {
	return frontierPool.Get().(*frontier.Frontier[VertexIndex, Candidate])
}

// releaseFrontier returns f to the pool after clearing it.
// It is safe to pass nil.
func releaseFrontier(f *frontier.Frontier[VertexIndex, Candidate]) {
	if f == nil {
		return
	}
	f.Reset()
	frontierPool.Put(f)
}
