package example

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"qecgraph/pkg/apperror"
	"qecgraph/pkg/domain"
)

// seedStride separates the seeds of consecutive replicas.
const seedStride = 1_000_000_000

// Replica is a Code that can produce an independent deep copy of itself.
type Replica[C any] interface {
	Code
	Clone() C
}

// Parallel generates syndrome patterns in batches, one pattern per replica.
//
// Each replica is written only by the worker that owns it during a batch, and
// results are stored by replica index, so a batch depends only on the seed.
// Parallel itself is not safe for concurrent use.
type Parallel[C Replica[C]] struct {
	example  C
	replicas []C
	patterns []domain.SyndromePattern
	cursor   int
}

// NewParallel clones example into n replicas.
func NewParallel[C Replica[C]](example C, n int) (*Parallel[C], error) {
	if n < 1 {
		return nil, apperror.Newf(apperror.CodeInvalidArgument, "replica count must be positive, got %d", n).
			WithField("workers")
	}
	p := &Parallel[C]{
		example:  example,
		replicas: make([]C, n),
		patterns: make([]domain.SyndromePattern, n),
	}
	for i := range p.replicas {
		p.replicas[i] = example.Clone()
	}
	return p, nil
}

// Base returns the template code's graph.
func (p *Parallel[C]) Base() *Graph {
	return p.example.Base()
}

// Replicas returns the number of replicas.
func (p *Parallel[C]) Replicas() int {
	return len(p.replicas)
}

// GenerateRandomErrors implements Code.
func (p *Parallel[C]) GenerateRandomErrors(seed uint64) (domain.SyndromePattern, error) {
	return p.Generate(context.Background(), seed)
}

// Generate returns the next pattern of the current batch. When the cursor is
// at the start of a batch, every replica i first regenerates with seed
// seed + i*1e9. The cursor wraps after the last replica.
func (p *Parallel[C]) Generate(ctx context.Context, seed uint64) (domain.SyndromePattern, error) {
	if p.cursor == 0 {
		if err := p.generateBatch(ctx, seed); err != nil {
			return domain.SyndromePattern{}, err
		}
	}
	pattern := p.patterns[p.cursor]
	p.cursor = (p.cursor + 1) % len(p.replicas)
	return pattern, nil
}

func (p *Parallel[C]) generateBatch(ctx context.Context, seed uint64) error {
	wp := pool.New().WithMaxGoroutines(len(p.replicas)).WithContext(ctx).WithCancelOnError()
	for i := range p.replicas {
		wp.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pattern, err := p.replicas[i].GenerateRandomErrors(seed + uint64(i)*seedStride)
			if err != nil {
				return err
			}
			p.patterns[i] = pattern
			return nil
		})
	}
	if err := wp.Wait(); err != nil {
		if ctx.Err() != nil {
			return apperror.Wrap(err, apperror.CodeCanceled, "parallel generation interrupted")
		}
		return err
	}
	return nil
}
