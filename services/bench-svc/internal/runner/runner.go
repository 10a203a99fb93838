// Package runner выполняет прогоны bench-svc: бенчмарк замыкания на
// сгенерированных синдромах, запись и воспроизведение файла синдромов и
// сверку движка с Bellman-Ford.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"qecgraph/pkg/apperror"
	"qecgraph/pkg/cache"
	"qecgraph/pkg/closure"
	"qecgraph/pkg/config"
	"qecgraph/pkg/domain"
	"qecgraph/pkg/logger"
	"qecgraph/pkg/metrics"
	"qecgraph/pkg/replay"
	"qecgraph/pkg/telemetry"
	"qecgraph/services/bench-svc/internal/report"
)

// Источники сценариев для метрик
const (
	sourceGenerated = "generated"
	sourceReplayed  = "replayed"
)

// Runner выполняет один прогон
type Runner struct {
	bench    config.BenchConfig
	cacheCfg config.CacheConfig
	log      *slog.Logger
	metrics  *metrics.Metrics
	runID    string
}

// Option настраивает Runner
type Option func(*Runner)

// WithLogger задаёт логгер
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMetrics включает запись метрик
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithRunID задаёт идентификатор прогона вместо случайного
func WithRunID(id string) Option {
	return func(r *Runner) {
		r.runID = id
	}
}

// New создаёт Runner по конфигурации
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		bench:    cfg.Bench,
		cacheCfg: cfg.Cache,
		log:      logger.Log,
		runID:    uuid.NewString(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("run_id", r.runID, "mode", r.bench.Mode)
	return r
}

// RunID возвращает идентификатор прогона
func (r *Runner) RunID() string { return r.runID }

// Result итог прогона
type Result struct {
	Header  report.Header
	Entries []report.Entry
	Summary report.Summary
	// Patterns число записанных или прочитанных сценариев
	Patterns int
}

// Run выполняет прогон в режиме bench.mode
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if r.bench.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.bench.Timeout)
		defer cancel()
	}

	var res *Result
	attrs := telemetry.CodeAttributes(r.bench.Code, r.bench.D, r.bench.P)
	err := telemetry.Traced(ctx, "bench."+r.bench.Mode, attrs, func(ctx context.Context) error {
		var err error
		res, err = r.dispatch(ctx)
		return err
	})
	if err != nil {
		r.log.Error("run failed", "error", err, "code", apperror.Code(err))
		return nil, err
	}
	return res, nil
}

func (r *Runner) dispatch(ctx context.Context) (*Result, error) {
	switch r.bench.Mode {
	case config.ModeBenchmark:
		return r.benchmark(ctx)
	case config.ModeGenerate:
		return r.generate(ctx)
	case config.ModeReplay:
		return r.replay(ctx)
	case config.ModeVerify:
		return r.verify(ctx)
	default:
		return nil, apperror.Newf(apperror.CodeInvalidArgument, "unknown mode %q", r.bench.Mode).
			WithField("bench.mode")
	}
}

func (r *Runner) header(in *domain.Initializer) report.Header {
	workers := r.bench.Workers
	if workers < 1 {
		workers = 1
	}
	return report.Header{
		RunID:             r.runID,
		Mode:              r.bench.Mode,
		Code:              r.bench.Code,
		D:                 r.bench.D,
		NoisyMeasurements: r.bench.NoisyMeasurements,
		P:                 r.bench.P,
		Pe:                r.bench.Pe,
		Seed:              r.bench.Seed,
		Rounds:            r.bench.Rounds,
		Workers:           workers,
		VertexNum:         in.VertexNum,
		EdgeNum:           len(in.WeightedEdges),
		CacheEnabled:      r.cacheCfg.Enabled,
		StartedAt:         time.Now().UTC(),
	}
}

func (r *Runner) engine(ctx context.Context, in *domain.Initializer) (*closure.CompleteGraph, error) {
	opts := []closure.Option{closure.WithLogger(r.log)}
	if r.metrics != nil {
		opts = append(opts, closure.WithRecorder(r.metrics))
		r.metrics.SetGraphSize(in.VertexNum, len(in.WeightedEdges))
	}
	g, err := in.Build(opts...)
	if err != nil {
		return nil, err
	}
	stats := domain.CalculateGraphStatistics(in)
	r.log.Info("graph built",
		"vertices", stats.VertexNum,
		"edges", stats.EdgeCount,
		"virtual", stats.VirtualCount,
		"components", stats.Components,
		"min_weight", stats.MinWeight,
		"max_weight", stats.MaxWeight,
		"max_degree", stats.MaxDegree)
	telemetry.SetAttributes(ctx, telemetry.GraphAttributes(stats.VertexNum, stats.EdgeCount, stats.VirtualCount)...)
	return g, nil
}

// pathFunc возвращает функцию путей через кэш, если он включён.
// Возвращённая функция закрытия освобождает кэш.
func (r *Runner) pathFunc(in *domain.Initializer) (PathFunc, func(), error) {
	if !r.cacheCfg.Enabled {
		return Direct, func() {}, nil
	}
	c, err := cache.New(cache.FromConfig(&r.cacheCfg))
	if err != nil {
		return nil, nil, err
	}
	pc := cache.NewPathCache(c, in, r.cacheCfg.DefaultTTL)
	if r.metrics != nil {
		pc.WithRecorder(r.metrics)
	}
	r.log.Debug("path cache enabled", "graph_hash", pc.GraphHash(), "ttl", r.cacheCfg.DefaultTTL)
	return pc.ShortestPath, func() { r.closeCache(c, pc) }, nil
}

// closeCache логирует статистику кэша, удаляет пути графа и закрывает кэш
func (r *Runner) closeCache(c cache.Cache, pc *cache.PathCache) {
	ctx := context.Background()
	if stats, err := c.Stats(ctx); err != nil {
		r.log.Warn("failed to read path cache stats", "error", err)
	} else {
		r.log.Info("path cache stats",
			"hits", stats.Hits,
			"misses", stats.Misses,
			"hit_rate", stats.HitRate,
			"evictions", stats.Evictions,
			"keys", stats.TotalKeys,
			"memory_bytes", stats.MemoryBytes)
	}
	if n, err := pc.Invalidate(ctx); err != nil {
		r.log.Warn("failed to invalidate path cache", "error", err)
	} else {
		r.log.Debug("path cache invalidated", "graph_hash", pc.GraphHash(), "paths", n)
	}
	if err := c.Close(); err != nil {
		r.log.Warn("failed to close path cache", "error", err)
	}
}

// round строит замыкание для одного сценария
func (r *Runner) round(ctx context.Context, g *closure.CompleteGraph, idx int, pattern domain.SyndromePattern,
	virtual *roaring.Bitmap, path PathFunc) (report.Entry, *Closure, error) {
	var (
		entry report.Entry
		c     *Closure
	)
	n := len(pattern.SyndromeVertices)
	attrs := telemetry.RoundAttributes(idx, n, n*(n-1)/2)
	err := telemetry.Traced(ctx, "bench.round", attrs, func(ctx context.Context) error {
		start := time.Now()
		var err error
		c, err = ComputeClosure(ctx, g, pattern, virtual, path)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)
		entry = report.Entry{
			Round:        idx,
			SyndromeNum:  c.SyndromeNum,
			DecodingTime: elapsed.Seconds(),
			Paths:        c.Paths(),
			Unreachable:  c.Unreachable,
			Finalized:    c.Finalized,
		}
		if r.metrics != nil {
			r.metrics.RecordRound(elapsed)
		}
		return nil
	})
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordRoundError(string(apperror.Code(err)))
		}
		return report.Entry{}, nil, err
	}
	return entry, c, nil
}

func (r *Runner) recordPattern(source string, p domain.SyndromePattern) {
	if r.metrics != nil {
		r.metrics.RecordPattern(source, len(p.SyndromeVertices))
	}
}

func (r *Runner) track() func() {
	if r.metrics == nil {
		return func() {}
	}
	return metrics.NewWorkerTracker(r.metrics.ActiveWorkers).Track()
}

// benchmark генерирует bench.rounds сценариев и строит замыкание для каждого.
// Сценарии обрабатываются пакетами по bench.workers на клонах движка;
// записи сохраняются по индексу раунда.
func (r *Runner) benchmark(ctx context.Context) (*Result, error) {
	code, err := BuildCode(r.bench)
	if err != nil {
		return nil, err
	}
	in := code.Base().Initializer()
	g, err := r.engine(ctx, in)
	if err != nil {
		return nil, err
	}
	path, closeCache, err := r.pathFunc(in)
	if err != nil {
		return nil, err
	}
	defer closeCache()

	header := r.header(in)
	sink, err := r.openProfile(header)
	if err != nil {
		return nil, err
	}

	workers := header.Workers
	engines := make([]*closure.CompleteGraph, workers)
	engines[0] = g
	for i := 1; i < workers; i++ {
		engines[i] = g.Clone()
	}
	virtual := VirtualSet(in)

	r.log.Info("benchmark started",
		"code", r.bench.Code, "d", r.bench.D, "vertices", in.VertexNum,
		"rounds", r.bench.Rounds, "workers", workers)

	entries := make([]report.Entry, 0, r.bench.Rounds)
	for start := 0; start < r.bench.Rounds; start += workers {
		n := min(workers, r.bench.Rounds-start)

		patterns := make([]domain.SyndromePattern, n)
		for i := range patterns {
			p, err := code.GenerateRandomErrors(r.bench.Seed + uint64(start+i))
			if err != nil {
				sink.abort()
				return nil, err
			}
			r.recordPattern(sourceGenerated, p)
			patterns[i] = p
		}

		batch := make([]report.Entry, n)
		wp := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(workers)
		for i := range patterns {
			wp.Go(func(ctx context.Context) error {
				defer r.track()()
				e, _, err := r.round(ctx, engines[i], start+i, patterns[i], virtual, path)
				batch[i] = e
				return err
			})
		}
		if err := wp.Wait(); err != nil {
			sink.abort()
			return nil, err
		}

		for _, e := range batch {
			if err := sink.write(e); err != nil {
				sink.abort()
				return nil, err
			}
		}
		entries = append(entries, batch...)
	}

	return r.finish(header, sink, entries, len(entries))
}

// generate записывает bench.rounds сценариев в файл воспроизведения
func (r *Runner) generate(ctx context.Context) (*Result, error) {
	code, err := BuildCode(r.bench)
	if err != nil {
		return nil, err
	}
	g := code.Base()
	in := g.Initializer()

	f, err := os.Create(r.bench.ReplayPath)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidArgument, "create replay file").
			WithField("bench.replay_path")
	}
	defer f.Close()

	comment := fmt.Sprintf("code=%s d=%d noisy_measurements=%d p=%g pe=%g seed=%d",
		r.bench.Code, r.bench.D, r.bench.NoisyMeasurements, r.bench.P, r.bench.Pe, r.bench.Seed)
	w, err := replay.NewWriter(f, in, g.Positions(), comment)
	if err != nil {
		return nil, err
	}

	for i := 0; i < r.bench.Rounds; i++ {
		if err := ctx.Err(); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeCanceled, "generation interrupted").
				WithDetails("written", w.Count())
		}
		p, err := code.GenerateRandomErrors(r.bench.Seed + uint64(i))
		if err != nil {
			return nil, err
		}
		if err := w.Write(p); err != nil {
			return nil, err
		}
		r.recordPattern(sourceGenerated, p)
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "close replay file")
	}

	r.log.Info("replay file written", "path", r.bench.ReplayPath, "patterns", w.Count())
	return &Result{Header: r.header(in), Patterns: w.Count()}, nil
}

// replay читает файл сценариев и строит замыкание каждого сценария дважды
// на одном движке. Расхождение результатов это ошибка ALGORITHM_MISMATCH.
func (r *Runner) replay(ctx context.Context) (*Result, error) {
	rd, err := replay.Open(r.bench.ReplayPath)
	if err != nil {
		return nil, err
	}
	in := rd.Initializer()
	g, err := r.engine(ctx, in)
	if err != nil {
		return nil, err
	}

	header := r.header(in)
	rounds := rd.Remaining()
	if r.bench.Rounds > 0 && r.bench.Rounds < rounds {
		rounds = r.bench.Rounds
	} else if r.bench.Rounds > rounds {
		r.log.Warn("replay file holds fewer patterns than requested",
			"requested", r.bench.Rounds, "available", rounds)
	}
	header.Rounds = rounds
	header.Workers = 1
	header.CacheEnabled = false

	sink, err := r.openProfile(header)
	if err != nil {
		return nil, err
	}
	virtual := VirtualSet(in)

	entries := make([]report.Entry, 0, rounds)
	for i := 0; i < rounds; i++ {
		p, err := rd.GenerateRandomErrors(0)
		if err != nil {
			sink.abort()
			return nil, err
		}
		r.recordPattern(sourceReplayed, p)

		entry, first, err := r.round(ctx, g, i, p, virtual, Direct)
		if err != nil {
			sink.abort()
			return nil, err
		}
		second, err := ComputeClosure(ctx, g, p, virtual, Direct)
		if err != nil {
			sink.abort()
			return nil, err
		}
		if !first.Equal(second) {
			sink.abort()
			return nil, apperror.Newf(apperror.CodeAlgorithmMismatch, "pattern %d: repeated closure differs", i).
				WithDetails("round", i)
		}
		if err := sink.write(entry); err != nil {
			sink.abort()
			return nil, err
		}
		entries = append(entries, entry)
	}

	return r.finish(header, sink, entries, rounds)
}

// verify сверяет движок с Bellman-Ford из каждой вершины
func (r *Runner) verify(ctx context.Context) (*Result, error) {
	code, err := BuildCode(r.bench)
	if err != nil {
		return nil, err
	}
	in := code.Base().Initializer()
	g, err := r.engine(ctx, in)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := closure.VerifyAll(ctx, g); err != nil {
		return nil, err
	}
	if err := verifyReachability(ctx, g, in); err != nil {
		return nil, err
	}
	r.log.Info("engine agrees with reference", "vertices", in.VertexNum, "duration", time.Since(start))

	header := r.header(in)
	header.Rounds = 0
	return &Result{Header: header}, nil
}

// verifyReachability сверяет множество вершин, найденных обходом, с
// компонентой связности источника
func verifyReachability(ctx context.Context, g *closure.CompleteGraph, in *domain.Initializer) error {
	for s := 0; s < in.VertexNum; s++ {
		if err := ctx.Err(); err != nil {
			return apperror.Wrap(err, apperror.CodeCanceled, "verification interrupted").
				WithDetails("source", s)
		}
		dist, err := g.ShortestDistances(s)
		if err != nil {
			return err
		}
		want := domain.Reachable(in, s)
		for v := range want {
			if _, ok := dist[v]; !ok && v != s {
				return apperror.Newf(apperror.CodeAlgorithmMismatch, "vertex %d reachable from %d but not finalized", v, s).
					WithDetails("source", s)
			}
		}
		if len(dist) != len(want)-1 {
			return apperror.Newf(apperror.CodeAlgorithmMismatch, "source %d finalized %d vertices, component has %d",
				s, len(dist), len(want)-1).WithDetails("source", s)
		}
	}
	return nil
}

func (r *Runner) finish(header report.Header, sink *profileSink, entries []report.Entry, patterns int) (*Result, error) {
	if err := sink.close(); err != nil {
		return nil, err
	}
	res := &Result{
		Header:   header,
		Entries:  entries,
		Summary:  report.Summarize(entries),
		Patterns: patterns,
	}
	if r.bench.ReportPath != "" {
		if err := report.SaveXLSX(r.bench.ReportPath, header, res.Summary, entries); err != nil {
			return nil, err
		}
	}
	r.log.Info("run finished",
		"rounds", res.Summary.Rounds,
		"mean_time", res.Summary.MeanTime,
		"p99_time", res.Summary.P99Time,
		"paths", res.Summary.Paths)
	return res, nil
}

// profileSink пишет профиль, если задан bench.profile_path
type profileSink struct {
	pw *report.ProfileWriter
}

func (r *Runner) openProfile(h report.Header) (*profileSink, error) {
	if r.bench.ProfilePath == "" {
		return &profileSink{}, nil
	}
	pw, err := report.CreateProfile(r.bench.ProfilePath, h)
	if err != nil {
		return nil, err
	}
	return &profileSink{pw: pw}, nil
}

func (s *profileSink) write(e report.Entry) error {
	if s.pw == nil {
		return nil
	}
	return s.pw.Write(e)
}

func (s *profileSink) close() error {
	if s.pw == nil {
		return nil
	}
	return s.pw.Close()
}

// abort закрывает файл после ошибки прогона; частичный профиль остаётся
func (s *profileSink) abort() {
	if s.pw != nil {
		_ = s.pw.Close()
	}
}
