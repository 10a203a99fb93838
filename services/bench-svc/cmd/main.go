// Package main is the entry point for bench-svc.
//
// bench-svc drives the shortest-path closure engine over decoding graphs of
// common error-correcting codes. It samples syndrome patterns, builds the
// complete graph among syndrome vertices for each pattern and records how
// long that takes.
//
// # Modes
//
//	benchmark - generate bench.rounds patterns and time the closure of each
//	generate  - write bench.rounds patterns to a replay file
//	replay    - read a replay file and check the closure is reproducible
//	verify    - cross-check the engine against Bellman-Ford from every vertex
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                        cmd/main.go                          │
//	│  flags, config, logger, metrics server, tracing             │
//	├─────────────────────────────────────────────────────────────┤
//	│                      internal/runner                        │
//	│  code factory, per-worker engine clones, path cache         │
//	├─────────────────────────────────────────────────────────────┤
//	│                      internal/report                        │
//	│  JSON-lines profile, gonum statistics, XLSX summary         │
//	├─────────────────────────────────────────────────────────────┤
//	│              pkg/closure, pkg/example, pkg/replay           │
//	│  Dijkstra with early exit, topologies, replay files         │
//	└─────────────────────────────────────────────────────────────┘
//
// # Configuration
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Command line flags
//  2. Environment variables (prefix: QECGRAPH_)
//  3. Config files (config.yaml, config/config.yaml, /etc/qecgraph/config.yaml)
//  4. Default values
//
// Key options (environment variable format):
//
//	QECGRAPH_BENCH_MODE              - benchmark, generate, replay, verify
//	QECGRAPH_BENCH_CODE              - repetition, planar, phenomenological, circuit_level
//	QECGRAPH_BENCH_D                 - code distance, odd, >= 3
//	QECGRAPH_BENCH_NOISY_MEASUREMENTS - noisy measurement rounds
//	QECGRAPH_BENCH_P                 - edge error probability
//	QECGRAPH_BENCH_PE                - edge erasure probability
//	QECGRAPH_BENCH_ROUNDS            - number of patterns
//	QECGRAPH_BENCH_WORKERS           - generator replicas and engine clones
//	QECGRAPH_BENCH_PROFILE_PATH      - JSON-lines profile output
//	QECGRAPH_BENCH_REPORT_PATH       - XLSX summary output
//	QECGRAPH_CACHE_ENABLED           - reuse paths through the in-memory cache
//	QECGRAPH_METRICS_ENABLED         - serve Prometheus metrics while running
//	QECGRAPH_TRACING_ENABLED         - export spans over OTLP gRPC
//
// On failure the exit status is 64 plus the gRPC code of the error
// (67 invalid argument, 69 not found, 73 algorithm mismatch, 77 internal).
//
// # Examples
//
//	bench-svc --mode generate --code planar --d 7 --rounds 1000 --replay-path planar7.txt
//	bench-svc --mode replay --replay-path planar7.txt --profile-path planar7.jsonl
//	bench-svc --mode benchmark --code circuit_level --d 5 --workers 4 --report-path out.xlsx
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"qecgraph/pkg/apperror"
	"qecgraph/pkg/config"
	"qecgraph/pkg/logger"
	"qecgraph/pkg/metrics"
	"qecgraph/pkg/telemetry"
	"qecgraph/services/bench-svc/internal/runner"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		logger.Error("bench failed",
			"error", err,
			"code", apperror.Code(err),
			"critical", apperror.IsCritical(err))
		os.Exit(exitStatus(err))
	}
}

// exitStatus возвращает 64 + gRPC код ошибки, как grpcurl
func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	return 64 + int(apperror.GRPCCode(err))
}

func run(args []string) error {
	// =========================================================================
	// Configuration Loading
	// =========================================================================
	overrides, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := config.NewLoader(config.WithOverrides(overrides)).Load()
	if err != nil {
		return err
	}

	// =========================================================================
	// Logger Initialization
	// =========================================================================
	closer := logger.InitWithConfig(logger.FromConfig(cfg.Log))
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// =========================================================================
	// Telemetry Initialization (OpenTelemetry)
	// =========================================================================
	if cfg.Tracing.Enabled {
		tp, err := telemetry.Init(ctx, telemetry.FromConfig(cfg.Tracing, cfg.App))
		if err != nil {
			logger.Log.Warn("Failed to init telemetry", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					logger.Log.Warn("Failed to shutdown telemetry", "error", err)
				}
			}()
			logger.Log.Info("Telemetry initialized", "endpoint", cfg.Tracing.Endpoint)
		}
	}

	// =========================================================================
	// Metrics Initialization (Prometheus)
	// =========================================================================
	var opts []runner.Option
	if cfg.Metrics.Enabled {
		m := metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
		m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)
		if err := m.EnableRuntimeCollector(cfg.Metrics.Namespace, cfg.Metrics.Subsystem); err != nil {
			logger.Log.Warn("Failed to register runtime collector", "error", err)
		}
		opts = append(opts, runner.WithMetrics(m))

		srv := metrics.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, prometheus.DefaultGatherer)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Log.Info("Metrics server started", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
	}

	// =========================================================================
	// Run
	// =========================================================================
	r := runner.New(cfg, opts...)
	logger.Info("Starting bench run",
		"run_id", r.RunID(),
		"mode", cfg.Bench.Mode,
		"code", cfg.Bench.Code,
		"d", cfg.Bench.D,
		"version", cfg.App.Version,
		"cache_enabled", cfg.Cache.Enabled,
	)

	res, err := r.Run(ctx)
	if err != nil {
		return err
	}

	s := res.Summary
	switch cfg.Bench.Mode {
	case config.ModeBenchmark, config.ModeReplay:
		fmt.Printf("rounds=%d mean=%.6fs stddev=%.6fs p99=%.6fs per_syndrome=%.6fs paths=%d unreachable=%d\n",
			s.Rounds, s.MeanTime, s.StdDevTime, s.P99Time, s.TimePerDefect, s.Paths, s.Unreachable)
	case config.ModeGenerate:
		fmt.Printf("patterns=%d path=%s\n", res.Patterns, cfg.Bench.ReplayPath)
	case config.ModeVerify:
		fmt.Printf("verified vertices=%d edges=%d\n", res.Header.VertexNum, res.Header.EdgeNum)
	}
	return nil
}

// parseFlags возвращает только явно заданные флаги в виде ключей koanf
func parseFlags(args []string) (map[string]any, error) {
	fs := pflag.NewFlagSet("bench-svc", pflag.ContinueOnError)

	fs.String("mode", config.ModeBenchmark, "benchmark, generate, replay, verify")
	fs.String("code", config.CodePhenomenological, "repetition, planar, phenomenological, circuit_level")
	fs.Int("d", 5, "code distance")
	fs.Int("noisy-measurements", 5, "noisy measurement rounds")
	fs.Float64("p", 0.005, "edge error probability")
	fs.Float64("pe", 0, "edge erasure probability")
	fs.Int64("max-half-weight", 500, "maximum half weight of an edge")
	fs.Int("rounds", 1000, "number of syndrome patterns")
	fs.Uint64("seed", 0, "base seed")
	fs.Int("workers", 1, "generator replicas and engine clones")
	fs.Duration("timeout", 0, "abort the run after this long, 0 disables")
	fs.String("replay-path", "", "replay file for generate and replay")
	fs.String("profile-path", "", "JSON-lines profile output")
	fs.String("report-path", "", "XLSX summary output")
	fs.Bool("cache", false, "reuse shortest paths through the in-memory cache")
	fs.Bool("metrics", false, "serve Prometheus metrics")
	fs.String("log-level", "info", "debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidArgument, "parse flags")
	}

	keys := map[string]string{
		"mode":               "bench.mode",
		"code":               "bench.code",
		"d":                  "bench.d",
		"noisy-measurements": "bench.noisy_measurements",
		"p":                  "bench.p",
		"pe":                 "bench.pe",
		"max-half-weight":    "bench.max_half_weight",
		"rounds":             "bench.rounds",
		"seed":               "bench.seed",
		"workers":            "bench.workers",
		"timeout":            "bench.timeout",
		"replay-path":        "bench.replay_path",
		"profile-path":       "bench.profile_path",
		"report-path":        "bench.report_path",
		"cache":              "cache.enabled",
		"metrics":            "metrics.enabled",
		"log-level":          "log.level",
	}

	overrides := make(map[string]any)
	fs.Visit(func(f *pflag.Flag) {
		if key, ok := keys[f.Name]; ok {
			overrides[key] = f.Value.String()
		}
	})
	return overrides, nil
}
