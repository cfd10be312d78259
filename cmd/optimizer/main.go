package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"fleet-route-optimizer/internal/adapters/cache"
	"fleet-route-optimizer/internal/adapters/distance"
	"fleet-route-optimizer/internal/config"
	"fleet-route-optimizer/internal/domain"
	"fleet-route-optimizer/internal/matrix"
	"fleet-route-optimizer/internal/metrics"
	"fleet-route-optimizer/internal/platform/db"
	"fleet-route-optimizer/internal/ports"
	"fleet-route-optimizer/internal/problem"
	"fleet-route-optimizer/internal/solver"
)

// errViolations marks a run whose result carries error-severity violations
// while the options forbid them. It maps to exit code 2 so scripts can tell
// "solved, but infeasible" apart from real failures.
var errViolations = errors.New("result contains constraint violations")

// main is the application composition root.
// It wires concrete adapters (ORS, Redis, Postgres) behind ports, runs one
// optimization and writes the result as JSON.
func main() {
	problemPath := flag.String("problem", "", "path to the problem file (json or yaml)")
	outPath := flag.String("out", "", "write the result here instead of stdout")
	flag.Parse()

	dotenvErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel, cfg.LogFormat)
	if dotenvErr != nil {
		log.Debug("no .env file found, using environment variables")
	}

	if strings.TrimSpace(*problemPath) == "" {
		fmt.Fprintln(os.Stderr, "missing -problem flag")
		flag.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, cfg, *problemPath, *outPath); err != nil {
		if errors.Is(err, errViolations) {
			log.Error("run finished with constraint violations")
			os.Exit(2)
		}
		log.Error("optimization failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger, cfg *config.Config, problemPath, outPath string) error {
	file, err := problem.Load(problemPath)
	if err != nil {
		return err
	}

	locations, vehicles, drivers := file.Inputs()
	opts := file.EngineOptions(cfg.EngineOptions())

	matrixCache, closeCache, err := newMatrixCache(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	buildOpts := matrix.BuildOptions{Log: log}
	if strings.TrimSpace(cfg.ORS.APIKey) != "" {
		provider, err := distance.NewORSMatrixProvider(cfg.ORS.APIKey, cfg.ORS.RequestsPerSecond, log)
		if err != nil {
			return err
		}
		if matrixCache != nil {
			buildOpts.Provider = distance.NewCachedMatrixProvider(provider, matrixCache, log)
		} else {
			buildOpts.Provider = provider
		}
	} else if matrixCache != nil {
		log.Warn("matrix cache configured without an ORS api key, using haversine distances")
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	if cfg.MetricsAddr != "" {
		go serveMetrics(log, cfg.MetricsAddr, registry)
	}

	optimizer := &solver.Optimizer{Log: log, Metrics: m, Matrix: buildOpts}

	result, err := optimizer.Optimize(ctx, locations, vehicles, drivers, opts)
	if err != nil {
		return err
	}

	if err := writeResult(outPath, problem.FromResult(result)); err != nil {
		return err
	}

	log.Info("optimization finished",
		"algorithm", result.Algorithm,
		"routes", len(result.Routes),
		"unassigned", len(result.Unassigned),
		"distance_km", result.TotalDistanceKm,
		"cost", result.TotalCost,
		"took", result.ComputationTime,
	)

	if !opts.AllowViolations && countErrorViolations(result) > 0 {
		return errViolations
	}

	return nil
}

// newMatrixCache picks the cache backend from the configuration: Redis when
// an address is set, otherwise Postgres when a database URL is set,
// otherwise none.
func newMatrixCache(ctx context.Context, log *slog.Logger, cfg *config.Config) (ports.MatrixCache, func(), error) {
	switch {
	case cfg.Redis.Addr != "":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("verify redis connection: %w", err)
		}

		log.Info("using redis matrix cache", "addr", cfg.Redis.Addr)
		return cache.NewRedisMatrixCache(client, cfg.Redis.CacheTTL, log), func() { client.Close() }, nil

	case cfg.Database.URL != "":
		sqlDB, err := db.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		if err := cache.InitSchema(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}

		log.Info("using postgres matrix cache")
		return cache.NewSQLMatrixCache(sqlDB, log), func() { sqlDB.Close() }, nil

	default:
		return nil, func() {}, nil
	}
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

func serveMetrics(log *slog.Logger, addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	log.Info("metrics listening", "addr", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Warn("metrics server stopped", "err", err)
	}
}

func writeResult(outPath string, result problem.Result) error {
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	payload = append(payload, '\n')

	if outPath == "" {
		_, err := os.Stdout.Write(payload)
		return err
	}

	if err := os.WriteFile(outPath, payload, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	return nil
}

func countErrorViolations(result *domain.OptimizationResult) int {
	n := 0
	for i := range result.Routes {
		n += result.Routes[i].ViolationCount(domain.SeverityError)
	}
	return n
}
