// Catalog seed loader for storeassist.
// Reads a JSON Lines product dump and upserts it into Redis through the
// catalog service, using a pool of parallel workers.
//
// Usage:
//
//	storeassist-seed --file products.jsonl --workers 4 --batch-size 100
//	storeassist-seed --file products.jsonl --reindex --metrics-addr :9091 --metrics-linger 30s
//
// Connection settings come from the same config files and env vars as the API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storeassist/internal/config"
	dbRedis "github.com/kailas-cloud/storeassist/internal/db/redis"
	logpkg "github.com/kailas-cloud/storeassist/internal/logger"
	productrepo "github.com/kailas-cloud/storeassist/internal/repository/product"
	cataloguc "github.com/kailas-cloud/storeassist/internal/usecase/catalog"
	"github.com/kailas-cloud/storeassist/internal/version"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "storeassist-seed:", err)
		cancel()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "storeassist-seed",
		Usage:   "Load a JSON Lines product catalog into storeassist",
		Version: version.Get().String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "JSON Lines catalog file (- for stdin)",
				Value:   "-",
			},
			&cli.IntFlag{
				Name:  "max-rows",
				Usage: "Max products to load (0 = unlimited)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of parallel upsert workers",
				Value: 4,
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Products per batch upsert",
				Value: 100,
			},
			&cli.BoolFlag{
				Name:  "reindex",
				Usage: "Drop and recreate the product search index before loading",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address during the load (empty = off)",
			},
			&cli.DurationFlag{
				Name:  "metrics-linger",
				Usage: "Keep serving metrics this long after the load finishes",
			},
		},
		Action: seedCommand,
	}
}

func seedCommand(c *cli.Context) error {
	if c.Int("workers") <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Int("workers"))
	}
	if c.Int("batch-size") <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", c.Int("batch-size"))
	}

	config.LoadDotEnv()
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	return run(c.Context, cfg, c, logger)
}

func run(ctx context.Context, cfg config.Config, c *cli.Context, logger *zap.Logger) error {
	file := c.String("file")
	var in io.Reader = os.Stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("open catalog: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	store, err := dbRedis.Open(ctx, dbRedis.Config{
		Addrs:        cfg.Database.Addrs,
		Password:     cfg.Database.Password,
		ClientName:   "storeassist-seed",
		ReadyTimeout: time.Duration(cfg.Database.ReadinessTimeout) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer store.Close()

	products := productrepo.New(store, cfg.Storage.KeyPrefix)
	if c.Bool("reindex") {
		logger.Info("Rebuilding product index")
		if err := products.RebuildIndex(ctx); err != nil {
			return fmt.Errorf("rebuild index: %w", err)
		}
	} else if err := products.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}

	reg := prometheus.NewRegistry()
	if addr := c.String("metrics-addr"); addr != "" {
		ms, err := startMetricsServer(addr, reg, logger)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		defer func() {
			if err := ms.Stop(ctx, c.Duration("metrics-linger")); err != nil {
				logger.Warn("Metrics server shutdown", zap.Error(err))
			}
		}()
	}

	ing := &ingester{
		store:     cataloguc.New(products, nil),
		workers:   c.Int("workers"),
		batchSize: c.Int("batch-size"),
		metrics:   newSeedMetrics(reg),
		logger:    logger,
	}

	logger.Info("Seeding catalog",
		zap.String("file", file),
		zap.Int("workers", ing.workers),
		zap.Int("batch_size", ing.batchSize),
	)

	result, err := ing.Run(ctx, in, c.Int("max-rows"))
	logger.Info("Seed finished",
		zap.Int64("processed", result.Processed),
		zap.Int64("failed", result.Failed),
		zap.Duration("duration", result.Duration),
	)
	return err
}
