// Worker pool that loads catalog products into the store.
// Reader → batches → ants pool (N workers) → UpsertMany → Redis.
package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storeassist/internal/domain/product"
)

type upserter interface {
	UpsertMany(ctx context.Context, items []product.Product) (int, error)
}

type ingester struct {
	store     upserter
	workers   int
	batchSize int
	metrics   *seedMetrics
	logger    *zap.Logger
}

type ingestResult struct {
	Processed int64
	Failed    int64
	Duration  time.Duration
}

// Run streams the catalog through the worker pool.
// Submit blocks while every worker is busy, which bounds in-flight batches.
func (ing *ingester) Run(ctx context.Context, r io.Reader, maxRows int) (ingestResult, error) {
	batchSize := max(ing.batchSize, 1)

	pool, err := ants.NewPool(max(ing.workers, 1))
	if err != nil {
		return ingestResult{}, fmt.Errorf("worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var processed, failed atomic.Int64
	var seq atomic.Int64

	start := time.Now()

	dispatch := func(batch []product.Product) {
		id := int(seq.Add(1))
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			ing.processBatch(ctx, id, batch, &processed, &failed)
		})
		if submitErr != nil {
			wg.Done()
			failed.Add(int64(len(batch)))
			ing.metrics.rowsFailedN("submit_error", len(batch))
			ing.logger.Error("Batch submit failed", zap.Int("batch", id), zap.Error(submitErr))
		}
	}

	readErr := ing.produce(ctx, r, batchSize, maxRows, dispatch, &failed)
	wg.Wait()

	return ingestResult{
		Processed: processed.Load(),
		Failed:    failed.Load(),
		Duration:  time.Since(start),
	}, readErr
}

func (ing *ingester) produce(
	ctx context.Context,
	r io.Reader,
	batchSize, maxRows int,
	dispatch func([]product.Product),
	failed *atomic.Int64,
) error {
	batch := make([]product.Product, 0, batchSize)
	read := 0

	err := readCatalog(ctx, r,
		func(p product.Product) bool {
			batch = append(batch, p)
			read++
			if len(batch) >= batchSize {
				dispatch(batch)
				batch = make([]product.Product, 0, batchSize)
			}
			return maxRows <= 0 || read < maxRows
		},
		func(line int, err error) {
			failed.Add(1)
			ing.metrics.rowFailed("bad_record")
			ing.logger.Warn("Skipping catalog line", zap.Int("line", line), zap.Error(err))
		},
	)

	if len(batch) > 0 && ctx.Err() == nil {
		dispatch(batch)
	}
	return err
}

func (ing *ingester) processBatch(
	ctx context.Context,
	id int,
	batch []product.Product,
	processed, failed *atomic.Int64,
) {
	start := time.Now()
	n, err := ing.store.UpsertMany(ctx, batch)
	ing.metrics.observeBatch(time.Since(start))

	if err != nil {
		ing.logger.Error("Batch upsert failed",
			zap.Int("batch", id),
			zap.Int("size", len(batch)),
			zap.Error(err),
		)
		failed.Add(int64(len(batch)))
		ing.metrics.rowsFailedN("batch_error", len(batch))
		return
	}

	processed.Add(int64(n))
	ing.metrics.rowsProcessedN(n)
}

// seedMetrics is nil-safe so tests can run without a registry.
type seedMetrics struct {
	rowsProcessed prometheus.Counter
	rowsFailed    *prometheus.CounterVec
	batchDuration prometheus.Histogram
}

func newSeedMetrics(reg prometheus.Registerer) *seedMetrics {
	m := &seedMetrics{
		rowsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storeassist",
			Subsystem: "seed",
			Name:      "rows_processed_total",
			Help:      "Catalog products upserted by the seed loader.",
		}),
		rowsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storeassist",
			Subsystem: "seed",
			Name:      "rows_failed_total",
			Help:      "Catalog records the seed loader could not store.",
		}, []string{"reason"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storeassist",
			Subsystem: "seed",
			Name:      "batch_duration_seconds",
			Help:      "Duration of one batch upsert.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.rowsProcessed, m.rowsFailed, m.batchDuration)
	return m
}

func (m *seedMetrics) rowFailed(reason string) { m.rowsFailedN(reason, 1) }

func (m *seedMetrics) rowsFailedN(reason string, n int) {
	if m == nil {
		return
	}
	m.rowsFailed.WithLabelValues(reason).Add(float64(n))
}

func (m *seedMetrics) rowsProcessedN(n int) {
	if m == nil {
		return
	}
	m.rowsProcessed.Add(float64(n))
}

func (m *seedMetrics) observeBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(d.Seconds())
}
