package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Catalog snapshot cache hits by region",
	}, []string{"region"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Catalog snapshot cache misses by region",
	}, []string{"region"})

	snapshotLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_snapshot_load_duration_seconds",
		Help:    "Time to load a catalog snapshot from the database",
		Buckets: prometheus.DefBuckets,
	})

	snapshotItems = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "catalog_snapshot_items",
		Help: "Items in the current catalog snapshot by region",
	}, []string{"region"})

	ingestedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_ingested_rows_total",
		Help: "Feed rows processed during ingestion by outcome",
	}, []string{"outcome"})
)

// CacheMetrics records catalog cache and ingestion metrics.
type CacheMetrics struct{}

// NewCacheMetrics creates a metrics recorder for the catalog.
func NewCacheMetrics() *CacheMetrics {
	return &CacheMetrics{}
}

func (m *CacheMetrics) RecordHit(region string) {
	cacheHits.WithLabelValues(region).Inc()
}

func (m *CacheMetrics) RecordMiss(region string) {
	cacheMisses.WithLabelValues(region).Inc()
}

func (m *CacheMetrics) RecordLoad(region string, items int, duration time.Duration) {
	snapshotLoadDuration.Observe(duration.Seconds())
	snapshotItems.WithLabelValues(region).Set(float64(items))
}

func (m *CacheMetrics) RecordIngestedRows(accepted, rejected int) {
	ingestedRows.WithLabelValues("accepted").Add(float64(accepted))
	ingestedRows.WithLabelValues("rejected").Add(float64(rejected))
}
