// Package metrics defines Prometheus metrics for history reconstruction.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	CacheKindBlob        = "blob"
	CacheKindRevisionSet = "revision_set"

	CacheResultHit  = "hit"
	CacheResultMiss = "miss"
	CacheResultErr  = "error"
)

var (
	HistoryFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revtrail_history_fetches_total",
			Help: "Per-path change listings by outcome status",
		},
		[]string{"status"},
	)

	BlobFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revtrail_blob_fetches_total",
			Help: "Per-candidate content lookups by outcome status",
		},
		[]string{"status"},
	)

	RevisionsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "revtrail_revisions_dropped_total",
			Help: "Changes omitted from assembled history because no content was recoverable",
		},
	)

	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revtrail_cache_lookups_total",
			Help: "Cache lookups by kind and result",
		},
		[]string{"kind", "result"},
	)

	AssembleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "revtrail_assemble_duration_seconds",
			Help:    "Time spent assembling the revision list of one document",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(
		HistoryFetchesTotal, BlobFetchesTotal,
		RevisionsDroppedTotal, CacheLookupsTotal,
		AssembleDuration,
	)
}

// WriteTextfile dumps the default registry in the node-exporter textfile format.
// An empty path is a no-op.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
