package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "starscape"

// PromHooks implements PipelineHooks and CacheHooks with Prometheus metrics.
//
// Metrics live on a private registry. starscape is a batch tool, so instead
// of serving them the CLI writes the registry to a node-exporter textfile at
// the end of a run.
type PromHooks struct {
	registry *prometheus.Registry

	stageRuns     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	stageItems    *prometheus.GaugeVec
	cacheOps      *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
}

// NewPromHooks creates the hooks and registers their metrics.
func NewPromHooks() *PromHooks {
	h := &PromHooks{
		registry: prometheus.NewRegistry(),
		stageRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_runs_total",
				Help:      "Pipeline stage executions by outcome.",
			},
			[]string{"stage", "status"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"stage"},
		),
		stageItems: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stage_items",
				Help:      "Items produced by the last run of each stage.",
			},
			[]string{"stage"},
		),
		cacheOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_operations_total",
				Help:      "Cache lookups and writes.",
			},
			[]string{"key_type", "result"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_written_bytes_total",
				Help:      "Bytes written to the cache.",
			},
			[]string{"key_type"},
		),
	}
	h.registry.MustRegister(h.stageRuns, h.stageDuration, h.stageItems, h.cacheOps, h.cacheBytes)
	return h
}

// Registry returns the registry holding the hook metrics.
func (h *PromHooks) Registry() *prometheus.Registry { return h.registry }

// WriteTextfile writes all metrics to path in the text exposition format.
func (h *PromHooks) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, h.registry)
}

func (h *PromHooks) OnStageStart(context.Context, string) {}

func (h *PromHooks) OnStageComplete(_ context.Context, stage string, items int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	h.stageRuns.WithLabelValues(stage, status).Inc()
	h.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err == nil {
		h.stageItems.WithLabelValues(stage).Set(float64(items))
	}
}

func (h *PromHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h *PromHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h *PromHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheOps.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

var (
	_ PipelineHooks = (*PromHooks)(nil)
	_ CacheHooks    = (*PromHooks)(nil)
)
