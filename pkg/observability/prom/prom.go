// Package prom implements observability hooks with Prometheus collectors.
//
// A single [Hooks] value satisfies both [observability.PipelineHooks] and
// [observability.CacheHooks]. Because stripweave is a short-lived CLI, the
// collected metrics are not served over HTTP; instead [WriteTextfile] dumps
// them in the text exposition format for the node_exporter textfile
// collector.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/stripweave/pkg/observability"
)

const namespace = "stripweave"

// Hooks records pipeline and cache events as Prometheus metrics.
type Hooks struct {
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	cacheEvents   *prometheus.CounterVec
	cacheBytes    prometheus.Counter
}

var (
	_ observability.PipelineHooks = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
)

// New creates hooks and registers their collectors with reg.
// Pass prometheus.DefaultRegisterer to expose them alongside the Go runtime
// collectors, or a fresh registry to keep them isolated.
func New(reg prometheus.Registerer) (*Hooks, error) {
	h := &Hooks{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Recomposition runs by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full recomposition run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Pipeline stages that returned an error.",
		}, []string{"stage"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache lookups and writes by event and key type.",
		}, []string{"event", "key_type"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the artifact cache.",
		}),
	}

	for _, c := range []prometheus.Collector{
		h.runs, h.runDuration, h.stageDuration, h.stageErrors, h.cacheEvents, h.cacheBytes,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) OnRunStart(context.Context, string, int) {}

func (h *Hooks) OnRunComplete(_ context.Context, _ string, d time.Duration, err error) {
	h.runs.WithLabelValues(result(err)).Inc()
	h.runDuration.Observe(d.Seconds())
}

func (h *Hooks) OnStageStart(context.Context, string) {}

func (h *Hooks) OnStageComplete(_ context.Context, stage string, d time.Duration, err error) {
	h.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		h.stageErrors.WithLabelValues(stage).Inc()
	}
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues("hit", keyType).Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues("miss", keyType).Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues("set", keyType).Inc()
	h.cacheBytes.Add(float64(size))
}

// WriteTextfile gathers g and writes it atomically to path in the
// Prometheus text format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
