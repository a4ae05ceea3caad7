// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics exposes Prometheus counters and histograms for the HTTP
// surface, the response cache and the draft generation workflow.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the application records into. It satisfies
// draft.Observer.
type Metrics struct {
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	Drafts         *prometheus.CounterVec
	DraftDuration  prometheus.Histogram
	ImageFallbacks *prometheus.CounterVec
	PostViews      prometheus.Counter
}

// Setup registers the collectors on a private registry (plus Go runtime and
// process collectors) and returns the /metrics handler for it.
func Setup(namespace string) (*Metrics, http.Handler) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Response cache hits.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Response cache misses.",
		}),
		Drafts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drafts_total",
			Help:      "Draft generation attempts by outcome.",
		}, []string{"outcome"}),
		DraftDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "draft_duration_seconds",
			Help:      "Wall time of a draft generation run.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 60, 90, 120},
		}),
		ImageFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_fallbacks_total",
			Help:      "Drafts that fell back to the default image, by reason.",
		}, []string{"reason"}),
		PostViews: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "post_views_total",
			Help:      "Post detail views recorded.",
		}),
	}

	return m, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// RecordHTTPRequest records one finished request. route should be the
// matched route pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) RecordCacheHit()  { m.CacheHits.Inc() }
func (m *Metrics) RecordCacheMiss() { m.CacheMisses.Inc() }
func (m *Metrics) RecordPostView()  { m.PostViews.Inc() }

// ImageFallback counts a draft that used the fallback image.
func (m *Metrics) ImageFallback(reason string) {
	m.ImageFallbacks.WithLabelValues(reason).Inc()
}

// DraftGenerated counts a finished draft run and its duration.
func (m *Metrics) DraftGenerated(outcome string, elapsed time.Duration) {
	m.Drafts.WithLabelValues(outcome).Inc()
	m.DraftDuration.Observe(elapsed.Seconds())
}
