// metrics.go - Prometheus metrics for the wallet daemon
package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shieldcore/internal/walletcore"
)

// MetricsCollector records core and HTTP measurements on its own registry.
// It implements walletcore.Observer.
type MetricsCollector struct {
	registry *prometheus.Registry

	decryptBatches  *prometheus.CounterVec
	decryptItems    *prometheus.CounterVec
	decryptedNotes  *prometheus.CounterVec
	decryptSkipped  *prometheus.CounterVec
	decryptDuration *prometheus.HistogramVec
	txAssembled     *prometheus.CounterVec
	txDuration      prometheus.Histogram
	requests        *prometheus.CounterVec
	rateLimited     prometheus.Counter
	upSince         prometheus.Gauge
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	mc := &MetricsCollector{
		registry: reg,
		decryptBatches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "walletd_decrypt_batches_total",
			Help: "Decrypt batches processed, by key direction",
		}, []string{"direction"}),
		decryptItems: f.NewCounterVec(prometheus.CounterOpts{
			Name: "walletd_decrypt_items_total",
			Help: "Ciphertexts submitted for decryption",
		}, []string{"direction"}),
		decryptedNotes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "walletd_decrypted_notes_total",
			Help: "Ciphertexts that decrypted under the supplied key",
		}, []string{"direction"}),
		decryptSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "walletd_decrypt_skipped_total",
			Help: "Ciphertexts skipped, by the stage that rejected them",
		}, []string{"direction", "stage"}),
		decryptDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "walletd_decrypt_batch_seconds",
			Help:    "Wall time of a decrypt batch",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"direction"}),
		txAssembled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "walletd_transactions_total",
			Help: "Transactions assembled, by outcome",
		}, []string{"outcome"}),
		txDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletd_transaction_seconds",
			Help:    "Wall time to assemble, prove and sign a transaction",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "walletd_http_requests_total",
			Help: "HTTP requests served, by route and status code",
		}, []string{"route", "code"}),
		rateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "walletd_http_rate_limited_total",
			Help: "HTTP requests rejected by the rate limiter",
		}),
		upSince: f.NewGauge(prometheus.GaugeOpts{
			Name: "walletd_up_timestamp_unix_seconds",
			Help: "Unix timestamp the daemon started at",
		}),
	}
	mc.upSince.Set(float64(time.Now().Unix()))
	return mc
}

func (mc *MetricsCollector) DecryptBatch(dir walletcore.Direction, items, decrypted int, elapsed time.Duration) {
	d := string(dir)
	mc.decryptBatches.WithLabelValues(d).Inc()
	mc.decryptItems.WithLabelValues(d).Add(float64(items))
	mc.decryptedNotes.WithLabelValues(d).Add(float64(decrypted))
	mc.decryptDuration.WithLabelValues(d).Observe(elapsed.Seconds())
}

func (mc *MetricsCollector) DecryptSkipped(dir walletcore.Direction, stage string) {
	mc.decryptSkipped.WithLabelValues(string(dir), stage).Inc()
}

func (mc *MetricsCollector) TransactionAssembled(outcome string, elapsed time.Duration) {
	mc.txAssembled.WithLabelValues(outcome).Inc()
	mc.txDuration.Observe(elapsed.Seconds())
}

// RecordRequest counts one served HTTP request.
func (mc *MetricsCollector) RecordRequest(route string, code int) {
	mc.requests.WithLabelValues(route, http.StatusText(code)).Inc()
}

// RecordRateLimited counts one request turned away by the limiter.
func (mc *MetricsCollector) RecordRateLimited() {
	mc.rateLimited.Inc()
}

// Handler serves the collector's registry in the Prometheus text format.
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{Registry: mc.registry})
}
