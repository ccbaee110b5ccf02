// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics holds the Prometheus collectors of the transcript service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transcriptd_resolutions_total",
		Help: "Transcript resolutions by outcome kind (ok or error kind)",
	}, []string{"kind"})

	cascadeStepTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transcriptd_cascade_step_total",
		Help: "Selection cascade step that produced the chosen track",
	}, []string{"step"})

	providerRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transcriptd_provider_requests_total",
		Help: "Caption provider calls by operation and outcome",
	}, []string{"operation", "outcome"})

	providerRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "transcriptd_provider_request_duration_seconds",
		Help:    "Caption provider call latency",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"operation"})

	egressSelectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transcriptd_egress_selections_total",
		Help: "Egress route selections by proxy endpoint (scheme://host:port, no account data)",
	}, []string{"route"})

	paragraphsHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "transcriptd_paragraphs",
		Help:    "Paragraphs per formatted transcript",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	bulkItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transcriptd_bulk_items_total",
		Help: "Bulk fetch items by outcome (success or failure)",
	}, []string{"outcome"})
)

// RecordResolution counts one finished resolution. kind is "ok" on success.
func RecordResolution(kind string) {
	resolutionsTotal.WithLabelValues(kind).Inc()
}

// RecordCascadeStep counts the cascade step that selected a track.
func RecordCascadeStep(step string) {
	cascadeStepTotal.WithLabelValues(step).Inc()
}

// ObserveProviderRequest records a provider call.
func ObserveProviderRequest(operation string, err error, d time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	providerRequestsTotal.WithLabelValues(operation, outcome).Inc()
	providerRequestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordEgressSelection counts a route choice. endpoint must not carry
// credentials or account names.
func RecordEgressSelection(endpoint string) {
	egressSelectionsTotal.WithLabelValues(endpoint).Inc()
}

// ObserveParagraphs records the paragraph count of one formatted transcript.
func ObserveParagraphs(n int) {
	paragraphsHistogram.Observe(float64(n))
}

// RecordBulkItem counts one bulk item.
func RecordBulkItem(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	bulkItemsTotal.WithLabelValues(outcome).Inc()
}
