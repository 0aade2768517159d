// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freightrates_http_requests_total",
			Help: "Total HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "freightrates_http_request_latency_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RatesQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freightrates_rates_queries_total",
			Help: "Total daily-rate queries by suppression mode and outcome",
		},
		[]string{"suppress", "outcome"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freightrates_uploads_total",
			Help: "Total price uploads by outcome",
		},
		[]string{"outcome"},
	)

	PricesIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "freightrates_prices_ingested_total",
			Help: "Total price observations written",
		},
	)

	ExchangeRateLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freightrates_exchange_rate_lookups_total",
			Help: "Total exchange-rate table lookups by source and status",
		},
		[]string{"source", "status"},
	)

	ExchangeRateLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "freightrates_exchange_rate_latency_seconds",
			Help:    "Exchange-rate upstream call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
