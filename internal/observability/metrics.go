package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GroupJoinsTotal       = promauto.NewCounter(prometheus.CounterOpts{Namespace: "cabshare", Name: "group_joins_total", Help: "Total successful group joins"})
	GroupLeavesTotal      = promauto.NewCounter(prometheus.CounterOpts{Namespace: "cabshare", Name: "group_leaves_total", Help: "Total successful group leaves"})
	ChatMessagesTotal     = promauto.NewCounter(prometheus.CounterOpts{Namespace: "cabshare", Name: "chat_messages_total", Help: "Total chat messages appended"})
	PaymentsVerifiedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "cabshare", Name: "payments_verified_total", Help: "Total payments that passed signature verification"})
	TrackingClicksTotal   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "cabshare", Name: "tracking_clicks_total", Help: "Total tracking link redirects"})
	CommissionCredited    = promauto.NewCounter(prometheus.CounterOpts{Namespace: "cabshare", Name: "commission_credited_total", Help: "Total commission amount credited"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cabshare", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cabshare",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
