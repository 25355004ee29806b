package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dispatch",
			Name:      "sends_total",
			Help:      "Total dispatch attempts by type and outcome.",
		},
		[]string{"type", "outcome"},
	)

	gatewayCallDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dispatch",
			Name:      "gateway_call_duration_seconds",
			Help:      "Duration of outbound gateway calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)
