package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_checks_total",
			Help: "Rate limit decisions by outcome",
		},
		[]string{"outcome"},
	)

	fallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_fallback_total",
			Help: "Checks served by the in-process counter, by cause",
		},
		[]string{"cause"},
	)
)
