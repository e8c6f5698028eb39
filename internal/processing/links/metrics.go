package links

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	linksCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "links_created_total",
			Help: "Total number of links created, by slug kind",
		},
		[]string{"kind"},
	)

	slugCollisionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "links_slug_collisions_total",
		Help: "Generated slugs that were already taken",
	})

	clickFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "links_click_increment_failures_total",
		Help: "Click increments that failed and were dropped",
	})
)
