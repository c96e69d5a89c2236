package refresher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsfeed_refresh_cycles_total",
		Help: "Number of finished refresh cycles by result",
	}, []string{"result"})

	cyclesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "newsfeed_refresh_cycles_in_flight",
		Help: "Number of refresh cycles currently running",
	})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "newsfeed_refresh_cycle_duration_seconds",
		Help:    "Duration of refresh cycles",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	mergedItems = promauto.NewCounter(prometheus.CounterOpts{
		Name: "newsfeed_merged_items_total",
		Help: "Number of items handed to the store by successful cycles",
	})
)
