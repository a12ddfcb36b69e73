package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	SimulationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smartdca",
			Subsystem: "simulation",
			Name:      "latency_seconds",
			Help:      "Latency of simulation stages",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	SimulationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartdca",
			Subsystem: "simulation",
			Name:      "errors_total",
			Help:      "Errors by simulation stage",
		},
		[]string{"stage"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(SimulationLatency, SimulationErrors)
	})
}
