package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the pipeline counters exported on /metrics
type Metrics struct {
	StreamsOpened  *prometheus.CounterVec
	StreamErrors   *prometheus.CounterVec
	LinesRead      prometheus.Counter
	LinesSkipped   prometheus.Counter
	RecordsEmitted prometheus.Counter
}

// NewMetrics builds the counters and registers them with reg
// A nil reg leaves them unregistered; registering twice reuses the first set
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		StreamsOpened: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pvcreek",
			Name:      "streams_opened_total",
			Help:      "Dump streams opened, by target kind.",
		}, []string{"target"})),
		StreamErrors: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pvcreek",
			Name:      "stream_errors_total",
			Help:      "Streams that ended with an error, by error code.",
		}, []string{"code"})),
		LinesRead: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pvcreek",
			Name:      "lines_read_total",
			Help:      "Raw lines read from dumps.",
		})),
		LinesSkipped: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pvcreek",
			Name:      "lines_skipped_total",
			Help:      "Malformed lines dropped under the skip policy.",
		})),
		RecordsEmitted: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pvcreek",
			Name:      "records_emitted_total",
			Help:      "Records that passed every filter.",
		})),
	}
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}
