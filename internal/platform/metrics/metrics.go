// Package metrics defines the Prometheus collectors exported by the service.
// Collectors are registered on an explicit Registerer so tests can use a
// private registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "footnote"

// Widget sync results.
const (
	SyncOK          = "ok"
	SyncEncodeError = "encode_error"
	SyncWriteError  = "write_error"
	SyncSourceError = "source_error"
)

// WidgetSync records widget sync outcomes.
type WidgetSync struct {
	Total  *prometheus.CounterVec
	Bytes  prometheus.Histogram
	Quotes prometheus.Gauge
}

// NewWidgetSync creates the widget sync collectors and registers them on reg.
// A nil reg leaves the collectors unregistered.
func NewWidgetSync(reg prometheus.Registerer) *WidgetSync {
	m := &WidgetSync{
		Total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "widget",
			Name:      "sync_total",
			Help:      "Widget sync attempts by result.",
		}, []string{"result"}),
		Bytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "widget",
			Name:      "sync_bytes",
			Help:      "Size of the encoded widget payload.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}),
		Quotes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "widget",
			Name:      "quotes",
			Help:      "Number of quotes in the last published widget payload.",
		}),
	}

	// Pre-create every result label so dashboards see zeros.
	for _, result := range []string{SyncOK, SyncEncodeError, SyncWriteError, SyncSourceError} {
		m.Total.WithLabelValues(result)
	}

	if reg != nil {
		reg.MustRegister(m.Total, m.Bytes, m.Quotes)
	}

	return m
}

// Observe records one sync attempt. size and quotes are used only for
// successful syncs.
func (m *WidgetSync) Observe(result string, size, quotes int) {
	if m == nil {
		return
	}

	m.Total.WithLabelValues(result).Inc()

	if result == SyncOK {
		m.Bytes.Observe(float64(size))
		m.Quotes.Set(float64(quotes))
	}
}
