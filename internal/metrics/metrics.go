package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors exported by the realtime hub.
type Metrics struct {
	Connections prometheus.Gauge
	Rooms       prometheus.Gauge
	Events      *prometheus.CounterVec
}

// New registers the collectors on reg. Tests pass a fresh registry; the app
// passes prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Connections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "coloc_hub_connections",
			Help: "Number of live realtime connections.",
		}),
		Rooms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "coloc_hub_rooms",
			Help: "Number of coloc rooms with at least one live connection.",
		}),
		Events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coloc_hub_events_total",
			Help: "Realtime events processed by the hub, by type.",
		}, []string{"type"}),
	}
}
