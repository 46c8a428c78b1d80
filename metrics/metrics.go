// Package metrics exports the phases of a mirror operation as Prometheus
// metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/soypat/meshmirror"
)

const namespace = "meshmirror"

// Observer is a meshmirror.Observer recording phase durations and the
// mesh size after every phase.
type Observer struct {
	phase  *prometheus.HistogramVec
	slots  *prometheus.GaugeVec
	memory prometheus.Gauge
	start  time.Time
}

var _ meshmirror.Observer = (*Observer)(nil)

// NewObserver returns an Observer whose metrics are registered with reg.
func NewObserver(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		phase: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of mirror phases.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 12),
		}, []string{"phase", "axis"}),
		slots: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "arena_slots",
			Help:      "Arena length after the last phase.",
		}, []string{"entity"}),
		memory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reserved_bytes",
			Help:      "Bytes reserved by the mesh arenas.",
		}),
	}
	for _, c := range []prometheus.Collector{o.phase, o.slots, o.memory} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Observer) BeforePhase(meshmirror.Phase, meshmirror.Axis, *meshmirror.Mesh) {
	o.start = time.Now()
}

func (o *Observer) AfterPhase(p meshmirror.Phase, axis meshmirror.Axis, m *meshmirror.Mesh) {
	ax := axis.String()
	if p == meshmirror.PhaseCompact {
		ax = ""
	}
	o.phase.WithLabelValues(p.String(), ax).Observe(time.Since(o.start).Seconds())
	o.slots.WithLabelValues("points").Set(float64(m.Points.Len()))
	o.slots.WithLabelValues("tetrahedra").Set(float64(m.Tetras.Len()))
	o.slots.WithLabelValues("triangles").Set(float64(m.Trias.Len()))
	o.slots.WithLabelValues("edges").Set(float64(m.Edges.Len()))
	o.memory.Set(float64(m.MemoryUsed()))
}
