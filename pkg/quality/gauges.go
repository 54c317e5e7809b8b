package quality

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Gauges exposes a report as Prometheus gauges labelled by metric.
type Gauges struct {
	value     *prometheus.GaugeVec
	threshold *prometheus.GaugeVec
	warning   *prometheus.GaugeVec
}

func NewGauges(reg prometheus.Registerer) (*Gauges, error) {
	g := &Gauges{
		value: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "baddata_quality_metric",
			Help: "Data quality metric value.",
		}, []string{"metric"}),
		threshold: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "baddata_quality_threshold",
			Help: "Service-level objective for the metric.",
		}, []string{"metric"}),
		warning: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "baddata_quality_warning",
			Help: "1 when the metric misses its objective.",
		}, []string{"metric"}),
	}
	for _, c := range []prometheus.Collector{g.value, g.threshold, g.warning} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Publish sets every gauge from r.
func (g *Gauges) Publish(r Report) {
	for _, m := range r.Metrics {
		g.value.WithLabelValues(m.Name).Set(m.Value)
		g.threshold.WithLabelValues(m.Name).Set(m.Threshold)
		w := 0.0
		if m.Warning {
			w = 1
		}
		g.warning.WithLabelValues(m.Name).Set(w)
	}
}
