package calendarapi

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts calendar operations by calendar, operation and outcome.
type Metrics struct {
	conversions *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "almanac",
			Subsystem: "calendar",
			Name:      "operations_total",
			Help:      "Calendar operations by calendar, operation and result.",
		}, []string{"calendar", "operation", "result"}),
	}
	if err := reg.Register(m.conversions); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(cal, op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.conversions.WithLabelValues(cal, op, result).Inc()
}
