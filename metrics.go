package penlive

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "penlive"

// Metrics counts what happens on one live feed. A nil *Metrics records nothing.
type Metrics struct {
	ConnectionAttempts prometheus.Counter
	Reconnects         prometheus.Counter
	Messages           prometheus.Counter
	DecodeErrors       prometheus.Counter
	TransportErrors    prometheus.Counter
	Exhaustions        prometheus.Counter
	ConnectionState    prometheus.Gauge
}

// NewMetrics creates the collectors for the feed with the given name and registers them
// on reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer, feed string) *Metrics {
	labels := prometheus.Labels{"feed": feed}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}

	m := &Metrics{
		ConnectionAttempts: counter("connection_attempts_total", "Total number of connection attempts"),
		Reconnects:         counter("reconnects_total", "Total number of scheduled reconnects"),
		Messages:           counter("messages_total", "Total number of decoded messages"),
		DecodeErrors:       counter("decode_errors_total", "Total number of dropped undecodable messages"),
		TransportErrors:    counter("transport_errors_total", "Total number of transport errors"),
		Exhaustions:        counter("exhaustions_total", "Total number of times reconnect attempts ran out"),
		ConnectionState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Name:        "connection_state",
			Help:        "Current connection state (0=idle, 1=connecting, 2=open, 3=closed, 4=reconnecting, 5=failed)",
			ConstLabels: labels,
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.ConnectionAttempts,
			m.Reconnects,
			m.Messages,
			m.DecodeErrors,
			m.TransportErrors,
			m.Exhaustions,
			m.ConnectionState,
		)
	}
	return m
}

func (m *Metrics) connectionAttempt() {
	if m != nil {
		m.ConnectionAttempts.Inc()
	}
}

func (m *Metrics) reconnect() {
	if m != nil {
		m.Reconnects.Inc()
	}
}

func (m *Metrics) message() {
	if m != nil {
		m.Messages.Inc()
	}
}

func (m *Metrics) decodeError() {
	if m != nil {
		m.DecodeErrors.Inc()
	}
}

func (m *Metrics) transportError() {
	if m != nil {
		m.TransportErrors.Inc()
	}
}

func (m *Metrics) exhausted() {
	if m != nil {
		m.Exhaustions.Inc()
	}
}

func (m *Metrics) state(s State) {
	if m != nil {
		m.ConnectionState.Set(float64(s))
	}
}
