package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Gateway Prometheus metrics. Defined in a standalone package to avoid
// import cycles between the provider forwarder and HTTP packages.

var (
	UpstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trustgate_upstream_requests_total",
		Help: "Llamadas salientes a providers por provider y status HTTP",
	}, []string{"provider", "status"})

	UpstreamLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trustgate_upstream_latency_ms",
		Help:    "Latencia de llamadas salientes en milisegundos",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"provider"})

	MFATransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trustgate_mfa_transitions_total",
		Help: "Transiciones de la máquina de estados de enrolamiento MFA",
	}, []string{"from", "to"})
)

// RegisterGateway registers the gateway metrics on the given registry (or default if nil).
func RegisterGateway(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{UpstreamRequests, UpstreamLatency, MFATransitions} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
