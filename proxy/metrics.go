package proxy

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dashboard_proxy",
		Name:      "requests_total",
		Help:      "Proxy requests by route and outcome.",
	}, []string{"route", "outcome"})

	preDispatchSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dashboard_proxy",
		Name:      "pre_dispatch_duration_seconds",
		Help:      "Time spent resolving the upstream before forwarding.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

func init() {
	metrics.Registry.MustRegister(requestsTotal, preDispatchSeconds)
}
