package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CalculationsSavedTotal counts calculation persistence outcomes.
	CalculationsSavedTotal *prometheus.CounterVec
	// RateFetchTotal counts market rate fetch attempts by rate and source.
	RateFetchTotal *prometheus.CounterVec
	// ExportsTotal counts generated calculation exports by format.
	ExportsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CalculationsSavedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_saved_total",
			Help:      "Count of calculation save outcomes.",
		}, []string{"result"})
		RateFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_fetch_total",
			Help:      "Count of market rate fetches by rate name and value source.",
		}, []string{"rate", "source"})
		ExportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Count of calculation exports by output format.",
		}, []string{"format"})

		registerOrReuse(reg, CalculationsSavedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CalculationsSavedTotal = v
			}
		})
		registerOrReuse(reg, RateFetchTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				RateFetchTotal = v
			}
		})
		registerOrReuse(reg, ExportsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				ExportsTotal = v
			}
		})
	})
}
