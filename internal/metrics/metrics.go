// metrics — prometheus-инструментация движка агрегации.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — набор коллекторов движка.
type Metrics struct {
	// ProviderRequests — исходы обращений к провайдерам: ok|empty|auth_blocked|rate_limited|transport.
	ProviderRequests *prometheus.CounterVec
	// CacheEvents — события кэша: hit|miss|evict.
	CacheEvents *prometheus.CounterVec
	// Failovers — переходы primary -> backup по auth-отказу.
	Failovers prometheus.Counter
	// SearchRequests — исходы поиска: ok|empty|unavailable.
	SearchRequests *prometheus.CounterVec
}

// New регистрирует коллекторы в переданном реестре.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		ProviderRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newspulse",
			Name:      "provider_requests_total",
			Help:      "Provider call outcomes by provider and operation.",
		}, []string{"provider", "op", "outcome"}),
		CacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newspulse",
			Name:      "cache_events_total",
			Help:      "Aggregation cache events.",
		}, []string{"event"}),
		Failovers: f.NewCounter(prometheus.CounterOpts{
			Namespace: "newspulse",
			Name:      "provider_failovers_total",
			Help:      "Sticky failovers from the primary provider.",
		}),
		SearchRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "newspulse",
			Name:      "search_requests_total",
			Help:      "Search outcomes.",
		}, []string{"outcome"}),
	}
}
