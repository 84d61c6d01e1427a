package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteRequestsTotal counts quote computations by outcome.
	QuoteRequestsTotal *prometheus.CounterVec
	// QuotedPremium records the distribution of final premiums per insurer.
	QuotedPremium *prometheus.HistogramVec
	// LoginTotal counts login attempts by identity origin and outcome.
	LoginTotal *prometheus.CounterVec
	// TokenRevocationsTotal counts tokens written to the revocation list.
	TokenRevocationsTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific
// Prometheus collectors. Safe to call more than once.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_requests_total",
			Help:      "Count of quote computations by outcome.",
		}, []string{"result"})
		QuotedPremium = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quoted_premium_rm",
			Help:      "Distribution of quoted final premiums in ringgit.",
			Buckets:   []float64{100, 250, 500, 750, 1000, 1500, 2000, 3000},
		}, []string{"insurer"})
		LoginTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_total",
			Help:      "Count of login attempts by origin and outcome.",
		}, []string{"origin", "result"})
		TokenRevocationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_revocations_total",
			Help:      "Count of access tokens added to the revocation list.",
		})
		reg.MustRegister(QuoteRequestsTotal, QuotedPremium, LoginTotal, TokenRevocationsTotal)
	})
}

// RecordQuoteRequest increments the quote outcome counter when metrics are
// registered; a no-op otherwise so handlers stay testable in isolation.
func RecordQuoteRequest(result string) {
	if QuoteRequestsTotal != nil {
		QuoteRequestsTotal.WithLabelValues(result).Inc()
	}
}

// ObserveQuotedPremium records a final premium for the named insurer.
func ObserveQuotedPremium(insurer string, premium float64) {
	if QuotedPremium != nil {
		QuotedPremium.WithLabelValues(insurer).Observe(premium)
	}
}

// RecordLogin increments the login outcome counter.
func RecordLogin(origin, result string) {
	if LoginTotal != nil {
		LoginTotal.WithLabelValues(origin, result).Inc()
	}
}

// RecordTokenRevocation increments the revocation counter.
func RecordTokenRevocation() {
	if TokenRevocationsTotal != nil {
		TokenRevocationsTotal.Inc()
	}
}
