package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for the lead submission pipeline.
type LeadMetrics struct {
	submissionsTotal *prometheus.CounterVec
	localFailures    *prometheus.CounterVec
	gatewayLatency   *prometheus.HistogramVec
	rateLimited      *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skywell",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Lead submissions by form kind and outcome",
		}, []string{"kind", "outcome"}),
		localFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skywell",
			Subsystem: "leads",
			Name:      "local_persist_failures_total",
			Help:      "Local lead writes that failed and were skipped",
		}, []string{"kind"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "skywell",
			Subsystem: "crm",
			Name:      "gateway_latency_seconds",
			Help:      "Latency of outbound CRM calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skywell",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the submission rate limiter",
		}, []string{"route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.localFailures, m.gatewayLatency, m.rateLimited)
	return m
}

func (m *LeadMetrics) ObserveSubmission(kind, outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *LeadMetrics) ObserveLocalFailure(kind string) {
	if m == nil {
		return
	}
	m.localFailures.WithLabelValues(kind).Inc()
}

func (m *LeadMetrics) ObserveGatewayLatency(status string, seconds float64) {
	if m == nil {
		return
	}
	m.gatewayLatency.WithLabelValues(status).Observe(seconds)
}

func (m *LeadMetrics) ObserveRateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}
