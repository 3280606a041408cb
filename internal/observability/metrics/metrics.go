package metrics

import "github.com/prometheus/client_golang/prometheus"

// ThreadMetrics exposes counters/histograms for case message threads.
type ThreadMetrics struct {
	messagesTotal *prometheus.CounterVec
	pollTotal     *prometheus.CounterVec
	listLatency   *prometheus.HistogramVec
}

func NewThreadMetrics(reg prometheus.Registerer) *ThreadMetrics {
	m := &ThreadMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cuentame",
			Subsystem: "messaging",
			Name:      "messages_total",
			Help:      "Total case messages written",
		}, []string{"sender"}),
		pollTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cuentame",
			Subsystem: "messaging",
			Name:      "poll_total",
			Help:      "Total poll requests against message threads",
		}, []string{"endpoint", "status"}),
		listLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cuentame",
			Subsystem: "messaging",
			Name:      "list_latency_seconds",
			Help:      "Latency of thread listing queries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.pollTotal, m.listLatency)
	return m
}

func (m *ThreadMetrics) ObserveMessage(sender string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(sender).Inc()
}

func (m *ThreadMetrics) ObservePoll(endpoint, status string) {
	if m == nil {
		return
	}
	m.pollTotal.WithLabelValues(endpoint, status).Inc()
}

func (m *ThreadMetrics) ObserveListLatency(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.listLatency.WithLabelValues(endpoint).Observe(seconds)
}
