package metrics

import "github.com/prometheus/client_golang/prometheus"

// FrontDeskMetrics exposes counters/histograms for the appointment flows.
type FrontDeskMetrics struct {
	availabilityTotal  *prometheus.CounterVec
	bookingsTotal      *prometheus.CounterVec
	cancellationsTotal *prometheus.CounterVec
	callsFinalized     *prometheus.CounterVec
	operationLatency   *prometheus.HistogramVec
}

func NewFrontDeskMetrics(reg prometheus.Registerer) *FrontDeskMetrics {
	m := &FrontDeskMetrics{
		availabilityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "schedule",
			Name:      "availability_checks_total",
			Help:      "Total availability checks",
		}, []string{"result"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "booking",
			Name:      "bookings_total",
			Help:      "Total booking attempts",
		}, []string{"result", "email_sent"}),
		cancellationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "booking",
			Name:      "cancellations_total",
			Help:      "Total cancellation attempts",
		}, []string{"result"}),
		callsFinalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "calls",
			Name:      "finalized_total",
			Help:      "Total finalized call records",
		}, []string{"resolution"}),
		operationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "frontdesk",
			Subsystem: "api",
			Name:      "operation_latency_seconds",
			Help:      "Latency of front-desk operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.availabilityTotal, m.bookingsTotal, m.cancellationsTotal, m.callsFinalized, m.operationLatency)
	return m
}

func (m *FrontDeskMetrics) ObserveAvailability(available bool) {
	if m == nil {
		return
	}
	m.availabilityTotal.WithLabelValues(boolLabel(available, "available", "unavailable")).Inc()
}

func (m *FrontDeskMetrics) ObserveBooking(success, emailSent bool) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(
		boolLabel(success, "booked", "rejected"),
		boolLabel(emailSent, "true", "false"),
	).Inc()
}

func (m *FrontDeskMetrics) ObserveCancellation(found bool) {
	if m == nil {
		return
	}
	m.cancellationsTotal.WithLabelValues(boolLabel(found, "cancelled", "not_found")).Inc()
}

func (m *FrontDeskMetrics) ObserveCallFinalized(resolution string) {
	if m == nil {
		return
	}
	m.callsFinalized.WithLabelValues(resolution).Inc()
}

func (m *FrontDeskMetrics) ObserveOperationLatency(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.operationLatency.WithLabelValues(operation).Observe(seconds)
}

func boolLabel(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}
