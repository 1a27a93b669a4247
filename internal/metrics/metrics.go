package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the booking service metrics. A nil *Collector is valid and records nothing.
type Collector struct {
	reg *prometheus.Registry

	TicketsCreated    prometheus.Counter
	TicketTransitions *prometheus.CounterVec // to: PAID|CANCELLED|REFUNDED
	BookingRejections *prometheus.CounterVec // reason
	PaymentFailures   prometheus.Counter
	PendingExpired    prometheus.Counter
	RevenueTotal      prometheus.Counter
	SeatsPerTicket    prometheus.Histogram

	SchedulesSaved   prometheus.Counter
	ScheduleRejected *prometheus.CounterVec // reason
	EventsPublished  prometheus.Counter
	EventPublishErrs prometheus.Counter
	EventsConnected  prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		TicketsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_tickets_created_total",
			Help: "Tickets created in PENDING state.",
		}),
		TicketTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_ticket_transitions_total",
			Help: "Ticket lifecycle transitions by target state.",
		}, []string{"to"}),
		BookingRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_rejections_total",
			Help: "Booking operations rejected by domain rules.",
		}, []string{"reason"}),
		PaymentFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_payment_failures_total",
			Help: "Payment failures recorded against PENDING tickets.",
		}),
		PendingExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_pending_expired_total",
			Help: "PENDING tickets cancelled by the expiry sweeper.",
		}),
		RevenueTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_revenue_inr_total",
			Help: "Sum of totalFare over tickets moved to PAID.",
		}),
		SeatsPerTicket: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "booking_seats_per_ticket",
			Help:    "Seat count of created tickets.",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12},
		}),
		SchedulesSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "schedule_saved_total",
			Help: "Schedules created or updated.",
		}),
		ScheduleRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_rejected_total",
			Help: "Schedules rejected on save.",
		}, []string{"reason"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_events_published_total",
			Help: "Ticket events published to NATS.",
		}),
		EventPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_event_publish_errors_total",
			Help: "Ticket event publish errors.",
		}),
		EventsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "booking_events_connected",
			Help: "1 if the NATS connection is established, 0 otherwise.",
		}),
	}

	reg.MustRegister(
		c.TicketsCreated, c.TicketTransitions, c.BookingRejections, c.PaymentFailures,
		c.PendingExpired, c.RevenueTotal, c.SeatsPerTicket,
		c.SchedulesSaved, c.ScheduleRejected,
		c.EventsPublished, c.EventPublishErrs, c.EventsConnected,
	)
	return c
}

func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

func (c *Collector) TicketCreated(seats int) {
	if c == nil {
		return
	}
	c.TicketsCreated.Inc()
	c.SeatsPerTicket.Observe(float64(seats))
}

func (c *Collector) Transitioned(to string, totalFare int64) {
	if c == nil {
		return
	}
	c.TicketTransitions.WithLabelValues(to).Inc()
	if to == "PAID" {
		c.RevenueTotal.Add(float64(totalFare))
	}
}

func (c *Collector) Rejected(reason string) {
	if c == nil {
		return
	}
	c.BookingRejections.WithLabelValues(reason).Inc()
}

func (c *Collector) PaymentFailed() {
	if c == nil {
		return
	}
	c.PaymentFailures.Inc()
}

func (c *Collector) Expired(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.PendingExpired.Add(float64(n))
}

func (c *Collector) ScheduleSaved() {
	if c == nil {
		return
	}
	c.SchedulesSaved.Inc()
}

func (c *Collector) ScheduleRejectedInc(reason string) {
	if c == nil {
		return
	}
	c.ScheduleRejected.WithLabelValues(reason).Inc()
}

func (c *Collector) EventPublishedInc() {
	if c == nil {
		return
	}
	c.EventsPublished.Inc()
}

func (c *Collector) EventPublishErrInc() {
	if c == nil {
		return
	}
	c.EventPublishErrs.Inc()
}

func (c *Collector) EventsSetConnected(connected bool) {
	if c == nil {
		return
	}
	if connected {
		c.EventsConnected.Set(1)
		return
	}
	c.EventsConnected.Set(0)
}
