package events

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"busbooking/internal/domain/models"

	"github.com/nats-io/nats.go"
)

const (
	subjectPrefix = "tickets"
	drainTimeout  = 10 * time.Second
)

type PublisherMetrics interface {
	EventPublishedInc()
	EventPublishErrInc()
	EventsSetConnected(connected bool)
}

// TicketEvent is published on every ticket status change.
type TicketEvent struct {
	TicketID  string              `json:"ticketId"`
	BookingID string              `json:"bookingId"`
	UserID    string              `json:"userId"`
	BusID     string              `json:"busId"`
	From      string              `json:"from"`
	To        string              `json:"to"`
	Status    models.TicketStatus `json:"status"`
	Reason    string              `json:"reason,omitempty"`
	At        time.Time           `json:"at"`
}

func NewTicketEvent(t models.Ticket, reason string) TicketEvent {
	return TicketEvent{
		TicketID:  t.ID,
		BookingID: t.BookingID,
		UserID:    t.UserID,
		BusID:     t.BusID,
		From:      t.FromStop,
		To:        t.ToStop,
		Status:    t.Status,
		Reason:    reason,
		At:        t.UpdatedAt,
	}
}

// Subject is tickets.<status>, e.g. tickets.paid.
func Subject(status models.TicketStatus) string {
	return subjectPrefix + "." + subjectToken(strings.ToLower(string(status)))
}

type msgPublisher interface {
	Publish(subject string, data []byte) error
}

type drainCloser interface {
	Drain() error
	Close()
}

type NATSPublisher struct {
	nc      msgPublisher
	conn    drainCloser
	closed  chan struct{}
	metrics PublisherMetrics
}

func NewNATSPublisher(url string, m PublisherMetrics) (*NATSPublisher, error) {
	closed := make(chan struct{})
	var once sync.Once
	nc, err := nats.Connect(url,
		nats.Name("bus-booking"),
		nats.DrainTimeout(drainTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if m != nil {
				m.EventsSetConnected(false)
			}
			log.Printf("[EVENTS] nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.EventsSetConnected(true)
			}
			log.Printf("[EVENTS] nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.EventsSetConnected(false)
			}
			log.Printf("[EVENTS] nats closed")
			once.Do(func() { close(closed) })
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.EventsSetConnected(true)
	}
	return &NATSPublisher{nc: nc, conn: nc, closed: closed, metrics: m}, nil
}

// Close flushes pending events and blocks until the drain has finished.
// Drain itself returns immediately, so completion is signalled by the closed handler.
func (p *NATSPublisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		log.Printf("[EVENTS] nats drain failed: %v", err)
		p.conn.Close()
		return
	}
	if p.closed == nil {
		return
	}
	select {
	case <-p.closed:
	case <-time.After(drainTimeout + time.Second):
		log.Printf("[EVENTS] nats drain did not finish within %s", drainTimeout)
		p.conn.Close()
	}
}

// PublishTicketEvent is fire-and-forget; ctx is accepted for interface symmetry.
func (p *NATSPublisher) PublishTicketEvent(_ context.Context, ev TicketEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	err = p.nc.Publish(Subject(ev.Status), b)
	if p.metrics != nil {
		if err != nil {
			p.metrics.EventPublishErrInc()
		} else {
			p.metrics.EventPublishedInc()
		}
	}
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
