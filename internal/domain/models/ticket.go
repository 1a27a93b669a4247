package models

import "time"

type TicketStatus string

const (
	TicketPending   TicketStatus = "PENDING"
	TicketPaid      TicketStatus = "PAID"
	TicketCancelled TicketStatus = "CANCELLED"
	TicketRefunded  TicketStatus = "REFUNDED"
)

// Ticket is a rider's reservation for an origin/destination pair on one bus.
// Tickets are never deleted; cancelled and refunded ones stay for history.
type Ticket struct {
	ID               string       `json:"id"`
	BookingID        string       `json:"bookingId"`
	UserID           string       `json:"userId"`
	BusID            string       `json:"busId"`
	ScheduleID       string       `json:"scheduleId,omitempty"`
	FromStop         string       `json:"fromStop"`
	ToStop           string       `json:"toStop"`
	SeatCount        int          `json:"seatCount"`
	FarePerSeat      int64        `json:"farePerSeat"`
	TotalFare        int64        `json:"totalFare"`
	Status           TicketStatus `json:"status"`
	PaymentID        string       `json:"paymentId,omitempty"`
	LastPaymentError string       `json:"lastPaymentError,omitempty"`
	TravelDate       string       `json:"travelDate,omitempty"`
	DepartureTime    string       `json:"departureTime"`
	ArrivalTime      string       `json:"arrivalTime"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// TripKey identifies the run a ticket occupies seats on. Riders boarding at
// different stops of the same run share it.
func (t Ticket) TripKey() string {
	return t.BusID + ":" + t.TravelDate + ":" + t.ScheduleID
}

// TicketFilter narrows a ticket listing. Zero fields match everything; Limit 0 means no paging.
type TicketFilter struct {
	UserID  string
	Status  TicketStatus
	BusID   string
	RouteID string
	Limit   int
	Offset  int
}
