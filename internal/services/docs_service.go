package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders the PDF e-ticket for a paid booking.
type DocsService struct {
	Booking BookingService
	Buses   BusStore
}

type eTicketData struct {
	Ticket    models.Ticket
	BusNumber string
	BusType   string
	RouteName string
}

func (s DocsService) GenerateETicket(ctx context.Context, rc domain.RequestContext, ticketID string) ([]byte, string, error) {
	t, err := s.Booking.Get(ctx, rc, ticketID)
	if err != nil {
		return nil, "", err
	}
	if t.Status != models.TicketPaid {
		return nil, "", domain.ConflictError{Resource: "ticket", Msg: "e-ticket is only available for PAID tickets, ticket is " + string(t.Status)}
	}
	data := eTicketData{Ticket: t, BusNumber: t.BusID}
	if s.Buses != nil {
		if bus, err := s.Buses.GetBus(ctx, t.BusID); err == nil {
			data.BusNumber = bus.Number
			data.BusType = string(bus.Type)
			data.RouteName = bus.Route.Name
		}
	}
	utils.LogEvent(rc.RequestID, "docs", "generate_eticket", "ticket_id="+t.ID)
	return buildETicketPDF(data)
}

func buildETicketPDF(d eTicketData) ([]byte, string, error) {
	t := d.Ticket
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket "+t.BookingID, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking ref    : %s", safe(t.BookingID, "-")),
		fmt.Sprintf("Bus            : %s %s", safe(d.BusNumber, "-"), safe(d.BusType, "")),
		fmt.Sprintf("Route          : %s", safe(d.RouteName, "-")),
		fmt.Sprintf("From           : %s (dep %s)", safe(t.FromStop, "-"), safe(t.DepartureTime, domain.UnknownTime)),
		fmt.Sprintf("To             : %s (arr %s)", safe(t.ToStop, "-"), safe(t.ArrivalTime, domain.UnknownTime)),
		fmt.Sprintf("Travel date    : %s", safe(t.TravelDate, "-")),
		fmt.Sprintf("Seats          : %d", t.SeatCount),
		fmt.Sprintf("Fare per seat  : %s", utils.FormatRupees(t.FarePerSeat)),
		fmt.Sprintf("Total paid     : %s", utils.FormatRupees(t.TotalFare)),
		fmt.Sprintf("Payment id     : %s", safe(t.PaymentID, "-")),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf("Valid for %d passenger(s). Show this ticket to the conductor when boarding.", t.SeatCount), "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "could not render e-ticket", Err: err}
	}
	filename := fmt.Sprintf("ETICKET_%s.pdf", utils.SafeFilenamePart(t.BookingID))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
