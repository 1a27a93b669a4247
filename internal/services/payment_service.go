package services

import (
	"context"
	"net/url"
	"strings"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/utils"
)

const currencyINR = "INR"

// PaymentService builds the payload handed to the UPI provider. Confirmation comes back through BookingService.Pay.
type PaymentService struct {
	Booking   BookingService
	PayeeID   string
	PayeeName string
}

func (s PaymentService) PaymentRequest(ctx context.Context, rc domain.RequestContext, ticketID string) (models.PaymentRequest, error) {
	t, err := s.Booking.Get(ctx, rc, ticketID)
	if err != nil {
		return models.PaymentRequest{}, err
	}
	if t.Status != models.TicketPending {
		return models.PaymentRequest{}, domain.InvalidTransitionError{From: t.Status, To: models.TicketPaid}
	}
	req := BuildPaymentRequest(t, s.PayeeID, s.PayeeName)
	utils.LogEvent(rc.RequestID, "payment", "request", "ticket_id="+t.ID+" amount="+utils.FormatMoney(t.TotalFare))
	return req, nil
}

func BuildPaymentRequest(t models.Ticket, payeeID, payeeName string) models.PaymentRequest {
	note := "Bus ticket " + t.BookingID
	return models.PaymentRequest{
		TicketID:  t.ID,
		PayeeID:   payeeID,
		PayeeName: payeeName,
		Amount:    t.TotalFare,
		Currency:  currencyINR,
		Note:      note,
		UPILink:   upiLink(payeeID, payeeName, t.TotalFare, note),
	}
}

// upiLink keeps the parameter order UPI apps document: pa, pn, am, cu, tn.
func upiLink(payeeID, payeeName string, amount int64, note string) string {
	params := [][2]string{
		{"pa", payeeID},
		{"pn", payeeName},
		{"am", utils.FormatMoney(amount)},
		{"cu", currencyINR},
		{"tn", note},
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p[0]+"="+strings.ReplaceAll(url.QueryEscape(p[1]), "+", "%20"))
	}
	return "upi://pay?" + strings.Join(parts, "&")
}
