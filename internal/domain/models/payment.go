package models

// PaymentRequest is handed to the payment provider; the transport is theirs.
type PaymentRequest struct {
	TicketID  string `json:"ticketId"`
	PayeeID   string `json:"payeeId"`
	PayeeName string `json:"payeeName"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Note      string `json:"note"`
	UPILink   string `json:"upiLink"`
}
