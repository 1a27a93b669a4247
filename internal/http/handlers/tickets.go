package handlers

import (
	"net/http"

	"busbooking/internal/http/middleware"
	"busbooking/internal/services"

	"github.com/gin-gonic/gin"
)

func (a *API) Quote(c *gin.Context) {
	var in services.QuoteInput
	if !BindJSONOrError(c, &in) {
		return
	}
	q, err := a.Booking.Quote(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (a *API) CreateTicket(c *gin.Context) {
	var in services.CreateTicketInput
	if !BindJSONOrError(c, &in) {
		return
	}
	t, err := a.Booking.Create(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (a *API) GetTicket(c *gin.Context) {
	t, err := a.Booking.Get(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type listTicketsQuery struct {
	Status  string `form:"status"`
	BusID   string `form:"busId"`
	RouteID string `form:"routeId"`
	Page    int    `form:"page"`
	Limit   int    `form:"limit"`
}

// ListTickets returns the caller's tickets, or every ticket for admins, newest first.
func (a *API) ListTickets(c *gin.Context) {
	var q listTicketsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_query", "invalid query parameters", err.Error())
		return
	}
	page, err := a.Booking.List(c.Request.Context(), middleware.CurrentUser(c), services.ListTicketsInput{
		Status:  q.Status,
		BusID:   q.BusID,
		RouteID: q.RouteID,
		Page:    q.Page,
		Limit:   q.Limit,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type changeSeatsRequest struct {
	SeatCount int `json:"seatCount"`
}

func (a *API) ChangeSeats(c *gin.Context) {
	var req changeSeatsRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	t, err := a.Booking.ChangeSeats(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req.SeatCount)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type payRequest struct {
	PaymentID string `json:"paymentId"`
}

func (a *API) PayTicket(c *gin.Context) {
	var req payRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	t, err := a.Booking.Pay(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req.PaymentID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (a *API) CancelTicket(c *gin.Context) {
	t, err := a.Booking.Cancel(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (a *API) RefundTicket(c *gin.Context) {
	t, err := a.Booking.Refund(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type paymentFailedRequest struct {
	Reason string `json:"reason"`
}

// PaymentFailed is called back by the payment flow when a charge is declined.
func (a *API) PaymentFailed(c *gin.Context) {
	var req paymentFailedRequest
	if c.Request.ContentLength > 0 {
		if !BindJSONOrError(c, &req) {
			return
		}
	}
	t, err := a.Booking.RecordPaymentFailure(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req.Reason)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (a *API) PaymentRequest(c *gin.Context) {
	req, err := a.Payments.PaymentRequest(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (a *API) ETicket(c *gin.Context) {
	pdf, filename, err := a.Docs.GenerateETicket(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
