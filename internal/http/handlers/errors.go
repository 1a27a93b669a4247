package handlers

import (
	"errors"
	"log"
	"net/http"

	"busbooking/internal/domain"
	"busbooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsStopNotFound(err):
		respondError(c, http.StatusBadRequest, "stop_not_found", err.Error(), nil)
	case domain.IsInvalidPair(err):
		respondError(c, http.StatusBadRequest, "invalid_pair", err.Error(), nil)
	case domain.IsScheduleIncomplete(err):
		respondError(c, http.StatusBadRequest, "schedule_incomplete", err.Error(), nil)
	case domain.IsInvalidTransition(err):
		var ite domain.InvalidTransitionError
		_ = errors.As(err, &ite)
		respondError(c, http.StatusConflict, "invalid_transition", err.Error(), gin.H{
			"from":    ite.From,
			"to":      ite.To,
			"allowed": domain.AllowedTransitions(ite.From),
		})
	case domain.IsCapacityExceeded(err):
		var ce domain.CapacityExceededError
		_ = errors.As(err, &ce)
		respondError(c, http.StatusConflict, "capacity_exceeded", err.Error(), gin.H{"requested": ce.Requested, "available": ce.Available})
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case domain.IsForbidden(err):
		respondError(c, http.StatusForbidden, "forbidden", err.Error(), nil)
	case domain.IsInternal(err):
		var ie domain.InternalError
		_ = errors.As(err, &ie)
		log.Printf("[HTTP] request_id=%s internal error: %v (cause: %v)", middleware.GetRequestID(c), err, ie.Err)
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	default:
		log.Printf("[HTTP] request_id=%s unhandled error: %v", middleware.GetRequestID(c), err)
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}
