package domain

import (
	"errors"
	"fmt"

	"busbooking/internal/domain/models"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

type ForbiddenError struct {
	Msg string
}

func (e ForbiddenError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "forbidden"
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

// StopNotFoundError is returned when a stop id is not part of the route.
type StopNotFoundError struct {
	RouteID string
	StopID  string
}

func (e StopNotFoundError) Error() string {
	if e.RouteID == "" {
		return fmt.Sprintf("stop %q not found", e.StopID)
	}
	return fmt.Sprintf("stop %q not found on route %q", e.StopID, e.RouteID)
}

// InvalidPairError is returned when origin and destination are the same stop.
type InvalidPairError struct {
	StopID string
}

func (e InvalidPairError) Error() string {
	return fmt.Sprintf("origin and destination are the same stop %q", e.StopID)
}

// InvalidTransitionError names the current state and the requested one.
type InvalidTransitionError struct {
	From models.TicketStatus
	To   models.TicketStatus
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition ticket from %s to %s", e.From, e.To)
}

type ScheduleIncompleteError struct {
	Expected int
	Got      int
	Msg      string
}

func (e ScheduleIncompleteError) Error() string {
	if e.Msg != "" {
		return "schedule incomplete: " + e.Msg
	}
	return fmt.Sprintf("schedule incomplete: %d stop timings for %d stops", e.Got, e.Expected)
}

type CapacityExceededError struct {
	Requested int
	Available int
}

func (e CapacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded: requested %d seat(s), %d available", e.Requested, e.Available)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target ForbiddenError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

func IsStopNotFound(err error) bool {
	var target StopNotFoundError
	return errors.As(err, &target)
}

func IsInvalidPair(err error) bool {
	var target InvalidPairError
	return errors.As(err, &target)
}

func IsInvalidTransition(err error) bool {
	var target InvalidTransitionError
	return errors.As(err, &target)
}

func IsScheduleIncomplete(err error) bool {
	var target ScheduleIncompleteError
	return errors.As(err, &target)
}

func IsCapacityExceeded(err error) bool {
	var target CapacityExceededError
	return errors.As(err, &target)
}
