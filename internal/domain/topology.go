package domain

import (
	"fmt"
	"sort"
	"strings"

	"busbooking/internal/domain/models"
)

// SortedStops returns a copy of the route's stops ordered by Order.
func SortedStops(route models.Route) []models.Stop {
	out := make([]models.Stop, len(route.Stops))
	copy(out, route.Stops)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// ValidateTopology checks that stop ids are unique and orders run 1..n without gaps.
func ValidateTopology(route models.Route) error {
	seen := make(map[string]bool, len(route.Stops))
	for i, s := range SortedStops(route) {
		if strings.TrimSpace(s.ID) == "" {
			return ValidationError{Field: "stops", Msg: "stop id is empty"}
		}
		if seen[s.ID] {
			return ValidationError{Field: "stops", Msg: fmt.Sprintf("stop %q appears more than once", s.ID)}
		}
		seen[s.ID] = true
		if s.Order != i+1 {
			return ValidationError{Field: "stops", Msg: fmt.Sprintf("stop orders are not contiguous at position %d (order=%d)", i+1, s.Order)}
		}
	}
	return nil
}

func findStop(route models.Route, stopID string) (models.Stop, bool) {
	for _, s := range route.Stops {
		if s.ID == stopID {
			return s, true
		}
	}
	return models.Stop{}, false
}

// FindStopByName matches case-insensitively on the trimmed, space-collapsed name.
func FindStopByName(route models.Route, name string) (models.Stop, bool) {
	key := normalizeName(name)
	if key == "" {
		return models.Stop{}, false
	}
	for _, s := range route.Stops {
		if normalizeName(s.Name) == key {
			return s, true
		}
	}
	return models.Stop{}, false
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// InsertStop places stop at atOrder and shifts every stop at or after it by one.
// atOrder must be within [1, len(stops)+1].
func InsertStop(route models.Route, stop models.Stop, atOrder int) (models.Route, error) {
	n := len(route.Stops)
	if atOrder < 1 || atOrder > n+1 {
		return route, ValidationError{Field: "order", Msg: fmt.Sprintf("must be between 1 and %d", n+1)}
	}
	if strings.TrimSpace(stop.ID) == "" {
		return route, ValidationError{Field: "stop.id", Msg: "is required"}
	}
	if _, exists := findStop(route, stop.ID); exists {
		return route, ConflictError{Resource: "stop", Msg: fmt.Sprintf("stop %q already on route", stop.ID)}
	}

	stops := make([]models.Stop, 0, n+1)
	for _, s := range route.Stops {
		if s.Order >= atOrder {
			s.Order++
		}
		stops = append(stops, s)
	}
	stop.Order = atOrder
	stops = append(stops, stop)

	route.Stops = stops
	route.Stops = SortedStops(route)
	return route, nil
}

// RemoveStop drops stopID and closes the gap by shifting later stops down by one.
func RemoveStop(route models.Route, stopID string) (models.Route, error) {
	removed, ok := findStop(route, stopID)
	if !ok {
		return route, StopNotFoundError{RouteID: route.ID, StopID: stopID}
	}

	stops := make([]models.Stop, 0, len(route.Stops)-1)
	for _, s := range route.Stops {
		if s.ID == stopID {
			continue
		}
		if s.Order > removed.Order {
			s.Order--
		}
		stops = append(stops, s)
	}

	route.Stops = stops
	route.Stops = SortedStops(route)
	return route, nil
}

// DistanceInStops is the ordinal distance between two stops, symmetric in its arguments.
func DistanceInStops(route models.Route, fromStopID, toStopID string) (int, error) {
	from, ok := findStop(route, fromStopID)
	if !ok {
		return 0, StopNotFoundError{RouteID: route.ID, StopID: fromStopID}
	}
	to, ok := findStop(route, toStopID)
	if !ok {
		return 0, StopNotFoundError{RouteID: route.ID, StopID: toStopID}
	}
	if from.ID == to.ID {
		return 0, InvalidPairError{StopID: from.ID}
	}
	d := to.Order - from.Order
	if d < 0 {
		d = -d
	}
	return d, nil
}
