package domain

import (
	"fmt"
	"strings"
	"time"

	"busbooking/internal/domain/models"
)

const PlaceholderTime = "00:00"

// BuildStopTimings derives a fresh timetable skeleton from the bus's current route.
// Nothing is carried over from earlier timings; a route change means a rebuild.
func BuildStopTimings(bus models.Bus) []models.StopTiming {
	stops := SortedStops(bus.Route)
	out := make([]models.StopTiming, 0, len(stops))
	for _, s := range stops {
		out = append(out, models.StopTiming{
			StopID:        s.ID,
			StopName:      s.Name,
			ArrivalTime:   PlaceholderTime,
			DepartureTime: PlaceholderTime,
		})
	}
	return out
}

// ParseClock parses "HH:MM" into minutes since midnight.
func ParseClock(v string) (int, error) {
	v = strings.TrimSpace(v)
	t, err := time.Parse("15:04", v)
	if err != nil || len(v) != 5 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", v)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ValidateSchedule checks a schedule against the route it belongs to before it is saved.
// Times must be non-decreasing along the stop sequence:
// arrival(k) <= departure(k) <= arrival(k+1).
// Only the first arrival and the last departure may be left blank.
func ValidateSchedule(s models.Schedule, route models.Route) error {
	if len(s.DaysActive) == 0 {
		return ValidationError{Field: "daysActive", Msg: "at least one day is required"}
	}
	seenDay := map[models.Weekday]bool{}
	for _, d := range s.DaysActive {
		if d < models.Weekday(time.Sunday) || d > models.Weekday(time.Saturday) {
			return ValidationError{Field: "daysActive", Msg: fmt.Sprintf("unknown weekday %d", d)}
		}
		if seenDay[d] {
			return ValidationError{Field: "daysActive", Msg: fmt.Sprintf("%s listed twice", d)}
		}
		seenDay[d] = true
	}
	if s.FrequencyMinutes != nil && *s.FrequencyMinutes <= 0 {
		return ValidationError{Field: "frequencyMin", Msg: "must be positive"}
	}

	stops := SortedStops(route)
	if len(s.StopTimings) != len(stops) {
		return ScheduleIncompleteError{Expected: len(stops), Got: len(s.StopTimings)}
	}
	for i, st := range s.StopTimings {
		if st.StopID != stops[i].ID {
			return ScheduleIncompleteError{
				Expected: len(stops),
				Got:      len(s.StopTimings),
				Msg:      fmt.Sprintf("timing %d is for stop %q, route has %q at order %d", i+1, st.StopID, stops[i].ID, stops[i].Order),
			}
		}
	}

	last := -1
	lastLabel := ""
	check := func(idx int, label, v string) error {
		if strings.TrimSpace(v) == "" {
			return ValidationError{Field: fmt.Sprintf("stopTimings[%d].%s", idx, label), Msg: "is required"}
		}
		m, err := ParseClock(v)
		if err != nil {
			return ValidationError{Field: fmt.Sprintf("stopTimings[%d].%s", idx, label), Msg: err.Error()}
		}
		if m < last {
			return ValidationError{
				Field: fmt.Sprintf("stopTimings[%d].%s", idx, label),
				Msg:   fmt.Sprintf("%s is earlier than %s", v, lastLabel),
			}
		}
		last = m
		lastLabel = fmt.Sprintf("stopTimings[%d].%s", idx, label)
		return nil
	}

	n := len(s.StopTimings)
	for i, st := range s.StopTimings {
		if i > 0 {
			if err := check(i, "arrivalTime", st.ArrivalTime); err != nil {
				return err
			}
		}
		if i < n-1 {
			if err := check(i, "departureTime", st.DepartureTime); err != nil {
				return err
			}
		}
	}
	return nil
}

// ScheduleActiveOn reports whether the schedule runs on the given weekday.
func ScheduleActiveOn(s models.Schedule, day time.Weekday) bool {
	for _, d := range s.DaysActive {
		if time.Weekday(d) == day {
			return true
		}
	}
	return false
}
