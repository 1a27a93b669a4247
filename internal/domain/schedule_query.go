package domain

import (
	"strings"
	"time"

	"busbooking/internal/domain/models"
)

// UnknownTime is shown when no schedule or timing is available.
const UnknownTime = "N/A"

// LookupStopTiming finds a stop's timing by name. A nil schedule finds nothing.
func LookupStopTiming(s *models.Schedule, stopName string) (models.StopTiming, bool) {
	if s == nil {
		return models.StopTiming{}, false
	}
	key := normalizeName(stopName)
	for _, st := range s.StopTimings {
		if normalizeName(st.StopName) == key {
			return st, true
		}
	}
	return models.StopTiming{}, false
}

// DepartureAt is the origin-side time stamped on a ticket.
func DepartureAt(s *models.Schedule, stopName string) string {
	st, ok := LookupStopTiming(s, stopName)
	if !ok {
		return UnknownTime
	}
	return orUnknown(st.DepartureTime)
}

// ArrivalAt is the destination-side time stamped on a ticket.
func ArrivalAt(s *models.Schedule, stopName string) string {
	st, ok := LookupStopTiming(s, stopName)
	if !ok {
		return UnknownTime
	}
	return orUnknown(st.ArrivalTime)
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return UnknownTime
	}
	return v
}

// PickSchedule returns the first schedule running on travelDate's weekday.
// With a zero travelDate any active schedule will do.
func PickSchedule(schedules []models.Schedule, travelDate time.Time) *models.Schedule {
	if !travelDate.IsZero() {
		for i := range schedules {
			if ScheduleActiveOn(schedules[i], travelDate.Weekday()) {
				return &schedules[i]
			}
		}
		return nil
	}
	for i := range schedules {
		if len(schedules[i].DaysActive) > 0 {
			return &schedules[i]
		}
	}
	return nil
}
