package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// StopTiming is one stop's scheduled arrival/departure ("HH:MM").
// The first stop has no meaningful arrival and the last stop no meaningful departure.
type StopTiming struct {
	StopID        string `json:"stopId"`
	StopName      string `json:"stopName"`
	ArrivalTime   string `json:"arrivalTime,omitempty"`
	DepartureTime string `json:"departureTime,omitempty"`
}

type Schedule struct {
	ID               string       `json:"id"`
	BusID            string       `json:"busId"`
	DaysActive       []Weekday    `json:"daysActive"`
	StopTimings      []StopTiming `json:"stopTimings"`
	FrequencyMinutes *int         `json:"frequencyMin,omitempty"`
}

// Weekday serializes as the full English day name ("Monday").
type Weekday time.Weekday

func (d Weekday) String() string { return time.Weekday(d).String() }

func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	for i := time.Sunday; i <= time.Saturday; i++ {
		name := i.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func (d Weekday) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Weekday) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	w, err := ParseWeekday(s)
	if err != nil {
		return err
	}
	*d = w
	return nil
}
