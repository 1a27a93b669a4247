package models

// Stop is a boarding/alighting point. Order is 1-based and contiguous within a route.
type Stop struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Order int     `json:"order"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

// Route owns its stops.
type Route struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	City  string `json:"city"`
	Stops []Stop `json:"stops"`
}

type BusType string

const (
	BusTypeAC    BusType = "AC"
	BusTypeNonAC BusType = "NON_AC"
)

func (t BusType) Valid() bool {
	return t == BusTypeAC || t == BusTypeNonAC
}

type BusStatus string

const (
	BusActive      BusStatus = "ACTIVE"
	BusInactive    BusStatus = "INACTIVE"
	BusMaintenance BusStatus = "MAINTENANCE"
)

func (s BusStatus) Valid() bool {
	switch s {
	case BusActive, BusInactive, BusMaintenance:
		return true
	default:
		return false
	}
}

// Bus carries a snapshot of exactly one route.
type Bus struct {
	ID       string    `json:"id"`
	Number   string    `json:"busNumber"`
	Category string    `json:"busCategory"`
	Type     BusType   `json:"type"`
	Capacity int       `json:"capacity"`
	Status   BusStatus `json:"status"`
	Route    Route     `json:"route"`
}
