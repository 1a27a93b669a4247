package domain

import "busbooking/internal/domain/models"

// FareTier maps a maximum number of stops travelled to a per-seat price.
type FareTier struct {
	MaxStops int
	Fare     int64
}

// FareTiers is checked in order; the first tier whose MaxStops covers the distance wins.
// Anything beyond the last tier pays LongHaulFare.
var FareTiers = []FareTier{
	{MaxStops: 4, Fare: 10},
	{MaxStops: 7, Fare: 15},
	{MaxStops: 20, Fare: 20},
}

const LongHaulFare int64 = 25

// FareForStops returns the per-seat fare for travelling n stops.
func FareForStops(n int) int64 {
	for _, t := range FareTiers {
		if n <= t.MaxStops {
			return t.Fare
		}
	}
	return LongHaulFare
}

// FarePerSeat prices a single seat between two stops of the route.
// Bus type and city do not affect the price.
func FarePerSeat(route models.Route, fromStopID, toStopID string) (int64, error) {
	n, err := DistanceInStops(route, fromStopID, toStopID)
	if err != nil {
		return 0, err
	}
	return FareForStops(n), nil
}

func TotalFare(farePerSeat int64, seatCount int) int64 {
	return farePerSeat * int64(seatCount)
}
