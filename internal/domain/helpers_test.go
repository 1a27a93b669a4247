package domain

import (
	"fmt"

	"busbooking/internal/domain/models"
)

func testRoute(n int) models.Route {
	r := models.Route{ID: "r1", Name: "Ring", City: "Pune"}
	for i := 1; i <= n; i++ {
		r.Stops = append(r.Stops, models.Stop{ID: fmt.Sprintf("s%d", i), Name: fmt.Sprintf("Stop %d", i), Order: i})
	}
	return r
}

func testBus(n int) models.Bus {
	return models.Bus{
		ID:       "b1",
		Number:   "MH12-0001",
		Type:     models.BusTypeAC,
		Capacity: 40,
		Status:   models.BusActive,
		Route:    testRoute(n),
	}
}
