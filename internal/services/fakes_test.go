package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/events"
)

type memStore struct {
	mu        sync.Mutex
	routes    map[string]models.Route
	buses     map[string]models.Bus
	schedules map[string]models.Schedule
	tickets   map[string]models.Ticket
}

func newMemStore() *memStore {
	return &memStore{
		routes:    map[string]models.Route{},
		buses:     map[string]models.Bus{},
		schedules: map[string]models.Schedule{},
		tickets:   map[string]models.Ticket{},
	}
}

func (m *memStore) addBus(b models.Bus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[b.Route.ID] = b.Route
	m.buses[b.ID] = b
}

type memRoutes struct{ *memStore }

func (r memRoutes) GetRoute(_ context.Context, id string) (models.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.routes[id]
	if !ok {
		return models.Route{}, domain.NotFoundError{Resource: "route"}
	}
	route.Stops = append([]models.Stop(nil), route.Stops...)
	return route, nil
}

func (r memRoutes) ReplaceStops(_ context.Context, route models.Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[route.ID] = route
	return nil
}

type memBuses struct{ *memStore }

func (b memBuses) GetBus(_ context.Context, id string) (models.Bus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bus, ok := b.buses[id]
	if !ok {
		return models.Bus{}, domain.NotFoundError{Resource: "bus"}
	}
	if route, ok := b.routes[bus.Route.ID]; ok {
		bus.Route = route
	}
	return bus, nil
}

type memSchedules struct{ *memStore }

func (s memSchedules) ListByBus(_ context.Context, busID string) ([]models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Schedule{}
	for _, sc := range s.schedules {
		if sc.BusID == busID {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memSchedules) GetByID(_ context.Context, id string) (models.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.schedules[id]
	if !ok {
		return models.Schedule{}, domain.NotFoundError{Resource: "schedule"}
	}
	return sc, nil
}

func (s memSchedules) Create(_ context.Context, sc models.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[sc.ID] = sc
	return nil
}

func (s memSchedules) Update(_ context.Context, sc models.Schedule) error {
	return s.Create(context.Background(), sc)
}

func (s memSchedules) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[id]; !ok {
		return domain.NotFoundError{Resource: "schedule"}
	}
	delete(s.schedules, id)
	return nil
}

type memTickets struct{ *memStore }

func (m memTickets) Create(_ context.Context, t models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[t.ID] = t
	return nil
}

func (m memTickets) GetByID(_ context.Context, id string) (models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return models.Ticket{}, domain.NotFoundError{Resource: "ticket"}
	}
	return t, nil
}

func (m memTickets) matching(f models.TicketFilter) []models.Ticket {
	out := []models.Ticket{}
	for _, t := range m.tickets {
		if f.UserID != "" && t.UserID != f.UserID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.BusID != "" && t.BusID != f.BusID {
			continue
		}
		if f.RouteID != "" && m.buses[t.BusID].Route.ID != f.RouteID {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m memTickets) List(_ context.Context, f models.TicketFilter) ([]models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.matching(f)
	if f.Limit > 0 {
		lo := min(f.Offset, len(out))
		hi := min(lo+f.Limit, len(out))
		out = out[lo:hi]
	}
	return out, nil
}

func (m memTickets) Count(_ context.Context, f models.TicketFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matching(f)), nil
}

func (m memTickets) ListPendingBefore(_ context.Context, cutoff time.Time, limit int) ([]models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Ticket{}
	for _, t := range m.tickets {
		if t.Status == models.TicketPending && t.CreatedAt.Before(cutoff) && len(out) < limit {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m memTickets) PaidSeats(_ context.Context, busID, travelDate, scheduleID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paidLocked(busID, travelDate, scheduleID, ""), nil
}

func (m memTickets) paidLocked(busID, travelDate, scheduleID, exceptID string) int {
	n := 0
	for _, t := range m.tickets {
		if t.ID != exceptID && t.Status == models.TicketPaid && t.BusID == busID && t.TravelDate == travelDate && t.ScheduleID == scheduleID {
			n += t.SeatCount
		}
	}
	return n
}

func (m memTickets) Update(_ context.Context, t models.Ticket, from models.TicketStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.tickets[t.ID]
	if !ok || cur.Status != from {
		return domain.ConflictError{Resource: "ticket", Msg: fmt.Sprintf("ticket %s is no longer %s", t.ID, from)}
	}
	m.tickets[t.ID] = t
	return nil
}

func (m memTickets) MarkPaid(_ context.Context, t models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bus := m.buses[t.BusID]
	paid := m.paidLocked(t.BusID, t.TravelDate, t.ScheduleID, t.ID)
	if paid+t.SeatCount > bus.Capacity {
		return domain.CapacityExceededError{Requested: t.SeatCount, Available: max(bus.Capacity-paid, 0)}
	}
	cur := m.tickets[t.ID]
	if cur.Status != models.TicketPending {
		return domain.ConflictError{Resource: "ticket", Msg: "no longer PENDING"}
	}
	m.tickets[t.ID] = t
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.TicketEvent
}

func (p *recordingPublisher) PublishTicketEvent(_ context.Context, ev events.TicketEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) statuses() []models.TicketStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.TicketStatus, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Status)
	}
	return out
}

type countingLocker struct {
	mu       sync.Mutex
	locked   []string
	released int
}

func (l *countingLocker) Lock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = append(l.locked, key)
	return func() {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
	}, nil
}

var (
	admin = domain.RequestContext{UserID: "admin-1", Role: domain.RoleAdmin, RequestID: "req-admin"}
	alice = domain.RequestContext{UserID: "alice", Role: "USER", RequestID: "req-alice"}
	bob   = domain.RequestContext{UserID: "bob", Role: "USER", RequestID: "req-bob"}
)

func testBus(stops, capacity int) models.Bus {
	r := models.Route{ID: "r1", Name: "Shivajinagar Loop", City: "Pune"}
	for i := 1; i <= stops; i++ {
		r.Stops = append(r.Stops, models.Stop{ID: fmt.Sprintf("s%d", i), Name: fmt.Sprintf("Stop %d", i), Order: i})
	}
	return models.Bus{ID: "b1", Number: "MH12-0042", Type: models.BusTypeAC, Capacity: capacity, Status: models.BusActive, Route: r}
}

// dailySchedule leaves stop i at 08:00 + 5i minutes, every day of the week.
func dailySchedule(bus models.Bus) models.Schedule {
	sc := models.Schedule{ID: "sc1", BusID: bus.ID}
	for d := time.Sunday; d <= time.Saturday; d++ {
		sc.DaysActive = append(sc.DaysActive, models.Weekday(d))
	}
	for i, st := range domain.BuildStopTimings(bus) {
		hm := fmt.Sprintf("%02d:%02d", 8+(i*5)/60, (i*5)%60)
		st.ArrivalTime, st.DepartureTime = hm, hm
		sc.StopTimings = append(sc.StopTimings, st)
	}
	return sc
}

type fixture struct {
	store   *memStore
	events  *recordingPublisher
	locker  *countingLocker
	clock   time.Time
	booking BookingService
}

func newFixture(stops, capacity int) *fixture {
	f := &fixture{
		store:  newMemStore(),
		events: &recordingPublisher{},
		locker: &countingLocker{},
		clock:  time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC),
	}
	bus := testBus(stops, capacity)
	f.store.addBus(bus)
	sc := dailySchedule(bus)
	f.store.schedules[sc.ID] = sc
	f.booking = BookingService{
		Buses:      memBuses{f.store},
		Schedules:  memSchedules{f.store},
		Tickets:    memTickets{f.store},
		Locker:     f.locker,
		Events:     f.events,
		PendingTTL: 15 * time.Minute,
		Now:        func() time.Time { return f.clock },
	}
	return f
}
