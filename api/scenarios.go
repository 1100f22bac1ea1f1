/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for demos of the timeline, occupancy and rota screens. Dates are
	relative to "today" so a freshly loaded scenario is always on screen.

AVAILABLE SCENARIOS:

	quiet-month:     Four rooms, a handful of stays in the current month
	busy-season:     Group booking, month-spanning stay, cancellation, maintenance
	double-booking:  Overlapping stays on one room, rendered as layers
	shift-rota:      Current week's rota for three staff members, published

HOW SCENARIOS WORK:
 1. Reset store (clear all data)
 2. Create rooms in render order
 3. Book stays through the allocation engine
 4. Optionally apply lifecycle transitions or publish a rota

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "busy-season"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to loaders map

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: booking and shift handlers the loaders mirror
  - stay/allocation.go: charge split used for every demo booking
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/stay-engine/generic"
	"github.com/warp/stay-engine/shift"
	"github.com/warp/stay-engine/stay"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ScenarioDTO describes a loadable demo data set.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "quiet-month",
		Name:        "Quiet Month",
		Description: "Four rooms with a few unpaid and deposit-paid stays",
		Category:    "bookings",
	},
	{
		ID:          "busy-season",
		Name:        "Busy Season",
		Description: "Multi-room group, stay across the month boundary, cancellation and maintenance",
		Category:    "bookings",
	},
	{
		ID:          "double-booking",
		Name:        "Double Booking",
		Description: "Two stays overlap on the same room and stack as layers",
		Category:    "bookings",
	},
	{
		ID:          "shift-rota",
		Name:        "Shift Rota",
		Description: "Morning and evening shifts for three staff members this week",
		Category:    "shifts",
	},
}

func (h *Handler) scenarioLoaders() map[string]func(context.Context) error {
	return map[string]func(context.Context) error{
		"quiet-month":    h.loadQuietMonthScenario,
		"busy-season":    h.loadBusySeasonScenario,
		"double-booking": h.loadDoubleBookingScenario,
		"shift-rota":     h.loadShiftRotaScenario,
	}
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	current := h.currentScenario
	h.scenarioMu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	load, ok := h.scenarioLoaders()[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		h.writeDomainError(w, r, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""

	if err := load(ctx); err != nil {
		h.writeDomainError(w, r, fmt.Sprintf("Failed to load scenario %s", req.ScenarioID), err)
		return
	}
	h.currentScenario = req.ScenarioID

	h.Log.Info().Str("scenario", req.ScenarioID).Msg("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadQuietMonthScenario(ctx context.Context) error {
	if err := h.seedRooms(ctx, "101", "102", "201", "202"); err != nil {
		return err
	}
	first := generic.PeriodOf(h.today()).Interval().Start

	stays := []demoStay{
		{guest: "Ana Ferreira", start: first.AddDays(2), nights: 3, total: 36000, status: stay.PaymentUnpaid, rooms: []string{"101"}},
		{guest: "Tomás Ortiz", start: first.AddDays(9), nights: 5, total: 60000, deposit: 15000, status: stay.PaymentDepositPaid, rooms: []string{"201"}},
		{guest: "Mei Chen", start: first.AddDays(14), nights: 2, total: 24000, status: stay.PaymentFullyPaid, rooms: []string{"102"}},
	}
	_, err := h.bookStays(ctx, stays)
	return err
}

func (h *Handler) loadBusySeasonScenario(ctx context.Context) error {
	if err := h.seedRooms(ctx, "101", "102", "103", "201", "202", "301"); err != nil {
		return err
	}
	first := generic.PeriodOf(h.today()).Interval().Start

	stays := []demoStay{
		// Three rooms, one invoice: the remainder lands on room 101.
		{guest: "Lindqvist wedding party", start: first.AddDays(4), nights: 3, total: 100001, deposit: 30000, status: stay.PaymentDepositPaid, rooms: []string{"101", "102", "103"}},
		// Starts last month; only the nights inside this month count.
		{guest: "Jonas Weber", start: first.AddDays(-3), nights: 7, total: 84000, status: stay.PaymentFullyPaid, rooms: []string{"201"}},
		{guest: "Priya Nair", start: first.AddDays(10), nights: 4, total: 48000, status: stay.PaymentUnpaid, rooms: []string{"202"}},
		{guest: "Out of order", start: first.AddDays(1), nights: 6, status: stay.PaymentUnpaid, rooms: []string{"301"}, kind: stay.KindMaintenance},
	}
	created, err := h.bookStays(ctx, stays)
	if err != nil {
		return err
	}

	// Jonas arrived; Priya cancelled.
	if err := h.applyTransition(ctx, created[1][0], stay.StateCheckedIn); err != nil {
		return err
	}
	return h.applyTransition(ctx, created[2][0], stay.StateCancelled)
}

func (h *Handler) loadDoubleBookingScenario(ctx context.Context) error {
	if err := h.seedRooms(ctx, "101", "102"); err != nil {
		return err
	}
	today := h.today()

	stays := []demoStay{
		{guest: "Sofia Rossi", start: today, nights: 4, total: 48000, status: stay.PaymentUnpaid, rooms: []string{"101"}},
		{guest: "Liam Byrne", start: today.AddDays(2), nights: 3, total: 36000, status: stay.PaymentUnpaid, rooms: []string{"101"}},
		{guest: "Yuki Tanaka", start: today.AddDays(1), nights: 2, total: 24000, status: stay.PaymentFullyPaid, rooms: []string{"102"}},
	}
	_, err := h.bookStays(ctx, stays)
	return err
}

func (h *Handler) loadShiftRotaScenario(ctx context.Context) error {
	if err := h.seedRooms(ctx, "101", "102"); err != nil {
		return err
	}

	week, err := shift.Load(ctx, h.Store, generic.WeekOf(h.today()))
	if err != nil {
		return err
	}

	// Steps through the rotation: 1 = morning 08:00, 2 = morning 09:00,
	// 3 = evening 16:00.
	rota := map[generic.StaffID][]int{
		"staff-reception-1":  {1, 1, 1, 1, 1, 0, 0},
		"staff-reception-2":  {3, 3, 3, 0, 0, 3, 3},
		"staff-housekeeping": {2, 2, 0, 2, 2, 2, 0},
	}
	for staffID, steps := range rota {
		for i, n := range steps {
			date := week.Period().Start.AddDays(i)
			for range n {
				if _, err := week.Toggle(staffID, date); err != nil {
					return err
				}
			}
		}
	}

	publisher := &shift.Publisher{Store: h.Store, SkipVersionCheck: h.SkipVersionCheck}
	_, err = publisher.Publish(ctx, week)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

type demoStay struct {
	guest   string
	start   generic.Date
	nights  int
	total   int64
	deposit int64
	status  stay.PaymentStatus
	rooms   []string
	kind    stay.BookingKind
}

func (h *Handler) seedRooms(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		room := stay.Resource{ID: generic.ResourceID(id), Label: "Room " + id, Kind: "double"}
		if len(id) > 0 {
			room.Floor = int(id[0] - '0')
		}
		if err := h.Store.SaveResource(ctx, room); err != nil {
			return fmt.Errorf("room %s: %w", id, err)
		}
	}
	return nil
}

// bookStays books each stay through the allocation engine and returns the
// created bookings per stay, in input order.
func (h *Handler) bookStays(ctx context.Context, stays []demoStay) ([][]stay.Booking, error) {
	out := make([][]stay.Booking, 0, len(stays))
	for _, s := range stays {
		interval, err := generic.NewStayInterval(s.start, s.start.AddDays(s.nights))
		if err != nil {
			return nil, err
		}
		rooms := make([]generic.ResourceID, len(s.rooms))
		for i, id := range s.rooms {
			rooms[i] = generic.ResourceID(id)
		}
		charges, err := stay.AllocateCharge(stay.AllocationRequest{
			TotalCharge:   generic.NewMoney(s.total, h.Currency),
			DepositPaid:   generic.NewMoney(s.deposit, h.Currency),
			PaymentStatus: s.status,
			Resources:     rooms,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.guest, err)
		}

		bookings, err := stay.ExpandAllocation(stay.Booking{
			Interval:      interval,
			State:         stay.StateConfirmed,
			PaymentStatus: s.status,
			Kind:          s.kind,
			GuestName:     s.guest,
		}, charges)
		if err != nil {
			return nil, err
		}
		if err := h.Store.CreateBookings(ctx, bookings); err != nil {
			return nil, fmt.Errorf("%s: %w", s.guest, err)
		}
		out = append(out, bookings)
	}
	return out, nil
}

func (h *Handler) applyTransition(ctx context.Context, b stay.Booking, to stay.LifecycleState) error {
	next, err := stay.Transition(b, to)
	if err != nil {
		return err
	}
	return h.Store.UpdateBooking(ctx, next)
}
