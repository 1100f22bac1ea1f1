/*
handlers.go - HTTP API handlers for the stay engine

PURPOSE:
  Exposes occupancy, timeline, allocation and shift rota via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to the
  stay and shift packages, which hold all the rules.

ENDPOINTS:
  Resources:
    GET    /api/resources                    List rooms in render order
    POST   /api/resources                    Create or update a room

  Bookings:
    GET    /api/bookings?from=&to=           Bookings overlapping [from, to)
    POST   /api/bookings                     Book one stay across N rooms
    POST   /api/bookings/{id}/checkin        Lifecycle transitions
    POST   /api/bookings/{id}/checkout
    POST   /api/bookings/{id}/cancel

  Reporting:
    GET    /api/occupancy?year=&month=       One reporting period
    GET    /api/occupancy/{year}             Twelve reporting periods
    GET    /api/timeline?from=&days=         Sparse day-by-room layout
    GET    /api/reports/occupancy.xlsx?year= Spreadsheet export
    GET    /api/reports/timeline.xlsx?from=&days=

  Allocation:
    POST   /api/allocations/preview          Split a charge without booking

  Shifts:
    GET    /api/shifts?week=                 Snapshot + version of a week
    POST   /api/shifts/advance               Toggle one cell of a working set
    POST   /api/shifts/publish               Write a working set back

  Scenarios (demo):
    GET    /api/scenarios                    List demo data sets
    GET    /api/scenarios/current            Currently loaded data set
    POST   /api/scenarios/load               Reset the store and load one

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Booking not found
  - 409: Week published by someone else in the meantime, or shift cell taken
  - 500: Internal errors, partially applied shift publish

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/stay-engine/config"
	"github.com/warp/stay-engine/generic"
	"github.com/warp/stay-engine/metrics"
	"github.com/warp/stay-engine/report"
	"github.com/warp/stay-engine/shift"
	"github.com/warp/stay-engine/stay"
)

const (
	defaultTimelineDays = 14
	maxTimelineDays     = 366
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is everything the API persists.
type Store interface {
	stay.BookingStore
	shift.Store

	// Reset clears all data. Used by demo scenarios only.
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store Store
	Log   zerolog.Logger

	Currency         string
	Exponent         int32
	SkipVersionCheck bool

	// Now is the clock used for "today" on the timeline.
	Now func() time.Time

	scenarioMu      sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store Store, cfg *config.Config, log zerolog.Logger) *Handler {
	return &Handler{
		Store:            store,
		Log:              log,
		Currency:         cfg.Currency.Code,
		Exponent:         cfg.Currency.Exponent,
		SkipVersionCheck: cfg.Shifts.SkipVersionCheck,
		Now:              time.Now,
	}
}

func (h *Handler) today() generic.Date {
	return generic.DateOf(h.Now())
}

// =============================================================================
// RESOURCE HANDLERS
// =============================================================================

// ListResources returns all rooms in render order.
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.Store.ListResources(r.Context())
	if err != nil {
		h.writeDomainError(w, r, "Failed to list resources", err)
		return
	}

	dtos := make([]ResourceDTO, len(resources))
	for i, res := range resources {
		dtos[i] = toResourceDTO(res)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateResource creates or updates a room.
func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req CreateResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Label == "" {
		writeError(w, http.StatusBadRequest, "id and label are required", nil)
		return
	}

	res := stay.Resource{
		ID:    generic.ResourceID(req.ID),
		Label: req.Label,
		Floor: req.Floor,
		Kind:  req.Kind,
	}
	if err := h.Store.SaveResource(r.Context(), res); err != nil {
		h.writeDomainError(w, r, "Failed to save resource", err)
		return
	}
	writeJSON(w, http.StatusCreated, toResourceDTO(res))
}

// =============================================================================
// BOOKING HANDLERS
// =============================================================================

// ListBookings returns bookings overlapping [from, to), cancelled included.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from/to", err)
		return
	}

	bookings, err := h.Store.ListBookings(r.Context(), window)
	if err != nil {
		h.writeDomainError(w, r, "Failed to list bookings", err)
		return
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = h.toBookingDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateBooking allocates the charge across the selected rooms and persists
// one booking per room, all or nothing.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	interval, err := parseWindow(req.Start, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid stay dates", err)
		return
	}

	allocReq, err := h.parseAllocation(req.AllocationRequestDTO)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid charge", err)
		return
	}

	ctx := r.Context()
	if err := h.checkResourcesExist(ctx, allocReq.Resources); err != nil {
		h.writeDomainError(w, r, "Unknown room", err)
		return
	}

	charges, err := stay.AllocateCharge(allocReq)
	if err != nil {
		h.writeDomainError(w, r, "Failed to allocate charge", err)
		return
	}

	kind := stay.BookingKind(req.Kind)
	if kind == "" {
		kind = stay.KindGuest
	}
	if kind != stay.KindGuest && kind != stay.KindMaintenance {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid kind: %s", req.Kind), nil)
		return
	}

	template := stay.Booking{
		Interval:      interval,
		State:         stay.StateConfirmed,
		PaymentStatus: allocReq.PaymentStatus,
		Kind:          kind,
		GuestName:     req.GuestName,
	}
	bookings, err := stay.ExpandAllocation(template, charges)
	if err != nil {
		h.writeDomainError(w, r, "Failed to build bookings", err)
		return
	}

	if err := h.Store.CreateBookings(ctx, bookings); err != nil {
		h.writeDomainError(w, r, "Failed to save bookings", err)
		return
	}
	metrics.ObserveAllocation(len(charges))
	metrics.IncBookingsCreated(string(allocReq.PaymentStatus), len(bookings))

	resp := CreateBookingResponse{
		GroupID:  bookings[0].GroupID,
		Bookings: make([]BookingDTO, len(bookings)),
		Charges:  h.toChargeDTOs(charges),
	}
	for i, b := range bookings {
		resp.Bookings[i] = h.toBookingDTO(b)
	}

	h.Log.Info().
		Str("group_id", resp.GroupID).
		Int("rooms", len(bookings)).
		Str("interval", interval.String()).
		Msg("booking created")
	writeJSON(w, http.StatusCreated, resp)
}

// CheckIn, CheckOut and Cancel apply a lifecycle transition.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, stay.StateCheckedIn)
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, stay.StateCheckedOut)
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, stay.StateCancelled)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, to stay.LifecycleState) {
	ctx := r.Context()
	id := generic.BookingID(chi.URLParam(r, "id"))

	booking, err := h.Store.GetBooking(ctx, id)
	if err != nil {
		h.writeDomainError(w, r, "Booking not found", err)
		return
	}

	updated, err := stay.Transition(*booking, to)
	if err != nil {
		h.writeDomainError(w, r, "Transition not allowed", err)
		return
	}
	if err := h.Store.UpdateBooking(ctx, updated); err != nil {
		h.writeDomainError(w, r, "Failed to update booking", err)
		return
	}
	metrics.IncBookingTransition(string(to))

	writeJSON(w, http.StatusOK, h.toBookingDTO(updated))
}

// =============================================================================
// OCCUPANCY HANDLERS
// =============================================================================

// GetOccupancy computes one reporting period.
func (h *Handler) GetOccupancy(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}
	period, err := generic.NewReportingPeriod(year, time.Month(month))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	occ, err := h.occupancy(r.Context(), period)
	if err != nil {
		h.writeDomainError(w, r, "Failed to compute occupancy", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toOccupancyDTO(occ))
}

// GetYearOccupancy computes the twelve reporting periods of a year.
func (h *Handler) GetYearOccupancy(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	months, err := h.yearOccupancy(r.Context(), year)
	if err != nil {
		h.writeDomainError(w, r, "Failed to compute occupancy", err)
		return
	}

	dtos := make([]OccupancyDTO, len(months))
	for i, m := range months {
		dtos[i] = h.toOccupancyDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) occupancy(ctx context.Context, period generic.ReportingPeriod) (stay.Occupancy, error) {
	defer metrics.ObserveOccupancy(time.Now())

	resources, err := h.Store.ListResources(ctx)
	if err != nil {
		return stay.Occupancy{}, err
	}
	bookings, err := h.Store.ListBookings(ctx, period.Interval())
	if err != nil {
		return stay.Occupancy{}, err
	}
	return stay.ComputeOccupancy(bookings, period, len(resources))
}

func (h *Handler) yearOccupancy(ctx context.Context, year int) ([]stay.Occupancy, error) {
	defer metrics.ObserveOccupancy(time.Now())

	resources, err := h.Store.ListResources(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := h.Store.ListBookings(ctx, yearInterval(year))
	if err != nil {
		return nil, err
	}
	return stay.ComputeYear(bookings, year, len(resources))
}

// =============================================================================
// TIMELINE HANDLERS
// =============================================================================

// GetTimeline lays out the bookings of a window of days.
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	window, bookings, err := h.loadTimeline(r)
	if err != nil {
		h.writeDomainError(w, r, "Failed to load timeline", err)
		return
	}

	blocks, err := stay.LayoutTimeline(bookings, window)
	if err != nil {
		h.writeDomainError(w, r, "Failed to lay out timeline", err)
		return
	}

	resp := TimelineResponse{
		Resources: make([]ResourceDTO, len(window.Resources)),
		Days:      make([]string, len(window.Days)),
		Blocks:    make([]TimelineBlockDTO, len(blocks)),
		Orphaned:  []OrphanedBookingDTO{},
	}
	for i, res := range window.Resources {
		resp.Resources[i] = toResourceDTO(res)
	}
	for i, d := range window.Days {
		resp.Days[i] = d.String()
	}
	for i, b := range blocks {
		resp.Blocks[i] = toTimelineBlockDTO(b)
	}
	for _, ref := range h.logOrphans(r, bookings, window) {
		resp.Orphaned = append(resp.Orphaned, OrphanedBookingDTO{
			BookingID:  string(ref.BookingID),
			ResourceID: string(ref.ResourceID),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) loadTimeline(r *http.Request) (stay.TimelineWindow, []stay.Booking, error) {
	ctx := r.Context()
	q := r.URL.Query()

	from := h.today()
	if s := q.Get("from"); s != "" {
		d, err := generic.ParseDate(s)
		if err != nil {
			return stay.TimelineWindow{}, nil, fmt.Errorf("from: %w", generic.ErrInvalidInterval)
		}
		from = d
	}
	days := defaultTimelineDays
	if s := q.Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || n > maxTimelineDays {
			return stay.TimelineWindow{}, nil, fmt.Errorf("days must be 0..%d: %w", maxTimelineDays, generic.ErrInvalidInterval)
		}
		days = n
	}

	resources, err := h.Store.ListResources(ctx)
	if err != nil {
		return stay.TimelineWindow{}, nil, err
	}
	window := stay.NewTimelineWindow(resources, from, days)
	window.Today = h.today()

	iv, ok := window.Interval()
	if !ok {
		return window, nil, nil
	}
	bookings, err := h.Store.ListBookings(ctx, iv)
	if err != nil {
		return stay.TimelineWindow{}, nil, err
	}
	return window, bookings, nil
}

// logOrphans reports bookings that reference a room outside the window.
// The layout skips them; the data inconsistency is surfaced here.
func (h *Handler) logOrphans(r *http.Request, bookings []stay.Booking, window stay.TimelineWindow) []*stay.UnknownResourceError {
	refs := stay.UnknownResourceRefs(bookings, window)
	if len(refs) == 0 {
		return nil
	}
	for _, ref := range refs {
		h.Log.Warn().
			Str("request_id", requestID(r)).
			Str("booking_id", string(ref.BookingID)).
			Str("resource_id", string(ref.ResourceID)).
			Msg("booking references a room outside the timeline")
	}
	return refs
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportOccupancy streams a year of occupancy as .xlsx.
func (h *Handler) ExportOccupancy(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	ctx := r.Context()
	resources, err := h.Store.ListResources(ctx)
	if err != nil {
		h.writeDomainError(w, r, "Failed to list resources", err)
		return
	}
	bookings, err := h.Store.ListBookings(ctx, yearInterval(year))
	if err != nil {
		h.writeDomainError(w, r, "Failed to list bookings", err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="occupancy-%d.xlsx"`, year))
	if err := report.OccupancyWorkbook(w, bookings, year, len(resources)); err != nil {
		h.Log.Error().Err(err).Int("year", year).Msg("occupancy export failed")
	}
}

// ExportTimeline streams the timeline grid as .xlsx.
func (h *Handler) ExportTimeline(w http.ResponseWriter, r *http.Request) {
	window, bookings, err := h.loadTimeline(r)
	if err != nil {
		h.writeDomainError(w, r, "Failed to load timeline", err)
		return
	}
	h.logOrphans(r, bookings, window)

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="timeline.xlsx"`)
	if err := report.TimelineWorkbook(w, bookings, window); err != nil {
		h.Log.Error().Err(err).Msg("timeline export failed")
	}
}

// =============================================================================
// ALLOCATION HANDLERS
// =============================================================================

// PreviewAllocation splits a charge without persisting anything.
func (h *Handler) PreviewAllocation(w http.ResponseWriter, r *http.Request) {
	var req AllocationRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	allocReq, err := h.parseAllocation(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid charge", err)
		return
	}
	charges, err := stay.AllocateCharge(allocReq)
	if err != nil {
		h.writeDomainError(w, r, "Failed to allocate charge", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toChargeDTOs(charges))
}

func (h *Handler) parseAllocation(req AllocationRequestDTO) (stay.AllocationRequest, error) {
	total, err := generic.ParseMoney(req.TotalCharge, h.Currency, h.Exponent)
	if err != nil {
		return stay.AllocationRequest{}, fmt.Errorf("total_charge: %w", err)
	}
	deposit := generic.NewMoney(0, h.Currency)
	if req.DepositPaid != "" {
		if deposit, err = generic.ParseMoney(req.DepositPaid, h.Currency, h.Exponent); err != nil {
			return stay.AllocationRequest{}, fmt.Errorf("deposit_paid: %w", err)
		}
	}

	resources := make([]generic.ResourceID, len(req.Resources))
	for i, id := range req.Resources {
		resources[i] = generic.ResourceID(id)
	}
	return stay.AllocationRequest{
		TotalCharge:   total,
		DepositPaid:   deposit,
		PaymentStatus: stay.PaymentStatus(req.PaymentStatus),
		Resources:     resources,
	}, nil
}

func (h *Handler) checkResourcesExist(ctx context.Context, ids []generic.ResourceID) error {
	resources, err := h.Store.ListResources(ctx)
	if err != nil {
		return err
	}
	known := make(map[generic.ResourceID]bool, len(resources))
	for _, res := range resources {
		known[res.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return fmt.Errorf("room %s: %w", id, generic.ErrInvalidSelection)
		}
	}
	return nil
}

func (h *Handler) toChargeDTOs(charges []stay.AllocatedCharge) []AllocatedChargeDTO {
	dtos := make([]AllocatedChargeDTO, len(charges))
	for i, c := range charges {
		dtos[i] = AllocatedChargeDTO{
			ResourceID:     string(c.ResourceID),
			ShareOfTotal:   h.toMoneyDTO(c.ShareOfTotal),
			ShareOfDeposit: h.toMoneyDTO(c.ShareOfDeposit),
		}
	}
	return dtos
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// GetShiftWeek returns the stored week the client starts editing from.
func (h *Handler) GetShiftWeek(w http.ResponseWriter, r *http.Request) {
	day := h.today()
	if s := r.URL.Query().Get("week"); s != "" {
		d, err := generic.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid week", err)
			return
		}
		day = d
	}

	week, err := shift.Load(r.Context(), h.Store, generic.WeekOf(day))
	if err != nil {
		h.writeDomainError(w, r, "Failed to load week", err)
		return
	}
	writeJSON(w, http.StatusOK, WeekDTO{
		WeekStart:   week.Period().Start.String(),
		Version:     week.Version(),
		Assignments: toAssignmentDTOs(week.Snapshot()),
	})
}

// AdvanceShift toggles one cell of the client's working set.
func (h *Handler) AdvanceShift(w http.ResponseWriter, r *http.Request) {
	var req AdvanceShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	week, err := restoreWeek(req.WeekStart, req.Version, req.Snapshot, req.Working)
	if err != nil {
		h.writeDomainError(w, r, "Invalid week", err)
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	cell, err := week.Toggle(generic.StaffID(req.StaffID), date)
	if err != nil {
		h.writeDomainError(w, r, "Failed to advance shift", err)
		return
	}

	resp := AdvanceShiftResponse{
		Working: toAssignmentDTOs(week.Working()),
		Dirty:   week.Dirty(),
	}
	state, _ := shift.StateOf(cell)
	resp.State = state.String()
	if cell != nil {
		dto := toAssignmentDTO(*cell)
		resp.Cell = &dto
	}
	writeJSON(w, http.StatusOK, resp)
}

// PublishShifts writes the client's working set back to storage.
func (h *Handler) PublishShifts(w http.ResponseWriter, r *http.Request) {
	var req PublishShiftsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	week, err := restoreWeek(req.WeekStart, req.Version, req.Snapshot, req.Working)
	if err != nil {
		h.writeDomainError(w, r, "Invalid week", err)
		return
	}

	publisher := shift.Publisher{Store: h.Store, SkipVersionCheck: h.SkipVersionCheck}
	result, err := publisher.Publish(r.Context(), week)

	var pubErr *shift.PublishError
	switch {
	case err == nil:
	case errors.As(err, &pubErr):
		// Partially applied; report what made it.
	case errors.Is(err, generic.ErrConcurrentModification):
		metrics.IncShiftConflict()
		h.writeDomainError(w, r, "Week was published by someone else, reload it", err)
		return
	default:
		h.writeDomainError(w, r, "Failed to publish week", err)
		return
	}

	resp := PublishShiftsResponse{
		Version:  result.Version,
		Deleted:  toAssignmentDTOs(result.Deleted),
		Upserted: toAssignmentDTOs(result.Upserted),
	}
	metrics.AddShiftItems("delete", "ok", len(result.Deleted))
	metrics.AddShiftItems("upsert", "ok", len(result.Upserted))

	if pubErr != nil {
		resp.FailedDeletes = toAssignmentDTOs(pubErr.FailedDeletes)
		resp.FailedUpserts = toAssignmentDTOs(pubErr.FailedUpserts)
		resp.Error = pubErr.Error()
		metrics.AddShiftItems("delete", "failed", len(pubErr.FailedDeletes))
		metrics.AddShiftItems("upsert", "failed", len(pubErr.FailedUpserts))
		h.Log.Error().
			Err(pubErr.Cause).
			Str("request_id", requestID(r)).
			Str("week", week.Period().String()).
			Int("failed_deletes", len(pubErr.FailedDeletes)).
			Int("failed_upserts", len(pubErr.FailedUpserts)).
			Msg("shift publish partially applied")
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	h.Log.Info().
		Str("week", week.Period().String()).
		Int64("version", resp.Version).
		Int("deleted", len(resp.Deleted)).
		Int("upserted", len(resp.Upserted)).
		Msg("shift week published")
	writeJSON(w, http.StatusOK, resp)
}

func restoreWeek(weekStart string, version int64, snapshot, working []AssignmentDTO) (*shift.Week, error) {
	start, err := generic.ParseDate(weekStart)
	if err != nil {
		return nil, fmt.Errorf("week_start: %w", generic.ErrOutsideWeek)
	}
	snap, err := fromAssignmentDTOs(snapshot)
	if err != nil {
		return nil, err
	}

	week, err := shift.NewWeek(generic.WeekOf(start), snap, version)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, generic.ErrInvalidSelection)
	}

	// A missing working set means no edits yet; an empty one means "clear".
	if working == nil {
		return week, nil
	}
	work, err := fromAssignmentDTOs(working)
	if err != nil {
		return nil, err
	}
	if err := week.Restore(work); err != nil {
		return nil, err
	}
	return week, nil
}

func fromAssignmentDTOs(dtos []AssignmentDTO) ([]shift.Assignment, error) {
	out := make([]shift.Assignment, len(dtos))
	for i, d := range dtos {
		a, err := fromAssignmentDTO(d)
		if err != nil {
			return nil, fmt.Errorf("assignment %d date: %w", i, generic.ErrOutsideWeek)
		}
		out[i] = a
	}
	return out, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps the error taxonomy onto HTTP status codes and logs
// server-side failures.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Log.Error().
			Err(err).
			Str("request_id", requestID(r)).
			Str("path", r.URL.Path).
			Msg(message)
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, generic.ErrConcurrentModification), errors.Is(err, generic.ErrDuplicateShift):
		return http.StatusConflict
	case generic.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseWindow parses a half-open [from, to) pair of dates.
func parseWindow(from, to string) (generic.StayInterval, error) {
	start, err := generic.ParseDate(from)
	if err != nil {
		return generic.StayInterval{}, err
	}
	end, err := generic.ParseDate(to)
	if err != nil {
		return generic.StayInterval{}, err
	}
	return generic.NewStayInterval(start, end)
}

func yearInterval(year int) generic.StayInterval {
	return generic.StayInterval{
		Start: generic.NewDate(year, time.January, 1),
		End:   generic.NewDate(year+1, time.January, 1),
	}
}

// percent renders a 0..1 rate for log lines.
func percent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}
