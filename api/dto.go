/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Money crosses
  the wire as a major-unit decimal string ("1234.50") so clients never
  deal with minor units.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers and the domain packages, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/stay-engine/generic"
	"github.com/warp/stay-engine/shift"
	"github.com/warp/stay-engine/stay"
)

// =============================================================================
// MONEY
// =============================================================================

type MoneyDTO struct {
	Amount   string `json:"amount"` // major units, e.g. "3333.34"
	Minor    int64  `json:"minor"`
	Currency string `json:"currency"`
}

func (h *Handler) toMoneyDTO(m generic.Money) MoneyDTO {
	currency := m.Currency
	if currency == "" {
		currency = h.Currency
	}
	return MoneyDTO{
		Amount:   m.DecimalWithExponent(h.Exponent).StringFixed(h.Exponent),
		Minor:    m.Minor,
		Currency: currency,
	}
}

// =============================================================================
// RESOURCES
// =============================================================================

type ResourceDTO struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Floor int    `json:"floor,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

type CreateResourceRequest struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Floor int    `json:"floor"`
	Kind  string `json:"kind"`
}

func toResourceDTO(r stay.Resource) ResourceDTO {
	return ResourceDTO{ID: string(r.ID), Label: r.Label, Floor: r.Floor, Kind: r.Kind}
}

// =============================================================================
// BOOKINGS
// =============================================================================

type BookingDTO struct {
	ID            string   `json:"id"`
	ResourceID    string   `json:"resource_id"`
	Start         string   `json:"start"`
	End           string   `json:"end"`
	Nights        int      `json:"nights"`
	State         string   `json:"state"`
	PaymentStatus string   `json:"payment_status"`
	Kind          string   `json:"kind"`
	TotalAmount   MoneyDTO `json:"total_amount"`
	DepositPaid   MoneyDTO `json:"deposit_paid"`
	GuestName     string   `json:"guest_name,omitempty"`
	GroupID       string   `json:"group_id,omitempty"`
}

func (h *Handler) toBookingDTO(b stay.Booking) BookingDTO {
	return BookingDTO{
		ID:            string(b.ID),
		ResourceID:    string(b.ResourceID),
		Start:         b.Interval.Start.String(),
		End:           b.Interval.End.String(),
		Nights:        b.Nights(),
		State:         string(b.State),
		PaymentStatus: string(b.PaymentStatus),
		Kind:          string(b.Kind),
		TotalAmount:   h.toMoneyDTO(b.TotalAmount),
		DepositPaid:   h.toMoneyDTO(b.DepositPaid),
		GuestName:     b.GuestName,
		GroupID:       b.GroupID,
	}
}

// AllocationRequestDTO is the body of the allocation preview endpoint and
// the charge part of a booking request.
type AllocationRequestDTO struct {
	TotalCharge   string   `json:"total_charge"`           // major units
	DepositPaid   string   `json:"deposit_paid,omitempty"` // major units
	PaymentStatus string   `json:"payment_status"`
	Resources     []string `json:"resources"`
}

// CreateBookingRequest books one stay across one or more rooms.
type CreateBookingRequest struct {
	AllocationRequestDTO
	Start     string `json:"start"`
	End       string `json:"end"`
	GuestName string `json:"guest_name"`
	Kind      string `json:"kind,omitempty"` // guest (default) or maintenance
}

type AllocatedChargeDTO struct {
	ResourceID     string   `json:"resource_id"`
	ShareOfTotal   MoneyDTO `json:"share_of_total"`
	ShareOfDeposit MoneyDTO `json:"share_of_deposit"`
}

type CreateBookingResponse struct {
	GroupID  string               `json:"group_id,omitempty"`
	Bookings []BookingDTO         `json:"bookings"`
	Charges  []AllocatedChargeDTO `json:"charges"`
}

// =============================================================================
// OCCUPANCY
// =============================================================================

type OccupancyDTO struct {
	Period              string   `json:"period"`
	ResourceCount       int      `json:"resource_count"`
	PotentialRoomNights int      `json:"potential_room_nights"`
	OccupiedNights      int      `json:"occupied_nights"`
	OccupancyRate       string   `json:"occupancy_rate"`
	OccupancyPercent    string   `json:"occupancy_percent"`
	Revenue             MoneyDTO `json:"revenue"`
	CheckIns            int      `json:"check_ins"`
	AvgStayNights       string   `json:"avg_stay_nights"`
}

func (h *Handler) toOccupancyDTO(o stay.Occupancy) OccupancyDTO {
	return OccupancyDTO{
		Period:              o.Period.String(),
		ResourceCount:       o.ResourceCount,
		PotentialRoomNights: o.PotentialRoomNights,
		OccupiedNights:      o.OccupiedNights,
		OccupancyRate:       o.OccupancyRate.StringFixed(4),
		OccupancyPercent:    o.OccupancyPercent().StringFixed(2),
		Revenue:             h.toMoneyDTO(o.Revenue),
		CheckIns:            o.CheckIns,
		AvgStayNights:       o.AvgStayNights.StringFixed(2),
	}
}

// =============================================================================
// TIMELINE
// =============================================================================

type TimelineBlockDTO struct {
	BookingID    string `json:"booking_id"`
	ResourceID   string `json:"resource_id"`
	RowIndex     int    `json:"row_index"`
	DayIndex     int    `json:"day_index"`
	WidthInDays  int    `json:"width_in_days"`
	ClippedStart bool   `json:"clipped_start"`
	ClippedEnd   bool   `json:"clipped_end"`
	Layer        int    `json:"layer"`
	DisplayState string `json:"display_state"`
	GuestName    string `json:"guest_name,omitempty"`
}

type TimelineResponse struct {
	Resources []ResourceDTO        `json:"resources"`
	Days      []string             `json:"days"`
	Blocks    []TimelineBlockDTO   `json:"blocks"`
	Orphaned  []OrphanedBookingDTO `json:"orphaned"`
}

// OrphanedBookingDTO is a booking whose room is not in the window.
type OrphanedBookingDTO struct {
	BookingID  string `json:"booking_id"`
	ResourceID string `json:"resource_id"`
}

func toTimelineBlockDTO(b stay.PlacedBlock) TimelineBlockDTO {
	return TimelineBlockDTO{
		BookingID:    string(b.Booking.ID),
		ResourceID:   string(b.ResourceID),
		RowIndex:     b.RowIndex,
		DayIndex:     b.DayIndex,
		WidthInDays:  b.WidthInDays,
		ClippedStart: b.ClippedStart,
		ClippedEnd:   b.ClippedEnd,
		Layer:        b.Layer,
		DisplayState: string(b.DisplayState),
		GuestName:    b.Booking.GuestName,
	}
}

// =============================================================================
// SHIFTS
// =============================================================================

type AssignmentDTO struct {
	ID        string `json:"id,omitempty"`
	StaffID   string `json:"staff_id"`
	Date      string `json:"date"`
	Type      string `json:"type"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func toAssignmentDTO(a shift.Assignment) AssignmentDTO {
	return AssignmentDTO{
		ID:        string(a.ID),
		StaffID:   string(a.StaffID),
		Date:      a.Date.String(),
		Type:      string(a.Type),
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
	}
}

func toAssignmentDTOs(as []shift.Assignment) []AssignmentDTO {
	dtos := make([]AssignmentDTO, len(as))
	for i, a := range as {
		dtos[i] = toAssignmentDTO(a)
	}
	return dtos
}

func fromAssignmentDTO(d AssignmentDTO) (shift.Assignment, error) {
	date, err := generic.ParseDate(d.Date)
	if err != nil {
		return shift.Assignment{}, err
	}
	return shift.Assignment{
		ID:        generic.AssignmentID(d.ID),
		StaffID:   generic.StaffID(d.StaffID),
		Date:      date,
		Type:      shift.ShiftType(d.Type),
		StartTime: d.StartTime,
		EndTime:   d.EndTime,
	}, nil
}

type WeekDTO struct {
	WeekStart   string          `json:"week_start"`
	Version     int64           `json:"version"`
	Assignments []AssignmentDTO `json:"assignments"`
}

// AdvanceShiftRequest carries the client's working set plus the cell to
// toggle. The server is stateless between toggles; the week lives in the
// client until it is published.
type AdvanceShiftRequest struct {
	WeekStart string          `json:"week_start"`
	Version   int64           `json:"version"`
	Snapshot  []AssignmentDTO `json:"snapshot"`
	Working   []AssignmentDTO `json:"working"`
	StaffID   string          `json:"staff_id"`
	Date      string          `json:"date"`
}

type AdvanceShiftResponse struct {
	Cell    *AssignmentDTO  `json:"cell"` // null when the cell wrapped to Empty
	State   string          `json:"state"`
	Working []AssignmentDTO `json:"working"`
	Dirty   bool            `json:"dirty"`
}

// PublishShiftsRequest publishes a working set against its snapshot.
type PublishShiftsRequest struct {
	WeekStart string          `json:"week_start"`
	Version   int64           `json:"version"`
	Snapshot  []AssignmentDTO `json:"snapshot"`
	Working   []AssignmentDTO `json:"working"`
}

type PublishShiftsResponse struct {
	Version       int64           `json:"version"`
	Deleted       []AssignmentDTO `json:"deleted"`
	Upserted      []AssignmentDTO `json:"upserted"`
	FailedDeletes []AssignmentDTO `json:"failed_deletes,omitempty"`
	FailedUpserts []AssignmentDTO `json:"failed_upserts,omitempty"`
	// Set when some items failed; the client must reload the week.
	Error string `json:"error,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
