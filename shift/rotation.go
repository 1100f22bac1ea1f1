// Package shift implements the weekly staff rota: a four-state rotation per
// (staff member, day) cell, a week-sized working set, and the diff/publish
// protocol that writes the working set back to storage.
package shift

import (
	"fmt"

	"github.com/warp/stay-engine/generic"
)

// =============================================================================
// ASSIGNMENT
// =============================================================================

type ShiftType string

const (
	TypeMorning ShiftType = "morning"
	TypeEvening ShiftType = "evening"
)

// Assignment is the shift of one staff member on one day. Unique per Cell.
// An empty ID means "not yet stored".
type Assignment struct {
	ID        generic.AssignmentID `json:"id,omitempty"`
	StaffID   generic.StaffID      `json:"staff_id"`
	Date      generic.Date         `json:"date"`
	Type      ShiftType            `json:"type"`
	StartTime string               `json:"start_time"` // HH:MM
	EndTime   string               `json:"end_time"`   // HH:MM, 24:00 = midnight
}

// Cell identifies the slot an assignment occupies.
type Cell struct {
	StaffID generic.StaffID
	Date    generic.Date
}

func (a Assignment) Cell() Cell { return Cell{StaffID: a.StaffID, Date: a.Date} }

// Equal compares field by field, dates by calendar day.
func (a Assignment) Equal(b Assignment) bool {
	return a.ID == b.ID && a.StaffID == b.StaffID && a.Date.Equal(b.Date) &&
		a.Type == b.Type && a.StartTime == b.StartTime && a.EndTime == b.EndTime
}

// =============================================================================
// ROTATION - Empty -> Morning@08 -> Morning@09 -> Evening@16 -> Empty
// =============================================================================

// State is a position in the rotation. Empty is the absence of a record.
type State int

const (
	StateEmpty State = iota
	StateMorningEight
	StateMorningNine
	StateEvening

	stateCount
)

type slot struct {
	Type  ShiftType
	Start string
	End   string
}

// Eight-hour shifts, indexed by State.
var slots = map[State]slot{
	StateMorningEight: {Type: TypeMorning, Start: "08:00", End: "16:00"},
	StateMorningNine:  {Type: TypeMorning, Start: "09:00", End: "17:00"},
	StateEvening:      {Type: TypeEvening, Start: "16:00", End: "24:00"},
}

func (s State) String() string {
	if s == StateEmpty {
		return "empty"
	}
	sl, ok := slots[s]
	if !ok {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return string(sl.Type) + "@" + sl.Start
}

// Next is the only transition. There is no jump to an arbitrary state.
func (s State) Next() State { return (s + 1) % stateCount }

// StateOf maps a stored assignment back to its rotation state.
func StateOf(a *Assignment) (State, error) {
	if a == nil {
		return StateEmpty, nil
	}
	for s, sl := range slots {
		if sl.Type == a.Type && sl.Start == a.StartTime {
			return s, nil
		}
	}
	return StateEmpty, fmt.Errorf("%s %s on %s: %w", a.Type, a.StartTime, a.Date, generic.ErrUnknownShiftState)
}

// Advance moves a cell one step forward. nil in means Empty, nil out means
// the cell wrapped back to Empty and its record must be removed. The
// assignment ID is kept across the Morning/Evening steps.
func Advance(cell Cell, current *Assignment) (*Assignment, error) {
	state, err := StateOf(current)
	if err != nil {
		return nil, err
	}
	next := state.Next()
	if next == StateEmpty {
		return nil, nil
	}

	sl := slots[next]
	a := &Assignment{
		StaffID:   cell.StaffID,
		Date:      cell.Date,
		Type:      sl.Type,
		StartTime: sl.Start,
		EndTime:   sl.End,
	}
	if current != nil {
		a.ID = current.ID
	}
	return a, nil
}
