/*
excel.go - XLSX export of occupancy and timeline data

PURPOSE:
  Front-desk managers reconcile monthly figures in a spreadsheet. This
  file renders the results of stay.ComputeYear and stay.OccupancyGrid into
  an .xlsx workbook.

SHEETS:
  Occupancy:  One row per month plus a year total
  Timeline:   One row per room, one column per day, cell = bookings that
              night (values above 1 are double-bookings, highlighted)

SEE ALSO:
  - stay/occupancy.go: ComputeYear
  - stay/timeline.go: LayoutTimeline, OccupancyGrid
*/
package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/warp/stay-engine/stay"
	"github.com/xuri/excelize/v2"
)

// maxSheetName is Excel's limit on sheet name length.
const maxSheetName = 31

// =============================================================================
// WORKBOOK - sequential sheet/row writer over excelize
// =============================================================================

// Workbook writes sheets top to bottom.
type Workbook struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

func NewWorkbook() *Workbook {
	return &Workbook{file: excelize.NewFile()}
}

// AddSheet starts a new sheet and makes it current.
func (w *Workbook) AddSheet(name string) error {
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}

	if w.currentSheet == "" {
		// Rename the default sheet
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

// WriteHeader writes a bold header row.
func (w *Workbook) WriteHeader(columns []string) error {
	row := make([]any, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	start := w.currentRow
	if err := w.WriteRow(row); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	return w.styleRange(1, start, len(columns), start, style)
}

// WriteRow writes values into the next row of the current sheet.
func (w *Workbook) WriteRow(row []any) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, val); err != nil {
			return err
		}
	}

	w.currentRow++
	return nil
}

func (w *Workbook) styleRange(col1, row1, col2, row2, style int) error {
	from, err := excelize.CoordinatesToCellName(col1, row1)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(col2, row2)
	if err != nil {
		return err
	}
	return w.file.SetCellStyle(w.currentSheet, from, to, style)
}

// Write serializes the workbook.
func (w *Workbook) Write(out io.Writer) error {
	return w.file.Write(out)
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

// =============================================================================
// OCCUPANCY SHEET
// =============================================================================

var occupancyColumns = []string{
	"Period", "Rooms", "Potential nights", "Occupied nights",
	"Occupancy %", "Check-ins", "Avg stay (nights)", "Revenue", "Currency",
}

// WriteOccupancy adds an "Occupancy" sheet with one row per result and a
// total row. Money cells hold major units.
func (w *Workbook) WriteOccupancy(months []stay.Occupancy) error {
	if err := w.AddSheet("Occupancy"); err != nil {
		return err
	}
	if err := w.WriteHeader(occupancyColumns); err != nil {
		return err
	}

	var (
		potential, occupied, checkIns, stayNights int
		revenue                                   = decimal.Zero
		currency                                  string
	)
	for _, m := range months {
		if m.Revenue.Currency != "" {
			currency = m.Revenue.Currency
		}
		err := w.WriteRow([]any{
			m.Period.String(),
			m.ResourceCount,
			m.PotentialRoomNights,
			m.OccupiedNights,
			m.OccupancyPercent().Round(2).InexactFloat64(),
			m.CheckIns,
			m.AvgStayNights.Round(2).InexactFloat64(),
			m.Revenue.Decimal().InexactFloat64(),
			m.Revenue.Currency,
		})
		if err != nil {
			return err
		}
		potential += m.PotentialRoomNights
		occupied += m.OccupiedNights
		checkIns += m.CheckIns
		stayNights += int(m.AvgStayNights.Mul(decimal.NewFromInt(int64(m.CheckIns))).Round(0).IntPart())
		revenue = revenue.Add(m.Revenue.Decimal())
	}

	rate, avg := decimal.Zero, decimal.Zero
	if potential > 0 {
		rate = decimal.NewFromInt(int64(occupied)).Div(decimal.NewFromInt(int64(potential))).Mul(decimal.NewFromInt(100))
	}
	if checkIns > 0 {
		avg = decimal.NewFromInt(int64(stayNights)).Div(decimal.NewFromInt(int64(checkIns)))
	}
	return w.WriteRow([]any{
		"Total", "", potential, occupied,
		rate.Round(2).InexactFloat64(), checkIns, avg.Round(2).InexactFloat64(),
		revenue.InexactFloat64(), currency,
	})
}

// =============================================================================
// TIMELINE SHEET
// =============================================================================

// WriteTimeline adds a "Timeline" sheet: rooms down, days across.
func (w *Workbook) WriteTimeline(blocks []stay.PlacedBlock, window stay.TimelineWindow) error {
	if err := w.AddSheet("Timeline"); err != nil {
		return err
	}

	header := make([]string, 0, len(window.Days)+1)
	header = append(header, "Room")
	for _, d := range window.Days {
		header = append(header, d.String())
	}
	if err := w.WriteHeader(header); err != nil {
		return err
	}

	conflict, err := w.file.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#F4B6B6"}},
	})
	if err != nil {
		return err
	}

	grid := stay.OccupancyGrid(blocks, window)
	for i, r := range window.Resources {
		row := make([]any, 0, len(window.Days)+1)
		row = append(row, r.Label)
		for _, n := range grid[i] {
			if n == 0 {
				row = append(row, "")
				continue
			}
			row = append(row, n)
		}
		line := w.currentRow
		if err := w.WriteRow(row); err != nil {
			return err
		}
		for j, n := range grid[i] {
			if n > 1 {
				if err := w.styleRange(j+2, line, j+2, line, conflict); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// =============================================================================
// CONVENIENCE
// =============================================================================

// OccupancyWorkbook renders a full year of occupancy into out.
func OccupancyWorkbook(out io.Writer, bookings []stay.Booking, year, resourceCount int) error {
	months, err := stay.ComputeYear(bookings, year, resourceCount)
	if err != nil {
		return err
	}

	wb := NewWorkbook()
	defer wb.Close()
	if err := wb.WriteOccupancy(months); err != nil {
		return err
	}
	return wb.Write(out)
}

// TimelineWorkbook renders the layout of one window into out.
func TimelineWorkbook(out io.Writer, bookings []stay.Booking, window stay.TimelineWindow) error {
	blocks, err := stay.LayoutTimeline(bookings, window)
	if err != nil {
		return err
	}

	wb := NewWorkbook()
	defer wb.Close()
	if err := wb.WriteTimeline(blocks, window); err != nil {
		return err
	}
	return wb.Write(out)
}
