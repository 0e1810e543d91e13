// Package schedule holds the calendar bookkeeping around shifts: picking the
// shifts of a day and laying them out in a station/hour grid.
package schedule

import (
	"sort"
	"time"

	"github.com/arnavshah/coverage-api-go/pkg/models"
)

// Unassigned is the grid row for shifts without a station
const Unassigned = "unassigned"

// DayWindow returns the [start, end) bounds of date's calendar day in loc
func DayWindow(date time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// ParseDate parses a YYYY-MM-DD date in loc
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation("2006-01-02", s, loc)
}

// ShiftsForDate keeps the shifts starting on date's calendar day in loc
func ShiftsForDate(shifts []models.Shift, date time.Time, loc *time.Location) []models.Shift {
	start, end := DayWindow(date, loc)
	out := make([]models.Shift, 0, len(shifts))
	for _, sh := range shifts {
		if !sh.StartTime.Before(start) && sh.StartTime.Before(end) {
			out = append(out, sh)
		}
	}
	return out
}

// DurationHours calculates the duration between two times in hours
func DurationHours(start, end time.Time) float64 {
	return end.Sub(start).Hours()
}

// Overlap checks if two time ranges overlap
func Overlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Grid groups shifts by station, then by the hour they start in loc.
// Rows follow first appearance of each station; cells and shifts are
// ordered by time.
func Grid(shifts []models.Shift, loc *time.Location) []models.GridRow {
	if loc == nil {
		loc = time.UTC
	}

	byStation := make(map[string]map[int][]models.Shift)
	var order []string
	for _, sh := range shifts {
		id := sh.StationID
		if id == "" {
			id = Unassigned
		}
		hours, ok := byStation[id]
		if !ok {
			hours = make(map[int][]models.Shift)
			byStation[id] = hours
			order = append(order, id)
		}
		h := sh.StartTime.In(loc).Hour()
		hours[h] = append(hours[h], sh)
	}

	rows := make([]models.GridRow, 0, len(order))
	for _, id := range order {
		hours := byStation[id]
		row := models.GridRow{StationID: id}
		for h := 0; h < 24; h++ {
			cell, ok := hours[h]
			if !ok {
				continue
			}
			sort.SliceStable(cell, func(i, j int) bool {
				return cell[i].StartTime.Before(cell[j].StartTime)
			})
			row.Cells = append(row.Cells, models.GridCell{Hour: h, Shifts: cell})
		}
		rows = append(rows, row)
	}
	return rows
}
