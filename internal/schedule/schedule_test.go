package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/coverage-api-go/pkg/models"
)

func TestShiftsForDate(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	date, err := ParseDate("2026-03-02", loc)
	require.NoError(t, err)

	at := func(day, hour int) time.Time {
		return time.Date(2026, 3, day, hour, 0, 0, 0, loc)
	}
	shifts := []models.Shift{
		{ID: "before", StartTime: at(1, 23), EndTime: at(2, 1)},
		{ID: "midnight", StartTime: at(2, 0), EndTime: at(2, 8)},
		{ID: "late", StartTime: at(2, 22), EndTime: at(2, 23)},
		{ID: "next", StartTime: at(3, 0), EndTime: at(3, 8)},
		// 03:00 UTC on the 3rd is still the 2nd in New York
		{ID: "utc", StartTime: time.Date(2026, 3, 3, 3, 0, 0, 0, time.UTC), EndTime: time.Date(2026, 3, 3, 4, 0, 0, 0, time.UTC)},
	}

	got := ShiftsForDate(shifts, date, loc)

	var ids []string
	for _, sh := range got {
		ids = append(ids, sh.ID)
	}
	assert.Equal(t, []string{"midnight", "late", "utc"}, ids)
}

func TestOverlap(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	assert.True(t, Overlap(base, base.Add(2*time.Hour), base.Add(time.Hour), base.Add(3*time.Hour)))
	assert.False(t, Overlap(base, base.Add(time.Hour), base.Add(time.Hour), base.Add(2*time.Hour)))
	assert.Equal(t, 2.5, DurationHours(base, base.Add(150*time.Minute)))
}

func TestGrid(t *testing.T) {
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	shifts := []models.Shift{
		{ID: "a2", StationID: "a", StartTime: base.Add(9*time.Hour + 30*time.Minute)},
		{ID: "b1", StationID: "b", StartTime: base.Add(14 * time.Hour)},
		{ID: "a1", StationID: "a", StartTime: base.Add(9 * time.Hour)},
		{ID: "a3", StationID: "a", StartTime: base.Add(6 * time.Hour)},
		{ID: "x", StartTime: base.Add(12 * time.Hour)},
	}

	rows := Grid(shifts, time.UTC)

	require.Len(t, rows, 3)
	assert.Equal(t, "a", rows[0].StationID)
	require.Len(t, rows[0].Cells, 2)
	assert.Equal(t, 6, rows[0].Cells[0].Hour)
	assert.Equal(t, 9, rows[0].Cells[1].Hour)
	assert.Equal(t, "a1", rows[0].Cells[1].Shifts[0].ID)
	assert.Equal(t, "a2", rows[0].Cells[1].Shifts[1].ID)
	assert.Equal(t, "b", rows[1].StationID)
	assert.Equal(t, Unassigned, rows[2].StationID)
}
