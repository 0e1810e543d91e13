package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/coverage-api-go/pkg/coverage"
	"github.com/arnavshah/coverage-api-go/pkg/models"
)

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"stationId":        "station_id",
		"requiredStaffing": "required_staffing",
		"IsActive":         "is_active",
		"shiftID":          "shift_id",
		"HTTPServer":       "http_server",
		"time_slots":       "time_slots",
		"start":            "start",
		"slot2Start":       "slot2_start",
	}
	for in, expected := range tests {
		assert.Equal(t, expected, SnakeCase(in), in)
	}
}

func TestNormalizeKeys(t *testing.T) {
	body := []byte(`{
		"targetDate": "2026-03-02",
		"stations": [{"id": "s1", "isActive": true, "requirements": [{"requiredStaffing": 4, "minimumStaffing": 2, "timeSlots": [{"start": "09:00", "end": "17:00"}]}]}],
		"shifts": [{"id": "a", "stationId": "s1", "station_id": "s2", "workerId": null, "startTime": "2026-03-02T09:00:00Z", "endTime": "2026-03-02T17:00:00Z"}]
	}`)

	out, err := NormalizeKeys(body)
	require.NoError(t, err)

	var in models.CoverageInput
	require.NoError(t, json.Unmarshal(out, &in))

	assert.Equal(t, "2026-03-02", in.TargetDate)
	require.Len(t, in.Stations, 1)
	assert.True(t, in.Stations[0].IsActive)
	assert.Equal(t, 4, in.Stations[0].Requirements[0].RequiredStaffing)
	assert.Equal(t, "17:00", in.Stations[0].Requirements[0].TimeSlots[0].End)
	require.Len(t, in.Shifts, 1)
	assert.Equal(t, "s2", in.Shifts[0].StationID, "snake_case key wins")
	assert.Empty(t, in.Shifts[0].WorkerID)
	assert.Equal(t, 8*time.Hour, in.Shifts[0].EndTime.Sub(in.Shifts[0].StartTime))
}

func TestNormalizeKeys_InvalidJSON(t *testing.T) {
	_, err := NormalizeKeys([]byte(`{"stations": [`))
	assert.Error(t, err)
}

func TestParseStations(t *testing.T) {
	data := `station_id,name,is_active,required_staffing,minimum_staffing,start,end
s1,Front desk,true,4,2,09:00,13:00
s1,Front desk,true,4,2,13:00,17:00
s1,,,1,1,,
s2,Dock,false,2,1,06:00,14:00
`
	stations, err := ParseStations(strings.NewReader(data))
	require.NoError(t, err)

	require.Len(t, stations, 2)
	s1 := stations[0]
	assert.Equal(t, "Front desk", s1.Name)
	assert.True(t, s1.IsActive)
	require.Len(t, s1.Requirements, 3)
	assert.Equal(t, []models.TimeSlot{{Start: "09:00", End: "13:00"}}, s1.Requirements[0].TimeSlots)
	assert.Equal(t, []models.TimeSlot{{Start: "13:00", End: "17:00"}}, s1.Requirements[1].TimeSlots)
	assert.Empty(t, s1.Requirements[2].TimeSlots)
	assert.False(t, stations[1].IsActive)
}

func TestParseStations_RowsWithSameStaffingStaySeparate(t *testing.T) {
	tests := []struct {
		name string
		rows string
	}{
		{
			name: "all-day row next to a slotted row",
			rows: "s1,2,1,09:00,17:00\ns1,2,1,,\n",
		},
		{
			name: "same slot listed twice",
			rows: "s1,2,1,09:00,17:00\ns1,2,1,09:00,17:00\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := "station_id,required_staffing,minimum_staffing,start,end\n" + tc.rows
			stations, err := ParseStations(strings.NewReader(data))
			require.NoError(t, err)
			require.Len(t, stations, 1)
			require.Len(t, stations[0].Requirements, 2)

			combined := coverage.Combine(stations[0].Requirements)
			assert.Equal(t, 4, combined.Required)
			assert.Equal(t, 2, combined.Minimum)
		})
	}
}

func TestParseStations_RequirementColumn(t *testing.T) {
	data := `station_id,requirement,required_staffing,minimum_staffing,start,end
s1,nurses,3,1,09:00,17:00
s1,doctors,3,1,09:00,17:00
`
	stations, err := ParseStations(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, stations[0].Requirements, 2)
}

func TestParseStations_Errors(t *testing.T) {
	tests := map[string]struct {
		data     string
		sentinel error
		line     int
	}{
		"missing column":  {"station_id,required_staffing\ns1,2\n", ErrMissingColumn, 1},
		"bad required":    {"station_id,required_staffing,minimum_staffing\ns1,two,1\n", ErrInvalidStaffing, 2},
		"bad active flag": {"station_id,required_staffing,minimum_staffing,is_active\ns1,2,1,maybe\n", ErrInvalidBool, 2},
		"empty station":   {"station_id,required_staffing,minimum_staffing\ns1,2,1\n,2,1\n", ErrEmptyRecord, 3},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseStations(strings.NewReader(tc.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.sentinel), "got %v", err)
			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tc.line, pe.Line)
		})
	}
}

func TestParseShifts(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	data := `id,station_id,worker_id,start,end
a,s1,w1,2026-03-02T09:00:00Z,2026-03-02T17:00:00Z
,s1,,2026-03-02T09:00,2026-03-02 17:00
`
	shifts, err := ParseShifts(strings.NewReader(data), loc)
	require.NoError(t, err)

	require.Len(t, shifts, 2)
	assert.Equal(t, "a", shifts[0].ID)
	assert.True(t, shifts[0].Filled())
	assert.NotEmpty(t, shifts[1].ID)
	assert.False(t, shifts[1].Filled())
	assert.Equal(t, loc, shifts[1].StartTime.Location())
	assert.Equal(t, 9, shifts[1].StartTime.Hour())
}

func TestParseShifts_BadTime(t *testing.T) {
	_, err := ParseShifts(strings.NewReader("start,end\nyesterday,today\n"), nil)
	assert.ErrorIs(t, err, ErrInvalidStartTime)
}

func TestWriteCoverage(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCoverage(&buf, models.CoverageAnalysis{
		StationCoverage: []models.StationCoverage{{
			StationID: "s1", StationName: "Front, desk", RequiredStaffing: 4, MinimumStaffing: 2,
			CurrentStaffing: 3, CoveragePercentage: 75, Status: models.StatusWarning, UnfilledSlots: 1, IsActive: true,
		}},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(CoverageHeader, ","), lines[0])
	assert.Equal(t, `s1,"Front, desk",4,2,3,75,warning,1,true`, lines[1])
}
