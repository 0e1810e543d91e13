package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arnavshah/coverage-api-go/pkg/auth"
	"github.com/arnavshah/coverage-api-go/pkg/config"
	"github.com/arnavshah/coverage-api-go/pkg/models"
)

const scheduleYAML = `
target_date: "2026-03-02"
stations:
  - id: grill
    name: Grill
    is_active: true
    requirements:
      - required_staffing: 2
        minimum_staffing: 1
        time_slots:
          - start: "10:00"
            end: "14:00"
  - id: till
    name: Till
    is_active: true
    requirements:
      - required_staffing: 1
        minimum_staffing: 1
shifts:
  - id: a
    station_id: grill
    worker_id: w1
    start_time: 2026-03-02T10:00:00Z
    end_time: 2026-03-02T14:00:00Z
  - id: b
    station_id: till
    worker_id: w2
    start_time: 2026-03-02T08:00:00Z
    end_time: 2026-03-02T16:00:00Z
`

var (
	testCfg = &config.Config{Timezone: "UTC", CoverageAverage: "simple", APIMasterSecret: "master"}
	testNow = time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
)

func TestDecodeInput_YAML(t *testing.T) {
	var in models.CoverageInput
	require.NoError(t, decodeInput(".yaml", []byte(scheduleYAML), &in))

	require.Len(t, in.Stations, 2)
	require.Len(t, in.Shifts, 2)
	assert.Equal(t, "10:00", in.Stations[0].Requirements[0].TimeSlots[0].Start)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), in.Shifts[0].StartTime.UTC())
}

func TestDecodeInput_CamelCaseJSON(t *testing.T) {
	body := `{"targetDate": "2026-03-02", "stations": [{"id": "s1", "isActive": true,
		"requirements": [{"requiredStaffing": 3, "minimumStaffing": 1}]}]}`

	var in models.CoverageInput
	require.NoError(t, decodeInput(".json", []byte(body), &in))

	assert.Equal(t, "2026-03-02", in.TargetDate)
	require.Len(t, in.Stations, 1)
	assert.True(t, in.Stations[0].IsActive)
	assert.Equal(t, 3, in.Stations[0].Requirements[0].RequiredStaffing)
}

func TestRunCompute_YAML(t *testing.T) {
	var in models.CoverageInput
	require.NoError(t, decodeInput(".yml", []byte(scheduleYAML), &in))

	var out bytes.Buffer
	require.NoError(t, runCompute(&out, testCfg, in, false, testNow))

	var a models.CoverageAnalysis
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &a))
	assert.Equal(t, "2026-03-02", a.TargetDate)
	assert.Equal(t, 1, a.OptimalStations)
	assert.Equal(t, 1, a.WarningStations)
	// (50 + 100) / 2
	assert.Equal(t, 75, a.OverallCoveragePercentage)
	require.Len(t, a.CriticalPeriods, 1)
	assert.Equal(t, models.CriticalPeriod{
		StartTime:        "10:00",
		EndTime:          "14:00",
		AffectedStations: []string{"grill"},
		Severity:         models.StatusWarning,
	}, a.CriticalPeriods[0])
}

func TestRunCompute_CSV(t *testing.T) {
	var in models.CoverageInput
	require.NoError(t, decodeInput(".yaml", []byte(scheduleYAML), &in))

	var out bytes.Buffer
	require.NoError(t, runCompute(&out, testCfg, in, true, testNow))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "station_id,station_name"))
	assert.Equal(t, "grill,Grill,2,1,1,50,warning,1,true", lines[1])
	assert.Equal(t, "till,Till,1,1,1,100,optimal,0,true", lines[2])
}

func TestRunCompute_Rejects(t *testing.T) {
	var out bytes.Buffer

	err := runCompute(&out, testCfg, models.CoverageInput{}, false, testNow)
	assert.EqualError(t, err, "at least one station is required")

	bad := models.CoverageInput{Stations: []models.Station{{
		ID:           "s1",
		Requirements: []models.StationRequirement{{RequiredStaffing: 1, MinimumStaffing: 2}},
	}}}
	err = runCompute(&out, testCfg, bad, false, testNow)
	assert.Error(t, err)
	assert.Empty(t, out.String())
}

func TestRunImpact(t *testing.T) {
	var in models.ImpactInput
	require.NoError(t, decodeInput(".yaml", []byte(scheduleYAML), &in))
	in.StationID = "grill"
	in.Action = models.ActionAdd

	var out bytes.Buffer
	require.NoError(t, runImpact(&out, testCfg, in, testNow))

	var res models.ImpactResult
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, 100, res.NewCoveragePercentage)
	assert.Equal(t, models.StatusOptimal, res.NewStatus)
	assert.Equal(t, models.StatusImproved, res.StatusChange)
	assert.Equal(t, "Adding a shift to Grill would bring coverage to 100% (optimal)", res.Message)
}

func TestRunImpact_RequiresAction(t *testing.T) {
	var in models.ImpactInput
	require.NoError(t, decodeInput(".yaml", []byte(scheduleYAML), &in))
	in.StationID = "grill"

	var out bytes.Buffer
	assert.Error(t, runImpact(&out, testCfg, in, testNow))
}

func TestRunKeygen(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runKeygen(&out, testCfg, "kitchen.team"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Generated Key for kitchen.team:", lines[0])

	userID, err := auth.NewSigner("", "master").VerifyKey(lines[1])
	require.NoError(t, err)
	assert.Equal(t, "kitchen.team", userID)

	assert.Error(t, runKeygen(&out, &config.Config{}, "x"))
}
