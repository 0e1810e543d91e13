package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/coverage-api-go/pkg/models"
)

func TestEstimateImpact_StationNotFound(t *testing.T) {
	result := EstimateImpact("missing-id", models.ActionAdd, models.CoverageAnalysis{})

	assert.Equal(t, models.ImpactResult{
		NewCoveragePercentage: 0,
		StatusChange:          models.StatusUnchanged,
		NewStatus:             models.StatusCritical,
		Message:               "Station not found",
	}, result)
}

func TestEstimateImpact(t *testing.T) {
	tests := map[string]struct {
		current int
		action  models.Action
		pct     int
		status  models.Status
		change  models.StatusChange
	}{
		"add lifts warning to optimal":       {3, models.ActionAdd, 100, models.StatusOptimal, models.StatusImproved},
		"add lifts critical to warning":      {1, models.ActionAdd, 50, models.StatusWarning, models.StatusImproved},
		"add keeps optimal":                  {4, models.ActionAdd, 125, models.StatusOptimal, models.StatusUnchanged},
		"remove drops warning to critical":   {2, models.ActionRemove, 25, models.StatusCritical, models.StatusDegraded},
		"remove keeps warning":               {3, models.ActionRemove, 50, models.StatusWarning, models.StatusUnchanged},
		"remove from empty station clamps":   {0, models.ActionRemove, 0, models.StatusCritical, models.StatusUnchanged},
		"add to empty station below minimum": {0, models.ActionAdd, 25, models.StatusCritical, models.StatusUnchanged},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			snapshot := Compute([]models.Station{station("s1", 4, 2)}, assigned("s1", tc.current), day, Options{})

			result := EstimateImpact("s1", tc.action, snapshot)

			assert.Equal(t, tc.pct, result.NewCoveragePercentage)
			assert.Equal(t, tc.status, result.NewStatus)
			assert.Equal(t, tc.change, result.StatusChange)
			assert.Contains(t, result.Message, "Station s1")
		})
	}
}

func TestEstimateImpact_DoesNotMutateSnapshot(t *testing.T) {
	snapshot := Compute([]models.Station{station("s1", 4, 2)}, assigned("s1", 3), day, Options{})
	before := Compute([]models.Station{station("s1", 4, 2)}, assigned("s1", 3), day, Options{})

	EstimateImpact("s1", models.ActionAdd, snapshot)
	EstimateImpact("s1", models.ActionRemove, snapshot)

	assert.Equal(t, before, snapshot)
}

func TestEstimateImpact_Monotonic(t *testing.T) {
	for required := 1; required <= 5; required++ {
		for current := 0; current <= 7; current++ {
			snapshot := Compute([]models.Station{station("s", required, 1)}, assigned("s", current), day, Options{})
			original := snapshot.StationCoverage[0].CoveragePercentage

			added := EstimateImpact("s", models.ActionAdd, snapshot)
			removed := EstimateImpact("s", models.ActionRemove, snapshot)

			assert.GreaterOrEqual(t, added.NewCoveragePercentage, original)
			assert.LessOrEqual(t, removed.NewCoveragePercentage, original)
		}
	}
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction(" Add ")
	require.NoError(t, err)
	assert.Equal(t, models.ActionAdd, a)

	a, err = ParseAction("remove")
	require.NoError(t, err)
	assert.Equal(t, models.ActionRemove, a)

	_, err = ParseAction("swap")
	assert.ErrorIs(t, err, ErrUnknownAction)
}
