package coverage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arnavshah/coverage-api-go/pkg/models"
)

// ErrUnknownAction is returned by ParseAction for anything but add/remove
var ErrUnknownAction = errors.New("action must be add or remove")

// ParseAction maps user input to an Action
func ParseAction(s string) (models.Action, error) {
	switch models.Action(strings.ToLower(strings.TrimSpace(s))) {
	case models.ActionAdd:
		return models.ActionAdd, nil
	case models.ActionRemove:
		return models.ActionRemove, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// EstimateImpact predicts the coverage of stationID after adding or removing
// one filled shift. The snapshot is not modified.
func EstimateImpact(stationID string, action models.Action, snapshot models.CoverageAnalysis) models.ImpactResult {
	var station *models.StationCoverage
	for i := range snapshot.StationCoverage {
		if snapshot.StationCoverage[i].StationID == stationID {
			station = &snapshot.StationCoverage[i]
			break
		}
	}
	if station == nil {
		return models.ImpactResult{
			NewCoveragePercentage: 0,
			StatusChange:          models.StatusUnchanged,
			NewStatus:             models.StatusCritical,
			Message:               "Station not found",
		}
	}

	staffing := station.CurrentStaffing
	if action == models.ActionAdd {
		staffing++
	} else if staffing > 0 {
		staffing--
	}

	newStatus := Classify(staffing, station.RequiredStaffing, station.MinimumStaffing)
	newPct := Percentage(staffing, station.RequiredStaffing)

	change := models.StatusUnchanged
	switch {
	case newStatus.Rank() > station.Status.Rank():
		change = models.StatusImproved
	case newStatus.Rank() < station.Status.Rank():
		change = models.StatusDegraded
	}

	return models.ImpactResult{
		NewCoveragePercentage: newPct,
		StatusChange:          change,
		NewStatus:             newStatus,
		Message:               impactMessage(station.StationName, action, newPct, newStatus),
	}
}

func impactMessage(name string, action models.Action, pct int, status models.Status) string {
	if action == models.ActionAdd {
		return fmt.Sprintf("Adding a shift to %s would bring coverage to %d%% (%s)", name, pct, status)
	}
	return fmt.Sprintf("Removing a shift from %s would bring coverage to %d%% (%s)", name, pct, status)
}
