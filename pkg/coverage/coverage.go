// Package coverage turns a day's stations and shifts into per-station
// staffing coverage, and predicts the effect of adding or removing a shift.
// Everything here is a pure function of its arguments.
package coverage

import (
	"math"
	"sort"
	"time"

	"github.com/arnavshah/coverage-api-go/pkg/models"
)

// Average selects how the overall coverage percentage is aggregated
type Average string

const (
	// AverageSimple is the unweighted mean of station percentages.
	// Stations with no requirement contribute 0.
	AverageSimple Average = "simple"
	// AverageWeighted divides total current staffing by total required staffing.
	AverageWeighted Average = "weighted"
)

// ParseAverage maps a config or request value to an Average, defaulting to simple
func ParseAverage(s string) Average {
	if Average(s) == AverageWeighted {
		return AverageWeighted
	}
	return AverageSimple
}

// Options tunes Compute
type Options struct {
	Average Average
}

// Classify returns the status of a station staffed by current workers.
// The first matching rule wins.
func Classify(current, required, minimum int) models.Status {
	switch {
	case minimum > required:
		return models.StatusCritical
	case current == 0:
		return models.StatusCritical
	case current < minimum:
		return models.StatusCritical
	case current < required:
		return models.StatusWarning
	default:
		return models.StatusOptimal
	}
}

// Percentage returns round(current/required*100), or 0 when nothing is required
func Percentage(current, required int) int {
	if required <= 0 {
		return 0
	}
	return int(math.Round(float64(current) / float64(required) * 100))
}

// Unfilled returns the number of open positions, never negative
func Unfilled(current, required int) int {
	if current >= required {
		return 0
	}
	return required - current
}

// Compute evaluates every station against shiftsForDate. The caller must
// already have filtered the shifts to targetDate.
func Compute(stations []models.Station, shiftsForDate []models.Shift, targetDate time.Time, opts Options) models.CoverageAnalysis {
	analysis := models.CoverageAnalysis{
		TotalStations:   len(stations),
		StationCoverage: make([]models.StationCoverage, 0, len(stations)),
		CriticalPeriods: []models.CriticalPeriod{},
	}
	if !targetDate.IsZero() {
		analysis.TargetDate = targetDate.Format("2006-01-02")
	}

	staffed := CountStaffed(shiftsForDate)
	periods := newPeriodSet()

	var percentSum, currentSum, requiredSum int
	for _, st := range stations {
		req := Combine(st.Requirements)
		current := staffed[st.ID]
		sc := models.StationCoverage{
			StationID:          st.ID,
			StationName:        st.Name,
			RequiredStaffing:   req.Required,
			MinimumStaffing:    req.Minimum,
			CurrentStaffing:    current,
			CoveragePercentage: Percentage(current, req.Required),
			Status:             Classify(current, req.Required, req.Minimum),
			UnfilledSlots:      Unfilled(current, req.Required),
			IsActive:           st.IsActive,
		}

		switch sc.Status {
		case models.StatusOptimal:
			analysis.OptimalStations++
		case models.StatusWarning:
			analysis.WarningStations++
			periods.add(st.ID, req.Slots, models.StatusWarning)
		default:
			analysis.CriticalStations++
			periods.add(st.ID, req.Slots, models.StatusCritical)
		}

		percentSum += sc.CoveragePercentage
		currentSum += current
		requiredSum += req.Required
		analysis.StationCoverage = append(analysis.StationCoverage, sc)
	}

	switch opts.Average {
	case AverageWeighted:
		analysis.OverallCoveragePercentage = Percentage(currentSum, requiredSum)
	default:
		if len(stations) > 0 {
			analysis.OverallCoveragePercentage = int(math.Round(float64(percentSum) / float64(len(stations))))
		}
	}

	analysis.CriticalPeriods = periods.sorted()
	return analysis
}

// CountStaffed counts the filled shifts of each station
func CountStaffed(shifts []models.Shift) map[string]int {
	counts := make(map[string]int)
	for _, sh := range shifts {
		if sh.StationID == "" || !sh.Filled() {
			continue
		}
		counts[sh.StationID]++
	}
	return counts
}

// Requirement is the effective requirement of a station across all its rows
type Requirement struct {
	Required int
	Minimum  int
	Slots    []models.TimeSlot
}

type slotKey struct {
	start, end string
}

// canonicalSlot rewrites parseable times as zero-padded HH:MM so that
// 9:00 and 09:00 name the same slot
func canonicalSlot(slot models.TimeSlot) models.TimeSlot {
	return models.TimeSlot{Start: canonicalClock(slot.Start), End: canonicalClock(slot.End)}
}

func canonicalClock(s string) string {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return s
	}
	return t.Format("15:04")
}

// Combine folds a station's requirement rows into one. Rows listing the
// same slot are summed; rows without slots apply to every slot. The
// station needs the peak over its slots.
func Combine(rows []models.StationRequirement) Requirement {
	var allDayRequired, allDayMinimum int
	perSlot := make(map[slotKey]*Requirement)
	var order []models.TimeSlot

	for _, row := range rows {
		if len(row.TimeSlots) == 0 {
			allDayRequired += row.RequiredStaffing
			allDayMinimum += row.MinimumStaffing
			continue
		}
		counted := make(map[slotKey]bool, len(row.TimeSlots))
		for _, slot := range row.TimeSlots {
			slot = canonicalSlot(slot)
			key := slotKey{slot.Start, slot.End}
			if counted[key] {
				continue
			}
			counted[key] = true
			r, ok := perSlot[key]
			if !ok {
				r = &Requirement{}
				perSlot[key] = r
				order = append(order, slot)
			}
			r.Required += row.RequiredStaffing
			r.Minimum += row.MinimumStaffing
		}
	}

	if len(order) == 0 {
		return Requirement{Required: allDayRequired, Minimum: allDayMinimum}
	}

	out := Requirement{Slots: order}
	for _, slot := range order {
		r := perSlot[slotKey{slot.Start, slot.End}]
		if v := r.Required + allDayRequired; v > out.Required {
			out.Required = v
		}
		if v := r.Minimum + allDayMinimum; v > out.Minimum {
			out.Minimum = v
		}
	}
	return out
}

type periodKey struct {
	start, end string
	severity   models.Status
}

// periodSet merges critical periods that share a window and severity
type periodSet struct {
	index   map[periodKey]int
	members []map[string]bool
	periods []models.CriticalPeriod
}

func newPeriodSet() *periodSet {
	return &periodSet{index: make(map[periodKey]int)}
}

func (p *periodSet) add(stationID string, slots []models.TimeSlot, severity models.Status) {
	for _, slot := range slots {
		key := periodKey{slot.Start, slot.End, severity}
		i, ok := p.index[key]
		if !ok {
			i = len(p.periods)
			p.index[key] = i
			p.members = append(p.members, make(map[string]bool))
			p.periods = append(p.periods, models.CriticalPeriod{
				StartTime:        slot.Start,
				EndTime:          slot.End,
				AffectedStations: []string{},
				Severity:         severity,
			})
		}
		if p.members[i][stationID] {
			continue
		}
		p.members[i][stationID] = true
		p.periods[i].AffectedStations = append(p.periods[i].AffectedStations, stationID)
	}
}

// sorted orders periods by start, end, then critical before warning.
// Ties keep first-seen order.
func (p *periodSet) sorted() []models.CriticalPeriod {
	out := append([]models.CriticalPeriod{}, p.periods...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if c := compareClock(a.StartTime, b.StartTime); c != 0 {
			return c < 0
		}
		if c := compareClock(a.EndTime, b.EndTime); c != 0 {
			return c < 0
		}
		return a.Severity.Rank() < b.Severity.Rank()
	})
	return out
}

// compareClock compares two HH:MM values, falling back to string order
// when either does not parse
func compareClock(a, b string) int {
	ta, errA := time.Parse("15:04", a)
	tb, errB := time.Parse("15:04", b)
	if errA != nil || errB != nil {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	switch {
	case ta.Before(tb):
		return -1
	case ta.After(tb):
		return 1
	}
	return 0
}
