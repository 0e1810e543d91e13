package scheduler

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/arnavshah/coverage-api-go/internal/schedule"
	"github.com/arnavshah/coverage-api-go/pkg/coverage"
	"github.com/arnavshah/coverage-api-go/pkg/models"
)

// Scheduler places workers on the open shifts of understaffed stations
type Scheduler struct {
	Workers     map[string]*models.Worker
	Shifts      map[string]*models.Shift
	Assignments []models.Assignment
	Conflicts   []models.ConflictReason
}

// NewScheduler creates a new scheduler instance
func NewScheduler(workers map[string]*models.Worker, shifts map[string]*models.Shift) *Scheduler {
	return &Scheduler{
		Workers: workers,
		Shifts:  shifts,
	}
}

// Prefill records the shifts workers already hold
func (s *Scheduler) Prefill() {
	for _, id := range s.shiftIDs() {
		shift := s.Shifts[id]
		if vol, ok := s.Workers[shift.WorkerID]; ok {
			vol.AssignedShifts = append(vol.AssignedShifts, shift.ID)
			vol.AssignedHours += schedule.DurationHours(shift.StartTime, shift.EndTime)
		}
	}
}

// WouldOverlap checks if a worker's existing shifts overlap with a new one
func (s *Scheduler) WouldOverlap(worker *models.Worker, shift *models.Shift) bool {
	for _, shiftID := range worker.AssignedShifts {
		existing, ok := s.Shifts[shiftID]
		if !ok {
			continue
		}
		if schedule.Overlap(existing.StartTime, existing.EndTime, shift.StartTime, shift.EndTime) {
			return true
		}
	}
	return false
}

// Qualified checks if a worker may staff the shift's station.
// Workers without a station list may staff any station.
func (s *Scheduler) Qualified(shift *models.Shift, worker *models.Worker) bool {
	if len(worker.Stations) == 0 {
		return true
	}
	for _, id := range worker.Stations {
		if id == shift.StationID {
			return true
		}
	}
	return false
}

// FillOpen fills open shifts of stations that still have unfilled slots.
// Critical stations go first, then warning stations, each in snapshot
// order; within a station the earliest shift goes first.
func (s *Scheduler) FillOpen(snapshot models.CoverageAnalysis) {
	need := make(map[string]int)
	rank := make(map[string]int)
	for i, sc := range snapshot.StationCoverage {
		if sc.UnfilledSlots == 0 {
			continue
		}
		need[sc.StationID] += sc.UnfilledSlots
		if _, ok := rank[sc.StationID]; !ok {
			rank[sc.StationID] = sc.Status.Rank()*len(snapshot.StationCoverage) + i
		}
	}

	var open []*models.Shift
	for _, id := range s.shiftIDs() {
		sh := s.Shifts[id]
		if sh.StationID == "" || sh.Filled() {
			continue
		}
		if _, ok := need[sh.StationID]; ok {
			open = append(open, sh)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		ri, rj := rank[open[i].StationID], rank[open[j].StationID]
		if ri != rj {
			return ri < rj
		}
		return open[i].StartTime.Before(open[j].StartTime)
	})

	workers := s.workerList()
	for _, shift := range open {
		if need[shift.StationID] == 0 {
			continue
		}
		duration := schedule.DurationHours(shift.StartTime, shift.EndTime)

		var best *models.Worker
		maxHoursCount := 0
		overlapCount := 0
		unqualifiedCount := 0

		for _, w := range workers {
			fitsHours := w.AssignedHours+duration <= w.MaxHours
			noOverlap := !s.WouldOverlap(w, shift)
			qualified := s.Qualified(shift, w)

			if fitsHours && noOverlap && qualified {
				if best == nil || w.AssignedHours < best.AssignedHours {
					best = w
				}
				continue
			}
			if !fitsHours {
				maxHoursCount++
			}
			if !noOverlap {
				overlapCount++
			}
			if !qualified {
				unqualifiedCount++
			}
		}

		if best == nil {
			var reasons []string
			if maxHoursCount > 0 {
				reasons = append(reasons, fmt.Sprintf("%d workers were at max hours", maxHoursCount))
			}
			if overlapCount > 0 {
				reasons = append(reasons, fmt.Sprintf("%d workers had overlapping shifts", overlapCount))
			}
			if unqualifiedCount > 0 {
				reasons = append(reasons, fmt.Sprintf("%d workers are not qualified for this station", unqualifiedCount))
			}
			if len(reasons) == 0 {
				reasons = append(reasons, "no workers available")
			}
			s.Conflicts = append(s.Conflicts, models.ConflictReason{
				ShiftID:   shift.ID,
				StationID: shift.StationID,
				Reasons:   reasons,
			})
			continue
		}

		shift.WorkerID = best.ID
		best.AssignedHours += duration
		best.AssignedShifts = append(best.AssignedShifts, shift.ID)
		need[shift.StationID]--
		s.Assignments = append(s.Assignments, models.Assignment{
			ShiftID:   shift.ID,
			WorkerID:  best.ID,
			StationID: shift.StationID,
		})
	}
}

// CalculateFairnessScore returns a percentage (0-100) representing how evenly
// hours are distributed. 100% is perfectly fair (Standard Deviation = 0).
func (s *Scheduler) CalculateFairnessScore() float64 {
	if len(s.Workers) == 0 {
		return 100.0
	}

	var sum float64
	for _, w := range s.Workers {
		sum += w.AssignedHours
	}
	if sum == 0 {
		return 100.0
	}

	mean := sum / float64(len(s.Workers))

	var varianceSum float64
	for _, w := range s.Workers {
		diff := w.AssignedHours - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(s.Workers)))

	// 100% means SD is 0. 0% means SD is >= mean.
	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}

func (s *Scheduler) shiftIDs() []string {
	ids := make([]string, 0, len(s.Shifts))
	for id := range s.Shifts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Scheduler) workerList() []*models.Worker {
	list := make([]*models.Worker, 0, len(s.Workers))
	for _, w := range s.Workers {
		list = append(list, w)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Suggest proposes workers for the open shifts of understaffed stations and
// reports coverage before and after the proposal. Inputs are not modified.
func Suggest(stations []models.Station, shiftsForDate []models.Shift, workers []models.Worker, targetDate time.Time, opts coverage.Options) models.SuggestResponse {
	before := coverage.Compute(stations, shiftsForDate, targetDate, opts)

	workerMap := make(map[string]*models.Worker, len(workers))
	for i := range workers {
		w := workers[i]
		w.AssignedHours = 0
		w.AssignedShifts = nil
		workerMap[w.ID] = &w
	}
	shifts := make([]models.Shift, len(shiftsForDate))
	copy(shifts, shiftsForDate)
	shiftMap := make(map[string]*models.Shift, len(shifts))
	for i := range shifts {
		shiftMap[shifts[i].ID] = &shifts[i]
	}

	s := NewScheduler(workerMap, shiftMap)
	s.Prefill()
	s.FillOpen(before)

	stats := make(map[string]any, len(workerMap))
	for id, w := range workerMap {
		stats[id] = map[string]any{
			"assigned_hours":  w.AssignedHours,
			"assigned_shifts": w.AssignedShifts,
		}
	}

	assignments := s.Assignments
	if assignments == nil {
		assignments = []models.Assignment{}
	}
	return models.SuggestResponse{
		Assignments:   assignments,
		Conflicts:     s.Conflicts,
		FairnessScore: s.CalculateFairnessScore(),
		Before:        before,
		After:         coverage.Compute(stations, shifts, targetDate, opts),
		Workers:       stats,
	}
}
