package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/coverage-api-go/internal/schedule"
	"github.com/arnavshah/coverage-api-go/pkg/coverage"
	"github.com/arnavshah/coverage-api-go/pkg/ingest"
	"github.com/arnavshah/coverage-api-go/pkg/metrics"
	"github.com/arnavshah/coverage-api-go/pkg/models"
	"github.com/arnavshah/coverage-api-go/pkg/scheduler"
	"github.com/arnavshah/coverage-api-go/pkg/validation"
)

// evaluation is a validated coverage input resolved against the clock and config
type evaluation struct {
	date     time.Time
	loc      *time.Location
	opts     coverage.Options
	stations []models.Station
	shifts   []models.Shift
}

// resolve picks the time zone, target date and averaging mode, then keeps
// only the shifts of the target date
func (h *Handler) resolve(in models.CoverageInput) (evaluation, error) {
	loc := h.Config.Location()
	if in.Timezone != "" {
		l, err := time.LoadLocation(in.Timezone)
		if err != nil {
			return evaluation{}, err
		}
		loc = l
	}

	date := h.Now().In(loc)
	if in.TargetDate != "" {
		d, err := schedule.ParseDate(in.TargetDate, loc)
		if err != nil {
			return evaluation{}, err
		}
		date = d
	}

	average := in.Average
	if average == "" {
		average = h.Config.CoverageAverage
	}

	return evaluation{
		date:     date,
		loc:      loc,
		opts:     coverage.Options{Average: coverage.ParseAverage(average)},
		stations: in.Stations,
		shifts:   schedule.ShiftsForDate(in.Shifts, date, loc),
	}, nil
}

func (e evaluation) compute() models.CoverageAnalysis {
	start := time.Now()
	a := coverage.Compute(e.stations, e.shifts, e.date, e.opts)
	metrics.ComputeDurationSeconds.Observe(time.Since(start).Seconds())
	return a
}

// ComputeCoverage handles the JSON coverage request
func (h *Handler) ComputeCoverage(c *gin.Context) {
	var input models.CoverageInput
	if err := bind(c, &input); err != nil {
		badRequest(c, err)
		return
	}
	if err := validation.Coverage(input); err != nil {
		badRequest(c, err)
		return
	}
	ev, err := h.resolve(input)
	if err != nil {
		badRequest(c, err)
		return
	}

	analysis := ev.compute()
	metrics.ObserveAnalysis("json", analysis)
	h.RecordUsage(c, len(input.Stations), len(ev.shifts))

	c.JSON(http.StatusOK, analysis)
}

// CoverageCSV handles CSV uploads of stations and shifts
func (h *Handler) CoverageCSV(c *gin.Context) {
	stationsFile, _ := c.FormFile("stations_file")
	shiftsFile, _ := c.FormFile("shifts_file")
	if stationsFile == nil || shiftsFile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stations_file and shifts_file are required"})
		return
	}

	input := models.CoverageInput{
		TargetDate: c.PostForm("target_date"),
		Average:    c.PostForm("average"),
		Timezone:   c.PostForm("timezone"),
	}
	if err := validation.Struct(input); err != nil {
		badRequest(c, err)
		return
	}
	ev, err := h.resolve(input)
	if err != nil {
		badRequest(c, err)
		return
	}

	sFile, err := stationsFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open stations file"})
		return
	}
	defer sFile.Close()
	input.Stations, err = ingest.ParseStations(sFile)
	if err != nil {
		h.csvError(c, "stations", err)
		return
	}

	shFile, err := shiftsFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open shifts file"})
		return
	}
	defer shFile.Close()
	input.Shifts, err = ingest.ParseShifts(shFile, ev.loc)
	if err != nil {
		h.csvError(c, "shifts", err)
		return
	}

	if err := validation.Coverage(input); err != nil {
		badRequest(c, err)
		return
	}
	ev.stations = input.Stations
	ev.shifts = schedule.ShiftsForDate(input.Shifts, ev.date, ev.loc)

	analysis := ev.compute()
	metrics.ObserveAnalysis("csv", analysis)
	h.RecordUsage(c, len(input.Stations), len(ev.shifts))

	var out strings.Builder
	if err := ingest.WriteCoverage(&out, analysis); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write coverage CSV"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"csv":                         out.String(),
		"target_date":                 analysis.TargetDate,
		"overall_coverage_percentage": analysis.OverallCoveragePercentage,
		"critical_periods":            analysis.CriticalPeriods,
	})
}

func (h *Handler) csvError(c *gin.Context, file string, err error) {
	metrics.ParseErrorsTotal.WithLabelValues(file).Inc()
	var pe *ingest.ParseError
	if errors.As(err, &pe) {
		c.JSON(http.StatusBadRequest, gin.H{"error": pe.Error(), "file": pe.File, "line": pe.Line})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// EstimateImpact handles the what-if request for a single station
func (h *Handler) EstimateImpact(c *gin.Context) {
	var input models.ImpactInput
	if err := bind(c, &input); err != nil {
		badRequest(c, err)
		return
	}
	if err := validation.Request(input, input.CoverageInput); err != nil {
		badRequest(c, err)
		return
	}

	snapshot := input.Snapshot
	if snapshot == nil {
		ev, err := h.resolve(input.CoverageInput)
		if err != nil {
			badRequest(c, err)
			return
		}
		analysis := ev.compute()
		metrics.ObserveAnalysis("impact", analysis)
		h.RecordUsage(c, len(input.Stations), len(ev.shifts))
		snapshot = &analysis
	} else {
		h.RecordUsage(c, len(snapshot.StationCoverage), 0)
	}

	result := coverage.EstimateImpact(input.StationID, input.Action, *snapshot)
	metrics.ImpactEstimatesTotal.WithLabelValues(string(input.Action), string(result.StatusChange)).Inc()

	c.JSON(http.StatusOK, result)
}

// SuggestAssignments proposes workers for open shifts of understaffed stations
func (h *Handler) SuggestAssignments(c *gin.Context) {
	var input models.SuggestInput
	if err := bind(c, &input); err != nil {
		badRequest(c, err)
		return
	}
	if err := validation.Request(input, input.CoverageInput); err != nil {
		badRequest(c, err)
		return
	}
	ev, err := h.resolve(input.CoverageInput)
	if err != nil {
		badRequest(c, err)
		return
	}

	res := scheduler.Suggest(ev.stations, ev.shifts, input.Workers, ev.date, ev.opts)
	metrics.ObserveAnalysis("suggest", res.After)
	metrics.SuggestedAssignmentsTotal.Add(float64(len(res.Assignments)))
	metrics.SuggestionConflictsTotal.Add(float64(len(res.Conflicts)))
	h.RecordUsage(c, len(input.Stations), len(ev.shifts))

	h.Log.Debug("fill suggestions",
		zap.Int("assignments", len(res.Assignments)),
		zap.Int("conflicts", len(res.Conflicts)),
		zap.Float64("fairness", res.FairnessScore),
	)
	c.JSON(http.StatusOK, res)
}

// ScheduleGrid lays out the target date's shifts per station and hour
func (h *Handler) ScheduleGrid(c *gin.Context) {
	var input models.CoverageInput
	if err := bind(c, &input); err != nil {
		badRequest(c, err)
		return
	}
	if err := validation.Coverage(input); err != nil {
		badRequest(c, err)
		return
	}
	ev, err := h.resolve(input)
	if err != nil {
		badRequest(c, err)
		return
	}

	h.RecordUsage(c, len(input.Stations), len(ev.shifts))

	c.JSON(http.StatusOK, gin.H{
		"target_date": ev.date.Format("2006-01-02"),
		"timezone":    ev.loc.String(),
		"rows":        schedule.Grid(ev.shifts, ev.loc),
	})
}
