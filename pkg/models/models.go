package models

import "time"

// Status classifies how well a station is staffed
type Status string

const (
	StatusOptimal  Status = "optimal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Rank orders statuses so that a higher value is better staffed
func (s Status) Rank() int {
	switch s {
	case StatusOptimal:
		return 3
	case StatusWarning:
		return 2
	default:
		return 1
	}
}

// Action is a hypothetical change to a station's staffing
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// StatusChange describes the direction of a status transition
type StatusChange string

const (
	StatusImproved  StatusChange = "improved"
	StatusDegraded  StatusChange = "degraded"
	StatusUnchanged StatusChange = "unchanged"
)

// TimeSlot is a time-of-day window in HH:MM form
type TimeSlot struct {
	Start string `json:"start" yaml:"start" validate:"required,timeofday"`
	End   string `json:"end" yaml:"end" validate:"required,timeofday,slotend"`
}

// StationRequirement is one staffing requirement row of a station
type StationRequirement struct {
	RequiredStaffing int        `json:"required_staffing" yaml:"required_staffing" validate:"gte=0"`
	MinimumStaffing  int        `json:"minimum_staffing" yaml:"minimum_staffing" validate:"gte=0,ltefield=RequiredStaffing"`
	TimeSlots        []TimeSlot `json:"time_slots" yaml:"time_slots" validate:"dive"`
}

// Station is a work post that needs a headcount of assigned workers
type Station struct {
	ID           string               `json:"id" yaml:"id" validate:"required"`
	Name         string               `json:"name" yaml:"name"`
	IsActive     bool                 `json:"is_active" yaml:"is_active"`
	Requirements []StationRequirement `json:"requirements" yaml:"requirements" validate:"dive"`
}

// Shift is a scheduled work assignment. An empty StationID or WorkerID
// means the shift is unassigned to a station or unfilled.
type Shift struct {
	ID        string    `json:"id" yaml:"id" validate:"required"`
	StationID string    `json:"station_id" yaml:"station_id"`
	WorkerID  string    `json:"worker_id" yaml:"worker_id"`
	StartTime time.Time `json:"start_time" yaml:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" yaml:"end_time" validate:"required,gtfield=StartTime"`
}

// Filled reports whether the shift has a worker
func (s Shift) Filled() bool {
	return s.WorkerID != ""
}

// StationCoverage is the derived coverage of a single station
type StationCoverage struct {
	StationID          string `json:"station_id" yaml:"station_id"`
	StationName        string `json:"station_name" yaml:"station_name"`
	RequiredStaffing   int    `json:"required_staffing" yaml:"required_staffing"`
	MinimumStaffing    int    `json:"minimum_staffing" yaml:"minimum_staffing"`
	CurrentStaffing    int    `json:"current_staffing" yaml:"current_staffing"`
	CoveragePercentage int    `json:"coverage_percentage" yaml:"coverage_percentage"`
	Status             Status `json:"status" yaml:"status"`
	UnfilledSlots      int    `json:"unfilled_slots" yaml:"unfilled_slots"`
	IsActive           bool   `json:"is_active" yaml:"is_active"`
}

// CriticalPeriod is a time window where one or more stations are understaffed
type CriticalPeriod struct {
	StartTime        string   `json:"start_time" yaml:"start_time"`
	EndTime          string   `json:"end_time" yaml:"end_time"`
	AffectedStations []string `json:"affected_stations" yaml:"affected_stations"`
	Severity         Status   `json:"severity" yaml:"severity"`
}

// CoverageAnalysis is the aggregate coverage for a target date
type CoverageAnalysis struct {
	TargetDate                string            `json:"target_date" yaml:"target_date"`
	TotalStations             int               `json:"total_stations" yaml:"total_stations"`
	OptimalStations           int               `json:"optimal_stations" yaml:"optimal_stations"`
	WarningStations           int               `json:"warning_stations" yaml:"warning_stations"`
	CriticalStations          int               `json:"critical_stations" yaml:"critical_stations"`
	OverallCoveragePercentage int               `json:"overall_coverage_percentage" yaml:"overall_coverage_percentage"`
	StationCoverage           []StationCoverage `json:"station_coverage" yaml:"station_coverage"`
	CriticalPeriods           []CriticalPeriod  `json:"critical_periods" yaml:"critical_periods"`
}

// ImpactResult is the predicted effect of adding or removing one shift
type ImpactResult struct {
	NewCoveragePercentage int          `json:"new_coverage_percentage" yaml:"new_coverage_percentage"`
	StatusChange          StatusChange `json:"status_change" yaml:"status_change"`
	NewStatus             Status       `json:"new_status" yaml:"new_status"`
	Message               string       `json:"message" yaml:"message"`
}

// Worker is a person who can be placed on open shifts
type Worker struct {
	ID             string   `json:"id" yaml:"id" validate:"required"`
	Name           string   `json:"name" yaml:"name"`
	MaxHours       float64  `json:"max_hours" yaml:"max_hours" validate:"gte=0"`
	Stations       []string `json:"stations,omitempty" yaml:"stations,omitempty"`
	AssignedHours  float64  `json:"assigned_hours" yaml:"-"`
	AssignedShifts []string `json:"assigned_shifts" yaml:"-"`
}

// Assignment represents a worker-shift pairing
type Assignment struct {
	ShiftID   string `json:"shift_id"`
	WorkerID  string `json:"worker_id"`
	StationID string `json:"station_id"`
}

// ConflictReason represents why an open shift could not be filled
type ConflictReason struct {
	ShiftID   string   `json:"shift_id"`
	StationID string   `json:"station_id"`
	Reasons   []string `json:"reasons"`
}
