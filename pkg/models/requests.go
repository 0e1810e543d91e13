package models

// CoverageInput is the data structure for the coverage endpoints and CLI
type CoverageInput struct {
	Stations   []Station `json:"stations" yaml:"stations" validate:"dive"`
	Shifts     []Shift   `json:"shifts" yaml:"shifts" validate:"dive"`
	TargetDate string    `json:"target_date" yaml:"target_date" validate:"omitempty,datetime=2006-01-02"`
	Average    string    `json:"average,omitempty" yaml:"average,omitempty" validate:"omitempty,oneof=simple weighted"`
	Timezone   string    `json:"timezone,omitempty" yaml:"timezone,omitempty" validate:"omitempty,timezone"`
}

// ImpactInput asks what a single add/remove would do to a station. When
// Snapshot is nil the snapshot is computed from the embedded coverage input.
type ImpactInput struct {
	CoverageInput `yaml:",inline"`
	StationID     string            `json:"station_id" yaml:"station_id" validate:"required"`
	Action        Action            `json:"action" yaml:"action" validate:"required,oneof=add remove"`
	Snapshot      *CoverageAnalysis `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
}

// SuggestInput is the data structure for the fill-suggestion endpoint
type SuggestInput struct {
	CoverageInput `yaml:",inline"`
	Workers       []Worker `json:"workers" yaml:"workers" validate:"dive"`
}

// SuggestResponse is the data structure for the fill-suggestion result
type SuggestResponse struct {
	Assignments   []Assignment     `json:"assignments"`
	Conflicts     []ConflictReason `json:"conflicts,omitempty"`
	FairnessScore float64          `json:"fairness_score"`
	Before        CoverageAnalysis `json:"before"`
	After         CoverageAnalysis `json:"after"`
	Workers       map[string]any   `json:"workers"`
}

// GridCell holds the shifts of one station starting in one hour
type GridCell struct {
	Hour   int     `json:"hour"`
	Shifts []Shift `json:"shifts"`
}

// GridRow is one station's row of the shift grid
type GridRow struct {
	StationID string     `json:"station_id"`
	Cells     []GridCell `json:"cells"`
}
