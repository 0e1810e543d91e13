// Package ingest is the boundary between external representations and the
// canonical schema in pkg/models: CSV uploads, CSV export and camelCase JSON.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arnavshah/coverage-api-go/pkg/models"
)

// StationColumns are the columns a stations CSV must carry.
// "requirement", "name", "is_active", "start" and "end" are optional.
var StationColumns = []string{"station_id", "required_staffing", "minimum_staffing"}

// ShiftColumns are the columns a shifts CSV must carry.
// "id", "station_id" and "worker_id" are optional.
var ShiftColumns = []string{"start", "end"}

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04"}

type table struct {
	name   string
	reader *csv.Reader
	cols   map[string]int
	line   int
}

func newTable(name string, r io.Reader, required []string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, &ParseError{File: name, Line: 1, Err: err}
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			return nil, &ParseError{File: name, Line: 1, Record: header, Err: fmt.Errorf("%w: %s", ErrMissingColumn, c)}
		}
	}
	return &table{name: name, reader: reader, cols: cols, line: 1}, nil
}

// next returns the next non-blank record, or io.EOF
func (t *table) next() ([]string, error) {
	for {
		record, err := t.reader.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		t.line++
		if err != nil {
			return nil, t.fail(record, err)
		}
		if blank(record) {
			continue
		}
		return record, nil
	}
}

func (t *table) get(record []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (t *table) fail(record []string, err error) error {
	return &ParseError{File: t.name, Line: t.line, Record: record, Err: err}
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ParseStations reads one row per requirement slot. Rows of a station that
// share a non-empty "requirement" value form a single requirement; every
// other row is a requirement of its own.
func ParseStations(r io.Reader) ([]models.Station, error) {
	t, err := newTable("stations", r, StationColumns)
	if err != nil {
		return nil, err
	}

	type reqKey struct{ station, key string }
	var stations []models.Station
	stationIndex := make(map[string]int)
	reqIndex := make(map[reqKey]int)

	for {
		record, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		id := t.get(record, "station_id")
		if id == "" {
			return nil, t.fail(record, fmt.Errorf("%w: station_id", ErrEmptyRecord))
		}
		required, err := strconv.Atoi(t.get(record, "required_staffing"))
		if err != nil {
			return nil, t.fail(record, fmt.Errorf("%w: required_staffing", ErrInvalidStaffing))
		}
		minimum, err := strconv.Atoi(t.get(record, "minimum_staffing"))
		if err != nil {
			return nil, t.fail(record, fmt.Errorf("%w: minimum_staffing", ErrInvalidStaffing))
		}
		active := true
		if v := t.get(record, "is_active"); v != "" {
			if active, err = strconv.ParseBool(v); err != nil {
				return nil, t.fail(record, fmt.Errorf("%w: is_active", ErrInvalidBool))
			}
		}

		si, ok := stationIndex[id]
		if !ok {
			si = len(stations)
			stationIndex[id] = si
			stations = append(stations, models.Station{ID: id, Name: t.get(record, "name"), IsActive: active})
		}
		st := &stations[si]
		if st.Name == "" {
			st.Name = t.get(record, "name")
		}

		key := t.get(record, "requirement")
		ri, ok := reqIndex[reqKey{id, key}]
		if !ok || key == "" {
			ri = len(st.Requirements)
			if key != "" {
				reqIndex[reqKey{id, key}] = ri
			}
			st.Requirements = append(st.Requirements, models.StationRequirement{
				RequiredStaffing: required,
				MinimumStaffing:  minimum,
			})
		}

		start, end := t.get(record, "start"), t.get(record, "end")
		if start != "" || end != "" {
			st.Requirements[ri].TimeSlots = append(st.Requirements[ri].TimeSlots, models.TimeSlot{Start: start, End: end})
		}
	}
	return stations, nil
}

// ParseShifts reads shifts, interpreting zone-less timestamps in loc.
// Rows without an id get a generated one.
func ParseShifts(r io.Reader, loc *time.Location) ([]models.Shift, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := newTable("shifts", r, ShiftColumns)
	if err != nil {
		return nil, err
	}

	var shifts []models.Shift
	for {
		record, err := t.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		start, err := ParseTime(t.get(record, "start"), loc)
		if err != nil {
			return nil, t.fail(record, ErrInvalidStartTime)
		}
		end, err := ParseTime(t.get(record, "end"), loc)
		if err != nil {
			return nil, t.fail(record, ErrInvalidEndTime)
		}

		id := t.get(record, "id")
		if id == "" {
			id = uuid.New().String()
		}
		shifts = append(shifts, models.Shift{
			ID:        id,
			StationID: t.get(record, "station_id"),
			WorkerID:  t.get(record, "worker_id"),
			StartTime: start,
			EndTime:   end,
		})
	}
	return shifts, nil
}

// ParseTime accepts RFC 3339 or a local date-time in loc
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// CoverageHeader is the header row of an exported coverage CSV
var CoverageHeader = []string{"station_id", "station_name", "required_staffing", "minimum_staffing", "current_staffing", "coverage_percentage", "status", "unfilled_slots", "is_active"}

// WriteCoverage exports per-station coverage as CSV
func WriteCoverage(w io.Writer, a models.CoverageAnalysis) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CoverageHeader); err != nil {
		return err
	}
	for _, sc := range a.StationCoverage {
		err := writer.Write([]string{
			sc.StationID,
			sc.StationName,
			strconv.Itoa(sc.RequiredStaffing),
			strconv.Itoa(sc.MinimumStaffing),
			strconv.Itoa(sc.CurrentStaffing),
			strconv.Itoa(sc.CoveragePercentage),
			string(sc.Status),
			strconv.Itoa(sc.UnfilledSlots),
			strconv.FormatBool(sc.IsActive),
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
