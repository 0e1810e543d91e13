// Package validation rejects inputs the coverage calculator cannot make
// sense of: contradictory requirement bounds, malformed time slots, shifts
// that end before they start and duplicate identifiers.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/arnavshah/coverage-api-go/pkg/models"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator with the custom time-of-day rules registered
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("timeofday", validateTimeOfDay)
		_ = validate.RegisterValidation("slotend", validateSlotEnd)
	})
	return validate
}

func parseClock(s string) (time.Time, bool) {
	t, err := time.Parse("15:04", s)
	return t, err == nil
}

// validateTimeOfDay accepts HH:MM 24h values
func validateTimeOfDay(fl validator.FieldLevel) bool {
	_, ok := parseClock(fl.Field().String())
	return ok
}

// validateSlotEnd requires a slot's end to be after its start
func validateSlotEnd(fl validator.FieldLevel) bool {
	slot, ok := fl.Parent().Interface().(models.TimeSlot)
	if !ok {
		return true
	}
	start, okStart := parseClock(slot.Start)
	end, okEnd := parseClock(slot.End)
	if !okStart || !okEnd {
		// reported by timeofday
		return true
	}
	return end.After(start)
}

// Problem is a single violation found in an input
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Problems collects every violation of an input
type Problems []Problem

func (p Problems) Error() string {
	msgs := make([]string, 0, len(p))
	for _, pr := range p {
		msgs = append(msgs, pr.Field+": "+pr.Message)
	}
	return strings.Join(msgs, "; ")
}

// Struct validates v and converts failures into Problems
func Struct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	problems := make(Problems, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, Problem{Field: fieldPath(fe), Message: describe(fe)})
	}
	return problems
}

// fieldPath drops the top-level struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "ltefield":
		return "must not exceed " + fe.Param()
	case "gtfield":
		return "must be after " + fe.Param()
	case "timeofday":
		return fmt.Sprintf("%q is not a HH:MM time", fe.Value())
	case "slotend":
		return "must be after start"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must be a date in " + fe.Param() + " form"
	case "timezone":
		return "is not a known time zone"
	}
	return "failed " + fe.Tag()
}

// Coverage validates a coverage input, including identifier uniqueness
func Coverage(in models.CoverageInput) error {
	return Request(in, in)
}

// Request validates a request v that embeds the coverage input in
func Request(v any, in models.CoverageInput) error {
	var problems Problems
	if err := Struct(v); err != nil {
		var p Problems
		if !errors.As(err, &p) {
			return err
		}
		problems = append(problems, p...)
	}
	problems = append(problems, duplicates(in)...)
	if len(problems) == 0 {
		return nil
	}
	return problems
}

func duplicates(in models.CoverageInput) Problems {
	var problems Problems

	stationIDs := make(map[string]bool, len(in.Stations))
	for i, st := range in.Stations {
		if st.ID == "" {
			continue
		}
		if stationIDs[st.ID] {
			problems = append(problems, Problem{
				Field:   fmt.Sprintf("Stations[%d].ID", i),
				Message: "duplicate station ID: " + st.ID,
			})
		}
		stationIDs[st.ID] = true
	}

	shiftIDs := make(map[string]bool, len(in.Shifts))
	for i, sh := range in.Shifts {
		if sh.ID == "" {
			continue
		}
		if shiftIDs[sh.ID] {
			problems = append(problems, Problem{
				Field:   fmt.Sprintf("Shifts[%d].ID", i),
				Message: "duplicate shift ID: " + sh.ID,
			})
		}
		shiftIDs[sh.ID] = true
	}
	return problems
}
