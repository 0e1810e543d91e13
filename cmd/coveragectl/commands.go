package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/arnavshah/coverage-api-go/internal/schedule"
	"github.com/arnavshah/coverage-api-go/pkg/auth"
	"github.com/arnavshah/coverage-api-go/pkg/config"
	"github.com/arnavshah/coverage-api-go/pkg/coverage"
	"github.com/arnavshah/coverage-api-go/pkg/ingest"
	"github.com/arnavshah/coverage-api-go/pkg/metrics"
	"github.com/arnavshah/coverage-api-go/pkg/models"
	"github.com/arnavshah/coverage-api-go/pkg/validation"
)

var (
	inputFile   string // Schedule file (.yaml, .yml or .json)
	targetDate  string // Overrides target_date from the file
	averageMode string // Overrides average from the file
	csvOutput   bool   // Write the station table as CSV
	stationID   string // Station for impact
	actionName  string // add or remove
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute coverage for the target date",
	Example: `  coveragectl compute -f schedule.yaml
  coveragectl compute -f schedule.json --date 2026-03-02 --average weighted --csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		var in models.CoverageInput
		if err := readInput(inputFile, &in); err != nil {
			return err
		}
		if targetDate != "" {
			in.TargetDate = targetDate
		}
		if averageMode != "" {
			in.Average = averageMode
		}
		return runCompute(cmd.OutOrStdout(), cfg, in, csvOutput, time.Now())
	},
}

var impactCmd = &cobra.Command{
	Use:     "impact",
	Short:   "Estimate the effect of adding or removing one shift at a station",
	Example: `  coveragectl impact -f schedule.yaml --station front-desk --action add`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		var in models.ImpactInput
		if err := readInput(inputFile, &in); err != nil {
			return err
		}
		if stationID != "" {
			in.StationID = stationID
		}
		if actionName != "" {
			action, err := coverage.ParseAction(actionName)
			if err != nil {
				return err
			}
			in.Action = action
		}
		if targetDate != "" {
			in.TargetDate = targetDate
		}
		return runImpact(cmd.OutOrStdout(), cfg, in, time.Now())
	},
}

var keygenCmd = &cobra.Command{
	Use:   "keygen <userID>",
	Short: "Print an API key for userID signed with API_MASTER_SECRET",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return runKeygen(cmd.OutOrStdout(), cfg, args[0])
	},
}

func init() {
	rootCmd.AddCommand(computeCmd)
	computeCmd.Flags().StringVarP(&inputFile, "file", "f", "", "Schedule file with stations and shifts")
	computeCmd.Flags().StringVar(&targetDate, "date", "", "Target date (YYYY-MM-DD), defaults to today")
	computeCmd.Flags().StringVar(&averageMode, "average", "", "Overall average: simple or weighted")
	computeCmd.Flags().BoolVar(&csvOutput, "csv", false, "Write the station table as CSV")
	_ = computeCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(impactCmd)
	impactCmd.Flags().StringVarP(&inputFile, "file", "f", "", "Schedule file with stations and shifts")
	impactCmd.Flags().StringVar(&targetDate, "date", "", "Target date (YYYY-MM-DD), defaults to today")
	impactCmd.Flags().StringVar(&stationID, "station", "", "Station to change")
	impactCmd.Flags().StringVar(&actionName, "action", "", "add or remove")
	_ = impactCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(keygenCmd)
}

// readInput decodes a schedule file. JSON files may use camelCase keys.
func readInput(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return decodeInput(filepath.Ext(path), data, dst)
}

func decodeInput(ext string, data []byte, dst any) error {
	if strings.EqualFold(ext, ".json") {
		normalized, err := ingest.NormalizeKeys(data)
		if err != nil {
			return err
		}
		return json.Unmarshal(normalized, dst)
	}
	return yaml.Unmarshal(data, dst)
}

type evaluation struct {
	date   time.Time
	loc    *time.Location
	opts   coverage.Options
	shifts []models.Shift
}

func resolve(cfg *config.Config, in models.CoverageInput, now time.Time) (evaluation, error) {
	loc := cfg.Location()
	if in.Timezone != "" {
		l, err := time.LoadLocation(in.Timezone)
		if err != nil {
			return evaluation{}, err
		}
		loc = l
	}
	date := now.In(loc)
	if in.TargetDate != "" {
		d, err := schedule.ParseDate(in.TargetDate, loc)
		if err != nil {
			return evaluation{}, err
		}
		date = d
	}
	average := in.Average
	if average == "" {
		average = cfg.CoverageAverage
	}
	return evaluation{
		date:   date,
		loc:    loc,
		opts:   coverage.Options{Average: coverage.ParseAverage(average)},
		shifts: schedule.ShiftsForDate(in.Shifts, date, loc),
	}, nil
}

func runCompute(w io.Writer, cfg *config.Config, in models.CoverageInput, asCSV bool, now time.Time) error {
	if len(in.Stations) == 0 {
		return errors.New("at least one station is required")
	}
	if err := validation.Coverage(in); err != nil {
		return err
	}
	ev, err := resolve(cfg, in, now)
	if err != nil {
		return err
	}

	analysis := coverage.Compute(in.Stations, ev.shifts, ev.date, ev.opts)
	metrics.ObserveAnalysis("cli", analysis)
	if asCSV {
		return ingest.WriteCoverage(w, analysis)
	}
	return writeYAML(w, analysis)
}

func runImpact(w io.Writer, cfg *config.Config, in models.ImpactInput, now time.Time) error {
	if err := validation.Request(in, in.CoverageInput); err != nil {
		return err
	}

	snapshot := in.Snapshot
	if snapshot == nil {
		ev, err := resolve(cfg, in.CoverageInput, now)
		if err != nil {
			return err
		}
		analysis := coverage.Compute(in.Stations, ev.shifts, ev.date, ev.opts)
		snapshot = &analysis
	}
	return writeYAML(w, coverage.EstimateImpact(in.StationID, in.Action, *snapshot))
}

func runKeygen(w io.Writer, cfg *config.Config, userID string) error {
	if cfg.APIMasterSecret == "" {
		return errors.New("API_MASTER_SECRET is not set")
	}
	key := auth.NewSigner(cfg.JWTSecret, cfg.APIMasterSecret).GenerateKey(userID)
	_, err := fmt.Fprintf(w, "Generated Key for %s:\n%s\n", userID, key)
	return err
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
