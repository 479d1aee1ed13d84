package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrMissingColumn is returned when a CSV export lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// ImportResult summarizes a CSV import.
type ImportResult struct {
	Imported int
	Skipped  int
}

// timestamp layouts accepted for start_date_local; the zone, if any, is dropped
var localLayouts = []string{
	"2006-01-02 15:04:05",
	localLayout,
	"2006-01-02 15:04:05Z07:00",
	time.RFC3339,
	"2006-01-02",
}

// ParseCSV reads a semicolon-separated activity export with a header row.
// Unparsable or empty metric cells become nil. Rows without a usable id or
// start_date_local are skipped and counted.
func ParseCSV(r io.Reader, logger *slog.Logger) ([]ActivitySummary, int, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("reading header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"id", "start_date_local"} {
		if _, ok := index[required]; !ok {
			return nil, 0, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var activities []ActivitySummary
	skipped := 0
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, 0, fmt.Errorf("reading line %d: %w", line, err)
		}

		a, err := parseRow(record, index)
		if err != nil {
			logger.Warn("skipping activity row", "line", line, "error", err)
			skipped++
			continue
		}
		activities = append(activities, a)
	}

	return activities, skipped, nil
}

// ImportCSV parses an export and upserts every usable row.
func (db *DB) ImportCSV(ctx context.Context, r io.Reader, logger *slog.Logger) (ImportResult, error) {
	activities, skipped, err := ParseCSV(r, logger)
	if err != nil {
		return ImportResult{}, err
	}
	if err := db.UpsertActivities(ctx, activities); err != nil {
		return ImportResult{}, fmt.Errorf("storing activities: %w", err)
	}
	return ImportResult{Imported: len(activities), Skipped: skipped}, nil
}

func parseRow(record []string, index map[string]int) (ActivitySummary, error) {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	num := func(col string) *float64 {
		return parseNumber(cell(col))
	}
	// firstNum reads the first of several alias columns that holds a value
	firstNum := func(cols ...string) *float64 {
		for _, col := range cols {
			if v := num(col); v != nil {
				return v
			}
		}
		return nil
	}

	var a ActivitySummary
	id := num("id")
	if id == nil {
		return a, fmt.Errorf("invalid id %q", cell("id"))
	}
	a.ID = int64(*id)

	start, err := parseLocalTime(cell("start_date_local"))
	if err != nil {
		return a, err
	}
	a.StartDateLocal = start

	a.Name = cell("name")
	a.SportType = cell("sport_type")
	if a.SportType == "" {
		a.SportType = cell("type")
	}
	if v := num("moving_time"); v != nil {
		a.MovingTime = int(*v)
	}
	if v := num("distance"); v != nil {
		a.Distance = *v
	}
	if v := num("total_elevation_gain"); v != nil {
		a.TotalElevationGain = *v
	}

	a.Kilojoules = num("kilojoules")
	a.TrainingStressScore = num("training_stress_score")
	a.IntensityFactor = num("intensity_factor")
	a.NormalizedPower = num("normalized_power")
	a.AverageWatts = firstNum("average_power", "average_watts")
	a.AverageHeartrate = firstNum("average_hr", "average_heartrate")
	a.EfficiencyFactor = num("efficiency_factor")
	a.PowerHRDecoupling = num("power_hr_decoupling")
	a.FatigueIndex = num("fatigue_index")
	if v := num("workout_type"); v != nil {
		wt := int(*v)
		a.WorkoutType = &wt
	}

	for i := range a.PowerZonePct {
		a.PowerZonePct[i] = num(fmt.Sprintf("power_z%d_percentage", i+1))
	}
	for i := range a.TIDZonePct {
		a.TIDZonePct[i] = num(fmt.Sprintf("power_tid_z%d_percentage", i+1))
	}
	for i, label := range PowerCurveLabels {
		a.PowerCurve[i] = num("power_curve_" + label)
	}

	a.CTL = num("chronic_training_load")
	a.ATL = num("acute_training_load")
	a.TSB = num("training_stress_balance")
	a.ACWR = num("acwr")

	return a, nil
}

func parseNumber(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseLocalTime(s string) (time.Time, error) {
	for _, layout := range localLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid start_date_local %q", s)
}
