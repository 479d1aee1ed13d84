package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// activityColumns lists the activities table columns in scan order.
// Names follow the analyzer CSV export so the importer can map headers 1:1.
var activityColumns = buildActivityColumns()

func buildActivityColumns() []string {
	cols := []string{
		"id", "name", "sport_type", "start_date_local", "moving_time", "distance",
		"total_elevation_gain", "kilojoules", "training_stress_score", "intensity_factor",
		"normalized_power", "average_watts", "average_heartrate", "efficiency_factor",
		"power_hr_decoupling", "fatigue_index", "workout_type",
	}
	for i := 1; i <= NumPowerZones; i++ {
		cols = append(cols, fmt.Sprintf("power_z%d_percentage", i))
	}
	for i := 1; i <= NumTIDZones; i++ {
		cols = append(cols, fmt.Sprintf("power_tid_z%d_percentage", i))
	}
	for _, label := range PowerCurveLabels {
		cols = append(cols, "power_curve_"+label)
	}
	return append(cols,
		"chronic_training_load", "acute_training_load", "training_stress_balance", "acwr",
	)
}

func activitiesTableDDL() string {
	var b strings.Builder
	b.WriteString(`CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			sport_type TEXT NOT NULL DEFAULT '',
			start_date_local TEXT NOT NULL,
			moving_time INTEGER NOT NULL DEFAULT 0,
			distance REAL NOT NULL DEFAULT 0,
			total_elevation_gain REAL NOT NULL DEFAULT 0,
			workout_type INTEGER`)
	for _, col := range activityColumns {
		switch col {
		case "id", "name", "sport_type", "start_date_local", "moving_time",
			"distance", "total_elevation_gain", "workout_type":
			continue
		}
		b.WriteString(",\n\t\t\t" + col + " REAL")
	}
	b.WriteString(",\n\t\t\tcreated_at TEXT DEFAULT CURRENT_TIMESTAMP")
	b.WriteString(",\n\t\t\tupdated_at TEXT DEFAULT CURRENT_TIMESTAMP\n\t\t)")
	return b.String()
}

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		activitiesTableDDL(),

		`CREATE INDEX IF NOT EXISTS idx_activities_start_date_local ON activities(start_date_local)`,

		// Import bookkeeping (key-value)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
