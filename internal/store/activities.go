package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// localLayout is how start_date_local is stored: naive wall-clock time.
const localLayout = "2006-01-02T15:04:05"

const dayLayout = "2006-01-02"

var (
	selectColumns = strings.Join(activityColumns, ", ")
	upsertSQL     = buildUpsertSQL()
)

func buildUpsertSQL() string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(activityColumns)), ", ")
	updates := make([]string, 0, len(activityColumns))
	for _, col := range activityColumns[1:] {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", col, col))
	}
	updates = append(updates, "updated_at = CURRENT_TIMESTAMP")

	return "INSERT INTO activities (" + selectColumns + ") VALUES (" + placeholders + ")\n" +
		"ON CONFLICT(id) DO UPDATE SET " + strings.Join(updates, ", ")
}

// values returns a's column values in activityColumns order.
func (a *ActivitySummary) values() []any {
	v := []any{
		a.ID, a.Name, a.SportType, a.StartDateLocal.Format(localLayout), a.MovingTime, a.Distance,
		a.TotalElevationGain, a.Kilojoules, a.TrainingStressScore, a.IntensityFactor,
		a.NormalizedPower, a.AverageWatts, a.AverageHeartrate, a.EfficiencyFactor,
		a.PowerHRDecoupling, a.FatigueIndex, a.WorkoutType,
	}
	for _, p := range a.PowerZonePct {
		v = append(v, p)
	}
	for _, p := range a.TIDZonePct {
		v = append(v, p)
	}
	for _, p := range a.PowerCurve {
		v = append(v, p)
	}
	return append(v, a.CTL, a.ATL, a.TSB, a.ACWR)
}

// targets returns scan destinations in activityColumns order.
// start_date_local is scanned into startDate for parsing.
func (a *ActivitySummary) targets(startDate *string) []any {
	t := []any{
		&a.ID, &a.Name, &a.SportType, startDate, &a.MovingTime, &a.Distance,
		&a.TotalElevationGain, &a.Kilojoules, &a.TrainingStressScore, &a.IntensityFactor,
		&a.NormalizedPower, &a.AverageWatts, &a.AverageHeartrate, &a.EfficiencyFactor,
		&a.PowerHRDecoupling, &a.FatigueIndex, &a.WorkoutType,
	}
	for i := range a.PowerZonePct {
		t = append(t, &a.PowerZonePct[i])
	}
	for i := range a.TIDZonePct {
		t = append(t, &a.TIDZonePct[i])
	}
	for i := range a.PowerCurve {
		t = append(t, &a.PowerCurve[i])
	}
	return append(t, &a.CTL, &a.ATL, &a.TSB, &a.ACWR)
}

// UpsertActivity inserts or updates an activity
func (db *DB) UpsertActivity(ctx context.Context, a *ActivitySummary) error {
	_, err := db.ExecContext(ctx, upsertSQL, a.values()...)
	return err
}

// UpsertActivities writes all activities in a single transaction.
func (db *DB) UpsertActivities(ctx context.Context, activities []ActivitySummary) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for i := range activities {
		if _, err := stmt.ExecContext(ctx, activities[i].values()...); err != nil {
			return fmt.Errorf("upserting activity %d: %w", activities[i].ID, err)
		}
	}

	return tx.Commit()
}

// GetActivity retrieves an activity by ID
func (db *DB) GetActivity(ctx context.Context, id int64) (*ActivitySummary, error) {
	row := db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM activities WHERE id = ?`, id)
	return scanActivity(row)
}

// ListActivities returns activities whose local start date falls in
// [from, to] (calendar dates, inclusive), oldest first.
// A zero from or to leaves that side of the range open.
func (db *DB) ListActivities(ctx context.Context, from, to time.Time) ([]ActivitySummary, error) {
	query := `SELECT ` + selectColumns + ` FROM activities`
	var where []string
	var args []any
	if !from.IsZero() {
		where = append(where, "substr(start_date_local, 1, 10) >= ?")
		args = append(args, from.Format(dayLayout))
	}
	if !to.IsZero() {
		where = append(where, "substr(start_date_local, 1, 10) <= ?")
		args = append(args, to.Format(dayLayout))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_date_local ASC, id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// LatestActivity returns the most recent activity.
func (db *DB) LatestActivity(ctx context.Context) (*ActivitySummary, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+selectColumns+` FROM activities
		ORDER BY start_date_local DESC, id DESC
		LIMIT 1
	`)
	return scanActivity(row)
}

// CountActivities returns the total number of activities
func (db *DB) CountActivities(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities").Scan(&count)
	return count, err
}

// scanActivity scans a single activity from a row
func scanActivity(row *sql.Row) (*ActivitySummary, error) {
	var a ActivitySummary
	var startDate string

	err := row.Scan(a.targets(&startDate)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}

	a.StartDateLocal, err = time.Parse(localLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("parsing start_date_local %q: %w", startDate, err)
	}
	return &a, nil
}

// scanActivities scans multiple activities from rows
func scanActivities(rows *sql.Rows) ([]ActivitySummary, error) {
	var activities []ActivitySummary

	for rows.Next() {
		var a ActivitySummary
		var startDate string

		if err := rows.Scan(a.targets(&startDate)...); err != nil {
			return nil, err
		}

		var err error
		a.StartDateLocal, err = time.Parse(localLayout, startDate)
		if err != nil {
			return nil, fmt.Errorf("parsing start_date_local %q: %w", startDate, err)
		}

		activities = append(activities, a)
	}

	return activities, rows.Err()
}
