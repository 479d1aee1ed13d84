// Package export writes plans and training load history as Parquet files
// for analysis in external tools.
package export

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"cycling-planner/internal/analysis"
	"cycling-planner/internal/plan"
)

const (
	// PlanWeeksFile is the file name used for plan weeks inside an export directory.
	PlanWeeksFile = "plan_weeks.parquet"
	// PMCFile is the file name used for the fitness history.
	PMCFile = "pmc.parquet"
	// DailyLoadFile is the file name used for the daily TSS series.
	DailyLoadFile = "daily_load.parquet"

	writeParallelism = 4
	dateLayout       = "2006-01-02"
)

type weekRow struct {
	PlanID       string   `parquet:"name=plan_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	WeekNumber   int32    `parquet:"name=week_number, type=INT32"`
	StartDate    string   `parquet:"name=start_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	EndDate      string   `parquet:"name=end_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	Phase        string   `parquet:"name=phase, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	PhaseWeek    int32    `parquet:"name=phase_week, type=INT32"`
	TargetHours  float64  `parquet:"name=target_hours, type=DOUBLE"`
	TargetTSS    int64    `parquet:"name=target_tss, type=INT64"`
	TargetCTL    float64  `parquet:"name=target_ctl, type=DOUBLE"`
	TIDZ1        float64  `parquet:"name=tid_z1, type=DOUBLE"`
	TIDZ2        float64  `parquet:"name=tid_z2, type=DOUBLE"`
	TIDZ3        float64  `parquet:"name=tid_z3, type=DOUBLE"`
	Recovery     bool     `parquet:"name=is_recovery_week, type=BOOLEAN"`
	Taper        bool     `parquet:"name=is_taper_week, type=BOOLEAN"`
	ActualHours  *float64 `parquet:"name=actual_hours, type=DOUBLE, repetitiontype=OPTIONAL"`
	ActualTSS    *int64   `parquet:"name=actual_tss, type=INT64, repetitiontype=OPTIONAL"`
	ActualCTL    *float64 `parquet:"name=actual_ctl, type=DOUBLE, repetitiontype=OPTIONAL"`
	AdherencePct *float64 `parquet:"name=adherence_pct, type=DOUBLE, repetitiontype=OPTIONAL"`
	Status       string   `parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

type pmcRow struct {
	Date string  `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
	CTL  float64 `parquet:"name=ctl, type=DOUBLE"`
	ATL  float64 `parquet:"name=atl, type=DOUBLE"`
	TSB  float64 `parquet:"name=tsb, type=DOUBLE"`
}

type dailyRow struct {
	Date string  `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
	TSS  float64 `parquet:"name=tss, type=DOUBLE"`
}

// PlanWeeks writes one row per plan week and returns the number of rows.
func PlanWeeks(path string, p *plan.TrainingPlan) (int, error) {
	rows := make([]any, len(p.Weeks))
	for i, w := range p.Weeks {
		row := weekRow{
			PlanID:       p.ID,
			WeekNumber:   int32(w.WeekNumber),
			StartDate:    w.StartDate.Format(dateLayout),
			EndDate:      w.EndDate.Format(dateLayout),
			Phase:        w.Phase,
			PhaseWeek:    int32(w.PhaseWeek),
			TargetHours:  w.TargetHours,
			TargetTSS:    int64(w.TargetTSS),
			TargetCTL:    w.TargetCTL,
			TIDZ1:        w.TIDZ1,
			TIDZ2:        w.TIDZ2,
			TIDZ3:        w.TIDZ3,
			Recovery:     w.IsRecoveryWeek,
			Taper:        w.IsTaperWeek,
			ActualHours:  w.ActualHours,
			ActualCTL:    w.ActualCTL,
			AdherencePct: w.AdherencePct,
			Status:       string(w.Status()),
		}
		if w.ActualTSS != nil {
			tss := int64(*w.ActualTSS)
			row.ActualTSS = &tss
		}
		rows[i] = row
	}
	return len(rows), write(path, new(weekRow), rows)
}

// PMC writes the fitness, fatigue and form history.
func PMC(path string, points []analysis.PMCPoint) (int, error) {
	rows := make([]any, len(points))
	for i, pt := range points {
		rows[i] = pmcRow{Date: pt.Date.Format(dateLayout), CTL: pt.CTL, ATL: pt.ATL, TSB: pt.TSB}
	}
	return len(rows), write(path, new(pmcRow), rows)
}

// DailyLoad writes the daily TSS series, rest days included.
func DailyLoad(path string, daily []analysis.DailyTSS) (int, error) {
	rows := make([]any, len(daily))
	for i, d := range daily {
		rows[i] = dailyRow{Date: d.Date.Format(dateLayout), TSS: d.TSS}
	}
	return len(rows), write(path, new(dailyRow), rows)
}

func write(path string, schema any, rows []any) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := writeRows(fw, schema, rows); err != nil {
		fw.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func writeRows(fw source.ParquetFile, schema any, rows []any) error {
	pw, err := writer.NewParquetWriter(fw, schema, writeParallelism)
	if err != nil {
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return err
		}
	}
	return pw.WriteStop()
}
