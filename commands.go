package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"cycling-planner/internal/advisor"
	"cycling-planner/internal/analysis"
	"cycling-planner/internal/config"
	"cycling-planner/internal/plan"
	"cycling-planner/internal/refine"
	"cycling-planner/internal/report"
	"cycling-planner/internal/service"
	"cycling-planner/internal/store"
	"cycling-planner/internal/tui"
)

// app wires the services for one command run. The database is opened on first use.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	db     *store.DB
	now    func() time.Time
}

func newApp(cfg *config.Config, logger *slog.Logger) *app {
	return &app{cfg: cfg, logger: logger, out: os.Stdout, now: time.Now}
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

func (a *app) store() (*store.DB, error) {
	if a.db == nil {
		db, err := store.Open(a.cfg.Data.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		a.db = db
	}
	return a.db, nil
}

func (a *app) analysisService() (*service.AnalysisService, error) {
	db, err := a.store()
	if err != nil {
		return nil, err
	}
	return service.NewAnalysisService(db, a.logger), nil
}

// planService builds a plan service; refiner may be nil
func (a *app) planService(refiner *refine.Refiner) (*service.PlanService, error) {
	db, err := a.store()
	if err != nil {
		return nil, err
	}
	history := service.NewHistoryBuilder(db, a.cfg.Athlete, a.logger)
	return service.NewPlanService(db, history, plan.DefaultScheme(), refiner, a.cfg.Data.PlanFile, a.logger), nil
}

func (a *app) print(s string) {
	fmt.Fprintln(a.out, s)
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "import":
		return a.cmdImport(ctx, rest)
	case "analyze":
		return a.cmdAnalyze(ctx, rest)
	case "weeks":
		return a.cmdWeeks(ctx, rest)
	case "phase":
		return a.cmdPhase(ctx, rest)
	case "status":
		return a.cmdStatus(ctx, rest)
	case "plan":
		return a.dispatchPlan(ctx, rest)
	case "export":
		return a.cmdExport(ctx, rest)
	case "help", "-h", "--help":
		usage()
		return nil
	}
	return fmt.Errorf("unknown command %q (run with no arguments for help)", cmd)
}

func (a *app) dispatchPlan(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("plan: missing subcommand (generate, show, actuals, prompt, refine, adjust)")
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "generate":
		return a.cmdPlanGenerate(ctx, rest)
	case "show":
		return a.cmdPlanShow(ctx, rest)
	case "actuals":
		return a.cmdPlanActuals(ctx, rest)
	case "prompt":
		return a.cmdPlanPrompt(ctx, rest)
	case "refine":
		return a.cmdPlanRefine(ctx, rest)
	case "adjust":
		return a.cmdPlanAdjust(ctx, rest)
	}
	return fmt.Errorf("plan: unknown subcommand %q", cmd)
}

func (a *app) cmdImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("import: expected exactly one CSV file")
	}

	db, err := a.store()
	if err != nil {
		return err
	}
	res, err := service.NewImportService(db, a.logger).ImportFile(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	a.print(report.Import(res))
	return nil
}

func (a *app) cmdAnalyze(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fromStr := fs.String("from", "", "first day, YYYY-MM-DD (default: first activity)")
	toStr := fs.String("to", "", "last day, YYYY-MM-DD (default: last activity)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	from, err := parseDate("from", *fromStr)
	if err != nil {
		return err
	}
	to, err := parseDate("to", *toStr)
	if err != nil {
		return err
	}

	svc, err := a.analysisService()
	if err != nil {
		return err
	}
	agg, err := svc.AnalyzePeriod(ctx, from, to)
	if err != nil {
		return err
	}
	a.print(report.Period(agg))
	return nil
}

func (a *app) cmdWeeks(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("weeks", flag.ContinueOnError)
	n := fs.Int("n", service.DefaultAnalyzeWeeks, "number of periods")
	months := fs.Bool("months", false, "aggregate calendar months instead of weeks")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *n <= 0 {
		return fmt.Errorf("weeks: --n must be positive, got %d", *n)
	}

	svc, err := a.analysisService()
	if err != nil {
		return err
	}

	var periods []analysis.PeriodAggregate
	if *months {
		periods, err = svc.AnalyzeMonths(ctx, *n)
	} else {
		periods, err = svc.AnalyzeWeeks(ctx, *n)
	}
	if err != nil {
		return err
	}
	a.print(report.Weeks(periods))
	return nil
}

func (a *app) cmdPhase(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("phase", flag.ContinueOnError)
	days := fs.Int("days", service.PhaseWindowDays, "length of the current and previous windows")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *days <= 0 {
		return fmt.Errorf("phase: --days must be positive, got %d", *days)
	}

	svc, err := a.analysisService()
	if err != nil {
		return err
	}
	c, err := svc.ClassifyRecentPhase(ctx, *days)
	if err != nil {
		return err
	}
	a.print(report.Phase(c))
	return nil
}

func (a *app) cmdStatus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	days := fs.Int("days", service.CTLLookbackDays, "days of fitness history to chart")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := a.analysisService()
	if err != nil {
		return err
	}
	st, err := svc.CurrentStatus(ctx)
	if errors.Is(err, service.ErrNoActivities) {
		a.print(report.WarningStyle.Render("No activities imported yet. Run: cycling-planner import <file.csv>"))
		return nil
	}
	if err != nil {
		return err
	}
	a.print(report.Status(st))

	points, err := svc.PMC(ctx, a.now().AddDate(0, 0, -*days), time.Time{})
	if err != nil {
		return err
	}
	if chart := report.PMC(points); chart != "" {
		a.print(chart)
	}
	return nil
}

func (a *app) cmdPlanGenerate(ctx context.Context, args []string) error {
	athlete := a.cfg.Athlete
	today := store.DateOf(a.now())

	fs := flag.NewFlagSet("plan generate", flag.ContinueOnError)
	name := fs.String("name", "", "plan name")
	startStr := fs.String("start", "", "start date, YYYY-MM-DD (default: next Monday)")
	endStr := fs.String("end", "", "end date, YYYY-MM-DD (default: 12 weeks after start)")
	ftp := fs.Float64("ftp", athlete.FTP, "current FTP in watts")
	targetFTP := fs.Float64("target-ftp", 0, "target FTP in watts (default: +5%)")
	weight := fs.Float64("weight", athlete.WeightKG, "body weight in kg")
	hours := fs.Float64("hours", athlete.HoursPerWeek, "available hours per week")
	ctl := fs.Float64("ctl", 0, "current CTL (default: latest imported value)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var currentCTL *float64
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "ctl" {
			currentCTL = ctl
		}
	})

	start := nextMonday(today)
	if *startStr != "" {
		var err error
		if start, err = parseDate("start", *startStr); err != nil {
			return err
		}
	}
	end := start.AddDate(0, 0, 7*12)
	if *endStr != "" {
		var err error
		if end, err = parseDate("end", *endStr); err != nil {
			return err
		}
	}
	if *targetFTP == 0 {
		*targetFTP = *ftp * 1.05
	}

	events, err := keyEvents(a.cfg.KeyEvents, start, end)
	if err != nil {
		return err
	}

	svc, err := a.planService(nil)
	if err != nil {
		return err
	}
	p, err := svc.Generate(ctx, plan.Goal{
		Name:         *name,
		StartDate:    start,
		EndDate:      end,
		StartFTP:     *ftp,
		TargetFTP:    *targetFTP,
		WeightKG:     *weight,
		HoursPerWeek: *hours,
		KeyEvents:    events,
		CurrentCTL:   currentCTL,
	})
	if err != nil {
		return err
	}
	if err := svc.Save(p); err != nil {
		return err
	}

	a.print(report.Plan(p, a.now()))
	a.print(report.SuccessStyle.Render("Plan saved to " + svc.Path()))
	return nil
}

// loadPlan reads the saved plan and refreshes its actuals in memory
func (a *app) loadPlan(ctx context.Context, svc *service.PlanService) (*plan.TrainingPlan, error) {
	p, err := svc.Load()
	if errors.Is(err, plan.ErrPlanNotFound) {
		return nil, fmt.Errorf("%w at %s (run: cycling-planner plan generate)", err, svc.Path())
	}
	if err != nil {
		return nil, err
	}
	if _, err := svc.UpdateActuals(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (a *app) cmdPlanShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("plan show", flag.ContinueOnError)
	useTUI := fs.Bool("tui", false, "show the plan in a scrollable full screen view")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := a.planService(nil)
	if err != nil {
		return err
	}
	p, err := a.loadPlan(ctx, svc)
	if err != nil {
		return err
	}

	out := report.Plan(p, a.now())
	if *useTUI {
		return tui.RunViewer(p.Name, out)
	}
	a.print(out)
	return nil
}

func (a *app) cmdPlanActuals(ctx context.Context, args []string) error {
	svc, err := a.planService(nil)
	if err != nil {
		return err
	}
	p, err := svc.Load()
	if err != nil {
		return err
	}
	n, err := svc.UpdateActuals(ctx, p)
	if err != nil {
		return err
	}
	if err := svc.Save(p); err != nil {
		return err
	}

	s := p.Summarize()
	a.print(report.SuccessStyle.Render(fmt.Sprintf("Updated %d of %d weeks: %d complete, %d partial, %d missed",
		n, s.Weeks, s.Complete, s.Partial, s.Missed)))
	return nil
}

func (a *app) cmdPlanPrompt(ctx context.Context, args []string) error {
	svc, err := a.planService(nil)
	if err != nil {
		return err
	}
	p, err := a.loadPlan(ctx, svc)
	if err != nil {
		return err
	}
	prompt, err := svc.Prompt(ctx, p)
	if err != nil {
		return err
	}
	a.print(prompt)
	return nil
}

func (a *app) cmdPlanRefine(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("plan refine", flag.ContinueOnError)
	noTUI := fs.Bool("no-tui", false, "print progress to the terminal instead of a full screen view")
	dryRun := fs.Bool("dry-run", false, "show the refined plan without saving it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.cfg.ValidateAdvisor(); err != nil {
		return err
	}

	logger := a.logger
	if !*noTUI {
		// log lines would tear the full screen view
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	client := advisor.NewClient(advisor.Config{
		BaseURL:     a.cfg.Advisor.BaseURL,
		Model:       a.cfg.Advisor.Model,
		APIKey:      a.cfg.Advisor.APIKey,
		Temperature: a.cfg.Advisor.Temperature,
	})
	refiner := refine.NewRefiner(client, a.cfg.Advisor.Timeout(), logger)

	svc, err := a.planService(refiner)
	if err != nil {
		return err
	}
	p, err := a.loadPlan(ctx, svc)
	if err != nil {
		return err
	}

	var buildErr error
	run := func(ctx context.Context) *refine.Result {
		res, err := svc.Refine(ctx, p)
		if err != nil {
			buildErr = err
			return &refine.Result{Plan: p, Err: err}
		}
		return res
	}
	render := func(res *refine.Result) string {
		return report.Refinement(res) + "\n\n" + report.Plan(res.Plan, a.now())
	}

	var res *refine.Result
	if *noTUI {
		a.print(report.StatusStyle.Render(fmt.Sprintf("Asking %s to refine %d weeks (timeout %s)...",
			a.cfg.Advisor.Model, len(p.Weeks), a.cfg.Advisor.Timeout())))
		res = run(ctx)
		a.print(render(res))
	} else {
		if res, err = tui.RunRefine(ctx, run, render); err != nil {
			return err
		}
		if res == nil {
			a.print(report.WarningStyle.Render("Refinement cancelled, plan unchanged"))
			return nil
		}
		a.print(report.Refinement(res))
	}
	if buildErr != nil {
		return buildErr
	}

	if !res.Refined || *dryRun {
		return nil
	}
	if err := svc.Save(res.Plan); err != nil {
		return err
	}
	a.print(report.SuccessStyle.Render("Refined plan saved to " + svc.Path()))
	return nil
}

func (a *app) cmdPlanAdjust(ctx context.Context, args []string) error {
	svc, err := a.planService(nil)
	if err != nil {
		return err
	}
	p, err := a.loadPlan(ctx, svc)
	if err != nil {
		return err
	}
	prompt, err := svc.AdjustmentPrompt(ctx, p)
	if err != nil {
		return err
	}
	a.print(prompt)
	return nil
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("out", "export", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := a.analysisService()
	if err != nil {
		return err
	}
	planSvc, err := a.planService(nil)
	if err != nil {
		return err
	}

	p, err := a.loadPlan(ctx, planSvc)
	if errors.Is(err, plan.ErrPlanNotFound) {
		p = nil
	} else if err != nil {
		return err
	}

	res, err := service.NewExportService(svc, a.logger).Export(ctx, *out, p)
	if err != nil {
		return err
	}
	if len(res.Files) == 0 {
		a.print(report.WarningStyle.Render("Nothing to export"))
		return nil
	}
	for _, f := range res.Files {
		a.print(report.SuccessStyle.Render("Wrote " + f))
	}
	return nil
}

func parseDate(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be YYYY-MM-DD, got %q", name, s)
	}
	return t, nil
}

func nextMonday(day time.Time) time.Time {
	offset := (int(time.Monday) - int(day.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return day.AddDate(0, 0, offset)
}

// keyEvents converts configured events that fall inside the plan dates
func keyEvents(cfgs []config.KeyEventConfig, start, end time.Time) ([]plan.KeyEvent, error) {
	var events []plan.KeyEvent
	for _, c := range cfgs {
		date, err := time.Parse(time.DateOnly, c.Date)
		if err != nil {
			return nil, fmt.Errorf("key event %q: %w", c.Name, err)
		}
		if date.Before(start) || date.After(end) {
			continue
		}
		events = append(events, plan.KeyEvent{
			Name:      c.Name,
			Date:      date,
			Priority:  c.Priority,
			EventType: c.Type,
		})
	}
	return events, nil
}
