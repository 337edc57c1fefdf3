// =============================================================================
// Payroll Audit - Job Runner
// =============================================================================
//
// This module runs the audit jobs of engagement configurations. A job is one
// audit procedure for one client: an exception scan, a headcount
// reconciliation, a PF test, and so on.
//
// JOB PIPELINE:
//   1. Load the job's input tables (xlsx/csv) and column map
//   2. Run the procedure (rules engine, analytics, threshold calculator)
//   3. Write the working paper workbook and/or JSON summary
//   4. Record skipped rules and failures as issues
//
// CONCURRENCY:
//   RunAll runs every job of every engagement in its own goroutine, at most
//   MaxConcurrency at a time. Jobs share no state; each writes its own
//   output files.
//
// =============================================================================

package audit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payroll-audit/internal/analytics"
	"github.com/ginjaninja78/payroll-audit/internal/columnmap"
	"github.com/ginjaninja78/payroll-audit/internal/config"
	"github.com/ginjaninja78/payroll-audit/internal/dataset"
	"github.com/ginjaninja78/payroll-audit/internal/ledger"
	"github.com/ginjaninja78/payroll-audit/internal/reconcile"
	"github.com/ginjaninja78/payroll-audit/internal/report"
	"github.com/ginjaninja78/payroll-audit/internal/rules"
	"github.com/ginjaninja78/payroll-audit/pkg/utils"
)

// ErrCancelled is returned for jobs not started because an earlier job
// failed and the run does not continue on error.
var ErrCancelled = errors.New("run cancelled after an earlier failure")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of running a single job.
type Result struct {
	// Client is the engagement client code.
	Client string

	// Job is the job name; Type its job type.
	Job  string
	Type string

	// Outputs are the files written by the job.
	// This is empty if the job failed.
	Outputs []string

	// Success indicates whether the job completed.
	Success bool

	// Error contains the error if the job failed.
	Error error

	// Issues are the problems recorded while the job ran (skipped rules).
	Issues []utils.IssueEntry

	// Stats contains job statistics.
	Stats JobStats
}

// JobStats contains statistics about a job.
type JobStats struct {
	// RowsRead is the number of data rows loaded from all inputs.
	RowsRead int

	// Exceptions is the number of rule violations, or reconciliations
	// outside their threshold.
	Exceptions int

	// SkippedRules is the number of rules that could not run.
	SkippedRules int

	// ProcessingTime is the time taken to run the job.
	ProcessingTime time.Duration
}

// =============================================================================
// RUNNER STRUCTURE
// =============================================================================

// Runner runs audit jobs and writes their outputs.
type Runner struct {
	// RunID identifies this run in logs and the run summary.
	RunID string

	main   *config.MainConfig
	files  *utils.FileManager
	logger Logger
}

// NewRunner creates a Runner writing to the main configuration's output
// directory. A nil logger discards log records.
func NewRunner(main *config.MainConfig, logger Logger) *Runner {
	if main == nil {
		main = config.DefaultMainConfig()
	}
	if logger == nil {
		logger = DiscardLogger()
	}
	return &Runner{
		RunID:  uuid.New().String(),
		main:   main,
		files:  utils.NewFileManager(main.OutputDir, main.LogFile, main.OutputNameFormat),
		logger: logger,
	}
}

// Files returns the runner's file manager.
func (r *Runner) Files() *utils.FileManager { return r.files }

// =============================================================================
// SINGLE JOB
// =============================================================================

// jobContext carries what one job run needs.
type jobContext struct {
	client string
	eng    *config.EngagementConfig
	job    config.JobConfig
	logger Logger
	result *Result
	base   string
}

// Run executes one job of an engagement.
//
// PARAMETERS:
//   - ctx: Cancels the job before it starts.
//   - client: The client code used in output names and logs.
//   - eng: The engagement the job belongs to.
//   - job: The job to run.
//
// RETURNS:
//   - A Result describing the outcome. Run never panics on bad input; all
//     failures are reported through Result.Error.
func (r *Runner) Run(ctx context.Context, client string, eng *config.EngagementConfig, job config.JobConfig) Result {
	startTime := time.Now()
	result := Result{Client: client, Job: job.Name, Type: job.Type}

	if err := ctx.Err(); err != nil {
		result.Error = ErrCancelled
		return result
	}

	if err := r.files.EnsureDirectories(); err != nil {
		result.Error = err
		return result
	}

	jc := &jobContext{
		client: client,
		eng:    eng,
		job:    job,
		logger: WithJob(r.logger, client, job.Name),
		result: &result,
		base:   r.files.OutputPath(map[string]string{"client": client, "job": job.Name}, ""),
	}
	jc.logger.Info("Running %s job", job.Type)

	var err error
	switch job.Type {
	case config.JobPayrollExceptions:
		err = r.runExceptions(jc, columnmap.Payroll, config.SourceRegister, "")
	case config.JobFixedAssetExceptions:
		err = r.runExceptions(jc, columnmap.FixedAsset, config.SourceCurrent, config.SourcePrevious)
	case config.JobHeadcount:
		err = r.runHeadcount(jc)
	case config.JobIncrement:
		err = r.runIncrement(jc)
	case config.JobPF:
		err = r.runPF(jc)
	case config.JobSalary:
		err = r.runSalary(jc)
	case config.JobCompare:
		err = r.runCompare(jc)
	case config.JobRowCount:
		err = r.runRowCount(jc)
	case config.JobMoMIncrement:
		err = r.runMoM(jc)
	case config.JobCutoff:
		err = r.runCutoff(jc)
	case config.JobCWIP:
		err = r.runCWIP(jc)
	default:
		err = fmt.Errorf("unknown job type %q", job.Type)
	}

	result.Stats.ProcessingTime = time.Since(startTime)
	if err != nil {
		result.Error = err
		result.Outputs = nil
		jc.logger.Error("Job failed: %v", err)
		return result
	}

	result.Success = true
	jc.logger.Info("Job finished in %s with %d exceptions", result.Stats.ProcessingTime, result.Stats.Exceptions)
	return result
}

// load reads the source configured for a role.
func (jc *jobContext) load(role string) (*dataset.Dataset, error) {
	src, ok := jc.job.Source(role)
	if !ok {
		return nil, fmt.Errorf("source %q is not configured", role)
	}
	ds, err := dataset.Load(src.Path, src.LoadOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", role, err)
	}
	jc.result.Stats.RowsRead += ds.Len()
	jc.logger.Debug("Loaded %s: %d rows, %d columns", role, ds.Len(), len(ds.Columns()))
	return ds, nil
}

// loadOptional reads a role's source when one is configured.
func (jc *jobContext) loadOptional(role string) (*dataset.Dataset, error) {
	if _, ok := jc.job.Source(role); !ok {
		return nil, nil
	}
	return jc.load(role)
}

func (jc *jobContext) writeJSON(v interface{}) error {
	path := jc.base + ".json"
	if err := report.WriteJSON(path, v); err != nil {
		return err
	}
	jc.result.Outputs = append(jc.result.Outputs, path)
	jc.logger.Info("Wrote output to: %s", path)
	return nil
}

func (jc *jobContext) writeWorkbook(tables ...report.Table) error {
	path := jc.base + ".xlsx"
	if err := report.WriteWorkbook(path, tables...); err != nil {
		return err
	}
	jc.result.Outputs = append(jc.result.Outputs, path)
	jc.logger.Info("Wrote output to: %s", path)
	return nil
}

// countOutside records a reconciliation outside its threshold as an exception.
func (jc *jobContext) countOutside(res reconcile.Result) {
	if !res.WithinThreshold {
		jc.result.Stats.Exceptions++
		jc.logger.Warn("Difference %s exceeds threshold %s", res.Difference.String(), res.Threshold.String())
	}
}

// =============================================================================
// EXCEPTION JOBS
// =============================================================================

func (r *Runner) runExceptions(jc *jobContext, domain columnmap.Domain, currentRole, previousRole string) error {
	current, err := jc.load(currentRole)
	if err != nil {
		return err
	}
	var previous *dataset.Dataset
	if previousRole != "" {
		if previous, err = jc.loadOptional(previousRole); err != nil {
			return err
		}
	}

	doc, err := columnmap.LoadFile(jc.job.ColumnMap)
	if err != nil {
		return err
	}
	cols, err := doc.Map(domain)
	if err != nil {
		return fmt.Errorf("invalid column map %s: %w", jc.job.ColumnMap, err)
	}

	catalogue, err := rules.ForDomain(domain)
	if err != nil {
		return err
	}

	evalDate, err := jc.eng.EvaluationTime()
	if err != nil {
		return err
	}
	fy := jc.eng.FiscalYear()

	ev, err := rules.NewEngine(catalogue).Evaluate(rules.Input{
		Current:  current,
		Previous: previous,
		Columns:  cols,
		Options: rules.Options{
			NetPayTolerance: decimal.NewFromFloat(jc.eng.NetPayTolerance),
			EvaluationDate:  evalDate,
			FiscalYear:      &fy,
			Parallel:        r.main.ParallelRules,
		},
	}, jc.job.Rules)
	if err != nil {
		return fmt.Errorf("failed to evaluate rules: %w", err)
	}

	for _, o := range ev.Skipped() {
		jc.logger.Warn("Rule %d skipped: %s", o.RuleID, o.Reason)
		jc.result.Issues = append(jc.result.Issues, utils.IssueEntry{
			Timestamp: time.Now(),
			Client:    jc.client,
			Job:       jc.job.Name,
			Kind:      utils.IssueRuleSkipped,
			Message:   o.Reason,
			RuleID:    o.RuleID,
			Fields:    o.MissingFields,
		})
	}

	summary := rules.Summary(ev)
	jc.result.Stats.Exceptions = rules.TotalExceptions(summary)
	jc.result.Stats.SkippedRules = len(ev.Skipped())

	if err := jc.writeWorkbook(report.ExceptionTables(ev, current, previous)...); err != nil {
		return err
	}
	return jc.writeJSON(summary)
}

// =============================================================================
// HEADCOUNT AND INCREMENT
// =============================================================================

// headcountOutput is the JSON document of a headcount job.
type headcountOutput struct {
	*analytics.HeadcountReport
	Threshold reconcile.Result `json:"Headcount_vs_CTC"`
}

func (r *Runner) runHeadcount(jc *jobContext) error {
	additions, err := jc.load(config.SourceAdditions)
	if err != nil {
		return err
	}
	deletions, err := jc.load(config.SourceDeletions)
	if err != nil {
		return err
	}
	ctc, err := jc.load(config.SourceCTC)
	if err != nil {
		return err
	}
	payRegister, err := jc.loadOptional(config.SourcePayRegister)
	if err != nil {
		return err
	}

	if err := requireColumn(additions, config.SourceAdditions, jc.job.JoinDateColumn, "join_date_column"); err != nil {
		return err
	}
	if err := requireColumn(deletions, config.SourceDeletions, jc.job.LeaveDateColumn, "leave_date_column"); err != nil {
		return err
	}

	in := analytics.HeadcountInput{
		FiscalYear:      jc.eng.FiscalYear(),
		Opening:         jc.job.Opening,
		Joiners:         analytics.DatesIn(additions, jc.job.JoinDateColumn),
		Leavers:         analytics.DatesIn(deletions, jc.job.LeaveDateColumn),
		CTCCount:        ctc.Len(),
		UserAdjustments: jc.job.UserAdjustments,
	}
	if payRegister != nil {
		if err := requireColumn(payRegister, config.SourcePayRegister, jc.job.PayMonthColumn, "pay_month_column"); err != nil {
			return err
		}
		if err := requireColumn(payRegister, config.SourcePayRegister, jc.job.GrossColumn, "gross_column"); err != nil {
			return err
		}
		in.Pay = analytics.PayEntries(payRegister, jc.job.PayMonthColumn, jc.job.GrossColumn)
	}

	rep, err := analytics.ReconcileHeadcount(in)
	if err != nil {
		return err
	}

	eng, err := jc.eng.Engagement()
	if err != nil {
		return err
	}
	threshold, err := reconcile.HeadcountVsCTC(rep.Closing, in.CTCCount, eng)
	if err != nil {
		return err
	}
	jc.countOutside(threshold)
	if n := rep.NetDifference(); n != 0 {
		jc.logger.Warn("Closing headcount differs from the CTC report by %d after user rows", n)
	}

	if err := jc.writeWorkbook(report.HeadcountTables(rep)...); err != nil {
		return err
	}
	return jc.writeJSON(headcountOutput{HeadcountReport: rep, Threshold: threshold})
}

func requireColumn(ds *dataset.Dataset, role, column, setting string) error {
	if column == "" {
		return fmt.Errorf("%s is required", setting)
	}
	if !ds.Has(column) {
		return fmt.Errorf("%s has no column %q", role, column)
	}
	return nil
}

func (r *Runner) runIncrement(jc *jobContext) error {
	cy, err := jc.load(config.SourceCTC)
	if err != nil {
		return err
	}
	py, err := jc.load(config.SourceCTCPrevious)
	if err != nil {
		return err
	}

	a, err := analytics.AnalyseIncrements(cy, py, analytics.IncrementColumns{
		EmployeeCode:  jc.job.EmployeeCodeColumn,
		EmployeeName:  jc.job.EmployeeNameColumn,
		DateOfJoining: jc.job.DateOfJoinColumn,
		Designation:   jc.job.DesignationColumn,
		Sum:           jc.job.SumColumns,
	}, jc.job.UserAdjustments)
	if err != nil {
		return err
	}
	jc.logger.Info("Average increment: %s%%", a.Summary.AverageIncrementPct.String())

	if err := jc.writeWorkbook(report.IncrementTable(a)); err != nil {
		return err
	}
	return jc.writeJSON(a)
}

func (r *Runner) runMoM(jc *jobContext) error {
	register, err := jc.load(config.SourceRegister)
	if err != nil {
		return err
	}

	doc, err := columnmap.LoadFile(jc.job.ColumnMap)
	if err != nil {
		return err
	}
	cols, err := doc.Map(columnmap.Payroll)
	if err != nil {
		return fmt.Errorf("invalid column map %s: %w", jc.job.ColumnMap, err)
	}
	code, ok := cols.Resolve(columnmap.EmployeeCode)
	if !ok {
		return fmt.Errorf("column map %s does not map %s", jc.job.ColumnMap, columnmap.EmployeeCode)
	}
	month, ok := cols.Resolve(columnmap.PayMonth)
	if !ok {
		return fmt.Errorf("column map %s does not map %s", jc.job.ColumnMap, columnmap.PayMonth)
	}

	a, err := analytics.AnalyseMoM(register, analytics.MoMColumns{
		EmployeeCode: code,
		PayMonth:     month,
		Display:      jc.job.DisplayColumns,
		Sum:          jc.job.SumColumns,
	}, jc.job.IncrementMonth)
	if err != nil {
		return err
	}
	jc.logger.Info("Analysed %d employees over %d months before and %d from %s",
		len(a.Rows), len(a.PreMonths), len(a.PostMonths), a.IncrementMonth)

	if err := jc.writeWorkbook(report.MoMTable(a)); err != nil {
		return err
	}
	return jc.writeJSON(a)
}

func (r *Runner) runCutoff(jc *jobContext) error {
	additions, err := jc.load(config.SourceAdditions)
	if err != nil {
		return err
	}
	deletions, err := jc.load(config.SourceDeletions)
	if err != nil {
		return err
	}

	a, err := analytics.AnalyseCutoff(additions, deletions,
		analytics.CutoffColumns{Date: jc.job.AdditionDateColumn, Amount: jc.job.AdditionAmountColumn},
		analytics.CutoffColumns{Date: jc.job.DeletionDateColumn, Amount: jc.job.DeletionAmountColumn},
		jc.eng.FiscalYear(),
	)
	if err != nil {
		return err
	}
	jc.logger.Info("Cut-off window %s: additions %s, deletions %s",
		a.Window.String(), a.Additions.Percentage, a.Deletions.Percentage)
	return jc.writeJSON(a)
}

func (r *Runner) runCWIP(jc *jobContext) error {
	register, err := jc.load(config.SourceCWIP)
	if err != nil {
		return err
	}
	entries, err := ledger.Load(jc.job.TrialBalance)
	if err != nil {
		return err
	}
	jc.result.Stats.RowsRead += len(entries)

	cutoff, err := jc.job.Cutoff(jc.eng.FiscalYear())
	if err != nil {
		return err
	}
	sublead := ledger.TotalClosing(ledger.BySubLine(entries, ledger.CWIPSubLineID))

	a, err := analytics.AnalyseCWIP(register, analytics.CWIPColumns{
		Amount: jc.job.AmountColumn,
		Date:   jc.job.DateColumn,
	}, sublead, decimal.NewFromFloat(jc.job.AdjustmentAmount), cutoff)
	if err != nil {
		return err
	}
	if !a.NetDifference.IsZero() {
		jc.result.Stats.Exceptions++
		jc.logger.Warn("CWIP register differs from the sub-lead by %s", a.NetDifference.String())
	}

	if err := jc.writeWorkbook(report.CWIPTables(register, a)...); err != nil {
		return err
	}
	return jc.writeJSON(a)
}

// =============================================================================
// LEDGER RECONCILIATIONS
// =============================================================================

// pickOrAll selects ledgers by 1-based position; no positions selects all.
func pickOrAll(entries []ledger.Entry, positions []int) []ledger.Entry {
	if len(positions) == 0 {
		return entries
	}
	return ledger.Pick(entries, positions)
}

func (r *Runner) runPF(jc *jobContext) error {
	entries, err := ledger.Load(jc.job.TrialBalance)
	if err != nil {
		return err
	}
	eng, err := jc.eng.Engagement()
	if err != nil {
		return err
	}

	pool := ledger.BySubLine(entries, ledger.PFSubLineID)
	recorded := pickOrAll(pool, jc.job.PFLedgers)
	var salary []ledger.Entry
	if len(jc.job.SalaryLedgers) > 0 {
		salary = ledger.Pick(pool, jc.job.SalaryLedgers)
	} else {
		salary = ledger.ByNoteLine(entries, ledger.SalaryNoteLineID)
	}
	if len(recorded) == 0 {
		return fmt.Errorf("no PF ledgers selected from %s", jc.job.TrialBalance)
	}
	jc.result.Stats.RowsRead += len(entries)

	res, err := reconcile.AnalysePF(reconcile.PFInput{
		Recorded:   recorded,
		Salary:     salary,
		Percentage: decimal.NewFromFloat(jc.job.PFPercentage),
	}, eng)
	if err != nil {
		return err
	}
	jc.countOutside(res.Reconciliation)
	return jc.writeJSON(res)
}

func (r *Runner) runSalary(jc *jobContext) error {
	entries, err := ledger.Load(jc.job.TrialBalance)
	if err != nil {
		return err
	}
	eng, err := jc.eng.Engagement()
	if err != nil {
		return err
	}

	selected := pickOrAll(ledger.ByNoteLine(entries, ledger.SalaryNoteLineID), jc.job.SalaryLedgers)
	if len(selected) == 0 {
		return fmt.Errorf("no salary ledgers selected from %s", jc.job.TrialBalance)
	}
	jc.result.Stats.RowsRead += len(entries)

	res, err := reconcile.AnalyseSalary(reconcile.SalaryInput{
		Ledgers:             selected,
		Exclude:             jc.job.ExcludeLedgers,
		PYWeightedHeadcount: decimal.NewFromFloat(jc.job.PYWeightedHeadcount),
		CYWeightedHeadcount: decimal.NewFromFloat(jc.job.CYWeightedHeadcount),
		AverageIncrementPct: decimal.NewFromFloat(jc.job.AverageIncrementPct),
	}, eng)
	if err != nil {
		return err
	}
	jc.countOutside(res.Reconciliation)
	return jc.writeJSON(res)
}

// =============================================================================
// COMPARISONS
// =============================================================================

func (r *Runner) runCompare(jc *jobContext) error {
	ctc, err := jc.load(config.SourceCTC)
	if err != nil {
		return err
	}
	actuary, err := jc.load(config.SourceActuary)
	if err != nil {
		return err
	}

	doc, err := columnmap.LoadFile(jc.job.ColumnMap)
	if err != nil {
		return err
	}
	pm, err := doc.PairMap(jc.job.LeftLabel, jc.job.RightLabel)
	if err != nil {
		return fmt.Errorf("invalid column map %s: %w", jc.job.ColumnMap, err)
	}

	cmp, err := analytics.Compare(ctc, actuary, pm)
	if err != nil {
		return err
	}
	jc.logger.Info("Compared %d common ids", len(cmp.Rows))
	return jc.writeWorkbook(report.ComparisonTable(cmp))
}

func (r *Runner) runRowCount(jc *jobContext) error {
	actuary, err := jc.load(config.SourceActuary)
	if err != nil {
		return err
	}
	ctc, err := jc.load(config.SourceCTC)
	if err != nil {
		return err
	}

	res := analytics.ReconcileRowCounts(actuary, ctc, jc.job.UserAdjustments)
	if res.NetDifference != 0 {
		jc.result.Stats.Exceptions++
	}
	return jc.writeJSON(res)
}

// =============================================================================
// RUNNING MANY JOBS
// =============================================================================

type task struct {
	index  int
	client string
	eng    *config.EngagementConfig
	job    config.JobConfig
}

// RunAll runs every job of every engagement concurrently.
//
// PARAMETERS:
//   - ctx: Cancels jobs that have not started yet.
//   - engagements: Engagements keyed by client code.
//
// RETURNS:
//   - One Result per job, ordered by client code and then job order.
//
// CONCURRENCY:
//   At most MaxConcurrency jobs run at once (0 means no limit). When
//   ContinueOnError is false, the first failure cancels the jobs that
//   have not started.
func (r *Runner) RunAll(ctx context.Context, engagements map[string]*config.EngagementConfig) []Result {
	clients := make([]string, 0, len(engagements))
	for client := range engagements {
		clients = append(clients, client)
	}
	sort.Strings(clients)

	var tasks []task
	for _, client := range clients {
		eng := engagements[client]
		for _, job := range eng.Jobs {
			tasks = append(tasks, task{index: len(tasks), client: client, eng: eng, job: job})
		}
	}
	if len(tasks) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limit := r.main.MaxConcurrency
	if limit <= 0 || limit > len(tasks) {
		limit = len(tasks)
	}
	sem := make(chan struct{}, limit)

	type indexed struct {
		index  int
		result Result
	}

	// Create a WaitGroup to wait for all goroutines to finish.
	var wg sync.WaitGroup

	// Create a channel to collect results.
	results := make(chan indexed, len(tasks))

	for _, t := range tasks {
		wg.Add(1)
		go func(t task) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res := r.Run(ctx, t.client, t.eng, t.job)
			if !res.Success && !r.main.ContinueOnError {
				cancel()
			}
			results <- indexed{index: t.index, result: res}
		}(t)
	}

	// Close the results channel when all goroutines are done.
	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]Result, len(tasks))
	for res := range results {
		out[res.index] = res.result
	}
	return out
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summarize builds the run summary of a set of results.
func Summarize(runID string, start, end time.Time, results []Result) utils.RunSummary {
	summary := utils.RunSummary{
		RunID:     runID,
		StartTime: start,
		EndTime:   end,
		TotalJobs: len(results),
	}
	for _, res := range results {
		summary.TotalRows += res.Stats.RowsRead
		if !res.Success {
			summary.FailedJobs++
			summary.FailedJobsList = append(summary.FailedJobsList, utils.FailedJobInfo{
				Client:       res.Client,
				Job:          res.Job,
				ErrorMessage: errorText(res.Error),
			})
			continue
		}
		summary.SuccessfulJobs++
		summary.Exceptions += res.Stats.Exceptions
		summary.SkippedRules += res.Stats.SkippedRules
		summary.CompletedJobs = append(summary.CompletedJobs, utils.CompletedJobInfo{
			Client:      res.Client,
			Job:         res.Job,
			Type:        res.Type,
			Outputs:     res.Outputs,
			Rows:        res.Stats.RowsRead,
			Exceptions:  res.Stats.Exceptions,
			ProcessTime: res.Stats.ProcessingTime,
		})
	}
	return summary
}

// Issues collects the issues of a set of results, adding one entry per
// failed job.
func Issues(results []Result) []utils.IssueEntry {
	var issues []utils.IssueEntry
	for _, res := range results {
		issues = append(issues, res.Issues...)
		if !res.Success {
			issues = append(issues, utils.IssueEntry{
				Timestamp: time.Now(),
				Client:    res.Client,
				Job:       res.Job,
				Kind:      utils.IssueJobFailed,
				Message:   errorText(res.Error),
			})
		}
	}
	return issues
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
