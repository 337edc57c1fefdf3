package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payroll-audit/internal/dataset"
	"github.com/ginjaninja78/payroll-audit/internal/dates"
	"github.com/ginjaninja78/payroll-audit/internal/reconcile"
)

// =============================================================================
// ENGAGEMENT CONFIGURATION STRUCTURE
// =============================================================================

// EngagementConfig holds the configuration of one audit client.
type EngagementConfig struct {
	// =========================================================================
	// CLIENT IDENTIFICATION
	// =========================================================================

	// ClientName is the human-readable client name, used in logs.
	ClientName string `yaml:"client_name"`

	// ClientCode is a short code used in output file names.
	ClientCode string `yaml:"client_code"`

	// =========================================================================
	// PERIOD
	// =========================================================================

	// FiscalYearStart is the calendar year in which the audited April-March
	// fiscal year starts, e.g. 2024 for FY24-25. Zero derives the fiscal
	// year from EvaluationDate.
	FiscalYearStart int `yaml:"fiscal_year_start"`

	// EvaluationDate ("2006-01-02") stands in for today when deriving the
	// fiscal year. Default: the run date.
	EvaluationDate string `yaml:"evaluation_date"`

	// =========================================================================
	// THRESHOLD SETTINGS
	// =========================================================================

	// RiskAssessment is one of "Lower", "Higher", "Significant".
	RiskAssessment string `yaml:"risk_assessment"`

	// ControlReliance is "Relying on controls" or "Not relying on controls".
	ControlReliance string `yaml:"control_reliance"`

	// Materiality is the performance materiality of the engagement.
	Materiality float64 `yaml:"materiality"`

	// NetPayTolerance is the rounding allowed by the net pay check.
	// Default: 0
	NetPayTolerance float64 `yaml:"net_pay_tolerance"`

	// =========================================================================
	// JOBS
	// =========================================================================

	// Jobs are the audit procedures to run for this client.
	Jobs []JobConfig `yaml:"jobs"`
}

// Job types.
const (
	JobPayrollExceptions    = "payroll_exceptions"
	JobFixedAssetExceptions = "fixed_asset_exceptions"
	JobHeadcount            = "headcount"
	JobIncrement            = "increment"
	JobPF                   = "pf"
	JobSalary               = "salary"
	JobCompare              = "compare"
	JobRowCount             = "row_count"
	JobMoMIncrement         = "mom_increment"
	JobCutoff               = "cutoff"
	JobCWIP                 = "cwip"
)

// Source roles.
const (
	SourceRegister    = "register"
	SourceCurrent     = "current"
	SourcePrevious    = "previous"
	SourceAdditions   = "additions"
	SourceDeletions   = "deletions"
	SourceCTC         = "ctc"
	SourceCTCPrevious = "ctc_py"
	SourceActuary     = "actuary"
	SourcePayRegister = "pay_register"
	SourceCWIP        = "cwip_register"
)

// jobRequirements lists, per job type, the sources that must be configured
// and whether a column map or trial balance is needed.
var jobRequirements = map[string]struct {
	sources      []string
	columnMap    bool
	trialBalance bool
}{
	JobPayrollExceptions:    {sources: []string{SourceRegister}, columnMap: true},
	JobFixedAssetExceptions: {sources: []string{SourceCurrent}, columnMap: true},
	JobHeadcount:            {sources: []string{SourceAdditions, SourceDeletions, SourceCTC}},
	JobIncrement:            {sources: []string{SourceCTC, SourceCTCPrevious}},
	JobPF:                   {trialBalance: true},
	JobSalary:               {trialBalance: true},
	JobCompare:              {sources: []string{SourceCTC, SourceActuary}, columnMap: true},
	JobRowCount:             {sources: []string{SourceActuary, SourceCTC}},
	JobMoMIncrement:         {sources: []string{SourceRegister}, columnMap: true},
	JobCutoff:               {sources: []string{SourceAdditions, SourceDeletions}},
	JobCWIP:                 {sources: []string{SourceCWIP}, trialBalance: true},
}

// JobTypes returns the supported job types.
func JobTypes() []string {
	return []string{
		JobPayrollExceptions, JobFixedAssetExceptions, JobHeadcount, JobIncrement,
		JobPF, JobSalary, JobCompare, JobRowCount,
		JobMoMIncrement, JobCutoff, JobCWIP,
	}
}

// =============================================================================
// JOB CONFIGURATION STRUCTURE
// =============================================================================

// Source locates one input table.
type Source struct {
	// Path is the .xlsx or .csv file.
	Path string `yaml:"path"`

	// Sheet is the worksheet to read. Default: the first sheet.
	Sheet string `yaml:"sheet,omitempty"`

	// HeaderRow is the 1-based header row. Default: 1.
	HeaderRow int `yaml:"header_row,omitempty"`

	// Delimiter is the CSV separator. Default: ",".
	Delimiter string `yaml:"delimiter,omitempty"`

	// LowercaseHeaders lowercases headers after trimming.
	LowercaseHeaders bool `yaml:"lowercase_headers,omitempty"`
}

// LoadOptions converts the source settings to dataset load options.
func (s Source) LoadOptions() dataset.LoadOptions {
	return dataset.LoadOptions{
		Sheet:            s.Sheet,
		HeaderRow:        s.HeaderRow,
		Delimiter:        s.Delimiter,
		LowercaseHeaders: s.LowercaseHeaders,
	}
}

// JobConfig describes one audit procedure.
type JobConfig struct {
	// Name identifies the job in logs and output names. Default: the type.
	Name string `yaml:"name"`

	// Type is one of the Job* constants.
	Type string `yaml:"type"`

	// Sources maps source roles (register, ctc, actuary, ...) to files.
	Sources map[string]Source `yaml:"sources"`

	// ColumnMap is the path of the JSON or YAML column map document.
	ColumnMap string `yaml:"column_map,omitempty"`

	// Rules selects exception rules by id. Empty runs every rule.
	Rules []int `yaml:"rules,omitempty"`

	// UserAdjustments are reconciling items entered by the auditor.
	UserAdjustments int `yaml:"user_adjustments,omitempty"`

	// =========================================================================
	// HEADCOUNT
	// =========================================================================

	Opening         int    `yaml:"opening_headcount,omitempty"`
	JoinDateColumn  string `yaml:"join_date_column,omitempty"`
	LeaveDateColumn string `yaml:"leave_date_column,omitempty"`
	PayMonthColumn  string `yaml:"pay_month_column,omitempty"`
	GrossColumn     string `yaml:"gross_column,omitempty"`

	// =========================================================================
	// INCREMENT
	// =========================================================================

	EmployeeCodeColumn string   `yaml:"employee_code_column,omitempty"`
	EmployeeNameColumn string   `yaml:"employee_name_column,omitempty"`
	DateOfJoinColumn   string   `yaml:"doj_column,omitempty"`
	DesignationColumn  string   `yaml:"designation_column,omitempty"`
	SumColumns         []string `yaml:"sum_columns,omitempty"`

	// =========================================================================
	// PF AND SALARY
	// =========================================================================

	// TrialBalance is the path of the trial balance JSON document.
	TrialBalance string `yaml:"trial_balance,omitempty"`

	// PFLedgers and SalaryLedgers pick ledgers by 1-based position among
	// the PF sub-line ledgers. Empty selects all.
	PFLedgers     []int   `yaml:"pf_ledgers,omitempty"`
	SalaryLedgers []int   `yaml:"salary_ledgers,omitempty"`
	PFPercentage  float64 `yaml:"pf_percentage,omitempty"`

	ExcludeLedgers      []string `yaml:"exclude_ledgers,omitempty"`
	PYWeightedHeadcount float64  `yaml:"py_weighted_headcount,omitempty"`
	CYWeightedHeadcount float64  `yaml:"cy_weighted_headcount,omitempty"`
	AverageIncrementPct float64  `yaml:"average_increment_pct,omitempty"`

	// =========================================================================
	// COMPARE
	// =========================================================================

	// LeftLabel and RightLabel are the keys of the pairwise column map.
	// Default: "CTC" and "Actuary".
	LeftLabel  string `yaml:"left_label,omitempty"`
	RightLabel string `yaml:"right_label,omitempty"`

	// =========================================================================
	// MONTH-ON-MONTH INCREMENT
	// =========================================================================

	// IncrementMonth is the first month at the new pay, e.g. "Nov-24".
	// The summed pay components come from SumColumns.
	IncrementMonth string   `yaml:"increment_month,omitempty"`
	DisplayColumns []string `yaml:"display_columns,omitempty"`

	// =========================================================================
	// CUT-OFF
	// =========================================================================

	AdditionDateColumn   string `yaml:"addition_date_column,omitempty"`
	AdditionAmountColumn string `yaml:"addition_amount_column,omitempty"`
	DeletionDateColumn   string `yaml:"deletion_date_column,omitempty"`
	DeletionAmountColumn string `yaml:"deletion_amount_column,omitempty"`

	// =========================================================================
	// CWIP
	// =========================================================================

	AmountColumn string `yaml:"amount_column,omitempty"`
	DateColumn   string `yaml:"date_column,omitempty"`

	// CutoffDate ("2006-01-02") is the date CWIP lines are aged to.
	// Default: the last day of the fiscal year.
	CutoffDate string `yaml:"cutoff_date,omitempty"`

	// AdjustmentAmount is the reconciling amount entered by the auditor.
	AdjustmentAmount float64 `yaml:"adjustment_amount,omitempty"`
}

// Cutoff returns the configured cutoff date, or the last day of fy.
func (j *JobConfig) Cutoff(fy dates.Window) (time.Time, error) {
	if strings.TrimSpace(j.CutoffDate) == "" {
		return fy.End, nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(j.CutoffDate))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cutoff_date %q: %w", j.CutoffDate, err)
	}
	return t, nil
}

// Source returns the source configured for a role.
func (j *JobConfig) Source(role string) (Source, bool) {
	s, ok := j.Sources[role]
	return s, ok && s.Path != ""
}

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

func applyEngagementDefaults(config *EngagementConfig) {
	for i := range config.Jobs {
		job := &config.Jobs[i]
		job.Type = strings.ToLower(strings.TrimSpace(job.Type))
		if job.Name == "" {
			job.Name = job.Type
		}
		if job.Type == JobCompare {
			if job.LeftLabel == "" {
				job.LeftLabel = "CTC"
			}
			if job.RightLabel == "" {
				job.RightLabel = "Actuary"
			}
		}
		if job.Type == JobPF && job.PFPercentage == 0 {
			job.PFPercentage = 12
		}
	}
}

// Validate checks the engagement for configuration errors: an unknown
// risk/control pair, an unknown job type, a job missing its inputs.
func (e *EngagementConfig) Validate() error {
	if _, err := e.Engagement(); err != nil {
		return err
	}
	if e.Materiality < 0 {
		return fmt.Errorf("materiality must not be negative, got %v", e.Materiality)
	}
	if _, err := e.EvaluationTime(); err != nil {
		return err
	}

	names := make(map[string]bool, len(e.Jobs))
	for i, job := range e.Jobs {
		req, ok := jobRequirements[job.Type]
		if !ok {
			return fmt.Errorf("job %d: unknown type %q (want one of %s)", i+1, job.Type, strings.Join(JobTypes(), ", "))
		}
		if names[job.Name] {
			return fmt.Errorf("job name %q is used more than once", job.Name)
		}
		names[job.Name] = true

		for _, role := range req.sources {
			if _, ok := job.Source(role); !ok {
				return fmt.Errorf("job %q: source %q is required", job.Name, role)
			}
		}
		if req.columnMap && job.ColumnMap == "" {
			return fmt.Errorf("job %q: column_map is required", job.Name)
		}
		if req.trialBalance && job.TrialBalance == "" {
			return fmt.Errorf("job %q: trial_balance is required", job.Name)
		}
		for _, id := range job.Rules {
			if id <= 0 {
				return fmt.Errorf("job %q: rule id %d must be positive", job.Name, id)
			}
		}
		if job.Type == JobMoMIncrement && strings.TrimSpace(job.IncrementMonth) == "" {
			return fmt.Errorf("job %q: increment_month is required", job.Name)
		}
		if _, err := job.Cutoff(e.FiscalYear()); err != nil {
			return fmt.Errorf("job %q: %w", job.Name, err)
		}
	}
	return nil
}

// Engagement returns the threshold settings of the engagement.
func (e *EngagementConfig) Engagement() (reconcile.Engagement, error) {
	risk, err := reconcile.ParseRisk(e.RiskAssessment)
	if err != nil {
		return reconcile.Engagement{}, err
	}
	control, err := reconcile.ParseControlReliance(e.ControlReliance)
	if err != nil {
		return reconcile.Engagement{}, err
	}
	if _, err := reconcile.Lookup(risk, control); err != nil {
		return reconcile.Engagement{}, err
	}
	return reconcile.Engagement{
		Risk:        risk,
		Control:     control,
		Materiality: decimal.NewFromFloat(e.Materiality),
	}, nil
}

// EvaluationTime returns the configured evaluation date, or the zero time
// when none is set.
func (e *EngagementConfig) EvaluationTime() (time.Time, error) {
	if strings.TrimSpace(e.EvaluationDate) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(e.EvaluationDate))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid evaluation_date %q: %w", e.EvaluationDate, err)
	}
	return t, nil
}

// FiscalYear returns the audited fiscal year. Without fiscal_year_start it
// is the year containing the evaluation date, or today.
func (e *EngagementConfig) FiscalYear() dates.Window {
	if e.FiscalYearStart > 0 {
		return dates.FiscalYearStarting(e.FiscalYearStart)
	}
	t, _ := e.EvaluationTime()
	if t.IsZero() {
		t = time.Now()
	}
	return dates.FiscalYear(t)
}

// resolvePaths makes relative input paths relative to base.
func (e *EngagementConfig) resolvePaths(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i := range e.Jobs {
		job := &e.Jobs[i]
		job.ColumnMap = abs(job.ColumnMap)
		job.TrialBalance = abs(job.TrialBalance)
		for role, src := range job.Sources {
			src.Path = abs(src.Path)
			job.Sources[role] = src
		}
	}
}
