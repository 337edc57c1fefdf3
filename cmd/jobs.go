package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payroll-audit/internal/audit"
	"github.com/ginjaninja78/payroll-audit/internal/config"
)

// engagementFlags are the engagement settings shared by the single-job
// commands. Each of those commands builds a one-job engagement from its
// flags and runs it through the same runner as 'auditor run'.
type engagementFlags struct {
	client          string
	risk            string
	control         string
	materiality     float64
	fiscalYearStart int
	evaluationDate  string
	netPayTolerance float64
	outputDir       string
}

func (f *engagementFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.client, "client", "adhoc", "Client code used in output file names")
	cmd.Flags().StringVar(&f.risk, "risk", "Lower", "Risk assessment: Lower, Higher or Significant")
	cmd.Flags().StringVar(&f.control, "control", "Relying on controls", "Control reliance: \"Relying on controls\" or \"Not relying on controls\"")
	cmd.Flags().Float64Var(&f.materiality, "materiality", 0, "Performance materiality")
	cmd.Flags().IntVar(&f.fiscalYearStart, "fy-start", 0, "Calendar year the April-March fiscal year starts in (default: derived from the evaluation date)")
	cmd.Flags().StringVar(&f.evaluationDate, "evaluation-date", "", "Evaluation date (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "Output directory (default: from the main configuration)")
}

func (f *engagementFlags) engagement(jobs ...config.JobConfig) (*config.EngagementConfig, error) {
	eng := &config.EngagementConfig{
		ClientCode:      f.client,
		FiscalYearStart: f.fiscalYearStart,
		EvaluationDate:  f.evaluationDate,
		RiskAssessment:  f.risk,
		ControlReliance: f.control,
		Materiality:     f.materiality,
		NetPayTolerance: f.netPayTolerance,
		Jobs:            jobs,
	}
	if err := config.PrepareEngagement(eng); err != nil {
		return nil, err
	}
	return eng, nil
}

// source builds a Source from a path flag; an empty path leaves the role out.
func source(sources map[string]config.Source, role, path, sheet string, headerRow int) {
	if path == "" {
		return
	}
	sources[role] = config.Source{Path: path, Sheet: sheet, HeaderRow: headerRow}
}

// runJobs runs the jobs of a flag-built engagement one after another and
// prints one line per job.
func runJobs(cmd *cobra.Command, f *engagementFlags, jobs ...config.JobConfig) error {
	eng, err := f.engagement(jobs...)
	if err != nil {
		return err
	}

	mainConfig, err := loadMainConfig()
	if err != nil {
		return err
	}
	if f.outputDir != "" {
		mainConfig.OutputDir = f.outputDir
	}

	logger, closeLog, err := newLogger(mainConfig)
	if err != nil {
		return err
	}
	defer closeLog()

	runner := audit.NewRunner(mainConfig, logger)
	out := cmd.OutOrStdout()

	failed := 0
	for _, job := range eng.Jobs {
		res := runner.Run(commandContext(cmd), eng.ClientCode, eng, job)
		printResult(out, res)
		if !res.Success {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d job(s) failed", failed)
	}
	return nil
}

// printResult prints one job outcome line.
func printResult(out io.Writer, res audit.Result) {
	if res.Success {
		fmt.Fprintf(out, "  ✓ %s/%s (%d exceptions)\n", res.Client, res.Job, res.Stats.Exceptions)
		for _, p := range res.Outputs {
			fmt.Fprintf(out, "      -> %s\n", filepath.Clean(p))
		}
		return
	}
	fmt.Fprintf(out, "  ✗ %s/%s: %v\n", res.Client, res.Job, res.Error)
}

// commandContext returns the command's context, or a background context
// when the command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
