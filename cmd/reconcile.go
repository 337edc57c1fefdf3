// =============================================================================
// Payroll Audit - Reconcile Command
// =============================================================================
//
// This file defines the 'reconcile' command group: reasonableness tests
// that compare a recorded figure with an independent expectation and judge
// the difference against the engagement threshold.
//
// COMMAND USAGE:
//   auditor reconcile pf --trial-balance tb.json [--pf-ledgers 1,2] [--percentage 12]
//   auditor reconcile salary --trial-balance tb.json --py-headcount 98.5 \
//       --cy-headcount 101.7 --increment 8.2 [--exclude "Bonus"]
//   auditor reconcile threshold --recorded 1200 --expected 1150 \
//       --population 1200 --materiality 50000
//
// THRESHOLD:
//   threshold = min(population% x population base, materiality% x materiality)
//   The percentages depend on the risk assessment and control reliance.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payroll-audit/internal/config"
	"github.com/ginjaninja78/payroll-audit/internal/reconcile"
	"github.com/ginjaninja78/payroll-audit/internal/report"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var reconcileFlags struct {
	engagementFlags

	trialBalance  string
	pfLedgers     []int
	salaryLedgers []int
	percentage    float64
	exclude       []string
	pyHeadcount   float64
	cyHeadcount   float64
	increment     float64
}

var thresholdFlags struct {
	recorded    string
	expected    string
	population  string
	materiality string
	risk        string
	control     string
}

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run PF, salary and threshold reasonableness tests",
}

var reconcilePFCmd = &cobra.Command{
	Use:   "pf",
	Short: "Recompute PF from salary ledgers and reconcile it with the recorded PF",
	Long: `Recompute provident fund as a percentage of the salary ledgers and
reconcile it with the recorded PF expense. Ledgers are picked by 1-based
position among the trial balance's PF sub-line ledgers; by default every PF
ledger is the recorded amount and the "Salaries and wages" ledgers are the
salary base.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &reconcileFlags
		return runJobs(cmd, &f.engagementFlags, config.JobConfig{
			Type:          config.JobPF,
			TrialBalance:  f.trialBalance,
			PFLedgers:     f.pfLedgers,
			SalaryLedgers: f.salaryLedgers,
			PFPercentage:  f.percentage,
		})
	},
}

var reconcileSalaryCmd = &cobra.Command{
	Use:   "salary",
	Short: "Project salary cost from the prior year and reconcile it with the actual",
	Long: `Project the current year net salary from the prior year:

  PY net / PY weighted headcount x CY weighted headcount x (1 + increment%/100)

and reconcile the projection with the actual current year net salary. Net
salary is the "Salaries and wages" ledgers less the --exclude ledgers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &reconcileFlags
		return runJobs(cmd, &f.engagementFlags, config.JobConfig{
			Type:                config.JobSalary,
			TrialBalance:        f.trialBalance,
			SalaryLedgers:       f.salaryLedgers,
			ExcludeLedgers:      f.exclude,
			PYWeightedHeadcount: f.pyHeadcount,
			CYWeightedHeadcount: f.cyHeadcount,
			AverageIncrementPct: f.increment,
		})
	},
}

var reconcileThresholdCmd = &cobra.Command{
	Use:   "threshold",
	Short: "Judge one recorded/expected difference against the audit threshold",
	Long: `Evaluate a single reconciliation and print the result as JSON.

Example:
  auditor reconcile threshold --recorded 1200 --expected 1150 \
      --population 1200 --materiality 50000 --risk Higher`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := thresholdInput()
		if err != nil {
			return err
		}
		res, err := reconcile.Evaluate(in)
		if err != nil {
			return err
		}
		return report.EncodeJSON(cmd.OutOrStdout(), res)
	},
}

// thresholdInput parses the threshold flags. The population base defaults
// to the recorded figure.
func thresholdInput() (reconcile.Input, error) {
	f := &thresholdFlags
	amount := func(name, value string) (decimal.Decimal, error) {
		d, err := decimal.NewFromString(value)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", name, value, err)
		}
		return d, nil
	}

	recorded, err := amount("recorded", f.recorded)
	if err != nil {
		return reconcile.Input{}, err
	}
	expected, err := amount("expected", f.expected)
	if err != nil {
		return reconcile.Input{}, err
	}
	population := recorded
	if f.population != "" {
		if population, err = amount("population", f.population); err != nil {
			return reconcile.Input{}, err
		}
	}
	materiality, err := amount("materiality", f.materiality)
	if err != nil {
		return reconcile.Input{}, err
	}
	risk, err := reconcile.ParseRisk(f.risk)
	if err != nil {
		return reconcile.Input{}, err
	}
	control, err := reconcile.ParseControlReliance(f.control)
	if err != nil {
		return reconcile.Input{}, err
	}

	return reconcile.Input{
		Recorded:       recorded,
		Expected:       expected,
		PopulationBase: population,
		Materiality:    materiality,
		Risk:           risk,
		Control:        control,
	}, nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.AddCommand(reconcilePFCmd, reconcileSalaryCmd, reconcileThresholdCmd)

	f := &reconcileFlags
	for _, c := range []*cobra.Command{reconcilePFCmd, reconcileSalaryCmd} {
		f.engagementFlags.register(c)
		c.Flags().StringVar(&f.trialBalance, "trial-balance", "", "Trial balance JSON document")
		c.Flags().IntSliceVar(&f.salaryLedgers, "salary-ledgers", nil, "1-based positions of the salary ledgers (default: all)")
		c.MarkFlagRequired("trial-balance")
	}

	reconcilePFCmd.Flags().IntSliceVar(&f.pfLedgers, "pf-ledgers", nil, "1-based positions of the PF ledgers (default: all)")
	reconcilePFCmd.Flags().Float64Var(&f.percentage, "percentage", 12, "PF rate in percent")

	reconcileSalaryCmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Ledger names left out of net salary")
	reconcileSalaryCmd.Flags().Float64Var(&f.pyHeadcount, "py-headcount", 0, "Prior year weighted average headcount")
	reconcileSalaryCmd.Flags().Float64Var(&f.cyHeadcount, "cy-headcount", 0, "Current year weighted average headcount")
	reconcileSalaryCmd.Flags().Float64Var(&f.increment, "increment", 0, "Average increment in percent")

	t := &thresholdFlags
	flags := reconcileThresholdCmd.Flags()
	flags.StringVar(&t.recorded, "recorded", "", "Recorded amount")
	flags.StringVar(&t.expected, "expected", "", "Expected amount")
	flags.StringVar(&t.population, "population", "", "Population base (default: the recorded amount)")
	flags.StringVar(&t.materiality, "materiality", "0", "Performance materiality")
	flags.StringVar(&t.risk, "risk", "Lower", "Risk assessment: Lower, Higher or Significant")
	flags.StringVar(&t.control, "control", "Relying on controls", "Control reliance")
	reconcileThresholdCmd.MarkFlagRequired("recorded")
	reconcileThresholdCmd.MarkFlagRequired("expected")
}
