// =============================================================================
// Payroll Audit - Analyse Command
// =============================================================================
//
// This file defines the 'analyse' command group: analytical procedures that
// produce working papers rather than exception lists.
//
// COMMAND USAGE:
//   auditor analyse mom --register pay.xlsx --column-map map.json \
//       --increment-month Nov-24 --sum-columns BASIC,"H R A" [--display-columns Name,DOJ]
//   auditor analyse cutoff --additions add.xlsx --deletions del.xlsx \
//       --addition-columns "Put to use",Amount --deletion-columns "Sold on",Amount
//   auditor analyse cwip --register cwip.xlsx --trial-balance tb.json \
//       --amount-column Amount --date-column "Start Date" [--cutoff 2025-03-31]
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payroll-audit/internal/config"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var analyseFlags struct {
	engagementFlags

	sheet     string
	headerRow int

	// mom
	register       string
	columnMap      string
	incrementMonth string
	sumColumns     []string
	displayColumns []string

	// cutoff
	additions       string
	deletions       string
	additionColumns []string
	deletionColumns []string

	// cwip
	trialBalance string
	amountColumn string
	dateColumn   string
	cutoffDate   string
	adjustment   float64
}

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var analyseCmd = &cobra.Command{
	Use:   "analyse",
	Short: "Run month-on-month, cut-off and CWIP analytics",
}

var analyseMoMCmd = &cobra.Command{
	Use:   "mom",
	Short: "Compare each employee's monthly pay before and after the increment month",
	Long: `Total the chosen pay components per employee and pay month, split the
months at the increment month, and report the average, standard deviation
and variance of each side.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &analyseFlags
		sources := map[string]config.Source{}
		source(sources, config.SourceRegister, f.register, f.sheet, f.headerRow)

		return runJobs(cmd, &f.engagementFlags, config.JobConfig{
			Type:           config.JobMoMIncrement,
			Sources:        sources,
			ColumnMap:      f.columnMap,
			IncrementMonth: f.incrementMonth,
			SumColumns:     f.sumColumns,
			DisplayColumns: f.displayColumns,
		})
	},
}

var analyseCutoffCmd = &cobra.Command{
	Use:   "cutoff",
	Short: "Measure the share of additions and deletions booked at the year end",
	Long: `Total the additions and deletions lists and the part of each dated in
the last days of the fiscal year (16 to 31 March).

Each list takes its date and amount columns as a pair:
  --addition-columns "Put to use",Amount`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &analyseFlags
		addDate, addAmount, err := columnPair("addition-columns", f.additionColumns)
		if err != nil {
			return err
		}
		delDate, delAmount, err := columnPair("deletion-columns", f.deletionColumns)
		if err != nil {
			return err
		}

		sources := map[string]config.Source{}
		source(sources, config.SourceAdditions, f.additions, f.sheet, f.headerRow)
		source(sources, config.SourceDeletions, f.deletions, f.sheet, f.headerRow)

		return runJobs(cmd, &f.engagementFlags, config.JobConfig{
			Type:                 config.JobCutoff,
			Sources:              sources,
			AdditionDateColumn:   addDate,
			AdditionAmountColumn: addAmount,
			DeletionDateColumn:   delDate,
			DeletionAmountColumn: delAmount,
		})
	},
}

var analyseCWIPCmd = &cobra.Command{
	Use:   "cwip",
	Short: "Reconcile the CWIP register with the trial balance and age its lines",
	Long: `Reconcile the capital work in progress register total with the CWIP
sub-lead of the trial balance, and age every register line to the cut-off
date (default: the fiscal year end).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &analyseFlags
		sources := map[string]config.Source{}
		source(sources, config.SourceCWIP, f.register, f.sheet, f.headerRow)

		return runJobs(cmd, &f.engagementFlags, config.JobConfig{
			Type:             config.JobCWIP,
			Sources:          sources,
			TrialBalance:     f.trialBalance,
			AmountColumn:     f.amountColumn,
			DateColumn:       f.dateColumn,
			CutoffDate:       f.cutoffDate,
			AdjustmentAmount: f.adjustment,
		})
	},
}

// columnPair splits a "date,amount" flag value.
func columnPair(flag string, values []string) (date, amount string, err error) {
	if len(values) != 2 {
		return "", "", fmt.Errorf("--%s takes a date column and an amount column, got %d value(s)", flag, len(values))
	}
	return values[0], values[1], nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(analyseCmd)
	analyseCmd.AddCommand(analyseMoMCmd, analyseCutoffCmd, analyseCWIPCmd)

	f := &analyseFlags
	for _, c := range []*cobra.Command{analyseMoMCmd, analyseCutoffCmd, analyseCWIPCmd} {
		f.engagementFlags.register(c)
		c.Flags().StringVar(&f.sheet, "sheet", "", "Worksheet to read (default: the first sheet)")
		c.Flags().IntVar(&f.headerRow, "header-row", 1, "1-based header row")
	}

	flags := analyseMoMCmd.Flags()
	flags.StringVar(&f.register, "register", "", "Pay register (.xlsx or .csv)")
	flags.StringVar(&f.columnMap, "column-map", "", "Payroll column map (employee_code and pay_month)")
	flags.StringVar(&f.incrementMonth, "increment-month", "", "First month at the new pay, e.g. Nov-24")
	flags.StringSliceVar(&f.sumColumns, "sum-columns", nil, "Pay components totalled per month")
	flags.StringSliceVar(&f.displayColumns, "display-columns", nil, "Columns shown per employee")
	for _, name := range []string{"register", "column-map", "increment-month", "sum-columns"} {
		analyseMoMCmd.MarkFlagRequired(name)
	}

	flags = analyseCutoffCmd.Flags()
	flags.StringVar(&f.additions, "additions", "", "Additions list (.xlsx or .csv)")
	flags.StringVar(&f.deletions, "deletions", "", "Deletions list (.xlsx or .csv)")
	flags.StringSliceVar(&f.additionColumns, "addition-columns", nil, "Date and amount columns of the additions list")
	flags.StringSliceVar(&f.deletionColumns, "deletion-columns", nil, "Date and amount columns of the deletions list")
	for _, name := range []string{"additions", "deletions", "addition-columns", "deletion-columns"} {
		analyseCutoffCmd.MarkFlagRequired(name)
	}

	flags = analyseCWIPCmd.Flags()
	flags.StringVar(&f.register, "register", "", "CWIP register (.xlsx or .csv)")
	flags.StringVar(&f.trialBalance, "trial-balance", "", "Trial balance JSON document")
	flags.StringVar(&f.amountColumn, "amount-column", "", "Amount column of the register")
	flags.StringVar(&f.dateColumn, "date-column", "", "Date column the lines are aged from")
	flags.StringVar(&f.cutoffDate, "cutoff", "", "Date the lines are aged to, YYYY-MM-DD (default: fiscal year end)")
	flags.Float64Var(&f.adjustment, "adjustment", 0, "Reconciling amount entered by the auditor")
	for _, name := range []string{"register", "trial-balance", "amount-column", "date-column"} {
		analyseCWIPCmd.MarkFlagRequired(name)
	}
}
