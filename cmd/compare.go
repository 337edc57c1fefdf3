// =============================================================================
// Payroll Audit - Compare Command
// =============================================================================
//
// COMMAND USAGE:
//   auditor compare --ctc ctc.xlsx --actuary actuary.xlsx --column-map pairs.json
//
// The column map lists column pairs; the first pair is the employee id:
//
//   {"column_map": [
//     {"CTC": "Emp Code", "Actuary": "ID"},
//     {"CTC": "Basic",    "Actuary": "Salary"}
//   ]}
//
// OUTPUT:
//   A comparison workbook (both sides and the differences per common id)
//   and, unless --skip-row-count is set, a JSON row count reconciliation.
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payroll-audit/internal/config"
)

var compareFlags struct {
	engagementFlags

	ctc          string
	actuary      string
	ctcSheet     string
	actuarySheet string
	actuaryRow   int
	columnMap    string
	leftLabel    string
	rightLabel   string
	userRows     int
	skipRowCount bool
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare CTC report and actuary data column pair by column pair",
	Long: `Compare the CTC report with the actuary data for every employee id found
in both, using a pairwise column map. Numeric columns are differenced
(CTC less actuary). The row counts of both files are reconciled as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &compareFlags
		sources := map[string]config.Source{}
		source(sources, config.SourceCTC, f.ctc, f.ctcSheet, 0)
		source(sources, config.SourceActuary, f.actuary, f.actuarySheet, f.actuaryRow)

		jobs := []config.JobConfig{{
			Type:       config.JobCompare,
			Sources:    sources,
			ColumnMap:  f.columnMap,
			LeftLabel:  f.leftLabel,
			RightLabel: f.rightLabel,
		}}
		if !f.skipRowCount {
			jobs = append(jobs, config.JobConfig{
				Type:            config.JobRowCount,
				Sources:         sources,
				UserAdjustments: f.userRows,
			})
		}
		return runJobs(cmd, &f.engagementFlags, jobs...)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)

	f := &compareFlags
	f.engagementFlags.register(compareCmd)
	flags := compareCmd.Flags()
	flags.StringVar(&f.ctc, "ctc", "", "CTC report (.xlsx or .csv)")
	flags.StringVar(&f.actuary, "actuary", "", "Actuary data (.xlsx or .csv)")
	flags.StringVar(&f.ctcSheet, "ctc-sheet", "", "CTC report worksheet (default: the first sheet)")
	flags.StringVar(&f.actuarySheet, "actuary-sheet", "", "Actuary worksheet (default: the first sheet)")
	flags.IntVar(&f.actuaryRow, "actuary-header-row", 1, "1-based header row of the actuary data")
	flags.StringVar(&f.columnMap, "column-map", "", "Pairwise column map document (JSON or YAML)")
	flags.StringVar(&f.leftLabel, "left-label", "CTC", "Key of the CTC side in the column map")
	flags.StringVar(&f.rightLabel, "right-label", "Actuary", "Key of the actuary side in the column map")
	flags.IntVar(&f.userRows, "user-rows", 0, "Reconciling rows entered by the auditor")
	flags.BoolVar(&f.skipRowCount, "skip-row-count", false, "Do not reconcile row counts")
	for _, name := range []string{"ctc", "actuary", "column-map"} {
		compareCmd.MarkFlagRequired(name)
	}
}
