// =============================================================================
// Payroll Audit - Exceptions Command
// =============================================================================
//
// This file defines the 'exceptions' command group, which runs the numbered
// exception rules over a pay register or a fixed asset register.
//
// COMMAND USAGE:
//   auditor exceptions payroll --register pay.xlsx --column-map map.json [flags]
//   auditor exceptions fixed-assets --current far.xlsx --previous far_py.xlsx \
//       --column-map far.yaml [flags]
//
// OUTPUT:
//   An exception workbook (data sheet, Exception Summary, one sheet per rule
//   with violations) and a JSON exception summary in the output directory.
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payroll-audit/internal/config"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var exceptionsFlags struct {
	engagementFlags

	register  string
	current   string
	previous  string
	sheet     string
	headerRow int
	columnMap string
	rules     []int
}

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var exceptionsCmd = &cobra.Command{
	Use:   "exceptions",
	Short: "Run exception rules over a register",
	Long: `Run the numbered exception rules over a pay register or a fixed asset
register. Rules whose columns are absent from the register are skipped and
reported; every other rule lists the rows that violate it.`,
}

var payrollExceptionsCmd = &cobra.Command{
	Use:   "payroll",
	Short: "Run the payroll exception rules over a pay register",
	Long: `Run the payroll exception rules (1-15) over a pay register.

Example:
  auditor exceptions payroll --register pay.xlsx --sheet "Consol AIC" \
      --column-map payroll.json --rules 1,2,10 --tolerance 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &exceptionsFlags
		sources := map[string]config.Source{}
		source(sources, config.SourceRegister, f.register, f.sheet, f.headerRow)

		return runJobs(cmd, &f.engagementFlags, config.JobConfig{
			Type:      config.JobPayrollExceptions,
			Sources:   sources,
			ColumnMap: f.columnMap,
			Rules:     f.rules,
		})
	},
}

var fixedAssetExceptionsCmd = &cobra.Command{
	Use:   "fixed-assets",
	Short: "Run the fixed asset exception rules over a fixed asset register",
	Long: `Run the fixed asset exception rules (1-6) over the current fixed asset
register. Rules 5 and 6 compare against the previous register and are
skipped when --previous is not given.

Example:
  auditor exceptions fixed-assets --current far.xlsx --previous far_py.xlsx \
      --column-map far.json --fy-start 2024`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &exceptionsFlags
		sources := map[string]config.Source{}
		source(sources, config.SourceCurrent, f.current, f.sheet, f.headerRow)
		source(sources, config.SourcePrevious, f.previous, f.sheet, f.headerRow)

		return runJobs(cmd, &f.engagementFlags, config.JobConfig{
			Type:      config.JobFixedAssetExceptions,
			Sources:   sources,
			ColumnMap: f.columnMap,
			Rules:     f.rules,
		})
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(exceptionsCmd)
	exceptionsCmd.AddCommand(payrollExceptionsCmd, fixedAssetExceptionsCmd)

	f := &exceptionsFlags
	for _, c := range []*cobra.Command{payrollExceptionsCmd, fixedAssetExceptionsCmd} {
		f.engagementFlags.register(c)
		c.Flags().StringVar(&f.sheet, "sheet", "", "Worksheet to read (default: the first sheet)")
		c.Flags().IntVar(&f.headerRow, "header-row", 1, "1-based header row")
		c.Flags().StringVar(&f.columnMap, "column-map", "", "Column map document (JSON or YAML)")
		c.Flags().IntSliceVar(&f.rules, "rules", nil, "Rule ids to run (default: all)")
		c.MarkFlagRequired("column-map")
	}

	payrollExceptionsCmd.Flags().StringVar(&f.register, "register", "", "Pay register (.xlsx or .csv)")
	payrollExceptionsCmd.Flags().Float64Var(&f.netPayTolerance, "tolerance", 0, "Rounding allowed by the net pay check (rule 10)")
	payrollExceptionsCmd.MarkFlagRequired("register")

	fixedAssetExceptionsCmd.Flags().StringVar(&f.current, "current", "", "Current fixed asset register (.xlsx or .csv)")
	fixedAssetExceptionsCmd.Flags().StringVar(&f.previous, "previous", "", "Previous fixed asset register")
	fixedAssetExceptionsCmd.MarkFlagRequired("current")
}
