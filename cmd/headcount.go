// =============================================================================
// Payroll Audit - Headcount and Increment Commands
// =============================================================================
//
// COMMAND USAGE:
//   auditor headcount --additions add.xlsx --deletions del.xlsx --ctc ctc.xlsx \
//       --opening 100 --join-column "Date of Joining" --leave-column "Date of Leaving" \
//       [--pay-register pay.xlsx --month-column Month --gross-column Gross]
//
//   auditor increment --ctc ctc.xlsx --ctc-py ctc_py.xlsx --code-column "Emp Code" \
//       --sum-columns Basic,HRA,Special
//
// =============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payroll-audit/internal/config"
)

var headcountFlags struct {
	engagementFlags

	additions   string
	deletions   string
	ctc         string
	payRegister string
	sheet       string
	opening     int
	userRows    int
	joinColumn  string
	leaveColumn string
	monthColumn string
	grossColumn string
}

var headcountCmd = &cobra.Command{
	Use:   "headcount",
	Short: "Roll headcount forward over the fiscal year and reconcile it with the CTC report",
	Long: `Roll the opening headcount forward month by month with the joiners and
leavers lists, reconcile the year-end closing with the CTC report, and
compute quarterly and annual weighted average headcount. With a pay
register, average gross pay per quarter is computed too.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &headcountFlags
		sources := map[string]config.Source{}
		source(sources, config.SourceAdditions, f.additions, f.sheet, 0)
		source(sources, config.SourceDeletions, f.deletions, f.sheet, 0)
		source(sources, config.SourceCTC, f.ctc, f.sheet, 0)
		source(sources, config.SourcePayRegister, f.payRegister, f.sheet, 0)

		return runJobs(cmd, &f.engagementFlags, config.JobConfig{
			Type:            config.JobHeadcount,
			Sources:         sources,
			Opening:         f.opening,
			UserAdjustments: f.userRows,
			JoinDateColumn:  f.joinColumn,
			LeaveDateColumn: f.leaveColumn,
			PayMonthColumn:  f.monthColumn,
			GrossColumn:     f.grossColumn,
		})
	},
}

var incrementFlags struct {
	engagementFlags

	ctc               string
	ctcPY             string
	sheet             string
	userRows          int
	codeColumn        string
	nameColumn        string
	dojColumn         string
	designationColumn string
	sumColumns        []string
}

var incrementCmd = &cobra.Command{
	Use:   "increment",
	Short: "Compute per-employee salary increments between two CTC reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &incrementFlags
		sources := map[string]config.Source{}
		source(sources, config.SourceCTC, f.ctc, f.sheet, 0)
		source(sources, config.SourceCTCPrevious, f.ctcPY, f.sheet, 0)

		return runJobs(cmd, &f.engagementFlags, config.JobConfig{
			Type:               config.JobIncrement,
			Sources:            sources,
			UserAdjustments:    f.userRows,
			EmployeeCodeColumn: f.codeColumn,
			EmployeeNameColumn: f.nameColumn,
			DateOfJoinColumn:   f.dojColumn,
			DesignationColumn:  f.designationColumn,
			SumColumns:         f.sumColumns,
		})
	},
}

func init() {
	rootCmd.AddCommand(headcountCmd, incrementCmd)

	h := &headcountFlags
	h.engagementFlags.register(headcountCmd)
	flags := headcountCmd.Flags()
	flags.StringVar(&h.additions, "additions", "", "Joiners list (.xlsx or .csv)")
	flags.StringVar(&h.deletions, "deletions", "", "Leavers list (.xlsx or .csv)")
	flags.StringVar(&h.ctc, "ctc", "", "Year-end CTC report")
	flags.StringVar(&h.payRegister, "pay-register", "", "Pay register for average gross pay")
	flags.StringVar(&h.sheet, "sheet", "", "Worksheet to read in every workbook (default: the first sheet)")
	flags.IntVar(&h.opening, "opening", 0, "Headcount at the start of the fiscal year")
	flags.IntVar(&h.userRows, "user-rows", 0, "Reconciling rows entered by the auditor")
	flags.StringVar(&h.joinColumn, "join-column", "Date of Joining", "Date of joining column of the joiners list")
	flags.StringVar(&h.leaveColumn, "leave-column", "Date of Leaving", "Date of leaving column of the leavers list")
	flags.StringVar(&h.monthColumn, "month-column", "", "Pay month column of the pay register")
	flags.StringVar(&h.grossColumn, "gross-column", "", "Gross pay column of the pay register")
	for _, name := range []string{"additions", "deletions", "ctc"} {
		headcountCmd.MarkFlagRequired(name)
	}

	i := &incrementFlags
	i.engagementFlags.register(incrementCmd)
	flags = incrementCmd.Flags()
	flags.StringVar(&i.ctc, "ctc", "", "Current year CTC report")
	flags.StringVar(&i.ctcPY, "ctc-py", "", "Prior year CTC report")
	flags.StringVar(&i.sheet, "sheet", "", "Worksheet to read (default: the first sheet)")
	flags.IntVar(&i.userRows, "user-rows", 0, "Reconciling rows entered by the auditor")
	flags.StringVar(&i.codeColumn, "code-column", "Employee Code", "Employee code column")
	flags.StringVar(&i.nameColumn, "name-column", "", "Employee name column")
	flags.StringVar(&i.dojColumn, "doj-column", "", "Date of joining column")
	flags.StringVar(&i.designationColumn, "designation-column", "", "Designation column")
	flags.StringSliceVar(&i.sumColumns, "sum-columns", nil, "Pay components summed per employee")
	for _, name := range []string{"ctc", "ctc-py", "sum-columns"} {
		incrementCmd.MarkFlagRequired(name)
	}
}
