// =============================================================================
// Payroll Audit - Run Command
// =============================================================================
//
// This file defines the 'run' command, which runs every job of every
// engagement configuration.
//
// COMMAND USAGE:
//   auditor run [flags]
//
// FLAGS:
//   --dry-run : Load and validate the engagements, list the jobs, run nothing
//   --client  : Run only the engagement with this client code
//
// PROCESSING PIPELINE:
//   1. Load the main configuration and the engagement configurations
//   2. Run every job concurrently (at most max_concurrency at a time)
//   3. Print one line per job
//   4. Write the run summary and, if anything went wrong, the issue log
//
// =============================================================================

package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payroll-audit/internal/audit"
	"github.com/ginjaninja78/payroll-audit/internal/config"
	"github.com/ginjaninja78/payroll-audit/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun validates the engagements without running any job.
var dryRun bool

// client filters the run to one engagement.
var client string

// =============================================================================
// RUN COMMAND DEFINITION
// =============================================================================

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every job of the engagement configurations",
	Long: `The run command loads every engagement configuration in the engagements
directory and runs their jobs concurrently.

Each job writes its working papers to the output directory. A failing job
does not stop the others when continue_on_error is set; otherwise jobs not
yet started are cancelled.

After the run:
  - A run summary is written to the output directory
  - Failed jobs and skipped rules are written to an issue log`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runAll(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Validate the engagements and list their jobs without running them",
	)

	runCmd.Flags().StringVar(
		&client,
		"client",
		"",
		"Run only the engagement with this client code",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runAll(cmd *cobra.Command) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Fprintln(out, "=== Payroll Audit ===")
	fmt.Fprintln(out, "Loading configuration...")

	mainConfig, err := loadMainConfig()
	if err != nil {
		return err
	}

	engagements, err := config.LoadEngagements(mainConfig.EngagementsDir)
	if err != nil {
		return fmt.Errorf("failed to load engagements: %w", err)
	}

	if client != "" {
		eng, ok := engagements[client]
		if !ok {
			return fmt.Errorf("no engagement with client code %q in %s", client, mainConfig.EngagementsDir)
		}
		engagements = map[string]*config.EngagementConfig{client: eng}
	}

	totalJobs := 0
	for _, eng := range engagements {
		totalJobs += len(eng.Jobs)
	}
	fmt.Fprintf(out, "Loaded %d engagement(s) with %d job(s)\n", len(engagements), totalJobs)

	if totalJobs == 0 {
		fmt.Fprintln(out, "No jobs to run.")
		return nil
	}

	if dryRun {
		printPlan(cmd, engagements)
		return nil
	}

	// =========================================================================
	// STEP 2: RUN JOBS CONCURRENTLY
	// =========================================================================

	logger, closeLog, err := newLogger(mainConfig)
	if err != nil {
		return err
	}
	defer closeLog()

	runner := audit.NewRunner(mainConfig, logger)
	logger.Info("Run %s started with %d job(s)", runner.RunID, totalJobs)

	fmt.Fprintln(out, "Running jobs...")
	results := runner.RunAll(commandContext(cmd), engagements)

	// =========================================================================
	// STEP 3: PRINT RESULTS
	// =========================================================================

	var successCount, errorCount int
	for _, res := range results {
		printResult(out, res)
		if res.Success {
			successCount++
		} else {
			errorCount++
		}
	}

	elapsed := time.Since(startTime)
	fmt.Fprintln(out, "\n=== Run Complete ===")
	fmt.Fprintf(out, "Total jobs:      %d\n", len(results))
	fmt.Fprintf(out, "Successful:      %d\n", successCount)
	fmt.Fprintf(out, "Errors:          %d\n", errorCount)
	fmt.Fprintf(out, "Time elapsed:    %s\n", elapsed)

	// =========================================================================
	// STEP 4: WRITE SUMMARY AND ISSUE LOG
	// =========================================================================

	if err := runner.Files().EnsureDirectories(); err != nil {
		return err
	}

	summary := audit.Summarize(runner.RunID, startTime, time.Now(), results)
	summaryPath, err := utils.WriteSummaryLog(summary, mainConfig.OutputDir)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Summary:         %s\n", summaryPath)

	issuePath, err := utils.WriteIssueLog(audit.Issues(results), mainConfig.OutputDir)
	if err != nil {
		return err
	}
	if issuePath != "" {
		fmt.Fprintf(out, "Issues:          %s\n", issuePath)
	}

	if errorCount > 0 {
		return fmt.Errorf("%d job(s) failed", errorCount)
	}
	return nil
}

// printPlan lists the jobs a run would execute.
func printPlan(cmd *cobra.Command, engagements map[string]*config.EngagementConfig) {
	out := cmd.OutOrStdout()
	clients := make([]string, 0, len(engagements))
	for c := range engagements {
		clients = append(clients, c)
	}
	sort.Strings(clients)

	for _, c := range clients {
		eng := engagements[c]
		fy := eng.FiscalYear()
		fmt.Fprintf(out, "%s (%s, %s)\n", c, eng.ClientName, fy.String())
		for _, job := range eng.Jobs {
			fmt.Fprintf(out, "  - %s [%s]\n", job.Name, job.Type)
		}
	}
}
