// =============================================================================
// Payroll Audit - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Payroll Audit CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   auditor exceptions payroll       - Exception rules over a pay register
//   auditor exceptions fixed-assets  - Exception rules over a fixed asset register
//   auditor reconcile pf|salary|threshold
//   auditor headcount                - Headcount roll-forward and weighted averages
//   auditor increment                - Salary increments between CTC reports
//   auditor compare                  - CTC vs actuary comparison
//   auditor analyse mom|cutoff|cwip  - Month-on-month, cut-off and CWIP analytics
//   auditor run                      - Every job of every engagement
//   auditor version                  - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Audit logic (datasets, rules, analytics, reports)
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/payroll-audit/cmd"
)

func main() {
	cmd.Execute()
}
