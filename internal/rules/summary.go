package rules

import "fmt"

// SummaryRow is one line of the exception summary table.
type SummaryRow struct {
	RuleID      int    `json:"rule_id"`
	Label       string `json:"exception_no"`
	Description string `json:"exception"`
	Count       int    `json:"exception_count"`
	Skipped     bool   `json:"skipped,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Summary lists the requested rules in order with their violation counts.
// Skipped rules appear with a zero count and the skip reason.
func Summary(ev *Evaluation) []SummaryRow {
	rows := make([]SummaryRow, 0, len(ev.Outcomes))
	for _, o := range ev.Outcomes {
		rows = append(rows, SummaryRow{
			RuleID:      o.RuleID,
			Label:       fmt.Sprintf("%d.", o.RuleID),
			Description: o.Description,
			Count:       o.Count(),
			Skipped:     o.Skipped,
			Reason:      o.Reason,
		})
	}
	return rows
}

// TotalExceptions sums the violation counts of a summary.
func TotalExceptions(rows []SummaryRow) int {
	total := 0
	for _, r := range rows {
		total += r.Count
	}
	return total
}
