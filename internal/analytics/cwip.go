// =============================================================================
// Payroll Audit - Capital Work in Progress
// =============================================================================
//
// Two tests over the capital work in progress (CWIP) register:
//
// COMPLETENESS:
//   The register's total is reconciled against the CWIP sub-lead of the
//   trial balance (closing balances of sub-line 20015).
//
// AGEING:
//   Each register line is aged from its date to the cut-off date, counting
//   both ends, and placed in a bracket:
//
//     age < 366 days          Less than 1 year
//     366 <= age < 731        1-2 Years
//     731 <= age < 1096       2-3 Years
//     age >= 1096             More than 3 years
//
//   Long-outstanding work in progress points at assets that should have
//   been capitalised or impaired.
//
// =============================================================================

package analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payroll-audit/internal/dataset"
	"github.com/ginjaninja78/payroll-audit/internal/dates"
)

// Ageing brackets, youngest first.
const (
	BracketUnderOneYear = "Less than 1 year"
	BracketOneToTwo     = "1-2 Years"
	BracketTwoToThree   = "2-3 Years"
	BracketOverThree    = "More than 3 years"
)

// ageingGuide lists the lower bound in days of every bracket but the first.
var ageingGuide = []struct {
	from    int
	bracket string
}{
	{366, BracketOneToTwo},
	{731, BracketTwoToThree},
	{1096, BracketOverThree},
}

// Completeness labels.
const (
	ParticularsPerRegister = "As per CWIP Register (A)"
	ParticularsPerSublead  = "As per Sublead (B)"
	ParticularsAmountDiff  = "Difference (C)"
	ParticularsAdjustments = "User Adjustments"
)

// AmountParticular is one line of an amount reconciliation.
type AmountParticular struct {
	Particulars string          `json:"Particulars"`
	Amount      decimal.Decimal `json:"Amount"`
}

// CWIPColumns names the register columns used by the CWIP tests.
type CWIPColumns struct {
	Amount string
	Date   string
}

// AgeingLine is the age of one register line.
type AgeingLine struct {
	// Days is the age in days, counting both ends. Zero with an empty
	// Bracket when the line has no parseable date.
	Days    int
	Bracket string
}

// BracketTotal summarises the register lines of one bracket.
type BracketTotal struct {
	Bracket string          `json:"Ageing Bracket"`
	Lines   int             `json:"Lines"`
	Amount  decimal.Decimal `json:"Amount"`
}

// CWIPAnalysis is the outcome of the completeness and ageing tests.
type CWIPAnalysis struct {
	Reconciliation []AmountParticular `json:"Reconciliation"`
	Ageing         []BracketTotal     `json:"Ageing"`
	CutoffDate     string             `json:"Cutoff Date"`

	// Lines holds one entry per register row, in row order.
	Lines []AgeingLine `json:"-"`

	// NetDifference is the register total less the sub-lead, net of
	// user adjustments.
	NetDifference decimal.Decimal `json:"-"`
}

// Bracket returns the ageing bracket of an age in days.
func Bracket(days int) string {
	bracket := BracketUnderOneYear
	for _, g := range ageingGuide {
		if days >= g.from {
			bracket = g.bracket
		}
	}
	return bracket
}

// AnalyseCWIP reconciles the CWIP register against the trial balance
// sub-lead and ages every register line.
//
// PARAMETERS:
//   - register: The CWIP register.
//   - cols: The amount and date columns.
//   - sublead: The closing balance of the CWIP sub-line ledgers.
//   - adjustments: Reconciling amounts entered by the auditor.
//   - cutoff: The date lines are aged to.
//
// RETURNS:
//   - The analysis. Amounts are rounded to 2 places.
//   - An error if a named column is absent from the register.
func AnalyseCWIP(register *dataset.Dataset, cols CWIPColumns, sublead, adjustments decimal.Decimal, cutoff time.Time) (*CWIPAnalysis, error) {
	for _, col := range []string{cols.Amount, cols.Date} {
		if !register.Has(col) {
			return nil, fmt.Errorf("column %q not found in %s", col, register.Name())
		}
	}
	cutoff = dates.Day(cutoff)

	totals := make(map[string]*BracketTotal)
	order := []string{BracketUnderOneYear, BracketOneToTwo, BracketTwoToThree, BracketOverThree}
	for _, b := range order {
		totals[b] = &BracketTotal{Bracket: b, Amount: decimal.Zero}
	}

	registerTotal := decimal.Zero
	analysis := &CWIPAnalysis{CutoffDate: cutoff.Format("02-01-2006")}
	for i := 0; i < register.Len(); i++ {
		amount := decimal.Zero
		if f, ok := register.Value(i, cols.Amount).Float(); ok {
			amount = decimal.NewFromFloat(f)
		}
		registerTotal = registerTotal.Add(amount)

		line := AgeingLine{}
		if d, ok := dates.Parse(register.Value(i, cols.Date)); ok {
			line.Days = int(cutoff.Sub(d).Hours()/24) + 1
			line.Bracket = Bracket(line.Days)
			t := totals[line.Bracket]
			t.Lines++
			t.Amount = t.Amount.Add(amount)
		}
		analysis.Lines = append(analysis.Lines, line)
	}

	for _, b := range order {
		t := totals[b]
		t.Amount = t.Amount.Round(2)
		analysis.Ageing = append(analysis.Ageing, *t)
	}

	registerTotal = registerTotal.Round(2)
	sublead = sublead.Round(2)
	diff := registerTotal.Sub(sublead)
	analysis.NetDifference = diff.Sub(adjustments)
	analysis.Reconciliation = []AmountParticular{
		{Particulars: ParticularsPerRegister, Amount: registerTotal},
		{Particulars: ParticularsPerSublead, Amount: sublead},
		{Particulars: ParticularsAmountDiff, Amount: diff},
		{Particulars: ParticularsAdjustments, Amount: adjustments},
		{Particulars: ParticularsNet, Amount: analysis.NetDifference},
	}
	return analysis, nil
}
