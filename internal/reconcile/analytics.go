package reconcile

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payroll-audit/internal/ledger"
)

// Engagement carries the threshold settings shared by every reconciliation
// of one audit engagement.
type Engagement struct {
	Risk        RiskAssessment
	Control     ControlReliance
	Materiality decimal.Decimal
}

// =============================================================================
// PF ANALYTICS
// =============================================================================

// PFInput selects the ledgers of a provident fund reasonableness test.
type PFInput struct {
	// Recorded are the PF expense ledgers.
	Recorded []ledger.Entry

	// Salary are the salary ledgers PF is computed on.
	Salary []ledger.Entry

	// Percentage is the statutory PF rate, e.g. 12.
	Percentage decimal.Decimal
}

// PFResult is the outcome of a PF reasonableness test.
type PFResult struct {
	RecordedAmount  decimal.Decimal `json:"recorded_amount"`
	SalaryAmount    decimal.Decimal `json:"salary_amount"`
	Percentage      decimal.Decimal `json:"percentage"`
	ExpectedPF      decimal.Decimal `json:"expected_pf"`
	Reconciliation  Result          `json:"reconciliation"`
	RecordedLedgers []string        `json:"recorded_amount_ledgers"`
	SalaryLedgers   []string        `json:"salary_amount_ledgers"`
}

// AnalysePF recomputes PF as a percentage of salary and reconciles it
// against the recorded PF expense. The population base is the recorded amount.
func AnalysePF(in PFInput, eng Engagement) (PFResult, error) {
	recorded := ledger.TotalClosing(in.Recorded)
	salary := ledger.TotalClosing(in.Salary)
	expected := in.Percentage.Div(decimal.NewFromInt(100)).Mul(salary)

	res, err := Evaluate(Input{
		Recorded:       recorded,
		Expected:       expected,
		PopulationBase: recorded,
		Materiality:    eng.Materiality,
		Risk:           eng.Risk,
		Control:        eng.Control,
	})
	if err != nil {
		return PFResult{}, err
	}

	return PFResult{
		RecordedAmount:  recorded,
		SalaryAmount:    salary,
		Percentage:      in.Percentage,
		ExpectedPF:      expected,
		Reconciliation:  res,
		RecordedLedgers: ledger.Names(in.Recorded),
		SalaryLedgers:   ledger.Names(in.Salary),
	}, nil
}

// =============================================================================
// SALARY ANALYTICS
// =============================================================================

// SalaryExpectation projects current-year salary cost from the prior year:
//
//	pyNet / pyWeightedHeadcount x cyWeightedHeadcount x (1 + increment%/100)
//
// A zero prior-year headcount yields zero.
func SalaryExpectation(pyNet, pyWeightedHeadcount, cyWeightedHeadcount, incrementPct decimal.Decimal) decimal.Decimal {
	if pyWeightedHeadcount.IsZero() {
		return decimal.Zero
	}
	growth := decimal.NewFromInt(1).Add(incrementPct.Div(decimal.NewFromInt(100)))
	return pyNet.Div(pyWeightedHeadcount).Mul(cyWeightedHeadcount).Mul(growth)
}

// SalaryInput describes a salary expense reasonableness test.
type SalaryInput struct {
	// Ledgers are the salary ledgers. Closing balances are current year,
	// opening balances prior year.
	Ledgers []ledger.Entry

	// Exclude names ledgers left out of the net salary figures. Matching
	// ignores case and surrounding space.
	Exclude []string

	PYWeightedHeadcount decimal.Decimal
	CYWeightedHeadcount decimal.Decimal

	// AverageIncrementPct is the average salary increment in percent. It
	// is rounded half to even to a whole percent before use.
	AverageIncrementPct decimal.Decimal
}

// SalaryResult is the outcome of a salary expense reasonableness test.
type SalaryResult struct {
	CYTotal         decimal.Decimal `json:"cy_salaries_and_wages"`
	PYTotal         decimal.Decimal `json:"py_salaries_and_wages"`
	CYExcluded      decimal.Decimal `json:"cy_excluded_total"`
	PYExcluded      decimal.Decimal `json:"py_excluded_total"`
	CYNet           decimal.Decimal `json:"cy_net_salary"`
	PYNet           decimal.Decimal `json:"py_net_salary"`
	IncrementPct    decimal.Decimal `json:"average_increment_pct"`
	Expectation     decimal.Decimal `json:"salary_expectation"`
	Reconciliation  Result          `json:"reconciliation"`
	Ledgers         []string        `json:"salary_ledgers"`
	ExcludedLedgers []string        `json:"excluded_ledgers"`
}

// AnalyseSalary projects the current-year net salary and reconciles the
// projection against the actual figure. The population base is the total
// of the salary ledgers' closing balances.
func AnalyseSalary(in SalaryInput, eng Engagement) (SalaryResult, error) {
	exclude := make(map[string]bool, len(in.Exclude))
	for _, name := range in.Exclude {
		exclude[strings.ToLower(strings.TrimSpace(name))] = true
	}

	var excluded []ledger.Entry
	for _, e := range in.Ledgers {
		if exclude[strings.ToLower(strings.TrimSpace(e.Name))] {
			excluded = append(excluded, e)
		}
	}

	cyTotal := ledger.TotalClosing(in.Ledgers)
	pyTotal := ledger.TotalOpening(in.Ledgers)
	cyExcluded := ledger.TotalClosing(excluded)
	pyExcluded := ledger.TotalOpening(excluded)
	cyNet := cyTotal.Sub(cyExcluded)
	pyNet := pyTotal.Sub(pyExcluded)

	incrementPct := in.AverageIncrementPct.RoundBank(0)
	expectation := SalaryExpectation(pyNet, in.PYWeightedHeadcount, in.CYWeightedHeadcount, incrementPct)

	res, err := Evaluate(Input{
		Recorded:       cyNet,
		Expected:       expectation,
		PopulationBase: cyTotal,
		Materiality:    eng.Materiality,
		Risk:           eng.Risk,
		Control:        eng.Control,
	})
	if err != nil {
		return SalaryResult{}, err
	}

	return SalaryResult{
		CYTotal:         cyTotal,
		PYTotal:         pyTotal,
		CYExcluded:      cyExcluded,
		PYExcluded:      pyExcluded,
		CYNet:           cyNet,
		PYNet:           pyNet,
		IncrementPct:    incrementPct,
		Expectation:     expectation,
		Reconciliation:  res,
		Ledgers:         ledger.Names(in.Ledgers),
		ExcludedLedgers: ledger.Names(excluded),
	}, nil
}

// =============================================================================
// HEADCOUNT
// =============================================================================

// HeadcountVsCTC reconciles the roll-forward closing headcount against the
// CTC report's headcount, using the recorded headcount as population base.
func HeadcountVsCTC(recorded, ctc int, eng Engagement) (Result, error) {
	r := decimal.NewFromInt(int64(recorded))
	return Evaluate(Input{
		Recorded:       r,
		Expected:       decimal.NewFromInt(int64(ctc)),
		PopulationBase: r,
		Materiality:    eng.Materiality,
		Risk:           eng.Risk,
		Control:        eng.Control,
	})
}
