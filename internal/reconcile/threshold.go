// =============================================================================
// Payroll Audit - Reconciliation Calculator
// =============================================================================
//
// Substantive analytical procedures compare a recorded figure (from the
// ledger, the pay register, the headcount roll-forward) against an
// independently derived expectation. The difference is acceptable when it
// does not exceed a threshold that depends on the assessed risk and on
// whether the auditor relies on the client's controls.
//
// THRESHOLD:
//   threshold = min(population% x population base, materiality% x materiality)
//
//   | Risk        | Control reliance         | Population % | Materiality % |
//   |-------------|--------------------------|--------------|---------------|
//   | Lower       | Not relying on controls  | 22           | 65            |
//   | Higher      | Not relying on controls  | 15           | 45            |
//   | Lower       | Relying on controls      | 35           | 95            |
//   | Higher      | Relying on controls      | 25           | 90            |
//   | Significant | Relying on controls      | 20           | 50            |
//
// Any other combination is a configuration error.
//
// All arithmetic uses decimal amounts.
//
// =============================================================================

package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RiskAssessment is the assessed risk of material misstatement.
type RiskAssessment string

const (
	RiskLower       RiskAssessment = "Lower"
	RiskHigher      RiskAssessment = "Higher"
	RiskSignificant RiskAssessment = "Significant"
)

// ControlReliance states whether the auditor relies on the client's controls.
type ControlReliance string

const (
	RelyingOnControls    ControlReliance = "Relying on controls"
	NotRelyingOnControls ControlReliance = "Not relying on controls"
)

// ErrUnknownThreshold is returned for a risk/control combination without
// a defined threshold.
var ErrUnknownThreshold = errors.New("no threshold defined for risk and control reliance")

// Percentages are the two threshold percentages of one lookup row.
type Percentages struct {
	Population  decimal.Decimal `json:"population_pct"`
	Materiality decimal.Decimal `json:"materiality_pct"`
}

type lookupKey struct {
	risk    RiskAssessment
	control ControlReliance
}

var thresholdTable = map[lookupKey]Percentages{
	{RiskLower, NotRelyingOnControls}:    pct(22, 65),
	{RiskHigher, NotRelyingOnControls}:   pct(15, 45),
	{RiskLower, RelyingOnControls}:       pct(35, 95),
	{RiskHigher, RelyingOnControls}:      pct(25, 90),
	{RiskSignificant, RelyingOnControls}: pct(20, 50),
}

func pct(population, materiality int64) Percentages {
	return Percentages{Population: decimal.NewFromInt(population), Materiality: decimal.NewFromInt(materiality)}
}

// Lookup returns the threshold percentages for a risk/control combination.
func Lookup(risk RiskAssessment, control ControlReliance) (Percentages, error) {
	p, ok := thresholdTable[lookupKey{risk, control}]
	if !ok {
		return Percentages{}, fmt.Errorf("%w: %q / %q", ErrUnknownThreshold, risk, control)
	}
	return p, nil
}

// ParseRisk reads a risk assessment, ignoring case and surrounding space.
func ParseRisk(s string) (RiskAssessment, error) {
	for _, r := range []RiskAssessment{RiskLower, RiskHigher, RiskSignificant} {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown risk assessment %q", s)
}

// ParseControlReliance reads a control reliance, ignoring case and surrounding space.
func ParseControlReliance(s string) (ControlReliance, error) {
	for _, c := range []ControlReliance{RelyingOnControls, NotRelyingOnControls} {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown control reliance %q", s)
}

// =============================================================================
// EVALUATION
// =============================================================================

// Input is one reconciliation to evaluate.
type Input struct {
	// Recorded is the figure under test.
	Recorded decimal.Decimal

	// Expected is the independently derived comparison figure.
	Expected decimal.Decimal

	// PopulationBase scales the population side of the threshold.
	PopulationBase decimal.Decimal

	// Materiality is the performance materiality for the engagement.
	Materiality decimal.Decimal

	Risk    RiskAssessment
	Control ControlReliance
}

// Result is the verdict of one reconciliation.
type Result struct {
	Recorded         decimal.Decimal `json:"recorded"`
	Expected         decimal.Decimal `json:"expected"`
	Difference       decimal.Decimal `json:"difference"`
	PopulationBound  decimal.Decimal `json:"population_bound"`
	MaterialityBound decimal.Decimal `json:"materiality_bound"`
	Threshold        decimal.Decimal `json:"threshold"`
	Percentages      Percentages     `json:"percentages"`
	Risk             RiskAssessment  `json:"risk_assessment"`
	Control          ControlReliance `json:"control_reliance"`
	WithinThreshold  bool            `json:"within_threshold"`
}

// Bounds computes the two sides of the threshold and their minimum.
func Bounds(p Percentages, populationBase, materiality decimal.Decimal) (population, mat, threshold decimal.Decimal) {
	hundred := decimal.NewFromInt(100)
	population = p.Population.Div(hundred).Mul(populationBase)
	mat = p.Materiality.Div(hundred).Mul(materiality)
	threshold = decimal.Min(population, mat)
	return population, mat, threshold
}

// Evaluate computes the difference (expected - recorded), the threshold,
// and whether the absolute difference is within it.
//
// RETURNS:
//   - The result.
//   - An error wrapping ErrUnknownThreshold for an undefined risk/control pair.
func Evaluate(in Input) (Result, error) {
	p, err := Lookup(in.Risk, in.Control)
	if err != nil {
		return Result{}, err
	}

	popBound, matBound, threshold := Bounds(p, in.PopulationBase, in.Materiality)
	diff := in.Expected.Sub(in.Recorded)

	return Result{
		Recorded:         in.Recorded,
		Expected:         in.Expected,
		Difference:       diff,
		PopulationBound:  popBound,
		MaterialityBound: matBound,
		Threshold:        threshold,
		Percentages:      p,
		Risk:             in.Risk,
		Control:          in.Control,
		WithinThreshold:  diff.Abs().LessThanOrEqual(threshold),
	}, nil
}
