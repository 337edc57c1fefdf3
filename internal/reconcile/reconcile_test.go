package reconcile

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payroll-audit/internal/ledger"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestScenarioHigherRiskRelyingOnControls(t *testing.T) {
	res, err := Evaluate(Input{
		Recorded:       d(100),
		Expected:       d(130),
		PopulationBase: d(100),
		Materiality:    d(1000),
		Risk:           RiskHigher,
		Control:        RelyingOnControls,
	})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	// min(25% x 100, 90% x 1000) = min(25, 900) = 25
	if !res.Threshold.Equal(d(25)) {
		t.Errorf("Threshold = %s, want 25", res.Threshold)
	}
	if !res.Difference.Equal(d(30)) {
		t.Errorf("Difference = %s, want 30", res.Difference)
	}
	if res.WithinThreshold {
		t.Error("WithinThreshold = true, want false")
	}
}

func TestThresholdTable(t *testing.T) {
	tests := []struct {
		risk     RiskAssessment
		control  ControlReliance
		pop, mat int64
	}{
		{RiskLower, NotRelyingOnControls, 22, 65},
		{RiskHigher, NotRelyingOnControls, 15, 45},
		{RiskLower, RelyingOnControls, 35, 95},
		{RiskHigher, RelyingOnControls, 25, 90},
		{RiskSignificant, RelyingOnControls, 20, 50},
	}

	for _, tt := range tests {
		p, err := Lookup(tt.risk, tt.control)
		if err != nil {
			t.Errorf("Lookup(%s, %s) error = %v", tt.risk, tt.control, err)
			continue
		}
		if !p.Population.Equal(d(tt.pop)) || !p.Materiality.Equal(d(tt.mat)) {
			t.Errorf("Lookup(%s, %s) = %s/%s, want %d/%d", tt.risk, tt.control, p.Population, p.Materiality, tt.pop, tt.mat)
		}
	}
}

func TestUnknownCombinationFailsFast(t *testing.T) {
	_, err := Evaluate(Input{Risk: RiskSignificant, Control: NotRelyingOnControls})
	if !errors.Is(err, ErrUnknownThreshold) {
		t.Errorf("Evaluate() error = %v, want ErrUnknownThreshold", err)
	}
}

func TestThresholdProperties(t *testing.T) {
	bases := []int64{0, 50, 1000, 250000}
	mats := []int64{0, 10, 5000, 1000000}
	diffs := []int64{-700, -1, 0, 3, 40000}

	for key, p := range thresholdTable {
		for _, base := range bases {
			prevMatBound := decimal.Decimal{}
			for i, mat := range mats {
				res, err := Evaluate(Input{
					Recorded:       d(1000),
					Expected:       d(1000),
					PopulationBase: d(base),
					Materiality:    d(mat),
					Risk:           key.risk,
					Control:        key.control,
				})
				if err != nil {
					t.Fatal(err)
				}

				wantPop := p.Population.Mul(d(base)).Div(d(100))
				wantMat := p.Materiality.Mul(d(mat)).Div(d(100))
				if !res.Threshold.Equal(decimal.Min(wantPop, wantMat)) {
					t.Errorf("%v base=%d mat=%d: threshold %s, want min(%s, %s)", key, base, mat, res.Threshold, wantPop, wantMat)
				}
				if i > 0 && res.MaterialityBound.LessThan(prevMatBound) {
					t.Errorf("%v: materiality bound decreased as materiality grew", key)
				}
				prevMatBound = res.MaterialityBound

				for _, diff := range diffs {
					r, _ := Evaluate(Input{
						Recorded:       d(1000),
						Expected:       d(1000 + diff),
						PopulationBase: d(base),
						Materiality:    d(mat),
						Risk:           key.risk,
						Control:        key.control,
					})
					want := d(diff).Abs().LessThanOrEqual(r.Threshold)
					if r.WithinThreshold != want {
						t.Errorf("%v diff=%d threshold=%s: within = %v, want %v", key, diff, r.Threshold, r.WithinThreshold, want)
					}
				}
			}
		}
	}
}

func TestParseRiskAndControl(t *testing.T) {
	if r, err := ParseRisk("  higher "); err != nil || r != RiskHigher {
		t.Errorf("ParseRisk() = %v, %v", r, err)
	}
	if c, err := ParseControlReliance("not relying on controls"); err != nil || c != NotRelyingOnControls {
		t.Errorf("ParseControlReliance() = %v, %v", c, err)
	}
	if _, err := ParseRisk("moderate"); err == nil {
		t.Error("expected error for unknown risk")
	}
}

func TestSalaryExpectation(t *testing.T) {
	// 1200 / 10 x 12 x 1.05 = 1512
	got := SalaryExpectation(d(1200), d(10), d(12), d(5))
	if !got.Equal(d(1512)) {
		t.Errorf("SalaryExpectation() = %s, want 1512", got)
	}

	if got := SalaryExpectation(d(1200), d(0), d(12), d(5)); !got.IsZero() {
		t.Errorf("zero headcount should yield 0, got %s", got)
	}
}

func TestAnalysePF(t *testing.T) {
	eng := Engagement{Risk: RiskLower, Control: NotRelyingOnControls, Materiality: d(1000)}
	res, err := AnalysePF(PFInput{
		Recorded:   []ledger.Entry{{Name: "PF", ClosingBalance: d(100)}},
		Salary:     []ledger.Entry{{Name: "Basic", ClosingBalance: d(600)}, {Name: "DA", ClosingBalance: d(400)}},
		Percentage: d(12),
	}, eng)
	if err != nil {
		t.Fatalf("AnalysePF() error = %v", err)
	}

	// Expected 12% of 1000 = 120; difference 20; threshold min(22, 650) = 22.
	if !res.ExpectedPF.Equal(d(120)) {
		t.Errorf("ExpectedPF = %s, want 120", res.ExpectedPF)
	}
	if !res.Reconciliation.Difference.Equal(d(20)) || !res.Reconciliation.Threshold.Equal(d(22)) {
		t.Errorf("Reconciliation = %+v", res.Reconciliation)
	}
	if !res.Reconciliation.WithinThreshold {
		t.Error("WithinThreshold = false, want true")
	}
	if len(res.SalaryLedgers) != 2 {
		t.Errorf("SalaryLedgers = %v", res.SalaryLedgers)
	}
}

func TestAnalyseSalary(t *testing.T) {
	eng := Engagement{Risk: RiskHigher, Control: RelyingOnControls, Materiality: d(100)}
	ledgers := []ledger.Entry{
		{Name: "Salaries", OpeningBalance: d(900), ClosingBalance: d(1000)},
		{Name: "Bonus", OpeningBalance: d(100), ClosingBalance: d(200)},
		{Name: "Wages", OpeningBalance: d(100), ClosingBalance: d(100)},
	}

	res, err := AnalyseSalary(SalaryInput{
		Ledgers:             ledgers,
		Exclude:             []string{" BONUS "},
		PYWeightedHeadcount: d(10),
		CYWeightedHeadcount: d(11),
	}, eng)
	if err != nil {
		t.Fatalf("AnalyseSalary() error = %v", err)
	}

	checks := []struct {
		name string
		got  decimal.Decimal
		want int64
	}{
		{"CYTotal", res.CYTotal, 1300},
		{"PYTotal", res.PYTotal, 1100},
		{"CYExcluded", res.CYExcluded, 200},
		{"PYExcluded", res.PYExcluded, 100},
		{"CYNet", res.CYNet, 1100},
		{"PYNet", res.PYNet, 1000},
		// 1000 / 10 x 11 x 1.00
		{"Expectation", res.Expectation, 1100},
		// min(25% x 1300, 90% x 100) = 90
		{"Threshold", res.Reconciliation.Threshold, 90},
	}
	for _, c := range checks {
		if !c.got.Equal(d(c.want)) {
			t.Errorf("%s = %s, want %d", c.name, c.got, c.want)
		}
	}
	if !res.Reconciliation.WithinThreshold {
		t.Error("WithinThreshold = false, want true")
	}
}

func TestAnalyseSalaryRoundsIncrement(t *testing.T) {
	eng := Engagement{Risk: RiskLower, Control: RelyingOnControls, Materiality: d(100000)}
	ledgers := []ledger.Entry{{Name: "Salaries", OpeningBalance: d(1000), ClosingBalance: d(1100)}}

	tests := []struct {
		increment string
		wantPct   int64
		want      int64
	}{
		// 1000 / 10 x 10 x 1.10
		{"9.6", 10, 1100},
		{"10.4", 10, 1100},
		{"10.5", 10, 1100},
		{"11.5", 12, 1120},
	}

	for _, tt := range tests {
		t.Run(tt.increment, func(t *testing.T) {
			res, err := AnalyseSalary(SalaryInput{
				Ledgers:             ledgers,
				PYWeightedHeadcount: d(10),
				CYWeightedHeadcount: d(10),
				AverageIncrementPct: decimal.RequireFromString(tt.increment),
			}, eng)
			if err != nil {
				t.Fatalf("AnalyseSalary() error = %v", err)
			}
			if !res.IncrementPct.Equal(d(tt.wantPct)) {
				t.Errorf("IncrementPct = %s, want %d", res.IncrementPct, tt.wantPct)
			}
			if !res.Expectation.Equal(d(tt.want)) {
				t.Errorf("Expectation = %s, want %d", res.Expectation, tt.want)
			}
		})
	}
}

func TestHeadcountVsCTC(t *testing.T) {
	eng := Engagement{Risk: RiskLower, Control: RelyingOnControls, Materiality: d(1000)}
	res, err := HeadcountVsCTC(200, 205, eng)
	if err != nil {
		t.Fatal(err)
	}
	// min(35% x 200, 95% x 1000) = 70
	if !res.Threshold.Equal(d(70)) || !res.WithinThreshold {
		t.Errorf("HeadcountVsCTC() = %+v", res)
	}
}
