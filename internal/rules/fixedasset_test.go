package rules

import (
	"reflect"
	"testing"
	"time"

	"github.com/ginjaninja78/payroll-audit/internal/columnmap"
	"github.com/ginjaninja78/payroll-audit/internal/dataset"
	"github.com/ginjaninja78/payroll-audit/internal/dates"
)

var farHeaders = []string{"Code", "Cat", "Life", "Cost", "AccDep", "NBV", "CapDate"}

func farMap(t *testing.T) *columnmap.Map {
	t.Helper()
	m, err := columnmap.FromHeaders(columnmap.FixedAsset, farHeaders)
	if err != nil {
		t.Fatalf("FromHeaders() error = %v", err)
	}
	return m
}

// currentRegister, evaluated in FY 2024-25:
//
//	row  code  life  cost  accdep  nbv  capdate
//	0    A1    5     1000  200     800  15-06-2024  new, inside FY
//	1    A2    0     500   600     500  01-04-2020  same date last year
//	2    A3    -     300   100     200  10-10-2019  last year 11-10-2019
//	3    A4    0.5   100   -50     50   01-01-2023  new, outside FY
//	4    A5    3     100   0       100  garbage     new, no usable date
func currentRegister(a1Date string) *dataset.Dataset {
	return table(farHeaders, [][]interface{}{
		{"A1", "Plant", 5, 1000, 200, 800, a1Date},
		{"A2", "Plant", 0, 500, 600, 500, "01-04-2020"},
		{"A3", "Furniture", nil, 300, 100, 200, "10-10-2019"},
		{"A4", "Furniture", 0.5, 100, -50, 50, "01-01-2023"},
		{"A5", "IT", 3, 100, 0, 100, "garbage"},
	})
}

func previousRegister() *dataset.Dataset {
	return table(farHeaders, [][]interface{}{
		{"A2", "Plant", 0, 500, 500, 0, "01-04-2020"},
		{"A3", "Furniture", 5, 300, 50, 250, "2019-10-11"},
	})
}

func evaluationDate() time.Time {
	return time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
}

func TestFixedAssetCatalogue(t *testing.T) {
	in := Input{
		Current:  currentRegister("15-06-2024"),
		Previous: previousRegister(),
		Columns:  farMap(t),
		Options:  Options{EvaluationDate: evaluationDate()},
	}

	ev, err := NewEngine(FixedAsset()).Evaluate(in, nil)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	want := map[int][]int{
		1: {1, 4}, // NBV equals cost
		2: {1, 2}, // zero or blank life
		3: {1},    // 600 > 500; |-50| is not above 100
		4: {1, 3}, // numeric lives below one year
		5: {2},    // A3 moved by a day
		6: {3},    // A4 is new and dated before the FY
	}
	for id, rows := range want {
		if got := ev.Rows(id); !reflect.DeepEqual(got, rows) {
			t.Errorf("rule %d rows = %v, want %v", id, got, rows)
		}
	}
}

func TestScenarioNewAssetFiscalYearWindow(t *testing.T) {
	engine := NewEngine(FixedAsset())

	tests := []struct {
		name    string
		a1Date  string
		flagged bool
	}{
		{"inside window", "15-06-2024", false},
		{"first day of window", "01-04-2024", false},
		{"last day of window", "31-03-2025", false},
		{"before window", "15-06-2023", true},
		{"after window", "01-04-2025", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{
				Current:  currentRegister(tt.a1Date),
				Previous: previousRegister(),
				Columns:  farMap(t),
				Options:  Options{EvaluationDate: evaluationDate()},
			}
			ev, err := engine.Evaluate(in, []int{6})
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}

			got := false
			for _, p := range ev.Rows(6) {
				if p == 0 {
					got = true
				}
			}
			if got != tt.flagged {
				t.Errorf("A1 flagged = %v, want %v", got, tt.flagged)
			}
		})
	}
}

func TestFiscalYearOverride(t *testing.T) {
	fy := dates.FiscalYearStarting(2022)
	in := Input{
		Current:  currentRegister("15-06-2024"),
		Previous: previousRegister(),
		Columns:  farMap(t),
		Options:  Options{EvaluationDate: evaluationDate(), FiscalYear: &fy},
	}

	ev, err := NewEngine(FixedAsset()).Evaluate(in, []int{6})
	if err != nil {
		t.Fatal(err)
	}
	// Against FY 2022-23, A1 (June 2024) is outside and A4 (Jan 2023) inside.
	if got := ev.Rows(6); !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("rule 6 rows = %v, want [0]", got)
	}
}

func TestPreviousPeriodRulesSkippedWithoutPrevious(t *testing.T) {
	in := Input{Current: currentRegister("15-06-2024"), Columns: farMap(t)}

	ev, err := NewEngine(FixedAsset()).Evaluate(in, nil)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	for _, id := range []int{5, 6} {
		o, _ := ev.Outcome(id)
		if !o.Skipped || o.Reason == "" {
			t.Errorf("rule %d = %+v, want skipped with a reason", id, o)
		}
	}
	if o, _ := ev.Outcome(1); o.Skipped {
		t.Error("rule 1 should run without a previous register")
	}
}
