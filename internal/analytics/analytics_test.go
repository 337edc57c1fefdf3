package analytics

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payroll-audit/internal/columnmap"
	"github.com/ginjaninja78/payroll-audit/internal/dataset"
	"github.com/ginjaninja78/payroll-audit/internal/dates"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cell(v interface{}) dataset.Value {
	switch x := v.(type) {
	case nil:
		return dataset.Null()
	case string:
		return dataset.String(x)
	case int:
		return dataset.Number(float64(x))
	case float64:
		return dataset.Number(x)
	default:
		panic(fmt.Sprintf("unsupported fixture value %T", v))
	}
}

func table(headers []string, records [][]interface{}) *dataset.Dataset {
	rows := make([]dataset.Row, len(records))
	for i, rec := range records {
		row := make(dataset.Row, len(headers))
		for j, h := range headers {
			row[h] = cell(rec[j])
		}
		rows[i] = row
	}
	return dataset.MustNew("fixture", headers, rows)
}

// =============================================================================
// HEADCOUNT
// =============================================================================

func headcountInput() HeadcountInput {
	return HeadcountInput{
		FiscalYear: dates.FiscalYearStarting(2024),
		Opening:    100,
		Joiners: []time.Time{
			day(2024, time.April, 10),
			day(2024, time.April, 30),
			day(2024, time.June, 1),
			day(2025, time.March, 31),
			day(2023, time.December, 1), // before the fiscal year
			{},
		},
		Leavers: []time.Time{
			day(2024, time.May, 15),
			day(2024, time.December, 31),
		},
		CTCCount:        100,
		UserAdjustments: 1,
		Pay: []PayEntry{
			{Month: day(2024, time.April, 1), Gross: decimal.NewFromInt(61000)},
			{Month: day(2024, time.May, 1), Gross: decimal.RequireFromString("0.9")},
			{Month: day(2025, time.April, 1), Gross: decimal.NewFromInt(99999)},
		},
	}
}

func TestReconcileHeadcountRollForward(t *testing.T) {
	report, err := ReconcileHeadcount(headcountInput())
	if err != nil {
		t.Fatalf("ReconcileHeadcount() error = %v", err)
	}

	if len(report.Months) != 12 {
		t.Fatalf("len(Months) = %d, want 12", len(report.Months))
	}

	wantClosing := []int{102, 101, 102, 102, 102, 102, 102, 102, 101, 101, 101, 102}
	for i, row := range report.Months {
		if row.Closing != wantClosing[i] {
			t.Errorf("%s closing = %d, want %d", row.Month, row.Closing, wantClosing[i])
		}
		if row.Closing != row.Opening+row.Joiners-row.Leavers {
			t.Errorf("%s: closing %d != opening %d + joiners %d - leavers %d", row.Month, row.Closing, row.Opening, row.Joiners, row.Leavers)
		}
		if i > 0 && row.Opening != report.Months[i-1].Closing {
			t.Errorf("%s opening = %d, want previous closing %d", row.Month, row.Opening, report.Months[i-1].Closing)
		}
	}
	if report.Months[0].Month != "Apr-24" || report.Months[11].Month != "Mar-25" {
		t.Errorf("month labels = %s..%s", report.Months[0].Month, report.Months[11].Month)
	}
	if report.Closing != 102 {
		t.Errorf("Closing = %d, want 102", report.Closing)
	}
}

func TestReconcileHeadcountTestReconciliation(t *testing.T) {
	report, err := ReconcileHeadcount(headcountInput())
	if err != nil {
		t.Fatal(err)
	}

	want := []Particular{
		{ParticularsPerHeadcount, 102},
		{ParticularsPerCTC, 100},
		{ParticularsDifference, 2},
		{ParticularsUserRows, 1},
		{ParticularsNet, 1},
	}
	if !reflect.DeepEqual(report.TestReconciliation, want) {
		t.Errorf("TestReconciliation = %+v, want %+v", report.TestReconciliation, want)
	}
	if report.NetDifference() != 1 {
		t.Errorf("NetDifference() = %d, want 1", report.NetDifference())
	}
}

func TestReconcileHeadcountWeightedAverages(t *testing.T) {
	report, err := ReconcileHeadcount(headcountInput())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		quarter string
		figure  int
		avg     string
	}{
		// 102x3 + 101x2 + 102x1 = 610; 610 / 6 = 101.666...
		{"Q1", 610, "101.67"},
		{"Q2", 612, "102"},
		// 102x3 + 102x2 + 101x1 = 611
		{"Q3", 611, "101.83"},
		// 101x3 + 101x2 + 102x1 = 607
		{"Q4", 607, "101.17"},
	}
	for _, tt := range tests {
		got := report.Quarterly[tt.quarter]
		if got.WeightedFigure != tt.figure || got.TotalWeight != 6 {
			t.Errorf("%s figure/weight = %d/%d, want %d/6", tt.quarter, got.WeightedFigure, got.TotalWeight, tt.figure)
		}
		if !got.WeightedAverage.Equal(decimal.RequireFromString(tt.avg)) {
			t.Errorf("%s average = %s, want %s", tt.quarter, got.WeightedAverage, tt.avg)
		}
	}
	if !reflect.DeepEqual(report.QuarterOrder, []string{"Q1", "Q2", "Q3", "Q4"}) {
		t.Errorf("QuarterOrder = %v", report.QuarterOrder)
	}

	// 12x102 + 11x101 + ... + 1x102 = 7936; 7936 / 78 = 101.7435...
	annual, ok := report.Annual["FY24-25"]
	if !ok {
		t.Fatalf("Annual keys = %v, want FY24-25", report.Annual)
	}
	if annual.WeightedFigure != 7936 || annual.TotalWeight != 78 {
		t.Errorf("annual figure/weight = %d/%d, want 7936/78", annual.WeightedFigure, annual.TotalWeight)
	}
	if !annual.WeightedAverage.Equal(decimal.RequireFromString("101.74")) {
		t.Errorf("annual average = %s, want 101.74", annual.WeightedAverage)
	}
}

func TestReconcileHeadcountAveragePay(t *testing.T) {
	report, err := ReconcileHeadcount(headcountInput())
	if err != nil {
		t.Fatal(err)
	}

	// Q1 gross 61000.9 truncates to 61000; 61000 / 101.67 = 599.98...
	q1 := report.GrossPay["Q1"]
	want := QuarterPay{GrossPay: 61000, WeightedAverageHeadcount: 101, AveragePay: 599}
	if q1 != want {
		t.Errorf("Q1 = %+v, want %+v", q1, want)
	}

	if q2 := report.GrossPay["Q2"]; q2.GrossPay != 0 || q2.AveragePay != 0 {
		t.Errorf("Q2 = %+v, want zero pay", q2)
	}
}

func TestReconcileHeadcountZeroAverage(t *testing.T) {
	report, err := ReconcileHeadcount(HeadcountInput{
		FiscalYear: dates.FiscalYearStarting(2024),
		Pay:        []PayEntry{{Month: day(2024, time.April, 1), Gross: decimal.NewFromInt(500)}},
	})
	if err != nil {
		t.Fatal(err)
	}

	q1 := report.GrossPay["Q1"]
	if q1.GrossPay != 500 || q1.AveragePay != 0 {
		t.Errorf("Q1 = %+v, want gross 500 and average pay 0", q1)
	}
}

func TestWeightedShortPeriod(t *testing.T) {
	got := Weighted([]int{10, 20}, []int{3, 2, 1})
	if got.WeightedFigure != 70 || got.TotalWeight != 5 || !got.WeightedAverage.Equal(decimal.NewFromInt(14)) {
		t.Errorf("Weighted() = %+v, want 70/5/14", got)
	}

	if empty := Weighted(nil, []int{3, 2, 1}); !empty.WeightedAverage.IsZero() {
		t.Errorf("Weighted(nil) average = %s, want 0", empty.WeightedAverage)
	}
}

func TestDatesInAndPayEntries(t *testing.T) {
	ds := table([]string{"month", "gross", "doj"}, [][]interface{}{
		{"Apr-24", "1,000", "15/04/2024"},
		{"garbage", 50, nil},
		{"01-05-2024", "n/a", "2024-05-02"},
	})

	joiners := DatesIn(ds, "doj")
	if !reflect.DeepEqual(joiners, []time.Time{day(2024, time.April, 15), day(2024, time.May, 2)}) {
		t.Errorf("DatesIn() = %v", joiners)
	}

	pay := PayEntries(ds, "month", "gross")
	if len(pay) != 2 {
		t.Fatalf("PayEntries() len = %d, want 2", len(pay))
	}
	if !pay[0].Month.Equal(day(2024, time.April, 1)) || !pay[0].Gross.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("pay[0] = %+v", pay[0])
	}
	if !pay[1].Gross.IsZero() {
		t.Errorf("pay[1].Gross = %s, want 0", pay[1].Gross)
	}
}

// =============================================================================
// INCREMENT
// =============================================================================

func TestAnalyseIncrements(t *testing.T) {
	headers := []string{"Emp. No", "Emp. Name", "DOJ", "Department", "Monthly CTC", "Bonus"}
	cy := table(headers, [][]interface{}{
		{"E1", "Asha", "15/06/2020", "Finance", 100, 10},
		{"E2", "Ravi", nil, "Ops", 200, nil},
		{"E3", "New", nil, "Ops", 50, nil},
	})
	py := table(headers, [][]interface{}{
		{"E1", "Asha", "15/06/2020", "Finance", 100, nil},
		{"E2", "Ravi", nil, "Ops", 0, nil},
		{"E4", "Gone", nil, "Ops", 80, nil},
	})

	cols := IncrementColumns{
		EmployeeCode:  "Emp. No",
		EmployeeName:  "Emp. Name",
		DateOfJoining: "DOJ",
		Designation:   "Department",
		Sum:           []string{"Monthly CTC", "Bonus"},
	}
	got, err := AnalyseIncrements(cy, py, cols, 1)
	if err != nil {
		t.Fatalf("AnalyseIncrements() error = %v", err)
	}

	if len(got.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(got.Rows))
	}

	e1 := got.Rows[0]
	if e1.EmployeeCode != "E1" || e1.DateOfJoin != "15-06-2020" || e1.Designation != "Finance" {
		t.Errorf("E1 = %+v", e1)
	}
	if !e1.CurrentYear.Equal(decimal.NewFromInt(110)) || !e1.Increment.Equal(decimal.NewFromInt(10)) {
		t.Errorf("E1 CY/increment = %s/%s, want 110/10", e1.CurrentYear, e1.Increment)
	}
	if !e1.IncrementPct.Equal(decimal.RequireFromString("0.1")) {
		t.Errorf("E1 increment %% = %s, want 0.1", e1.IncrementPct)
	}

	// Zero prior-year pay gives a zero ratio rather than a division error.
	if !got.Rows[1].Ratio.IsZero() {
		t.Errorf("E2 ratio = %s, want 0", got.Rows[1].Ratio)
	}

	// Mean of 0.1 and 0 is 5%.
	want := IncrementSummary{
		PerAnalysis:         2,
		PerCTC:              3,
		UserReconciliations: 1,
		Difference:          -1,
		AverageIncrementPct: decimal.NewFromInt(5),
		NetDifference:       -2,
	}
	s := got.Summary
	if s.PerAnalysis != want.PerAnalysis || s.PerCTC != want.PerCTC || s.Difference != want.Difference ||
		s.NetDifference != want.NetDifference || !s.AverageIncrementPct.Equal(want.AverageIncrementPct) {
		t.Errorf("Summary = %+v, want %+v", s, want)
	}
}

func TestAnalyseIncrementsMissingColumn(t *testing.T) {
	cy := table([]string{"Emp. No", "Monthly CTC"}, nil)
	py := table([]string{"Emp. No"}, nil)

	_, err := AnalyseIncrements(cy, py, IncrementColumns{EmployeeCode: "Emp. No", Sum: []string{"Monthly CTC"}}, 0)
	if err == nil {
		t.Error("expected error for column missing from the prior year report")
	}

	if _, err := AnalyseIncrements(cy, cy, IncrementColumns{EmployeeCode: "Emp. No"}, 0); err == nil {
		t.Error("expected error when no columns are summed")
	}
}

// =============================================================================
// COMPARE
// =============================================================================

func comparisonFixture(t *testing.T) (*dataset.Dataset, *dataset.Dataset, *columnmap.PairMap) {
	t.Helper()
	ctc := table([]string{"Emp No", "Basic", "Name"}, [][]interface{}{
		{10, 500, "A"},
		{2, 300, "B"},
		{7, 100, "C"},
		{nil, 1, "Z"},
	})
	actuary := table([]string{"ID", "Salary", "Name2"}, [][]interface{}{
		{"2", 250, "B"},
		{10, 500, "A"},
		{99, 1, "Q"},
		{2, "n/a", "B"},
	})
	pm, err := columnmap.NewPairMap("CTC", "Actuary", []map[string]string{
		{"CTC": "Emp No", "Actuary": "ID"},
		{"CTC": "Basic", "Actuary": "Salary"},
		{"CTC": "Name", "Actuary": "Name2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return ctc, actuary, pm
}

func TestCompare(t *testing.T) {
	ctc, actuary, pm := comparisonFixture(t)

	got, err := Compare(ctc, actuary, pm)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	var ids []string
	for _, r := range got.Rows {
		ids = append(ids, r.ID)
	}
	// Common ids only, numeric order; id 2 occurs twice on the actuary side.
	if !reflect.DeepEqual(ids, []string{"2", "2", "10"}) {
		t.Fatalf("ids = %v, want [2 2 10]", ids)
	}

	if f, ok := got.Rows[0].Diffs[0].Float(); !ok || f != 50 {
		t.Errorf("row 0 basic diff = %v, want 50", got.Rows[0].Diffs[0])
	}
	if !got.Rows[0].Diffs[1].IsNull() {
		t.Errorf("text diff = %v, want null", got.Rows[0].Diffs[1])
	}
	if !got.Rows[1].Left[0].IsNull() || !got.Rows[1].Diffs[0].IsNull() {
		t.Errorf("surplus occurrence = %+v, want null left side and diff", got.Rows[1])
	}
	if f, _ := got.Rows[2].Diffs[0].Float(); f != 0 {
		t.Errorf("id 10 diff = %v, want 0", f)
	}
}

func TestComparisonLayout(t *testing.T) {
	ctc, actuary, pm := comparisonFixture(t)
	got, err := Compare(ctc, actuary, pm)
	if err != nil {
		t.Fatal(err)
	}

	wantHeaders := []string{
		"Emp No (CTC)", "Basic (CTC)", "Name (CTC)", "",
		"ID (Actuary)", "Salary (Actuary)", "Name2 (Actuary)", " ",
		"Diff Basic", "Diff Name",
	}
	if !reflect.DeepEqual(got.Headers(), wantHeaders) {
		t.Errorf("Headers() = %q", got.Headers())
	}
	for i, line := range got.Table() {
		if len(line) != len(wantHeaders) {
			t.Errorf("row %d has %d cells, want %d", i, len(line), len(wantHeaders))
		}
	}
}

func TestCompareMissingColumn(t *testing.T) {
	ctc, actuary, _ := comparisonFixture(t)
	pm, _ := columnmap.NewPairMap("CTC", "Actuary", []map[string]string{
		{"CTC": "Emp No", "Actuary": "Employee ID"},
	})
	if _, err := Compare(ctc, actuary, pm); err == nil {
		t.Error("expected error for unknown actuary column")
	}
}

func TestReconcileRowCounts(t *testing.T) {
	ctc, _, _ := comparisonFixture(t)
	actuary := table([]string{"ID", "Salary"}, [][]interface{}{
		{1, 100},
		{nil, nil},
		{2, " "},
	})

	got := ReconcileRowCounts(actuary, ctc, 1)
	if got.ActuaryRows != 2 || got.CTCRows != 4 || got.Difference != -2 || got.NetDifference != -3 {
		t.Errorf("ReconcileRowCounts() = %+v", got)
	}
	if !reflect.DeepEqual(got.ActuaryColumns, []string{"ID", "Salary"}) {
		t.Errorf("ActuaryColumns = %v", got.ActuaryColumns)
	}
}

// =============================================================================
// MONTH-ON-MONTH INCREMENT
// =============================================================================

func momRegister() *dataset.Dataset {
	return table([]string{"Code", "Name", "Month", "BASIC", "HRA"}, [][]interface{}{
		{"E2", "Ravi", "Oct-24", 100, 0},
		{"E1", "Asha", "Oct-24", 100, 50},
		{"E1", "Asha K", "Sep-24", 100, 50},
		{"E1", "Asha", "Nov-24", 120, 60},
		{"E1", "Asha", "Dec-24", 120, 60},
		{"E1", "Asha", "01-12-2024", 10, nil},
		{"E2", "Ravi", "Nov-24", 110, "n/a"},
	})
}

func TestAnalyseMoM(t *testing.T) {
	cols := MoMColumns{EmployeeCode: "Code", PayMonth: "Month", Display: []string{"Code", "Name"}, Sum: []string{"BASIC", "HRA"}}
	got, err := AnalyseMoM(momRegister(), cols, "Nov-24")
	if err != nil {
		t.Fatalf("AnalyseMoM() error = %v", err)
	}

	if !reflect.DeepEqual(got.PreMonths, []string{"Sep-24", "Oct-24"}) || !reflect.DeepEqual(got.PostMonths, []string{"Nov-24", "Dec-24"}) {
		t.Fatalf("months = %v | %v", got.PreMonths, got.PostMonths)
	}
	if !reflect.DeepEqual(got.Display, []string{"Name"}) {
		t.Errorf("Display = %v, want [Name]", got.Display)
	}
	if len(got.Rows) != 2 || got.Rows[0].EmployeeCode != "E1" || got.Rows[1].EmployeeCode != "E2" {
		t.Fatalf("Rows = %+v", got.Rows)
	}

	e1 := got.Rows[0]
	if e1.Display["Name"].Text() != "Asha" {
		t.Errorf("E1 name = %q, want the first row's", e1.Display["Name"].Text())
	}
	if !e1.Totals["Dec-24"].Equal(decimal.NewFromInt(190)) {
		t.Errorf("E1 Dec-24 = %s, want 190", e1.Totals["Dec-24"])
	}

	tests := []struct {
		name string
		got  MoMStats
		want MoMStats
	}{
		{"E1 pre", e1.Pre, MoMStats{Months: 2, Average: decimal.NewFromInt(150), StdDev: decimal.Zero, Variance: decimal.Zero}},
		// [180 190]: mean 185, population stddev 5, 5 / 185 = 0.027
		{"E1 post", e1.Post, MoMStats{Months: 2, Average: decimal.NewFromInt(185), StdDev: decimal.NewFromInt(5), Variance: decimal.RequireFromString("0.03")}},
		// E2 was not paid in Sep-24.
		{"E2 pre", got.Rows[1].Pre, MoMStats{Months: 1, Average: decimal.NewFromInt(100), StdDev: decimal.Zero, Variance: decimal.Zero}},
		{"E2 post", got.Rows[1].Post, MoMStats{Months: 1, Average: decimal.NewFromInt(110), StdDev: decimal.Zero, Variance: decimal.Zero}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, w := tt.got, tt.want
			if g.Months != w.Months || !g.Average.Equal(w.Average) || !g.StdDev.Equal(w.StdDev) || !g.Variance.Equal(w.Variance) {
				t.Errorf("stats = %+v, want %+v", g, w)
			}
		})
	}
}

func TestAnalyseMoMErrors(t *testing.T) {
	cols := MoMColumns{EmployeeCode: "Code", PayMonth: "Month", Sum: []string{"BASIC"}}
	tests := []struct {
		name  string
		cols  MoMColumns
		month string
		want  string
	}{
		{"month absent", cols, "Jan-25", "not found"},
		{"bad month", cols, "someday", "invalid increment month"},
		{"missing column", MoMColumns{EmployeeCode: "Code", PayMonth: "Month", Sum: []string{"DA"}}, "Nov-24", `column "DA"`},
		{"nothing to sum", MoMColumns{EmployeeCode: "Code", PayMonth: "Month"}, "Nov-24", "no columns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AnalyseMoM(momRegister(), tt.cols, tt.month)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("AnalyseMoM() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

// =============================================================================
// CUT-OFF
// =============================================================================

func TestAnalyseCutoff(t *testing.T) {
	additions := table([]string{"Date", "Amount"}, [][]interface{}{
		{"01/04/2024", 100},
		{"16/03/2025", 50},
		{"31/03/2025", 50},
		{"15/03/2025", 25},
		{"not a date", 1000},
		{"20/03/2025", "abc"},
	})
	deletions := table([]string{"Sold On", "Value"}, [][]interface{}{
		{"10/10/2024", 0},
	})

	got, err := AnalyseCutoff(additions, deletions,
		CutoffColumns{Date: "Date", Amount: "Amount"},
		CutoffColumns{Date: "Sold On", Amount: "Value"},
		dates.FiscalYearStarting(2024))
	if err != nil {
		t.Fatalf("AnalyseCutoff() error = %v", err)
	}

	if !got.Window.Start.Equal(day(2025, time.March, 16)) || !got.Window.End.Equal(day(2025, time.March, 31)) {
		t.Errorf("Window = %s, want 16 to 31 March 2025", got.Window)
	}
	add := got.Additions
	if !add.Total.Equal(decimal.NewFromInt(225)) || !add.LastDays.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Additions = %+v, want total 225, last days 100", add)
	}
	if add.Percentage != "44.44%" {
		t.Errorf("Additions.Percentage = %q, want 44.44%%", add.Percentage)
	}
	if got.Deletions.Percentage != "0.00%" || !got.Deletions.Total.IsZero() {
		t.Errorf("Deletions = %+v, want zero total", got.Deletions)
	}

	if _, err := AnalyseCutoff(additions, deletions,
		CutoffColumns{Date: "Date", Amount: "Amount"},
		CutoffColumns{Date: "Date", Amount: "Value"},
		dates.FiscalYearStarting(2024)); err == nil {
		t.Error("expected error for a missing deletions column")
	}
}

// =============================================================================
// CWIP
// =============================================================================

func TestBracket(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{-5, BracketUnderOneYear},
		{1, BracketUnderOneYear},
		{365, BracketUnderOneYear},
		{366, BracketOneToTwo},
		{730, BracketOneToTwo},
		{731, BracketTwoToThree},
		{1095, BracketTwoToThree},
		{1096, BracketOverThree},
	}
	for _, tt := range tests {
		if got := Bracket(tt.days); got != tt.want {
			t.Errorf("Bracket(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestAnalyseCWIP(t *testing.T) {
	register := table([]string{"Project", "Amount", "Start"}, [][]interface{}{
		{"P1", 100, "31/03/2025"},
		{"P2", 200, "01/04/2024"},
		{"P3", 300, "31/03/2024"},
		{"P4", 50, nil},
		{"P5", 400, "01/01/2021"},
	})

	got, err := AnalyseCWIP(register, CWIPColumns{Amount: "Amount", Date: "Start"},
		decimal.NewFromInt(1000), decimal.NewFromInt(20), day(2025, time.March, 31))
	if err != nil {
		t.Fatalf("AnalyseCWIP() error = %v", err)
	}

	wantReco := []int64{1050, 1000, 50, 20, 30}
	for i, p := range got.Reconciliation {
		if !p.Amount.Equal(decimal.NewFromInt(wantReco[i])) {
			t.Errorf("%s = %s, want %d", p.Particulars, p.Amount, wantReco[i])
		}
	}
	if !got.NetDifference.Equal(decimal.NewFromInt(30)) {
		t.Errorf("NetDifference = %s, want 30", got.NetDifference)
	}

	wantDays := []int{1, 365, 366, 0, 1551}
	for i, line := range got.Lines {
		if line.Days != wantDays[i] {
			t.Errorf("line %d age = %d days, want %d", i, line.Days, wantDays[i])
		}
	}
	if got.Lines[3].Bracket != "" {
		t.Errorf("undated line bracket = %q, want none", got.Lines[3].Bracket)
	}

	wantAgeing := []struct {
		lines  int
		amount int64
	}{{2, 300}, {1, 300}, {0, 0}, {1, 400}}
	for i, b := range got.Ageing {
		if b.Lines != wantAgeing[i].lines || !b.Amount.Equal(decimal.NewFromInt(wantAgeing[i].amount)) {
			t.Errorf("%s = %+v, want %d lines, %d", b.Bracket, b, wantAgeing[i].lines, wantAgeing[i].amount)
		}
	}
}
