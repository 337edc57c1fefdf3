// =============================================================================
// Payroll Audit - Headcount Reconciliation
// =============================================================================
//
// The headcount roll-forward rebuilds the fiscal year's month-end headcount
// from the opening figure and the joiner and leaver lists:
//
//   closing(month) = opening(month) + joiners(month) - leavers(month)
//   opening(next)  = closing(month)
//
// The year-end closing is then tested against the CTC report row count, and
// the monthly closings feed the weighted average headcounts used by the
// salary analytics.
//
// WEIGHTING:
//   Quarterly: the three month-end closings weighted 3, 2, 1 (total 6)
//   Annual:    the twelve month-end closings weighted 12 down to 1 (total 78)
//
// Weighted figures are whole numbers; averages are rounded to 2 places.
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

// Test reconciliation labels.
const (
	ParticularsPerHeadcount = "As per Above Headcount"
	ParticularsPerCTC       = "As per CTC Report"
	ParticularsDifference   = "Difference"
	ParticularsUserRows     = "--User added rows--"
	ParticularsNet          = "Net Difference"
)

// PayEntry is the gross pay of one pay register row, keyed by pay month.
type PayEntry struct {
	Month time.Time
	Gross decimal.Decimal
}

// HeadcountInput holds everything the roll-forward needs.
type HeadcountInput struct {
	// FiscalYear bounds the roll-forward. One row is produced per month.
	FiscalYear dates.Window

	// Opening is the headcount on the first day of the fiscal year.
	Opening int

	// Joiners are the dates of joining from the additions list.
	Joiners []time.Time

	// Leavers are the dates of leaving from the deletions list.
	Leavers []time.Time

	// CTCCount is the number of employees in the year-end CTC report.
	CTCCount int

	// UserAdjustments are reconciling rows entered by the auditor.
	UserAdjustments int

	// Pay is the pay register gross, used for average pay per quarter.
	Pay []PayEntry
}

// MonthRow is one month of the roll-forward.
type MonthRow struct {
	Month   string `json:"Month"`
	Opening int    `json:"Opening"`
	Joiners int    `json:"Joiners"`
	Leavers int    `json:"Leavers"`
	Closing int    `json:"Closing"`
}

// Particular is one line of a count reconciliation.
type Particular struct {
	Particulars string `json:"Particulars"`
	Employees   int    `json:"Employees"`
}

// WeightedAverage is a weighted average headcount over a period.
type WeightedAverage struct {
	WeightedFigure  int             `json:"Weighted Figure"`
	TotalWeight     int             `json:"Total Weight"`
	WeightedAverage decimal.Decimal `json:"Weighted Average"`
}

// QuarterPay is the average gross pay of one quarter.
type QuarterPay struct {
	GrossPay                 int64 `json:"Gross Pay"`
	WeightedAverageHeadcount int64 `json:"Weighted Average Headcount"`
	AveragePay               int64 `json:"Average Pay"`
}

// HeadcountReport is the complete headcount reconciliation.
type HeadcountReport struct {
	Months             []MonthRow                 `json:"Headcount_Reconciliation"`
	TestReconciliation []Particular               `json:"Test_Reconciliation"`
	Quarterly          map[string]WeightedAverage `json:"Quarterly_Weighted_Average_Headcount"`
	Annual             map[string]WeightedAverage `json:"Annual_Weighted_Average_Headcount"`
	GrossPay           map[string]QuarterPay      `json:"Average_Gross_Pay_Quarterly"`

	// Closing is the headcount at the end of the fiscal year.
	Closing int `json:"-"`

	// QuarterOrder lists the quarter labels in fiscal order.
	QuarterOrder []string `json:"-"`

	// AnnualLabel is the key of the single Annual entry, e.g. "FY24-25".
	AnnualLabel string `json:"-"`
}

// NetDifference is the year-end closing less the CTC count, net of user rows.
func (r *HeadcountReport) NetDifference() int {
	if len(r.TestReconciliation) == 0 {
		return 0
	}
	return r.TestReconciliation[len(r.TestReconciliation)-1].Employees
}

// ReconcileHeadcount builds the roll-forward, the test reconciliation, the
// weighted averages and the quarterly average pay.
//
// PARAMETERS:
//   - in: The headcount inputs. Dates outside the fiscal year are ignored.
//
// RETURNS:
//   - The report.
//   - An error if the fiscal year spans no month.
//
// EXAMPLE:
//
//	report, err := analytics.ReconcileHeadcount(analytics.HeadcountInput{
//	    FiscalYear: dates.FiscalYearStarting(2024),
//	    Opening:    2000,
//	    Joiners:    joiners,
//	    Leavers:    leavers,
//	    CTCCount:   ctc.CountNonEmpty(),
//	})
func ReconcileHeadcount(in HeadcountInput) (*HeadcountReport, error) {
	months := in.FiscalYear.Months()
	if len(months) == 0 {
		return nil, fmt.Errorf("fiscal year %s contains no month", in.FiscalYear)
	}

	joiners := countByMonth(in.Joiners)
	leavers := countByMonth(in.Leavers)

	report := &HeadcountReport{}
	closings := make([]int, len(months))
	opening := in.Opening
	for i, m := range months {
		idx := dates.MonthIndex(m)
		row := MonthRow{
			Month:   dates.MonthLabel(m),
			Opening: opening,
			Joiners: joiners[idx],
			Leavers: leavers[idx],
		}
		row.Closing = row.Opening + row.Joiners - row.Leavers
		report.Months = append(report.Months, row)
		closings[i] = row.Closing
		opening = row.Closing
	}
	report.Closing = opening

	report.TestReconciliation = CountReconciliation(
		ParticularsPerHeadcount, report.Closing,
		ParticularsPerCTC, in.CTCCount,
		in.UserAdjustments,
	)

	report.Quarterly = make(map[string]WeightedAverage)
	report.GrossPay = make(map[string]QuarterPay)
	gross := grossByMonth(in.Pay)
	for q := 0; q*3 < len(months); q++ {
		end := min(q*3+3, len(months))
		label := fmt.Sprintf("Q%d", q+1)

		avg := Weighted(closings[q*3:end], []int{3, 2, 1})
		report.Quarterly[label] = avg
		report.QuarterOrder = append(report.QuarterOrder, label)

		quarterGross := decimal.Zero
		for _, m := range months[q*3 : end] {
			quarterGross = quarterGross.Add(gross[dates.MonthIndex(m)])
		}
		report.GrossPay[label] = averagePay(quarterGross, avg.WeightedAverage)
	}

	weights := make([]int, len(months))
	for i := range weights {
		weights[i] = len(months) - i
	}
	report.AnnualLabel = fiscalLabel(in.FiscalYear)
	report.Annual = map[string]WeightedAverage{
		report.AnnualLabel: Weighted(closings, weights),
	}

	return report, nil
}

// Weighted computes a weighted average of values. Weights beyond the number
// of values are ignored, so a short final quarter is weighted 3, 2.
func Weighted(values, weights []int) WeightedAverage {
	var figure, total int
	for i, v := range values {
		if i >= len(weights) {
			break
		}
		figure += v * weights[i]
		total += weights[i]
	}

	avg := decimal.Zero
	if total != 0 {
		avg = decimal.NewFromInt(int64(figure)).Div(decimal.NewFromInt(int64(total))).Round(2)
	}
	return WeightedAverage{WeightedFigure: figure, TotalWeight: total, WeightedAverage: avg}
}

// CountReconciliation lays out a two-source count comparison the way the
// working papers present it: both counts, their difference, user rows and
// the net difference.
func CountReconciliation(leftLabel string, left int, rightLabel string, right int, userRows int) []Particular {
	diff := left - right
	return []Particular{
		{Particulars: leftLabel, Employees: left},
		{Particulars: rightLabel, Employees: right},
		{Particulars: ParticularsDifference, Employees: diff},
		{Particulars: ParticularsUserRows, Employees: userRows},
		{Particulars: ParticularsNet, Employees: diff - userRows},
	}
}

func averagePay(gross, avgHeadcount decimal.Decimal) QuarterPay {
	whole := gross.IntPart()
	qp := QuarterPay{
		GrossPay:                 whole,
		WeightedAverageHeadcount: avgHeadcount.IntPart(),
	}
	if !avgHeadcount.IsZero() {
		qp.AveragePay = decimal.NewFromInt(whole).Div(avgHeadcount).IntPart()
	}
	return qp
}

func countByMonth(days []time.Time) map[int]int {
	counts := make(map[int]int)
	for _, d := range days {
		if d.IsZero() {
			continue
		}
		counts[dates.MonthIndex(d)]++
	}
	return counts
}

func grossByMonth(entries []PayEntry) map[int]decimal.Decimal {
	sums := make(map[int]decimal.Decimal)
	for _, e := range entries {
		if e.Month.IsZero() {
			continue
		}
		idx := dates.MonthIndex(e.Month)
		sums[idx] = sums[idx].Add(e.Gross)
	}
	return sums
}

// fiscalLabel renders "FY24-25" for the April 2024 fiscal year.
func fiscalLabel(w dates.Window) string {
	return fmt.Sprintf("FY%02d-%02d", w.Start.Year()%100, w.End.Year()%100)
}

// =============================================================================
// DATASET EXTRACTION
// =============================================================================

// DatesIn returns the parseable dates of column, in row order. Blank and
// unparseable cells are skipped.
func DatesIn(ds *dataset.Dataset, column string) []time.Time {
	var out []time.Time
	for i := 0; i < ds.Len(); i++ {
		if d, ok := dates.Parse(ds.Value(i, column)); ok {
			out = append(out, d)
		}
	}
	return out
}

// PayEntries reads the pay month and gross pay of every pay register row.
// Rows without a parseable month are skipped; non-numeric gross counts as 0.
func PayEntries(ds *dataset.Dataset, monthColumn, grossColumn string) []PayEntry {
	var out []PayEntry
	for i := 0; i < ds.Len(); i++ {
		month, ok := dates.Parse(ds.Value(i, monthColumn))
		if !ok {
			continue
		}
		gross := decimal.Zero
		if f, ok := ds.Value(i, grossColumn).Float(); ok {
			gross = decimal.NewFromFloat(f)
		}
		out = append(out, PayEntry{Month: month, Gross: gross})
	}
	return out
}
