// =============================================================================
// Payroll Audit - Fixed Asset Exception Rules
// =============================================================================
//
// Six checks over a fixed asset register. Rules 1-4 look at single rows of
// the current register. Rules 5 and 6 compare the current register against
// the previous period's register, joined on asset code.
//
// =============================================================================

package rules

import (
	"time"

	"github.com/ginjaninja78/payroll-audit/internal/aggregate"
	cm "github.com/ginjaninja78/payroll-audit/internal/columnmap"
	"github.com/ginjaninja78/payroll-audit/internal/dataset"
	"github.com/ginjaninja78/payroll-audit/internal/dates"
)

// FixedAsset returns the fixed asset rule catalogue.
func FixedAsset() *Catalogue {
	return NewCatalogue(cm.FixedAsset,
		Rule{
			ID:          1,
			Description: "Net book value should not be equal to original cost.",
			Fields:      []string{cm.NetBookValue, cm.OriginalCost},
			Check:       bookValueEqualsCost,
		},
		Rule{
			ID:          2,
			Description: "Useful life cannot be zero or blank.",
			Fields:      []string{cm.UsefulLife},
			Check:       usefulLifeZeroOrBlank,
		},
		Rule{
			ID:          3,
			Description: "Accumulated depreciation should not exceed original cost.",
			Fields:      []string{cm.AccumulatedDepreciation, cm.OriginalCost},
			Check:       depreciationExceedsCost,
		},
		Rule{
			ID:          4,
			Description: "Useful life should not be less than 1 year.",
			Fields:      []string{cm.UsefulLife},
			Check:       usefulLifeBelowOneYear,
		},
		Rule{
			ID:            5,
			Description:   "Capitalization date mismatch with previous year",
			Fields:        []string{cm.AssetCode, cm.CapitalizationDate},
			NeedsPrevious: true,
			Check:         capitalizationDateChanged,
		},
		Rule{
			ID:            6,
			Description:   "Capitalization date must lie within current FY",
			Fields:        []string{cm.AssetCode, cm.CapitalizationDate},
			NeedsPrevious: true,
			Check:         newAssetOutsideFiscalYear,
		},
	)
}

func bookValueEqualsCost(in *Input, col Columns) []int {
	return rowsWhere(in.Current, func(r dataset.Row) bool {
		nbv, ok1 := decimalOf(r.Get(col[cm.NetBookValue]))
		cost, ok2 := decimalOf(r.Get(col[cm.OriginalCost]))
		return ok1 && ok2 && nbv.Equal(cost)
	})
}

// usefulLifeZeroOrBlank flags useful lives that are blank, zero, or not a
// number at all.
func usefulLifeZeroOrBlank(in *Input, col Columns) []int {
	return rowsWhere(in.Current, func(r dataset.Row) bool {
		life, ok := r.Get(col[cm.UsefulLife]).Float()
		return !ok || life == 0
	})
}

func depreciationExceedsCost(in *Input, col Columns) []int {
	return rowsWhere(in.Current, func(r dataset.Row) bool {
		dep, ok1 := decimalOf(r.Get(col[cm.AccumulatedDepreciation]))
		cost, ok2 := decimalOf(r.Get(col[cm.OriginalCost]))
		return ok1 && ok2 && dep.Abs().GreaterThan(cost)
	})
}

// usefulLifeBelowOneYear only looks at numeric lives; rule 2 covers the rest.
func usefulLifeBelowOneYear(in *Input, col Columns) []int {
	return rowsWhere(in.Current, func(r dataset.Row) bool {
		life, ok := r.Get(col[cm.UsefulLife]).Float()
		return ok && life < 1
	})
}

// capitalizationDates returns, per asset code, the first parseable
// capitalization date in dataset order.
func capitalizationDates(ds *dataset.Dataset, col Columns) map[string]time.Time {
	out := make(map[string]time.Time)
	for i := 0; i < ds.Len(); i++ {
		code, ok := aggregate.ValueKey(ds.Value(i, col[cm.AssetCode]))
		if !ok {
			continue
		}
		if _, seen := out[code]; seen {
			continue
		}
		if d, ok := dates.Parse(ds.Value(i, col[cm.CapitalizationDate])); ok {
			out[code] = d
		}
	}
	return out
}

// capitalizationDateChanged flags every current row of an asset whose
// capitalization date differs between the two periods. Assets without a
// parseable date in either period are not compared.
func capitalizationDateChanged(in *Input, col Columns) []int {
	cur := capitalizationDates(in.Current, col)
	prev := capitalizationDates(in.Previous, col)

	return aggregate.FlagGroups(in.Current, col[cm.AssetCode], func(code string) bool {
		c, ok1 := cur[code]
		p, ok2 := prev[code]
		return ok1 && ok2 && !c.Equal(p)
	})
}

// newAssetOutsideFiscalYear flags assets absent from the previous register
// whose capitalization date falls outside the current fiscal year.
func newAssetOutsideFiscalYear(in *Input, col Columns) []int {
	fy := in.Options.fiscalYear()

	previous := make(map[string]bool)
	for i := 0; i < in.Previous.Len(); i++ {
		if code, ok := aggregate.ValueKey(in.Previous.Value(i, col[cm.AssetCode])); ok {
			previous[code] = true
		}
	}

	return rowsWhere(in.Current, func(r dataset.Row) bool {
		code, ok := aggregate.ValueKey(r.Get(col[cm.AssetCode]))
		if !ok || previous[code] {
			return false
		}
		d, ok := dates.Parse(r.Get(col[cm.CapitalizationDate]))
		return ok && !fy.Contains(d)
	})
}
