// =============================================================================
// Payroll Audit - Group Aggregation
// =============================================================================
//
// Most exception rules ask a question per entity ("does this employee code
// carry more than one name?") and then flag every row of the entities that
// answer yes. This package provides the grouping and the per-group
// statistics those rules share.
//
// GROUPING:
//   - Rows are grouped by the canonical key of one column (Value.Key)
//   - Rows whose key is blank belong to no group
//   - Groups are kept in first-seen order
//
// =============================================================================

package aggregate

import (
	"sort"

	"github.com/ginjaninja78/payroll-audit/internal/dataset"
)

// KeyFunc derives a comparison key from a value. ok=false excludes the value.
type KeyFunc func(v dataset.Value) (key string, ok bool)

// ValueKey is the default KeyFunc: the value's canonical key, blanks excluded.
func ValueKey(v dataset.Value) (string, bool) {
	k := v.Key()
	return k, k != ""
}

// Groups holds row positions grouped by key.
type Groups struct {
	keys    []string
	members map[string][]int
}

// GroupBy groups the rows of ds by the key of column.
func GroupBy(ds *dataset.Dataset, column string) *Groups {
	return GroupByFunc(ds, column, ValueKey)
}

// GroupByFunc groups the rows of ds by keyFn applied to column.
func GroupByFunc(ds *dataset.Dataset, column string, keyFn KeyFunc) *Groups {
	g := &Groups{members: make(map[string][]int)}
	for i := 0; i < ds.Len(); i++ {
		key, ok := keyFn(ds.Value(i, column))
		if !ok {
			continue
		}
		if _, exists := g.members[key]; !exists {
			g.keys = append(g.keys, key)
		}
		g.members[key] = append(g.members[key], i)
	}
	return g
}

// Keys returns the group keys in first-seen order.
func (g *Groups) Keys() []string { return g.keys }

// Positions returns the row positions of a group in dataset order.
func (g *Groups) Positions(key string) []int { return g.members[key] }

// Len returns the number of groups.
func (g *Groups) Len() int { return len(g.keys) }

// Select returns the keys of groups satisfying pred, in first-seen order.
func (g *Groups) Select(pred func(key string, positions []int) bool) []string {
	var out []string
	for _, k := range g.keys {
		if pred(k, g.members[k]) {
			out = append(out, k)
		}
	}
	return out
}

// Rows returns the positions of every row in the given groups, in dataset order.
func (g *Groups) Rows(keys []string) []int {
	seen := make(map[string]bool, len(keys))
	var rows []int
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		rows = append(rows, g.members[k]...)
	}
	sort.Ints(rows)
	return rows
}

// =============================================================================
// PER-GROUP STATISTICS
// =============================================================================

// DistinctCount returns, per group key of keyColumn, the number of distinct
// non-blank values in valueColumn.
func DistinctCount(ds *dataset.Dataset, keyColumn, valueColumn string) map[string]int {
	return DistinctCountFunc(ds, keyColumn, valueColumn, ValueKey)
}

// DistinctCountFunc is DistinctCount with a custom value key, used when
// equal values may be written differently (dates as text and as serials).
func DistinctCountFunc(ds *dataset.Dataset, keyColumn, valueColumn string, valueKey KeyFunc) map[string]int {
	groups := GroupBy(ds, keyColumn)
	counts := make(map[string]int, groups.Len())

	for _, key := range groups.Keys() {
		seen := make(map[string]struct{})
		for _, p := range groups.Positions(key) {
			if vk, ok := valueKey(ds.Value(p, valueColumn)); ok {
				seen[vk] = struct{}{}
			}
		}
		counts[key] = len(seen)
	}
	return counts
}

// MixedZeroNonZero reports, per group key, whether valueColumn holds both a
// value greater than zero and a value equal to zero within the group.
// Non-numeric values are ignored.
func MixedZeroNonZero(ds *dataset.Dataset, keyColumn, valueColumn string) map[string]bool {
	groups := GroupBy(ds, keyColumn)
	mixed := make(map[string]bool, groups.Len())

	for _, key := range groups.Keys() {
		var positive, zero bool
		for _, p := range groups.Positions(key) {
			f, ok := ds.Value(p, valueColumn).Float()
			if !ok {
				continue
			}
			if f > 0 {
				positive = true
			} else if f == 0 {
				zero = true
			}
		}
		mixed[key] = positive && zero
	}
	return mixed
}

// FlagGroups returns every row position of the groups of keyColumn for which
// flagged reports true, in dataset order.
func FlagGroups(ds *dataset.Dataset, keyColumn string, flagged func(key string) bool) []int {
	groups := GroupBy(ds, keyColumn)
	return groups.Rows(groups.Select(func(key string, _ []int) bool { return flagged(key) }))
}
