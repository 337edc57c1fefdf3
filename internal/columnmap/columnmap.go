// =============================================================================
// Payroll Audit - Column Maps
// =============================================================================
//
// Client registers never agree on column headers: one pay register says
// "Emp Code", another "Employee No.", a third "EMPID". A column map binds
// the logical field names the audit rules use to the physical headers of
// one particular input file.
//
// TWO FORMS:
//   - Single map: one object, logical field -> physical header. Used for
//     exception testing of a pay register or fixed asset register.
//
//       {"column_map": {"employee_code": "Emp Code", "net_pay": "Net Salary", ...}}
//
//   - Pairwise map: a list of pairs binding a column of one source to the
//     matching column of another. Used to compare a CTC report against an
//     actuarial data file. The first pair is the record identifier.
//
//       {"column_map": [{"CTC": "Emp No", "Actuary": "Employee ID"}, ...]}
//
// A single map must name every logical field of its domain. An entry may be
// an empty string, which marks the field as "not present in this file":
// rules needing that field are skipped instead of failing.
//
// =============================================================================

package columnmap

import (
	"fmt"
	"sort"
	"strings"
)

// Domain identifies which logical field catalogue a map belongs to.
type Domain string

const (
	// Payroll is the pay register domain.
	Payroll Domain = "payroll"

	// FixedAsset is the fixed asset register domain.
	FixedAsset Domain = "fixed_asset"
)

// Logical payroll fields.
const (
	EmployeeCode    = "employee_code"
	EmployeeName    = "employee_name"
	Designation     = "designation"
	PayMonth        = "pay_month"
	DateOfJoining   = "date_of_joining"
	DateOfLeaving   = "date_of_leaving"
	PAN             = "pan"
	GrossPay        = "gross_pay"
	NetPay          = "net_pay"
	TotalDeductions = "total_deductions"
	PF              = "pf"
	ESI             = "esi"
)

// Logical fixed asset fields.
const (
	AssetCode               = "asset_code"
	AssetCategory           = "asset_category"
	UsefulLife              = "useful_life"
	OriginalCost            = "original_cost"
	AccumulatedDepreciation = "accumulated_depreciation"
	NetBookValue            = "net_book_value"
	CapitalizationDate      = "capitalization_date"
)

var catalogues = map[Domain][]string{
	Payroll: {
		EmployeeCode, EmployeeName, Designation, PayMonth, DateOfJoining, DateOfLeaving,
		PAN, GrossPay, NetPay, TotalDeductions, PF, ESI,
	},
	FixedAsset: {
		AssetCode, AssetCategory, UsefulLife, OriginalCost,
		AccumulatedDepreciation, NetBookValue, CapitalizationDate,
	},
}

// Fields returns the logical field catalogue of a domain in canonical order.
func Fields(d Domain) []string {
	fields := catalogues[d]
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// ParseDomain accepts "payroll", "fixed_asset", "fixed-asset" or "far".
func ParseDomain(s string) (Domain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "payroll", "pay", "pay_register":
		return Payroll, nil
	case "fixed_asset", "fixed-asset", "fixed_assets", "fixed-assets", "far":
		return FixedAsset, nil
	default:
		return "", fmt.Errorf("unknown domain %q", s)
	}
}

// =============================================================================
// SINGLE MAP
// =============================================================================

// ColumnSet is anything that can report whether a physical column exists.
// *dataset.Dataset satisfies it.
type ColumnSet interface {
	Has(column string) bool
}

// Map binds logical fields of one domain to physical headers.
type Map struct {
	domain  Domain
	entries map[string]string
}

// New validates entries against the domain catalogue.
//
// RETURNS:
//   - The map.
//   - A *MissingFieldError if any catalogue field has no entry at all.
//     Entries for names outside the catalogue are kept and ignored.
func New(domain Domain, entries map[string]string) (*Map, error) {
	fields, ok := catalogues[domain]
	if !ok {
		return nil, fmt.Errorf("unknown domain %q", domain)
	}

	var missing []string
	for _, f := range fields {
		if _, ok := entries[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldError{Domain: domain, Fields: missing}
	}

	copied := make(map[string]string, len(entries))
	for k, v := range entries {
		copied[k] = strings.TrimSpace(v)
	}
	return &Map{domain: domain, entries: copied}, nil
}

// FromHeaders builds a map from physical headers listed in catalogue order,
// as an operator would type them one per field.
func FromHeaders(domain Domain, headers []string) (*Map, error) {
	fields, ok := catalogues[domain]
	if !ok {
		return nil, fmt.Errorf("unknown domain %q", domain)
	}
	if len(headers) != len(fields) {
		return nil, fmt.Errorf("%s map needs %d headers, got %d", domain, len(fields), len(headers))
	}

	entries := make(map[string]string, len(fields))
	for i, f := range fields {
		entries[f] = headers[i]
	}
	return New(domain, entries)
}

// Domain returns the map's domain.
func (m *Map) Domain() Domain { return m.domain }

// Resolve returns the physical header bound to a logical field.
// ok is false when the field is unmapped or mapped to an empty header.
func (m *Map) Resolve(logical string) (physical string, ok bool) {
	physical = m.entries[logical]
	return physical, physical != ""
}

// HasPhysical reports whether the field is mapped and its header exists in cols.
func (m *Map) HasPhysical(cols ColumnSet, logical string) bool {
	physical, ok := m.Resolve(logical)
	return ok && cols != nil && cols.Has(physical)
}

// Missing returns the fields among logical that are unmapped or absent from cols.
func (m *Map) Missing(cols ColumnSet, logical ...string) []string {
	var missing []string
	for _, f := range logical {
		if !m.HasPhysical(cols, f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// =============================================================================
// PAIRWISE MAP
// =============================================================================

// Pair binds a column of the left source to a column of the right source.
type Pair struct {
	Left  string
	Right string
}

// PairMap is an ordered list of column pairs. The first pair is the
// record identifier used to align rows.
type PairMap struct {
	LeftLabel  string
	RightLabel string
	Pairs      []Pair
}

// NewPairMap builds a pairwise map from decoded pair objects, each of which
// must carry a non-empty value under both labels.
func NewPairMap(leftLabel, rightLabel string, raw []map[string]string) (*PairMap, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("pairwise column map is empty")
	}

	pm := &PairMap{LeftLabel: leftLabel, RightLabel: rightLabel, Pairs: make([]Pair, 0, len(raw))}
	for i, entry := range raw {
		left := strings.TrimSpace(entry[leftLabel])
		right := strings.TrimSpace(entry[rightLabel])
		if left == "" || right == "" {
			return nil, fmt.Errorf("pair %d must name both %q and %q columns, got keys %v", i+1, leftLabel, rightLabel, sortedKeys(entry))
		}
		pm.Pairs = append(pm.Pairs, Pair{Left: left, Right: right})
	}
	return pm, nil
}

// ID returns the identifier pair.
func (p *PairMap) ID() Pair { return p.Pairs[0] }

// Values returns the non-identifier pairs.
func (p *PairMap) Values() []Pair { return p.Pairs[1:] }

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
