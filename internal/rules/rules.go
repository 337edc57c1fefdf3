// =============================================================================
// Payroll Audit - Exception Rule Engine
// =============================================================================
//
// The engine runs a catalogue of numbered exception rules over a dataset.
// Each rule is a pure function of the input that returns the positions of
// the rows violating it. Rules are registered in an explicit table per
// domain (payroll, fixed assets) and addressed by small integer ids, so a
// caller can request "rules 1, 4 and 9" and get back exactly those results.
//
// EVALUATION PROCESS:
//   1. Validate the requested ids against the catalogue (unknown id = error)
//   2. For each rule, check that every logical field it needs resolves to a
//      physical column present in the dataset
//   3. Rules with a missing field are recorded as skipped, with the reason
//   4. The remaining rules run, sequentially or concurrently
//
// One unevaluable rule never aborts the run. The Evaluation says exactly
// which rules ran and which were skipped, and why.
//
// =============================================================================

package rules

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payroll-audit/internal/columnmap"
	"github.com/ginjaninja78/payroll-audit/internal/dataset"
	"github.com/ginjaninja78/payroll-audit/internal/dates"
)

// =============================================================================
// INPUT
// =============================================================================

// Options tunes rule behavior.
type Options struct {
	// NetPayTolerance is the largest |gross - deductions - net| that payroll
	// rule 10 accepts. Default: zero (exact match required).
	NetPayTolerance decimal.Decimal

	// EvaluationDate selects the current fiscal year for fixed asset rule 6.
	// Default: today.
	EvaluationDate time.Time

	// FiscalYear overrides the window derived from EvaluationDate.
	FiscalYear *dates.Window

	// Parallel evaluates rules concurrently.
	Parallel bool
}

// fiscalYear returns the window used by fixed asset rule 6.
func (o Options) fiscalYear() dates.Window {
	if o.FiscalYear != nil {
		return *o.FiscalYear
	}
	d := o.EvaluationDate
	if d.IsZero() {
		d = time.Now()
	}
	return dates.FiscalYear(d)
}

// Input is everything a rule may read.
type Input struct {
	// Current is the dataset under test.
	Current *dataset.Dataset

	// Previous is the prior-period dataset. Only fixed asset rules 5 and 6 use it.
	Previous *dataset.Dataset

	// Columns maps logical fields to physical headers for both datasets.
	Columns *columnmap.Map

	Options Options
}

// Columns holds the resolved physical header of each logical field a rule declared.
type Columns map[string]string

// =============================================================================
// RULES AND CATALOGUES
// =============================================================================

// Rule is one numbered exception check.
type Rule struct {
	// ID is the rule number within its domain.
	ID int

	// Description is the fixed text shown in the exception summary.
	Description string

	// Fields lists the logical fields the rule reads.
	Fields []string

	// NeedsPrevious marks rules comparing against the prior-period dataset.
	NeedsPrevious bool

	// Check returns the positions of violating rows of in.Current.
	Check func(in *Input, col Columns) []int
}

// Catalogue is the ordered rule table of one domain.
type Catalogue struct {
	domain columnmap.Domain
	rules  []Rule
	byID   map[int]int
}

// NewCatalogue builds a catalogue. It panics on a non-positive or repeated
// id, since catalogues are static tables.
func NewCatalogue(domain columnmap.Domain, rules ...Rule) *Catalogue {
	c := &Catalogue{domain: domain, byID: make(map[int]int, len(rules))}
	for _, r := range rules {
		if r.ID <= 0 {
			panic(fmt.Sprintf("rules: %s rule id %d must be positive", domain, r.ID))
		}
		if _, dup := c.byID[r.ID]; dup {
			panic(fmt.Sprintf("rules: %s rule %d registered twice", domain, r.ID))
		}
		c.byID[r.ID] = len(c.rules)
		c.rules = append(c.rules, r)
	}
	return c
}

// Domain returns the catalogue's domain.
func (c *Catalogue) Domain() columnmap.Domain { return c.domain }

// IDs returns the rule ids in registration order.
func (c *Catalogue) IDs() []int {
	ids := make([]int, len(c.rules))
	for i, r := range c.rules {
		ids[i] = r.ID
	}
	return ids
}

// Rule looks up a rule by id.
func (c *Catalogue) Rule(id int) (Rule, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Rule{}, false
	}
	return c.rules[i], true
}

// ForDomain returns the built-in catalogue of a domain.
func ForDomain(d columnmap.Domain) (*Catalogue, error) {
	switch d {
	case columnmap.Payroll:
		return Payroll(), nil
	case columnmap.FixedAsset:
		return FixedAsset(), nil
	default:
		return nil, fmt.Errorf("no rule catalogue for domain %q", d)
	}
}

// =============================================================================
// RESULTS
// =============================================================================

// Outcome is the result of one requested rule.
type Outcome struct {
	RuleID      int
	Description string

	// Rows are the violating row positions, duplicates removed, first-seen order.
	Rows []int

	// Skipped is set when the rule could not run; Rows is then empty.
	Skipped bool

	// MissingFields lists the logical fields that were unmapped or absent.
	MissingFields []string

	// Reason explains a skip in words.
	Reason string
}

// Count returns the number of violating rows.
func (o Outcome) Count() int { return len(o.Rows) }

// Evaluation is the result of one engine run.
type Evaluation struct {
	Domain   columnmap.Domain
	Outcomes []Outcome

	index map[int]int
}

// Outcome returns the outcome of a rule id.
func (e *Evaluation) Outcome(id int) (Outcome, bool) {
	i, ok := e.index[id]
	if !ok {
		return Outcome{}, false
	}
	return e.Outcomes[i], true
}

// Rows returns the violating positions for a rule id (nil if not requested or skipped).
func (e *Evaluation) Rows(id int) []int {
	o, _ := e.Outcome(id)
	return o.Rows
}

// Skipped returns the outcomes of rules that could not run.
func (e *Evaluation) Skipped() []Outcome {
	var out []Outcome
	for _, o := range e.Outcomes {
		if o.Skipped {
			out = append(out, o)
		}
	}
	return out
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine evaluates rules from one catalogue.
type Engine struct {
	catalogue *Catalogue
}

// NewEngine returns an engine over a catalogue.
func NewEngine(c *Catalogue) *Engine {
	return &Engine{catalogue: c}
}

// Evaluate runs the requested rules against the input.
//
// PARAMETERS:
//   - in: The dataset(s), column map and options.
//   - ids: Rule ids to run, in the order results should be reported.
//     Empty means every rule of the catalogue. Repeated ids are run once.
//
// RETURNS:
//   - The evaluation, one outcome per distinct requested id.
//   - An *UnknownRuleError if any id is not in the catalogue.
func (e *Engine) Evaluate(in Input, ids []int) (*Evaluation, error) {
	if in.Current == nil {
		return nil, fmt.Errorf("no dataset to evaluate")
	}
	if in.Columns == nil {
		return nil, fmt.Errorf("no column map supplied")
	}

	requested, err := e.resolveIDs(ids)
	if err != nil {
		return nil, err
	}

	ev := &Evaluation{
		Domain:   e.catalogue.domain,
		Outcomes: make([]Outcome, len(requested)),
		index:    make(map[int]int, len(requested)),
	}

	run := func(slot int, r Rule) {
		ev.Outcomes[slot] = evaluateRule(&in, r)
	}

	if in.Options.Parallel {
		var wg sync.WaitGroup
		for slot, r := range requested {
			wg.Add(1)
			go func(slot int, r Rule) {
				defer wg.Done()
				run(slot, r)
			}(slot, r)
		}
		wg.Wait()
	} else {
		for slot, r := range requested {
			run(slot, r)
		}
	}

	for slot, r := range requested {
		ev.index[r.ID] = slot
	}
	return ev, nil
}

func (e *Engine) resolveIDs(ids []int) ([]Rule, error) {
	if len(ids) == 0 {
		ids = e.catalogue.IDs()
	}

	seen := make(map[int]bool, len(ids))
	requested := make([]Rule, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		r, ok := e.catalogue.Rule(id)
		if !ok {
			return nil, &UnknownRuleError{Domain: e.catalogue.domain, ID: id, Known: e.catalogue.IDs()}
		}
		seen[id] = true
		requested = append(requested, r)
	}
	return requested, nil
}

// evaluateRule runs one rule after checking its fields.
func evaluateRule(in *Input, r Rule) Outcome {
	out := Outcome{RuleID: r.ID, Description: r.Description}

	if r.NeedsPrevious && in.Previous == nil {
		out.Skipped = true
		out.Reason = "previous-period dataset not supplied"
		return out
	}

	missing := in.Columns.Missing(in.Current, r.Fields...)
	if r.NeedsPrevious {
		for _, f := range in.Columns.Missing(in.Previous, r.Fields...) {
			if !contains(missing, f) {
				missing = append(missing, f)
			}
		}
	}
	if len(missing) > 0 {
		out.Skipped = true
		out.MissingFields = missing
		out.Reason = "missing field " + strings.Join(missing, ", ")
		return out
	}

	col := make(Columns, len(r.Fields))
	for _, f := range r.Fields {
		col[f], _ = in.Columns.Resolve(f)
	}

	out.Rows = dedupe(r.Check(in, col))
	return out
}

// dedupe removes repeated positions, keeping first-seen order.
func dedupe(rows []int) []int {
	seen := make(map[int]bool, len(rows))
	out := make([]int, 0, len(rows))
	for _, p := range rows {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
