package rules

import (
	"fmt"

	"github.com/ginjaninja78/payroll-audit/internal/columnmap"
)

// UnknownRuleError reports a requested rule id that the catalogue does not define.
type UnknownRuleError struct {
	Domain columnmap.Domain
	ID     int
	Known  []int
}

func (e *UnknownRuleError) Error() string {
	return fmt.Sprintf("unknown %s rule %d (known rules: %v)", e.Domain, e.ID, e.Known)
}
