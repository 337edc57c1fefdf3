// =============================================================================
// Payroll Audit - Trial Balance Ledgers
// =============================================================================
//
// PF and salary analytics start from the client's trial balance, exported
// as a JSON document with one entry per ledger:
//
//	{
//	  "data": [
//	    {"ledger_name": "Salaries", "opening_balance": 1000, "closing_balance": 1200,
//	     "fs_sub_line_id": 20031, "note_line_id": 30152},
//	    ...
//	  ]
//	}
//
// Ledgers are classified by financial-statement sub-line and note line ids;
// the analytics pick their ledgers by those ids.
//
// =============================================================================

package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// Default classification ids used by the PF and salary procedures.
const (
	// PFSubLineID classifies employee benefit ledgers that include PF.
	PFSubLineID = 20031

	// SalaryNoteLineID classifies the "Salaries and wages" ledgers.
	SalaryNoteLineID = 30152

	// CWIPSubLineID classifies capital work in progress ledgers.
	CWIPSubLineID = 20015
)

// Entry is one trial balance ledger.
type Entry struct {
	Name           string          `json:"ledger_name"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	FSSubLineID    int             `json:"fs_sub_line_id"`
	NoteLineID     int             `json:"note_line_id"`
}

// Load reads a trial balance document.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trial balance: %w", err)
	}
	entries, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse trial balance %s: %w", path, err)
	}
	return entries, nil
}

// Decode parses a trial balance document. Both {"data": [...]} and a bare
// list are accepted.
func Decode(data []byte) ([]Entry, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var entries []Entry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	var doc struct {
		Data []Entry `json:"data"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Data, nil
}

// BySubLine returns the entries with the given fs_sub_line_id, in order.
func BySubLine(entries []Entry, id int) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.FSSubLineID == id {
			out = append(out, e)
		}
	}
	return out
}

// ByNoteLine returns the entries with the given note_line_id, in order.
func ByNoteLine(entries []Entry, id int) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.NoteLineID == id {
			out = append(out, e)
		}
	}
	return out
}

// Pick returns the entries at the given 1-based positions. Positions out
// of range are ignored.
func Pick(entries []Entry, positions []int) []Entry {
	var out []Entry
	for _, p := range positions {
		if p > 0 && p <= len(entries) {
			out = append(out, entries[p-1])
		}
	}
	return out
}

// Names returns the ledger names of entries.
func Names(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// TotalClosing sums closing balances.
func TotalClosing(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.ClosingBalance)
	}
	return total
}

// TotalOpening sums opening balances.
func TotalOpening(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.OpeningBalance)
	}
	return total
}
