package columnmap

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type columns map[string]bool

func (c columns) Has(name string) bool { return c[name] }

func payrollEntries() map[string]string {
	return map[string]string{
		EmployeeCode:    "Emp Code",
		EmployeeName:    "Name",
		Designation:     "Desig",
		PayMonth:        "Month",
		DateOfJoining:   "DOJ",
		DateOfLeaving:   "",
		PAN:             "PAN",
		GrossPay:        "Gross",
		NetPay:          "Net",
		TotalDeductions: "Deductions",
		PF:              "PF",
		ESI:             "ESI",
	}
}

func TestNewRequiresEveryCatalogueField(t *testing.T) {
	entries := payrollEntries()
	delete(entries, PAN)
	delete(entries, ESI)

	_, err := New(Payroll, entries)

	var mfe *MissingFieldError
	if !errors.As(err, &mfe) {
		t.Fatalf("New() error = %v, want *MissingFieldError", err)
	}
	if !reflect.DeepEqual(mfe.Fields, []string{PAN, ESI}) {
		t.Errorf("missing = %v, want [pan esi]", mfe.Fields)
	}
}

func TestResolveAndHasPhysical(t *testing.T) {
	m, err := New(Payroll, payrollEntries())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got, ok := m.Resolve(NetPay); !ok || got != "Net" {
		t.Errorf("Resolve(net_pay) = %q, %v", got, ok)
	}

	// Empty entries are legal but do not resolve.
	if _, ok := m.Resolve(DateOfLeaving); ok {
		t.Error("empty entry should not resolve")
	}

	cols := columns{"Emp Code": true, "Net": true}
	if !m.HasPhysical(cols, NetPay) {
		t.Error("HasPhysical(net_pay) = false, want true")
	}
	if m.HasPhysical(cols, GrossPay) {
		t.Error("HasPhysical(gross_pay) = true for absent column")
	}

	missing := m.Missing(cols, EmployeeCode, GrossPay, DateOfLeaving)
	if !reflect.DeepEqual(missing, []string{GrossPay, DateOfLeaving}) {
		t.Errorf("Missing() = %v", missing)
	}
}

func TestFromHeaders(t *testing.T) {
	m, err := FromHeaders(FixedAsset, []string{"Code", "Cat", "Life", "Cost", "AccDep", "NBV", "CapDate"})
	if err != nil {
		t.Fatalf("FromHeaders() error = %v", err)
	}
	if got, _ := m.Resolve(CapitalizationDate); got != "CapDate" {
		t.Errorf("Resolve(capitalization_date) = %q", got)
	}

	if _, err := FromHeaders(FixedAsset, []string{"Code"}); err == nil {
		t.Error("expected error for short header list")
	}
}

func TestDecodeJSONSingle(t *testing.T) {
	doc, err := DecodeJSON([]byte(`{"column_map": {"asset_code": "Code", "asset_category": "",
		"useful_life": "Life", "original_cost": "Cost", "accumulated_depreciation": "AD",
		"net_book_value": "NBV", "capitalization_date": "Date"}}`))
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if doc.IsPairwise() {
		t.Fatal("single object decoded as pairwise")
	}
	if _, err := doc.Map(FixedAsset); err != nil {
		t.Errorf("Map() error = %v", err)
	}
	if _, err := doc.PairMap("CTC", "Actuary"); !errors.Is(err, ErrNotPairwise) {
		t.Errorf("PairMap() error = %v, want ErrNotPairwise", err)
	}
}

func TestDecodeJSONPairwise(t *testing.T) {
	doc, err := DecodeJSON([]byte(`{"column_map": [
		{"CTC": "Emp No", "Actuary": "Employee ID"},
		{"CTC": "Basic", "Actuary": "Salary"}
	]}`))
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}

	pm, err := doc.PairMap("CTC", "Actuary")
	if err != nil {
		t.Fatalf("PairMap() error = %v", err)
	}
	if pm.ID() != (Pair{Left: "Emp No", Right: "Employee ID"}) {
		t.Errorf("ID() = %+v", pm.ID())
	}
	if len(pm.Values()) != 1 || pm.Values()[0].Right != "Salary" {
		t.Errorf("Values() = %+v", pm.Values())
	}

	if _, err := doc.Map(Payroll); !errors.Is(err, ErrNotSingle) {
		t.Errorf("Map() error = %v, want ErrNotSingle", err)
	}
}

func TestPairMapRejectsIncompletePair(t *testing.T) {
	_, err := NewPairMap("CTC", "Actuary", []map[string]string{{"CTC": "Emp No"}})
	if err == nil {
		t.Error("expected error for pair missing the Actuary column")
	}
}

func TestDecodeMissingColumnMap(t *testing.T) {
	if _, err := DecodeJSON([]byte(`{"other": 1}`)); !errors.Is(err, ErrNoColumnMap) {
		t.Errorf("DecodeJSON() error = %v, want ErrNoColumnMap", err)
	}
	if _, err := DecodeYAML([]byte("other: 1\n")); !errors.Is(err, ErrNoColumnMap) {
		t.Errorf("DecodeYAML() error = %v, want ErrNoColumnMap", err)
	}
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.yaml")
	content := "column_map:\n" +
		"  - CTC: Emp No\n" +
		"    Actuary: Employee ID\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if !doc.IsPairwise() {
		t.Error("YAML sequence should decode as pairwise")
	}
}

func TestParseDomain(t *testing.T) {
	for _, in := range []string{"far", "Fixed-Assets", "fixed_asset"} {
		if d, err := ParseDomain(in); err != nil || d != FixedAsset {
			t.Errorf("ParseDomain(%q) = %v, %v", in, d, err)
		}
	}
	if _, err := ParseDomain("inventory"); err == nil {
		t.Error("expected error for unknown domain")
	}
}
