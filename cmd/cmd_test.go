package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestThresholdCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			"within",
			[]string{"reconcile", "threshold", "--recorded", "1200", "--expected", "1150", "--materiality", "50000"},
			[]string{`"threshold": "420"`, `"within_threshold": true`},
		},
		{
			"outside",
			[]string{"reconcile", "threshold", "--recorded", "1200", "--expected", "500", "--materiality", "50000", "--risk", "Higher"},
			[]string{`"threshold": "300"`, `"within_threshold": false`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("execute() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %s:\n%s", want, out)
				}
			}
		})
	}
}

func TestThresholdCommandUnknownPair(t *testing.T) {
	_, err := execute(t, "reconcile", "threshold", "--recorded", "1", "--expected", "1",
		"--risk", "Significant", "--control", "Not relying on controls")
	if err == nil || !strings.Contains(err.Error(), "no threshold defined") {
		t.Errorf("execute() error = %v, want unknown threshold", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Version:    "+Version) {
		t.Errorf("version output = %q", out)
	}
}

func TestRowCountThroughCompareFlags(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	ctc := write("ctc.csv", "Emp Code,Basic\n1,100\n2,200\n")
	act := write("actuary.csv", "ID,Salary\n2,150\n1,100\n")
	cm := write("pairs.json", `{"column_map": [{"CTC": "Emp Code", "Actuary": "ID"}, {"CTC": "Basic", "Actuary": "Salary"}]}`)
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "compare", "--ctc", ctc, "--actuary", act, "--column-map", cm,
		"--client", "ACME", "--output-dir", outDir, "--config", filepath.Join(dir, "config.yaml"))
	if err == nil {
		// The explicit --config does not exist, so loading must fail.
		t.Fatalf("execute() succeeded with a missing --config:\n%s", out)
	}

	cfg := write("config.yaml", "log_file: "+filepath.Join(dir, "logs", "auditor.log")+"\noutput_name_format: \"{client}_{job}\"\n")
	out, err = execute(t, "compare", "--ctc", ctc, "--actuary", act, "--column-map", cm,
		"--client", "ACME", "--output-dir", outDir, "--config", cfg)
	if err != nil {
		t.Fatalf("execute() error = %v\n%s", err, out)
	}
	for _, want := range []string{"✓ ACME/compare", "✓ ACME/row_count"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	for _, name := range []string{"ACME_compare.xlsx", "ACME_row_count.json"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestAnalyseCutoffCommand(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	add := write("additions.csv", "Put to use,Amount\n31/03/2025,25\n01/06/2024,75\n")
	del := write("deletions.csv", "Sold on,Amount\n01/06/2024,10\n")
	cfg := write("config.yaml", "log_file: "+filepath.Join(dir, "logs", "auditor.log")+"\noutput_name_format: \"{client}_{job}\"\n")
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "analyse", "cutoff", "--additions", add, "--deletions", del,
		"--addition-columns", "Put to use,Amount", "--deletion-columns", "Sold on,Amount",
		"--client", "ACME", "--fy-start", "2024", "--output-dir", outDir, "--config", cfg)
	if err != nil {
		t.Fatalf("execute() error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "✓ ACME/cutoff") {
		t.Errorf("output missing the cutoff job:\n%s", out)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "ACME_cutoff.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"Percentage in last 15 days": "25.00%"`) {
		t.Errorf("cutoff JSON = %s", data)
	}
}

func TestColumnPair(t *testing.T) {
	date, amount, err := columnPair("addition-columns", []string{"Put to use", "Amount"})
	if err != nil || date != "Put to use" || amount != "Amount" {
		t.Errorf("columnPair() = %q, %q, %v", date, amount, err)
	}
	if _, _, err := columnPair("addition-columns", []string{"Put to use"}); err == nil ||
		!strings.Contains(err.Error(), "--addition-columns takes a date column and an amount column") {
		t.Errorf("columnPair() error = %v, want a column pair error", err)
	}
}
