package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/payroll-audit/internal/reconcile"
)

const engagementYAML = `
client_name: Acme Industries
client_code: ACME
fiscal_year_start: 2024
risk_assessment: higher
control_reliance: Relying on controls
materiality: 250000
jobs:
  - type: payroll_exceptions
    column_map: maps/payroll.json
    rules: [1, 4, 10]
    sources:
      register: {path: inputs/register.xlsx, sheet: Consol AIC}
  - name: gratuity
    type: compare
    column_map: /abs/actuary.yaml
    sources:
      ctc: {path: inputs/ctc.xlsx}
      actuary: {path: inputs/actuary.xlsx, header_row: 2}
  - type: pf
    trial_balance: tb.json
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMainConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "max_concurrency: 2\n")

	cfg, err := LoadMainConfig(path)
	if err != nil {
		t.Fatalf("LoadMainConfig() error = %v", err)
	}
	if cfg.MaxConcurrency != 2 {
		t.Errorf("MaxConcurrency = %d, want 2", cfg.MaxConcurrency)
	}
	if cfg.OutputDir != "./output" || cfg.LogLevel != "info" || cfg.OutputNameFormat != "{client}_{job}_{timestamp}" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadMainConfigEnvOverride(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvOutputDir, "/tmp/audit-out")

	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "log_level: warn\noutput_dir: ./out\n")

	cfg, err := LoadMainConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" || cfg.OutputDir != "/tmp/audit-out" {
		t.Errorf("env overrides not applied: level=%s dir=%s", cfg.LogLevel, cfg.OutputDir)
	}
}

func TestLoadMainConfigRejectsUnknownLevel(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "log_level: chatty\n")
	if _, err := LoadMainConfig(path); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestLoadEngagement(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "acme.yaml", engagementYAML)

	cfg, err := LoadEngagement(path)
	if err != nil {
		t.Fatalf("LoadEngagement() error = %v", err)
	}

	if len(cfg.Jobs) != 3 {
		t.Fatalf("len(Jobs) = %d, want 3", len(cfg.Jobs))
	}

	payroll := cfg.Jobs[0]
	if payroll.Name != JobPayrollExceptions {
		t.Errorf("default job name = %q", payroll.Name)
	}
	if payroll.ColumnMap != filepath.Join(dir, "maps/payroll.json") {
		t.Errorf("ColumnMap = %q, want resolved against %s", payroll.ColumnMap, dir)
	}
	reg, ok := payroll.Source(SourceRegister)
	if !ok || reg.Path != filepath.Join(dir, "inputs/register.xlsx") || reg.LoadOptions().Sheet != "Consol AIC" {
		t.Errorf("register source = %+v", reg)
	}

	cmp := cfg.Jobs[1]
	if cmp.ColumnMap != "/abs/actuary.yaml" {
		t.Errorf("absolute path rewritten: %q", cmp.ColumnMap)
	}
	if cmp.LeftLabel != "CTC" || cmp.RightLabel != "Actuary" {
		t.Errorf("compare labels = %q/%q", cmp.LeftLabel, cmp.RightLabel)
	}
	if act, _ := cmp.Source(SourceActuary); act.LoadOptions().HeaderRow != 2 {
		t.Errorf("actuary header row = %d", act.HeaderRow)
	}

	if cfg.Jobs[2].PFPercentage != 12 {
		t.Errorf("PFPercentage default = %v, want 12", cfg.Jobs[2].PFPercentage)
	}

	eng, err := cfg.Engagement()
	if err != nil {
		t.Fatal(err)
	}
	if eng.Risk != reconcile.RiskHigher || eng.Control != reconcile.RelyingOnControls || eng.Materiality.IntPart() != 250000 {
		t.Errorf("Engagement() = %+v", eng)
	}

	fy := cfg.FiscalYear()
	if !fy.Start.Equal(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("FiscalYear() = %s", fy)
	}
}

func TestParseEngagementErrors(t *testing.T) {
	base := "risk_assessment: Lower\ncontrol_reliance: Relying on controls\n"
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown pair", "risk_assessment: Significant\ncontrol_reliance: Not relying on controls\n", "no threshold defined"},
		{"unknown risk", "risk_assessment: Moderate\ncontrol_reliance: Relying on controls\n", "unknown risk"},
		{"unknown job", base + "jobs: [{type: payroll_audit}]\n", "unknown type"},
		{"missing source", base + "jobs: [{type: headcount, sources: {ctc: {path: c.xlsx}}}]\n", "source \"additions\" is required"},
		{"missing column map", base + "jobs: [{type: payroll_exceptions, sources: {register: {path: r.xlsx}}}]\n", "column_map is required"},
		{"duplicate names", base + "jobs: [{type: pf, trial_balance: a.json}, {type: pf, trial_balance: b.json}]\n", "more than once"},
		{"bad rule id", base + "jobs: [{type: pf, trial_balance: a.json, rules: [0]}]\n", "must be positive"},
		{"bad date", base + "evaluation_date: 31/03/2025\n", "invalid evaluation_date"},
		{"missing increment month", base + "jobs: [{type: mom_increment, column_map: m.json, sources: {register: {path: r.xlsx}}}]\n", "increment_month is required"},
		{"missing cwip register", base + "jobs: [{type: cwip, trial_balance: tb.json}]\n", "source \"cwip_register\" is required"},
		{"bad cutoff date", base + "jobs: [{type: cwip, trial_balance: tb.json, cutoff_date: 31/03/2025, sources: {cwip_register: {path: c.xlsx}}}]\n", "invalid cutoff_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEngagement([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ParseEngagement() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestUnknownPairWrapsSentinel(t *testing.T) {
	_, err := ParseEngagement([]byte("risk_assessment: Significant\ncontrol_reliance: Not relying on controls\n"))
	if !errors.Is(err, reconcile.ErrUnknownThreshold) {
		t.Errorf("error = %v, want ErrUnknownThreshold", err)
	}
}

func TestMaterialityFromEnv(t *testing.T) {
	t.Setenv(EnvMateriality, "1,50,000")
	cfg, err := ParseEngagement([]byte("risk_assessment: Lower\ncontrol_reliance: Relying on controls\nmateriality: 10\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Materiality != 150000 {
		t.Errorf("Materiality = %v, want 150000", cfg.Materiality)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", EnvLogLevel+"=error\n")
	t.Setenv(EnvLogLevel, "")
	os.Unsetenv(EnvLogLevel)

	if err := LoadEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv(EnvLogLevel); got != "error" {
		t.Errorf("%s = %q, want error", EnvLogLevel, got)
	}
}

func TestLoadEngagementsKeyedByClientCode(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "acme.yaml", engagementYAML)
	writeFile(t, dir, "beta.yml", "risk_assessment: Lower\ncontrol_reliance: Relying on controls\n")

	got, err := LoadEngagements(dir)
	if err != nil {
		t.Fatalf("LoadEngagements() error = %v", err)
	}
	if _, ok := got["ACME"]; !ok {
		t.Errorf("missing ACME in %v", got)
	}
	if _, ok := got["beta"]; !ok {
		t.Errorf("missing beta (file name key) in %v", got)
	}
}

func TestPrepareEngagement(t *testing.T) {
	eng := &EngagementConfig{
		RiskAssessment:  "Higher",
		ControlReliance: "Relying on controls",
		Jobs:            []JobConfig{{Type: " Compare ", ColumnMap: "m.json", Sources: map[string]Source{SourceCTC: {Path: "c.csv"}, SourceActuary: {Path: "a.csv"}}}},
	}
	if err := PrepareEngagement(eng); err != nil {
		t.Fatalf("PrepareEngagement() error = %v", err)
	}
	if job := eng.Jobs[0]; job.Type != JobCompare || job.Name != JobCompare || job.LeftLabel != "CTC" {
		t.Errorf("defaults not applied: %+v", job)
	}

	eng.Jobs = append(eng.Jobs, JobConfig{Type: JobPF})
	if err := PrepareEngagement(eng); err == nil || !strings.Contains(err.Error(), "trial_balance is required") {
		t.Errorf("PrepareEngagement() error = %v, want trial_balance error", err)
	}
}
