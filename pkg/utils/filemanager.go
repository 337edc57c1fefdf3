// =============================================================================
// Payroll Audit - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for audit runs, including:
//   - Directory management
//   - Output file naming
//   - Issue log generation (failed jobs, skipped rules)
//   - Run summary generation
//
// Input files are client evidence: they are read, never moved or modified.
// Every output of a run lands in the output directory, named from the
// configured format.
//
// CUSTOMIZATION:
//   - Add placeholders to GenerateOutputFileName
//   - Change the issue log layout in WriteIssueLog
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for an audit run.
type FileManager struct {
	// OutputDir is the directory where output files are placed.
	OutputDir string

	// LogDir is the directory of the run log file.
	LogDir string

	// NameFormat is the output base name format (see GenerateOutputFileName).
	NameFormat string
}

// NewFileManager creates a new FileManager.
func NewFileManager(outputDir, logFile, nameFormat string) *FileManager {
	logDir := ""
	if logFile != "" {
		logDir = filepath.Dir(logFile)
	}
	return &FileManager{
		OutputDir:  outputDir,
		LogDir:     logDir,
		NameFormat: nameFormat,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{fm.OutputDir, fm.LogDir}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// OutputPath returns the path of a new output file in the output directory.
//
// PARAMETERS:
//   - params: Placeholder values, e.g. {"client": "ACME", "job": "headcount"}.
//   - ext: The extension to add, e.g. ".xlsx".
func (fm *FileManager) OutputPath(params map[string]string, ext string) string {
	return filepath.Join(fm.OutputDir, GenerateOutputFileName(fm.NameFormat, params)+ext)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a unique output base name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//               {client}    - Client code
//               {job}       - Job name
//   - params: A map of placeholder values. Path separators in values are
//             replaced so a value cannot escape the output directory.
//
// RETURNS:
//   - The generated base name, without extension.
//
// EXAMPLE:
//   format: "{client}_{job}_{date}"
//   params: {"client": "ACME", "job": "headcount"}
//   output: "ACME_headcount_20250331"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	// Build replacements.
	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}

	// Add custom params.
	for key, value := range params {
		replacements["{"+key+"}"] = safeName(value)
	}

	// Apply replacements.
	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	result = strings.Trim(result, "_- ")
	if result == "" {
		result = uuid.New().String()
	}
	return result
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
}

// =============================================================================
// ISSUE LOG GENERATION
// =============================================================================

// Issue kinds.
const (
	IssueJobFailed   = "job_failed"
	IssueRuleSkipped = "rule_skipped"
)

// IssueEntry represents a single issue of an audit run.
type IssueEntry struct {
	Timestamp time.Time
	Client    string
	Job       string
	Kind      string
	Message   string
	RuleID    int
	Fields    []string
}

// WriteIssueLog writes issue entries to a log file in outputDir.
//
// PARAMETERS:
//   - entries: The issues to write.
//   - outputDir: The directory to write the log file.
//
// RETURNS:
//   - The path to the issue log file, or "" when there are no entries.
//   - An error if writing fails.
func WriteIssueLog(entries []IssueEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	// Generate log file name.
	timestamp := time.Now().Format("20060102_150405")
	logPath := filepath.Join(outputDir, fmt.Sprintf("issue_log_%s.txt", timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create issue log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Payroll Audit - Issue Log\n"+
		"Generated: %s\n"+
		"Total Issues: %d\n"+
		"================================================================================\n\n",
		time.Now().Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Issue #%d\n"+
			"  Timestamp:  %s\n"+
			"  Client:     %s\n"+
			"  Job:        %s\n"+
			"  Kind:       %s\n"+
			"  Message:    %s\n",
			i+1,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Client,
			entry.Job,
			entry.Kind,
			entry.Message)

		if entry.RuleID > 0 {
			fmt.Fprintf(writer, "  Rule:       %d\n", entry.RuleID)
		}
		if len(entry.Fields) > 0 {
			fmt.Fprintf(writer, "  Fields:     %s\n", strings.Join(entry.Fields, ", "))
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Issue Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush issue log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains summary information about an audit run.
type RunSummary struct {
	RunID          string
	StartTime      time.Time
	EndTime        time.Time
	TotalJobs      int
	SuccessfulJobs int
	FailedJobs     int
	TotalRows      int
	Exceptions     int
	SkippedRules   int
	CompletedJobs  []CompletedJobInfo
	FailedJobsList []FailedJobInfo
}

// CompletedJobInfo contains information about a successful job.
type CompletedJobInfo struct {
	Client      string
	Job         string
	Type        string
	Outputs     []string
	Rows        int
	Exceptions  int
	ProcessTime time.Duration
}

// FailedJobInfo contains information about a failed job.
type FailedJobInfo struct {
	Client       string
	Job          string
	ErrorMessage string
}

// WriteSummaryLog writes a run summary to a text file in outputDir.
//
// PARAMETERS:
//   - summary: The run summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	timestamp := time.Now().Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("run_summary_%s.txt", timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "Payroll Audit - Run Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Jobs:     %d\n"+
		"  Successful:     %d\n"+
		"  Failed:         %d\n"+
		"  Rows Read:      %d\n"+
		"  Exceptions:     %d\n"+
		"  Skipped Rules:  %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.TotalJobs,
		summary.SuccessfulJobs,
		summary.FailedJobs,
		summary.TotalRows,
		summary.Exceptions,
		summary.SkippedRules)

	if len(summary.CompletedJobs) > 0 {
		completed := append([]CompletedJobInfo(nil), summary.CompletedJobs...)
		sort.SliceStable(completed, func(i, j int) bool {
			if completed[i].Client != completed[j].Client {
				return completed[i].Client < completed[j].Client
			}
			return completed[i].Job < completed[j].Job
		})

		writer.WriteString("Completed Jobs:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, cj := range completed {
			fmt.Fprintf(writer, "  Client:       %s\n", cj.Client)
			fmt.Fprintf(writer, "  Job:          %s (%s)\n", cj.Job, cj.Type)
			for _, out := range cj.Outputs {
				fmt.Fprintf(writer, "  Output:       %s\n", out)
			}
			fmt.Fprintf(writer, "  Rows:         %d\n", cj.Rows)
			fmt.Fprintf(writer, "  Exceptions:   %d\n", cj.Exceptions)
			fmt.Fprintf(writer, "  Process Time: %s\n\n", cj.ProcessTime.String())
		}
	}

	if len(summary.FailedJobsList) > 0 {
		writer.WriteString("Failed Jobs:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, fj := range summary.FailedJobsList {
			fmt.Fprintf(writer, "  Client: %s\n", fj.Client)
			fmt.Fprintf(writer, "  Job:    %s\n", fj.Job)
			fmt.Fprintf(writer, "  Error:  %s\n\n", fj.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}
