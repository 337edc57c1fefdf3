// =============================================================================
// Payroll Audit - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration files.
// It handles both the main application configuration and the per-client
// engagement configurations.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): Global application settings
//   2. Engagement Configs (engagements/*.yaml): One per audit client, naming
//      the risk assessment, materiality and the audit jobs to run
//   3. .env (optional): AUDITOR_* variables overriding selected settings
//
// LOADING SEQUENCE:
//   read file -> unmarshal YAML -> apply defaults -> apply environment -> validate
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read on top of the YAML files.
const (
	EnvLogLevel    = "AUDITOR_LOG_LEVEL"
	EnvOutputDir   = "AUDITOR_OUTPUT_DIR"
	EnvMateriality = "AUDITOR_MATERIALITY"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// OutputDir is the directory where workbooks and JSON summaries are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// EngagementsDir is the directory containing engagement configurations.
	// Each YAML file in this directory describes one audit client.
	// Default: "./engagements"
	EngagementsDir string `yaml:"engagements_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is the path to the run log. Empty disables file logging.
	// Default: "./logs/auditor.log"
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the base name of every output file. The
	// extension (.xlsx, .json) is added by the writer.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {client}    - Engagement client code
	//   {job}       - Job name
	//
	// Default: "{client}_{job}_{timestamp}"
	OutputNameFormat string `yaml:"output_name_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of jobs run at once.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps running the remaining jobs after one fails.
	ContinueOnError bool `yaml:"continue_on_error"`

	// ParallelRules evaluates the rules of one exception job concurrently.
	ParallelRules bool `yaml:"parallel_rules"`
}

// DefaultMainConfig returns a MainConfig with every default applied, for
// runs without a config file.
func DefaultMainConfig() *MainConfig {
	cfg := &MainConfig{}
	applyMainConfigDefaults(cfg)
	return cfg
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadEnv loads AUDITOR_* variables from .env files. Missing files are
// ignored; variables already set in the environment win.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
//
// CUSTOMIZATION:
//   - Add default values for any new configuration options.
//   - Add validation for required fields.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	// Read the configuration file.
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse the YAML.
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply default values, then environment overrides.
	applyMainConfigDefaults(&config)
	ApplyMainEnv(&config)

	// Validate the configuration.
	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.EngagementsDir == "" {
		config.EngagementsDir = "./engagements"
	}
	if config.LogFile == "" {
		config.LogFile = "./logs/auditor.log"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{client}_{job}_{timestamp}"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
}

// ApplyMainEnv overrides the log level and output directory from the
// environment.
func ApplyMainEnv(config *MainConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		config.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutputDir)); v != "" {
		config.OutputDir = v
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", config.LogLevel)
	}

	if config.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must not be negative, got %d", config.MaxConcurrency)
	}

	return nil
}

// LoadEngagements loads all engagement configurations from a directory.
//
// PARAMETERS:
//   - dir: The directory containing engagement configuration files.
//
// RETURNS:
//   - A map of engagement configurations, keyed by client code.
//   - An error if the directory cannot be read or any file is invalid.
func LoadEngagements(dir string) (map[string]*EngagementConfig, error) {
	configs := make(map[string]*EngagementConfig)

	// Find all YAML files in the engagements directory.
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list engagement files: %w", err)
	}

	// Also check for .yml extension.
	ymlFiles, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list engagement files: %w", err)
	}
	files = append(files, ymlFiles...)

	for _, file := range files {
		config, err := LoadEngagement(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}

		// Use the client code as the key.
		// If no code is specified, use the file name.
		key := config.ClientCode
		if key == "" {
			key = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		}
		if _, dup := configs[key]; dup {
			return nil, fmt.Errorf("client code %q is used by more than one engagement", key)
		}

		configs[key] = config
	}

	return configs, nil
}

// LoadEngagement loads a single engagement configuration file.
//
// Relative input paths in the file are resolved against the file's own
// directory, so an engagement folder can be moved as a whole.
func LoadEngagement(filePath string) (*EngagementConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	config, err := ParseEngagement(data)
	if err != nil {
		return nil, err
	}
	config.resolvePaths(filepath.Dir(filePath))
	return config, nil
}

// ParseEngagement parses, defaults and validates an engagement document.
func ParseEngagement(data []byte) (*EngagementConfig, error) {
	var config EngagementConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	applyEngagementDefaults(&config)
	if err := ApplyEngagementEnv(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engagement: %w", err)
	}
	return &config, nil
}

// PrepareEngagement defaults and validates an engagement built in code,
// such as one assembled from command line flags.
func PrepareEngagement(config *EngagementConfig) error {
	applyEngagementDefaults(config)
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid engagement: %w", err)
	}
	return nil
}

// ApplyEngagementEnv overrides the materiality from the environment.
func ApplyEngagementEnv(config *EngagementConfig) error {
	v := strings.TrimSpace(os.Getenv(EnvMateriality))
	if v == "" {
		return nil
	}
	m, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", EnvMateriality, v, err)
	}
	config.Materiality = m
	return nil
}
