package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BEDEP"

// Config represents the complete application configuration. Environment
// names are derived from the field path, e.g. BEDEP_DATASET_PATH; fields
// carry no explicit envconfig key so that envconfig never falls back to an
// unprefixed variable such as PATH or PORT.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Security  SecurityConfig  `yaml:"security"`
	Logging   LoggingConfig   `yaml:"logging"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" split_words:"true"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" split_words:"true" validate:"gt=0"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" split_words:"true" validate:"min=1"`
	EnableCORS     bool            `yaml:"enable_cors" split_words:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" split_words:"true"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps" validate:"gt=0"`
	Burst   int     `yaml:"burst" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true"`
}

// DatasetConfig describes the assessment workbook loaded at startup.
type DatasetConfig struct {
	Path            string        `yaml:"path" validate:"required"`
	Sheet           string        `yaml:"sheet"`
	SchoolColumn    string        `yaml:"school_column" split_words:"true" validate:"required"`
	BranchColumn    string        `yaml:"branch_column" split_words:"true" validate:"required"`
	NotTakenMarker  string        `yaml:"not_taken_marker" split_words:"true" validate:"required"`
	AllSchoolsLabel string        `yaml:"all_schools_label" split_words:"true" validate:"required"`
	Columns         ColumnsConfig `yaml:"columns"`
}

// ColumnsConfig maps each subject area to its spreadsheet header.
type ColumnsConfig struct {
	Reading           string `yaml:"reading" validate:"required"`
	ScienceLiteracy   string `yaml:"science_literacy" split_words:"true" validate:"required"`
	MathLiteracy      string `yaml:"math_literacy" split_words:"true" validate:"required"`
	ProblemSolving    string `yaml:"problem_solving" split_words:"true" validate:"required"`
	FinancialLiteracy string `yaml:"financial_literacy" split_words:"true" validate:"required"`
}

// DashboardConfig holds the defaults applied to a dashboard request that
// leaves a selection out.
type DashboardConfig struct {
	DefaultArea  string `yaml:"default_area" split_words:"true" validate:"oneof=reading science_literacy math_literacy problem_solving financial_literacy"`
	DefaultChart string `yaml:"default_chart" split_words:"true" validate:"oneof=bar pie"`
	GuideLines   bool   `yaml:"guide_lines" split_words:"true"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" split_words:"true" validate:"required"`
	Environment    string  `yaml:"environment"`
	TraceExporter  string  `yaml:"trace_exporter" split_words:"true" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" split_words:"true" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" split_words:"true" validate:"gte=0,lte=1"`
}

// Load builds the configuration from defaults, then the YAML file at path
// (or the first one found in the usual locations when path is empty), then
// BEDEP_* environment variables. Later sources win.
//
// Defaults live in Default rather than in envconfig default tags so that an
// unset variable never clobbers a value read from the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file
// keep their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration against its validate tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging.file_path is required for output %q", c.Logging.Output)
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8050,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  10 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8050"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Dataset: DatasetConfig{
			Path:            "data/AI_Rapor.xlsx",
			Sheet:           "Sayfa1",
			SchoolColumn:    "Okul",
			BranchColumn:    "Şube",
			NotTakenMarker:  "G",
			AllSchoolsLabel: "Tüm Okullar",
			Columns: ColumnsConfig{
				Reading:           "Okuma Becerileri",
				ScienceLiteracy:   "Fen Okuryazarlığı",
				MathLiteracy:      "Matematik Okuryazarlığı",
				ProblemSolving:    "Problem Çözme Becerileri",
				FinancialLiteracy: "Finansal Okuryazarlık",
			},
		},
		Dashboard: DashboardConfig{
			DefaultArea:  "reading",
			DefaultChart: "bar",
			GuideLines:   true,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "bedep-dashboard",
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
