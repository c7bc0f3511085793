// Package config holds operator-level configuration: where state lives,
// which model providers are reachable, and the detection calibration
// overrides. Set via env vars (PRIVASSIST_*) or privassist.config.yaml.
// Configuration is validated once at startup; a malformed recognizer or
// weight file is fatal there, never per scan.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Viper keys. Each maps to an env var with the PRIVASSIST_ prefix
// (e.g. "data_dir" → PRIVASSIST_DATA_DIR) and to a YAML field in
// privassist.config.yaml.
const (
	KeyDataDir       = "data_dir"
	KeyListenAddr    = "listen_addr"
	KeyNERBaseURL    = "ner_base_url"
	KeyOpenAIModel   = "openai_model"
	KeyPatternFile   = "pattern_file"
	KeyWeightsFile   = "weights_file"
	KeyMinScore      = "min_score"
	KeyDropUnmapped  = "drop_unmapped_labels"
	KeyMaxUploadMB   = "max_upload_mb"
	KeyRetentionDays = "retention_days"
	KeyGlobalRPM     = "rate_limit_rpm"
	KeyPerClientRPM  = "rate_limit_client_rpm"
)

// Defaults.
const (
	DefaultListenAddr    = ":8000"
	DefaultMaxUploadMB   = 10
	DefaultRetentionDays = 90
	DefaultGlobalRPM     = 600
	DefaultPerClientRPM  = 120
)

// Config is the resolved operator configuration for one process.
type Config struct {
	DataDir       string // Base directory for all state (~/.privassist)
	ListenAddr    string // HTTP listen address
	NERBaseURL    string // NER sidecar endpoint; empty disables the hf_ner provider
	OpenAIModel   string // Chat model for the openai provider
	PatternFile   string // Optional recognizer override YAML
	WeightsFile   string // Optional severity weight override YAML
	MinScore      float64
	DropUnmapped  bool // Drop (vs bucket into OTHER) unmapped provider labels
	MaxUploadMB   int
	RetentionDays int
	GlobalRPM     int
	PerClientRPM  int
}

// Load resolves configuration from viper (env + config file + defaults).
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	viper.SetDefault(KeyDataDir, filepath.Join(home, ".privassist"))
	viper.SetDefault(KeyListenAddr, DefaultListenAddr)
	viper.SetDefault(KeyOpenAIModel, "")
	viper.SetDefault(KeyDropUnmapped, true)
	viper.SetDefault(KeyMaxUploadMB, DefaultMaxUploadMB)
	viper.SetDefault(KeyRetentionDays, DefaultRetentionDays)
	viper.SetDefault(KeyGlobalRPM, DefaultGlobalRPM)
	viper.SetDefault(KeyPerClientRPM, DefaultPerClientRPM)

	cfg := &Config{
		DataDir:       viper.GetString(KeyDataDir),
		ListenAddr:    viper.GetString(KeyListenAddr),
		NERBaseURL:    viper.GetString(KeyNERBaseURL),
		OpenAIModel:   viper.GetString(KeyOpenAIModel),
		PatternFile:   viper.GetString(KeyPatternFile),
		WeightsFile:   viper.GetString(KeyWeightsFile),
		MinScore:      viper.GetFloat64(KeyMinScore),
		DropUnmapped:  viper.GetBool(KeyDropUnmapped),
		MaxUploadMB:   viper.GetInt(KeyMaxUploadMB),
		RetentionDays: viper.GetInt(KeyRetentionDays),
		GlobalRPM:     viper.GetInt(KeyGlobalRPM),
		PerClientRPM:  viper.GetInt(KeyPerClientRPM),
	}

	if cfg.MinScore < 0 || cfg.MinScore > 1 {
		return nil, fmt.Errorf("min_score %v out of range [0,1]", cfg.MinScore)
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("max_upload_mb must be positive, got %d", cfg.MaxUploadMB)
	}
	if cfg.RetentionDays <= 0 {
		return nil, fmt.Errorf("retention_days must be positive, got %d", cfg.RetentionDays)
	}
	return cfg, nil
}

// AuditDBPath returns the full path to the audit SQLite database.
func (c *Config) AuditDBPath() string {
	return filepath.Join(c.DataDir, "audit.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o700)
}
