// Package config provides application configuration with multi-source priority.
//
// Sources, highest to lowest:
//  1. Environment variables (ONCOREF_* overrides)
//  2. Config file (~/.oncoref/config.yaml, or ./config.yaml)
//  3. Defaults matching the local development service
//
// Validation is fail-fast with sentinel errors checkable via errors.Is().
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidAPIBase indicates the service base address is unusable.
	ErrInvalidAPIBase = errors.New("invalid api_base")

	// ErrInvalidTopK indicates top_k is outside the advisory range.
	ErrInvalidTopK = errors.New("invalid top_k")

	// ErrInvalidSessionID indicates the session identifier is empty.
	ErrInvalidSessionID = errors.New("invalid session_id")
)

// Defaults matching the local development deployment of the service.
const (
	// DefaultAPIBase is the loopback address the service listens on in
	// local development.
	DefaultAPIBase = "http://127.0.0.1:8000"

	// DefaultTopK is the number of chunks retrieved per question.
	DefaultTopK = 5

	// DefaultSessionID is the conversation used when none is saved.
	DefaultSessionID = "e2e-1"

	// DefaultPatientID pre-fills the assess prompt with a patient present
	// in the service's demo dataset.
	DefaultPatientID = "PT-110"
)

// Advisory top-k bounds; the service enforces its own.
const (
	MinTopK = 1
	MaxTopK = 20
)

// Config stores client configuration.
type Config struct {
	// APIBase is the root address of the decision-support service.
	APIBase string `mapstructure:"api_base"`

	// TopK is the retrieval depth sent with chat and assess requests.
	TopK int `mapstructure:"top_k"`

	// SessionID is the default conversation identifier.
	SessionID string `mapstructure:"session_id"`

	// PatientID is the default patient for assessments.
	PatientID string `mapstructure:"patient_id"`
}

// Load loads configuration.
// Priority: environment variables > config file > defaults.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".oncoref")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	cfg.APIBase = strings.TrimSpace(cfg.APIBase)
	cfg.SessionID = strings.TrimSpace(cfg.SessionID)
	cfg.PatientID = strings.TrimSpace(cfg.PatientID)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("api_base", DefaultAPIBase)
	viper.SetDefault("top_k", DefaultTopK)
	viper.SetDefault("session_id", DefaultSessionID)
	viper.SetDefault("patient_id", DefaultPatientID)
}

func bindEnvVariables() {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("api_base", "ONCOREF_API_BASE")
	mustBind("top_k", "ONCOREF_TOP_K")
	mustBind("session_id", "ONCOREF_SESSION_ID")
	mustBind("patient_id", "ONCOREF_PATIENT_ID")
}

// Validate validates configuration values.
// Returns sentinel errors checkable with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if c.APIBase == "" {
		return fmt.Errorf("%w: api_base cannot be empty", ErrInvalidAPIBase)
	}
	u, err := url.Parse(c.APIBase)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAPIBase, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidAPIBase, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host in %q", ErrInvalidAPIBase, c.APIBase)
	}

	if c.TopK < MinTopK || c.TopK > MaxTopK {
		return fmt.Errorf("%w: must be between %d and %d, got %d", ErrInvalidTopK, MinTopK, MaxTopK, c.TopK)
	}

	if c.SessionID == "" {
		return fmt.Errorf("%w: session_id cannot be empty", ErrInvalidSessionID)
	}

	return nil
}
