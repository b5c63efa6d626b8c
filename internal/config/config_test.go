package config

import (
	"errors"
	"testing"

	"github.com/spf13/viper"
)

func validConfig() *Config {
	return &Config{
		APIBase:   DefaultAPIBase,
		TopK:      DefaultTopK,
		SessionID: DefaultSessionID,
		PatientID: DefaultPatientID,
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestValidate_NilConfig(t *testing.T) {
	var c *Config
	if !errors.Is(c.Validate(), ErrConfigNil) {
		t.Error("expected ErrConfigNil")
	}
}

func TestValidate_APIBase(t *testing.T) {
	tests := []struct {
		name    string
		apiBase string
		wantErr bool
	}{
		{"loopback default", "http://127.0.0.1:8000", false},
		{"https", "https://rag.internal.example", false},
		{"empty", "", true},
		{"no scheme", "127.0.0.1:8000", true},
		{"bad scheme", "ftp://example.com", true},
		{"missing host", "http://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.APIBase = tt.apiBase
			err := c.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidAPIBase) {
				t.Errorf("expected ErrInvalidAPIBase, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_TopK(t *testing.T) {
	tests := []struct {
		topK    int
		wantErr bool
	}{
		{1, false}, {5, false}, {20, false},
		{0, true}, {-1, true}, {21, true},
	}

	for _, tt := range tests {
		c := validConfig()
		c.TopK = tt.topK
		err := c.Validate()
		if tt.wantErr && !errors.Is(err, ErrInvalidTopK) {
			t.Errorf("top_k %d: expected ErrInvalidTopK, got %v", tt.topK, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("top_k %d: unexpected error: %v", tt.topK, err)
		}
	}
}

func TestValidate_SessionID(t *testing.T) {
	c := validConfig()
	c.SessionID = ""
	if !errors.Is(c.Validate(), ErrInvalidSessionID) {
		t.Error("expected ErrInvalidSessionID for empty session_id")
	}
}

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIBase != DefaultAPIBase {
		t.Errorf("expected default api_base, got %q", cfg.APIBase)
	}
	if cfg.TopK != DefaultTopK {
		t.Errorf("expected default top_k, got %d", cfg.TopK)
	}
	if cfg.SessionID != DefaultSessionID {
		t.Errorf("expected default session_id, got %q", cfg.SessionID)
	}
	if cfg.PatientID != DefaultPatientID {
		t.Errorf("expected default patient_id, got %q", cfg.PatientID)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ONCOREF_API_BASE", "http://10.0.0.7:9000 ")
	t.Setenv("ONCOREF_TOP_K", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIBase != "http://10.0.0.7:9000" {
		t.Errorf("expected env override trimmed, got %q", cfg.APIBase)
	}
	if cfg.TopK != 8 {
		t.Errorf("expected top_k 8, got %d", cfg.TopK)
	}
}

func TestLoad_EnvInvalid(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ONCOREF_TOP_K", "50")

	if _, err := Load(); !errors.Is(err, ErrInvalidTopK) {
		t.Errorf("expected ErrInvalidTopK, got %v", err)
	}
}
