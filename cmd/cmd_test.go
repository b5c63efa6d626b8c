package cmd

import (
	"os"
	"testing"
)

func TestParseChatArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantSession string
		wantErr     bool
	}{
		{
			name: "no args",
			args: []string{"oncoref"},
		},
		{
			name: "bare chat",
			args: []string{"oncoref", "chat"},
		},
		{
			name:        "session flag without subcommand",
			args:        []string{"oncoref", "--session", "sess-11223344"},
			wantSession: "sess-11223344",
		},
		{
			name:        "session flag with subcommand",
			args:        []string{"oncoref", "chat", "--session", "e2e-1"},
			wantSession: "e2e-1",
		},
		{
			name:    "unknown flag",
			args:    []string{"oncoref", "chat", "--bogus"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := os.Args
			defer func() { os.Args = orig }()
			os.Args = tt.args

			got, err := parseChatArgs()
			if tt.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.wantSession {
				t.Errorf("session = %q, want %q", got, tt.wantSession)
			}
		})
	}
}

func TestParseAssessArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantPatient string
		wantTopK    int
		wantErr     bool
	}{
		{
			name:        "positional only",
			args:        []string{"oncoref", "assess", "PT-110"},
			wantPatient: "PT-110",
			wantTopK:    5,
		},
		{
			name:        "positional with flag",
			args:        []string{"oncoref", "assess", "PT-110", "--top-k", "8"},
			wantPatient: "PT-110",
			wantTopK:    8,
		},
		{
			name:        "flag before positional",
			args:        []string{"oncoref", "assess", "--top-k", "8", "PT-110"},
			wantPatient: "PT-110",
			wantTopK:    8,
		},
		{
			name:        "top-k clamped high",
			args:        []string{"oncoref", "assess", "PT-110", "--top-k", "99"},
			wantPatient: "PT-110",
			wantTopK:    20,
		},
		{
			name:        "top-k clamped low",
			args:        []string{"oncoref", "assess", "PT-110", "--top-k", "0"},
			wantPatient: "PT-110",
			wantTopK:    1,
		},
		{
			name:    "missing patient ID",
			args:    []string{"oncoref", "assess"},
			wantErr: true,
		},
		{
			name:    "non-numeric top-k",
			args:    []string{"oncoref", "assess", "PT-110", "--top-k", "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := os.Args
			defer func() { os.Args = orig }()
			os.Args = tt.args

			patient, topK, err := parseAssessArgs(5)
			if tt.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if patient != tt.wantPatient {
				t.Errorf("patient = %q, want %q", patient, tt.wantPatient)
			}
			if topK != tt.wantTopK {
				t.Errorf("topK = %d, want %d", topK, tt.wantTopK)
			}
		})
	}
}
