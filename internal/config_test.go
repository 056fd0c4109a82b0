package internal

import (
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.App.HTTP.Address() != ":8080" {
		t.Errorf("Address = %q", cfg.App.HTTP.Address())
	}
	if cfg.Auth.AuthEnabled() {
		t.Error("auth enabled by default")
	}
}

func TestHTTPPortValidation(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for port 0")
	}
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for port 70000")
	}
}

func TestNotesDirRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Notes.Dir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty notes dir")
	}
}

func TestSearchPathRequiredOnlyWhenEnabled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Search.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for enabled search without path")
	}
	cfg.Search.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled search should skip path check: %v", err)
	}
}

func TestAuthConfig(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		token   string
		wantErr bool
		enabled bool
	}{
		{name: "empty mode defaults to disabled", mode: "", token: "", wantErr: false, enabled: false},
		{name: "disabled", mode: AuthModeDisabled, token: "", wantErr: false, enabled: false},
		{name: "token with value", mode: AuthModeToken, token: "s3cret", wantErr: false, enabled: true},
		{name: "token without value", mode: AuthModeToken, token: "", wantErr: true},
		{name: "unknown mode", mode: "oauth", token: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AuthConfig{Mode: tt.mode, Token: tt.token}
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !tt.wantErr && cfg.AuthEnabled() != tt.enabled {
				t.Errorf("AuthEnabled = %v, want %v", cfg.AuthEnabled(), tt.enabled)
			}
		})
	}
}
