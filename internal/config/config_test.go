package config

import (
	"strings"
	"testing"
)

func devConfig() *Config {
	return &Config{
		Port:        "8000",
		Env:         "development",
		DatabaseURL: "postgres://localhost/hms",
	}
}

func TestValidate_DevAllowsMissingSecrets(t *testing.T) {
	cfg := devConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected no error in development, got %v", err)
	}
}

func TestValidate_ProductionRequiresSecrets(t *testing.T) {
	cfg := devConfig()
	cfg.Env = "production"
	cfg.EncryptionKey = strings.Repeat("ab", 32)
	cfg.PresignSecret = "presign"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing token secrets")
	}
	for _, name := range []string{"ACCESS_TOKEN_SECRET", "REFRESH_TOKEN_SECRET", "VERIFY_TOKEN_SECRET"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("expected error to name %s, got %v", name, err)
		}
	}

	cfg.AccessTokenSecret = "a"
	cfg.RefreshTokenSecret = "r"
	cfg.VerifyTokenSecret = "v"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected no error with all secrets set, got %v", err)
	}
}

func TestValidate_EncryptionKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid 32 byte hex", strings.Repeat("ab", 32), false},
		{"not hex", "zz", true},
		{"too short", "abcd", true},
		{"empty in staging", "", false},
	}

	for _, tt := range tests {
		cfg := devConfig()
		cfg.Env = "staging"
		cfg.AccessTokenSecret = "a"
		cfg.RefreshTokenSecret = "r"
		cfg.VerifyTokenSecret = "v"
		cfg.EncryptionKey = tt.key

		err := cfg.Validate()
		if tt.wantErr && err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
	}
}

func TestValidate_ProductionRequiresPresignSecret(t *testing.T) {
	cfg := devConfig()
	cfg.Env = "production"
	cfg.AccessTokenSecret = "a"
	cfg.RefreshTokenSecret = "r"
	cfg.VerifyTokenSecret = "v"
	cfg.EncryptionKey = strings.Repeat("ab", 32)

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing PRESIGN_SECRET")
	}

	cfg.PresignSecret = "p"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}
