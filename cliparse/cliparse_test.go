// cliparse/cliparse_test.go
package cliparse

import (
	"log/slog"
	"strings"
	"testing"
)

const testSessionKey = "0123456789abcdef0123456789abcdef"

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "Postgres")
	t.Setenv("SESSION_KEY", testSessionKey)
	t.Setenv("SECURE_COOKIES", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != DatabasePostgres {
		t.Errorf("expected postgres, got %q", cfg.DatabaseType)
	}
	if !cfg.SecureCookies {
		t.Error("expected secure cookies from env")
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.LogLevel)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SESSION_KEY", "")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-session-key", testSessionKey})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseType != DatabaseSQLite {
		t.Errorf("expected sqlite default, got %q", cfg.DatabaseType)
	}
}

func TestParseFlags_SecureCookies(t *testing.T) {
	tests := []struct {
		name string
		env  string
		args []string
		want bool
	}{
		{"default", "", nil, false},
		{"env only", "true", nil, true},
		{"flag only", "", []string{"-secure"}, true},
		{"flag disables env", "true", []string{"-secure=false"}, false},
		{"flag enables over env", "false", []string{"-secure=true"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "file:x.db")
			t.Setenv("SESSION_KEY", testSessionKey)
			t.Setenv("SECURE_COOKIES", tt.env)

			cfg, err := ParseFlags(tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if cfg.SecureCookies != tt.want {
				t.Errorf("expected secure cookies %v, got %v", tt.want, cfg.SecureCookies)
			}
		})
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		wantErr string
	}{
		{
			name:    "missing database url",
			env:     map[string]string{"SESSION_KEY": testSessionKey},
			wantErr: "database URL required",
		},
		{
			name:    "missing session key",
			env:     map[string]string{"DATABASE_URL": "file:x.db"},
			wantErr: "SESSION_KEY required",
		},
		{
			name:    "short session key",
			env:     map[string]string{"DATABASE_URL": "file:x.db", "SESSION_KEY": "short"},
			wantErr: "at least 32 bytes",
		},
		{
			name:    "unknown database type",
			env:     map[string]string{"DATABASE_URL": "file:x.db", "SESSION_KEY": testSessionKey},
			args:    []string{"-t", "mysql"},
			wantErr: "sqlite or postgres",
		},
		{
			name:    "bad port",
			env:     map[string]string{"PORT": "eighty", "DATABASE_URL": "file:x.db", "SESSION_KEY": testSessionKey},
			wantErr: "invalid PORT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"PORT", "DATABASE_URL", "DATABASE_TYPE", "SESSION_KEY", "SECURE_COOKIES", "LOG_LEVEL"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := ParseFlags(tt.args)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}
