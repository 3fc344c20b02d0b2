package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	applog "budget/internal/log"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("BUDGET_CLI_TEST_VAR=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BUDGET_CLI_TEST_VAR", "")
	os.Unsetenv("BUDGET_CLI_TEST_VAR")

	if err := LoadEnvFile(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("BUDGET_CLI_TEST_VAR"); got != "from-file" {
		t.Errorf("BUDGET_CLI_TEST_VAR = %q, want from-file", got)
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("AUTH_MODE", "jwt")
	t.Setenv("SUPABASE_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("PORT", "5001")
	t.Setenv("AMQP_URL", "")
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "")

	cfg, err := LoadAndValidateConfig()
	if err != nil {
		t.Fatalf("LoadAndValidateConfig: %v", err)
	}
	if cfg.DataBackend != "memory" {
		t.Errorf("DataBackend = %q", cfg.DataBackend)
	}

	t.Setenv("PORT", "not-a-port")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Error("expected validation error for bad port")
	}
}

func TestSetupLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	logger := SetupLogger("worker")
	if logger.Component() != "worker" {
		t.Errorf("component = %q", logger.Component())
	}
	if !logger.Enabled(context.Background(), -4) {
		t.Error("debug level should be enabled")
	}
}

func TestGracefulShutdownCancel(t *testing.T) {
	ctx, cancel := GracefulShutdown(context.Background(), SetupLogger(""))
	cancel()
	<-ctx.Done()
}

func TestFail(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Output: &buf})

	if code := Fail(logger, "Server error", errors.New("bind: address in use"), "port", "5001"); code != ExitFailure {
		t.Errorf("Fail() = %d, want %d", code, ExitFailure)
	}
	out := buf.String()
	for _, want := range []string{"Server error", "bind: address in use", "port=5001", "level=ERROR"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q does not contain %q", out, want)
		}
	}
}
