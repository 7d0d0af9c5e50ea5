package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"qaboard/internal/clickup"
	"qaboard/internal/qase"

	"github.com/joho/godotenv"
)

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := &AppConfig{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	for _, want := range []string{"CLICKUP_API_TOKEN", "CLICKUP_WORKSPACE_ID", "QASE_API_TOKEN", "QASE_PROJECT_CODE"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validation error should mention %s, got:\n%s", want, err)
		}
	}
}

func TestValidateTokenFormat(t *testing.T) {
	cfg := &AppConfig{
		ClickUp:     clickup.Config{Token: "wrong_prefix"},
		Qase:        qase.Config{Token: "x", ProjectCode: "DEMO"},
		WorkspaceID: "w1",
	}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), `must start with "pk_"`) {
		t.Errorf("expected token format error, got %v", err)
	}

	cfg.ClickUp.Token = "pk_123_abc"
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestGetEnvFallback(t *testing.T) {
	const key = "QABOARD_TEST_UNSET"
	os.Unsetenv(key)
	if got := getEnv(key, "fallback"); got != "fallback" {
		t.Errorf("getEnv = %q", got)
	}
	t.Setenv(key, "set")
	if got := getEnv(key, "fallback"); got != "set" {
		t.Errorf("getEnv = %q", got)
	}
}

// Tokens are often pasted into .env single-quoted; the parser must strip
// the outer quotes and keep inner double quotes intact, or Validate would
// reject a perfectly good token.
func TestDotenvTokenQuoting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "CLICKUP_API_TOKEN='pk_123_abc'\n" +
		"QASE_PROJECT_CODE='code with \"double quotes\"'\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}

	if got := env["CLICKUP_API_TOKEN"]; got != "pk_123_abc" {
		t.Errorf("token = %q, want the quotes stripped", got)
	}
	expected := `code with "double quotes"`
	if got := env["QASE_PROJECT_CODE"]; got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}
