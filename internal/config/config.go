package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"qaboard/internal/clickup"
	"qaboard/internal/qase"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration. It is built once
// at startup and passed explicitly to every component that needs it.
type AppConfig struct {
	ClickUp        clickup.Config
	Qase           qase.Config
	WorkspaceID    string
	SprintFolderID string

	DataPath   string
	LogDir     string
	ListenAddr string
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory first
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve data paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}

	timeoutSecs, _ := strconv.Atoi(getEnv("HTTP_TIMEOUT_SECONDS", "30"))
	timeout := time.Duration(timeoutSecs) * time.Second

	for _, key := range []string{"CLICKUP_WORKSPACE_ID", "CLICKUP_SPRINT_FOLDER_ID", "QASE_PROJECT_CODE"} {
		if _, ok := os.LookupEnv(key); !ok {
			log.Warn().Str("key", key).Msg("Using built-in fallback value")
		}
	}

	cfg := &AppConfig{
		ClickUp: clickup.Config{
			BaseURL: getEnv("CLICKUP_BASE_URL", "https://api.clickup.com/api/v2"),
			Token:   getEnv("CLICKUP_API_TOKEN", ""),
			Timeout: timeout,
		},
		Qase: qase.Config{
			BaseURL:     getEnv("QASE_BASE_URL", "https://api.qase.io/v1"),
			Token:       getEnv("QASE_API_TOKEN", ""),
			ProjectCode: getEnv("QASE_PROJECT_CODE", "CONFIRMOO"),
			Timeout:     timeout,
		},
		WorkspaceID:    getEnv("CLICKUP_WORKSPACE_ID", "9012576963"),
		SprintFolderID: getEnv("CLICKUP_SPRINT_FOLDER_ID", "90123818313"),
		DataPath:       dataPath,
		LogDir:         logDir,
		ListenAddr:     getEnv("LISTEN_ADDR", "127.0.0.1:8787"),
	}

	return cfg, nil
}

// Validate checks the configuration eagerly, before any network call. It
// returns every problem found so the user fixes them in one pass.
func (c *AppConfig) Validate() error {
	var errs []string

	if c.ClickUp.Token == "" {
		errs = append(errs, "ClickUp API token not configured (set CLICKUP_API_TOKEN)")
	} else if !strings.HasPrefix(c.ClickUp.Token, "pk_") {
		errs = append(errs, `invalid ClickUp API token format (must start with "pk_")`)
	}
	if c.WorkspaceID == "" {
		errs = append(errs, "ClickUp workspace id not configured (set CLICKUP_WORKSPACE_ID)")
	}
	if c.Qase.Token == "" {
		errs = append(errs, "Qase API token not configured (set QASE_API_TOKEN)")
	}
	if c.Qase.ProjectCode == "" {
		errs = append(errs, "Qase project code not configured (set QASE_PROJECT_CODE)")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
