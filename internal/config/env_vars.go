package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	appNameVar = "CLAWCTL_APP_NAME"
	apiURLVar  = "CLAWCTL_API_URL"
	prefixVar  = "CLAWCTL_API_PREFIX"
	homeVar    = "CLAWCTL_HOME"
	logVar     = "CLAWCTL_LOG_LEVEL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Open Cluster Claw")
}

// GetAPIBaseURL returns the control-plane base URL without the version prefix
// (e.g. "https://claw.example.com").
func (EnvVars) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv(apiURLVar, "http://localhost:8080"), "/")
}

func (EnvVars) GetAPIPrefix() string {
	return GetEnv(prefixVar, "/api/v1")
}

// GetHomeDir returns the directory holding the credential store and the
// optional config file. Defaults to ~/.config/clawctl.
func (EnvVars) GetHomeDir() string {
	if dir := os.Getenv(homeVar); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "clawctl")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logVar, "warn")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
