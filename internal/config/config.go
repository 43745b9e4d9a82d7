package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	ClientConfig
}

type EnvConfig interface {
	GetAppName() string
	GetAPIBaseURL() string
	GetAPIPrefix() string
	GetHomeDir() string
	GetLogLevel() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Client
}

// New builds the configuration from environment variables. A .env file in the
// working directory is loaded first when present (existing env vars win).
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}

// NewFromFile layers a YAML config file over the environment defaults.
// A missing file is not an error; the env-only configuration is returned.
func NewFromFile(path string) (Config, error) {
	_ = godotenv.Load()
	if path == "" {
		path = filepath.Join(mainConfig{}.GetHomeDir(), "config.yaml")
	}
	fv, err := loadFileVars(path)
	if err != nil {
		if os.IsNotExist(err) {
			return mainConfig{}, nil
		}
		return nil, err
	}
	return fileConfig{FileVars: fv}, nil
}
