package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// FileVars holds the optional YAML config file values. Any zero-valued field
// falls through to the environment-backed defaults.
type FileVars struct {
	APIURL    string `yaml:"api_url"`
	APIPrefix string `yaml:"api_prefix"`
	LogLevel  string `yaml:"log_level"`
}

type fileConfig struct {
	EnvVars
	Client
	FileVars
}

var _ Config = fileConfig{}

func loadFileVars(path string) (FileVars, error) {
	var fv FileVars
	b, err := os.ReadFile(path)
	if err != nil {
		return fv, err
	}
	if err := yaml.Unmarshal(b, &fv); err != nil {
		return fv, err
	}
	return fv, nil
}

func (f fileConfig) GetAPIBaseURL() string {
	if f.APIURL != "" {
		return f.APIURL
	}
	return f.EnvVars.GetAPIBaseURL()
}

func (f fileConfig) GetAPIPrefix() string {
	if f.APIPrefix != "" {
		return f.APIPrefix
	}
	return f.EnvVars.GetAPIPrefix()
}

func (f fileConfig) GetLogLevel() string {
	if f.LogLevel != "" {
		return f.LogLevel
	}
	return f.EnvVars.GetLogLevel()
}
