// Package config resolves widget configuration using Viper.
//
// Precedence, highest first: CLI flags, EPOXYVIEW_* environment variables,
// project-local epoxyview.yml, XDG global config, built-in defaults. This is
// the embed-side layered discovery (URL parameter, config element, script tag
// attributes) expressed as a single typed resolution step.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey means no API key could be resolved from any layer.
// This is terminal: the widget renders a configuration-error state and
// performs no network calls.
var ErrMissingAPIKey = errors.New("no API key configured (set --api-key, EPOXYVIEW_API_KEY, or api_key in epoxyview.yml)")

// DefaultAPIBase is the production preview service.
const DefaultAPIBase = "https://api.skisplace.com/api/v1"

// Config holds all resolved configuration values for the widget.
type Config struct {
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	APIBase   string `mapstructure:"api_base" yaml:"api_base"`
	ProjectID string `mapstructure:"project_id" yaml:"project_id,omitempty"`
	Debug     bool   `mapstructure:"debug" yaml:"debug"`
	DataDir   string `mapstructure:"data_dir" yaml:"data_dir"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFile   string `mapstructure:"log_file" yaml:"log_file,omitempty"`

	// Systems lists the finish systems offered by this project. With more
	// than one entry the wizard shows a system-select step; with zero or one
	// it is skipped.
	Systems []string `mapstructure:"systems" yaml:"systems,omitempty"`
}

// Load resolves configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults.
// Flag values are applied by the caller after Load returns.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("epoxyview")

	// api_key has no default - it's required
	v.SetDefault("api_base", DefaultAPIBase)
	v.SetDefault("project_id", "")
	v.SetDefault("debug", false)
	v.SetDefault("data_dir", ".epoxyview")
	v.SetDefault("output_dir", ".")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	v.SetEnvPrefix("EPOXYVIEW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit ENV bindings for better bool parsing
	for key, env := range map[string]string{
		"api_key":    "EPOXYVIEW_API_KEY",
		"api_base":   "EPOXYVIEW_API_BASE",
		"project_id": "EPOXYVIEW_PROJECT_ID",
		"debug":      "EPOXYVIEW_DEBUG",
		"data_dir":   "EPOXYVIEW_DATA_DIR",
		"output_dir": "EPOXYVIEW_OUTPUT_DIR",
		"log_level":  "EPOXYVIEW_LOG_LEVEL",
		"log_file":   "EPOXYVIEW_LOG_FILE",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	// Global config first, project config merged on top
	if globalPath := GlobalPath(); fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}
	if projectPath := ProjectPath(); fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the config is usable for network operation.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if strings.TrimSpace(c.APIBase) == "" {
		return errors.New("api_base must not be empty")
	}
	return nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path:
// $XDG_CONFIG_HOME/epoxyview/epoxyview.yml or ~/.config/epoxyview/epoxyview.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "epoxyview", "epoxyview.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "epoxyview", "epoxyview.yml")
}

// ProjectPath returns the project-local config path in the working directory.
func ProjectPath() string {
	return "epoxyview.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return writeYAML(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return writeYAML(ProjectPath(), cfg)
}

func writeYAML(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
