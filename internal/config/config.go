package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/stackforge-labs/stackforge/internal/branding"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Well-known settings keys.
const (
	KeyWorkers      = "engine.workers"
	KeyProbeTimeout = "engine.probe_timeout"
	KeyRuleset      = "engine.ruleset"
)

// Dir returns the path to the config directory (~/.stackforge/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.stackforge/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Workers returns the configured worker pool size, or 0 meaning "use the
// component default".
func Workers() int {
	return viper.GetInt(KeyWorkers)
}

// ProbeTimeout returns the configured per-probe timeout, or 0 meaning "use
// the engine default".
func ProbeTimeout() time.Duration {
	return viper.GetDuration(KeyProbeTimeout)
}

// RulesetPath returns the rule-table override path, empty for the embedded
// default table.
func RulesetPath() string {
	return viper.GetString(KeyRuleset)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
