package config

import (
	"errors"
	"fmt"
	"os"

	"apicase/pkg/logging"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads the configuration file at path. An empty path means
// DefaultConfigFile. A missing file yields the defaults.
//
// The environment override variable, when set, replaces the environment field.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	config := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "Error loading %s: %s", path, err)
			return Config{}, err
		}
		logging.Debug("ConfigLoader", "No config found at %s, using defaults", path)
	} else {
		config = Config{}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
		}
		applyDefaults(&config)
		logging.Info("ConfigLoader", "Loaded configuration from %s", path)
	}

	if env := os.Getenv(EnvironmentOverrideEnvVar); env != "" {
		logging.Debug("ConfigLoader", "Environment overridden to %s by %s", env, EnvironmentOverrideEnvVar)
		config.Environment = env
	}

	return config, nil
}
