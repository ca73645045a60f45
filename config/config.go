// Package config loads the optional ambient configuration file
// (region overrides and similar process-wide defaults) spec.md §6
// leaves unspecified ("read from the ambient environment; not part of
// the core contract"). A missing file is not an error: the AWS SDK's
// own default chain (environment variables, shared config, IMDS) still
// applies.
package config

import (
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Config holds process-wide defaults read from config.yaml.
type Config struct {
	// Region overrides the AWS region the SDK's default chain would
	// otherwise resolve. Empty means "let the SDK decide".
	Region string `yaml:"region"`
}

// Load reads path if it exists, returning a zero-value Config
// otherwise. A present-but-malformed file is an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	logrus.WithField("path", path).Info("config: loaded")
	return cfg, nil
}
