// SPDX-License-Identifier: AGPL-3.0-or-later
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the optional per-project settings file at the project root.
const ConfigFile = "sdd-lite.yaml"

// Config holds project settings. Command-line flags take precedence over it,
// and it takes precedence over detection.
type Config struct {
	Type   string `yaml:"type"`
	Lang   string `yaml:"lang"`
	Entry  string `yaml:"entry"`
	MpRoot string `yaml:"mpRoot"`
}

// LoadConfig reads root/sdd-lite.yaml. A missing file yields a zero Config.
func LoadConfig(root string) (Config, error) {
	var cfg Config
	path := filepath.Join(root, ConfigFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Type != "" {
		if _, err := ParseType(c.Type); err != nil {
			return fmt.Errorf("%s: %w", ConfigFile, err)
		}
	}
	if c.Lang != "" && c.Lang != "ts" && c.Lang != "js" {
		return fmt.Errorf("%s: lang must be ts or js, got %q", ConfigFile, c.Lang)
	}
	return nil
}
