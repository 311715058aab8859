// Package config loads the optional .parlrc.yaml project configuration
// (SPEC_FULL.md §4.5): knobs that are legitimately per-project rather
// than per-invocation flags, parsed with gopkg.in/yaml.v3.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// HexCase controls how colour literals are re-printed in --show-ast dumps.
type HexCase string

const (
	HexLower HexCase = "lower"
	HexUpper HexCase = "upper"
)

// Config holds the resolved set of project-wide compiler knobs.
type Config struct {
	// HexCase selects lower or upper hex digits when re-printing colour
	// literals (default: lower).
	HexCase HexCase `yaml:"hex_case"`

	// AllowFloatMod overrides Open Question 3 (SPEC_FULL.md §4.7): by
	// default `%` on float operands is a semantic error, since the VM
	// has no float mod instruction. Set true to permit it.
	AllowFloatMod bool `yaml:"allow_float_mod"`

	// BuiltinAliases maps extra convenience names to an existing
	// built-in name, e.g. `px: __write` lets source call `px(...)`.
	BuiltinAliases map[string]string `yaml:"builtin_aliases"`
}

// Default returns the configuration used when no .parlrc.yaml is found.
func Default() *Config {
	return &Config{HexCase: HexLower}
}

// Load reads and parses a .parlrc.yaml file at path. A missing file is
// not an error: Load returns Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.HexCase != HexLower && cfg.HexCase != HexUpper {
		cfg.HexCase = HexLower
	}
	return cfg, nil
}
