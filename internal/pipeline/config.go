// Package pipeline wires the five lowering passes (O, G, P, E, C) together
// behind both the single-pass `pass <input>` CLI contract spec.md §6
// describes and a `build` convenience command that chains O, G and P and
// then either E or C in one invocation, grounded on the teacher's internal/build (multi-stage
// orchestration: resolve, link, write) and internal/buildutil (manifest
// loading) shape, generalized from a project-of-source-files build to a
// project-of-one-tree compiler pipeline.
package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BackEnd selects which of E (binary) or C (C source) a build produces.
type BackEnd string

const (
	BackEndBinary BackEnd = "binary"
	BackEndC      BackEnd = "c"
)

// Config is oocbe.yaml: the build subcommand's project manifest, playing
// the role the teacher's sentra.json/ProjectManifest plays for a Sentra
// project, narrowed to what a one-module compiler backend build needs.
type Config struct {
	Module  string  `yaml:"module"`
	Input   string  `yaml:"input"`
	Output  string  `yaml:"output"`
	BackEnd BackEnd `yaml:"backend"`
}

// LoadConfig reads and validates an oocbe.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: reading %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("pipeline: parsing %s: %w", path, err)
	}
	if cfg.Module == "" {
		return nil, fmt.Errorf("pipeline: %s: module name is required", path)
	}
	if cfg.Input == "" {
		return nil, fmt.Errorf("pipeline: %s: input path is required", path)
	}
	if cfg.BackEnd == "" {
		cfg.BackEnd = BackEndBinary
	}
	if cfg.BackEnd != BackEndBinary && cfg.BackEnd != BackEndC {
		return nil, fmt.Errorf("pipeline: %s: unknown backend %q", path, cfg.BackEnd)
	}
	return &cfg, nil
}
