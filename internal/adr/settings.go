package adr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SettingsFile is the per-repository configuration filename, stored
// alongside the ADR files.
const SettingsFile = ".decree.json"

// GuardrailTarget configures one generated lint artifact.
type GuardrailTarget struct {
	// Kind selects the renderer: "eslint", "ruff", or "boundaries".
	Kind string `json:"kind"`
	// Path is the output file, relative to the project root.
	Path string `json:"path"`
}

// Settings holds repository-level configuration for the gate and the
// guardrail projector. All fields have working defaults; the file is
// optional.
type Settings struct {
	// Aliases maps informal technology names to their canonical form
	// before gate evaluation ("pg" -> "postgresql").
	Aliases map[string]string `json:"aliases,omitempty"`
	// ExemptCategories lists choice categories that never require an
	// ADR ("tooling", "testing"). The gate answers ALLOWED for them.
	ExemptCategories []string `json:"exempt_categories,omitempty"`
	// Targets is the set of guardrail output files to project into.
	Targets []GuardrailTarget `json:"targets,omitempty"`
}

// DefaultSettings returns the configuration used when no settings file
// exists. The alias seed list covers the common shorthand names.
func DefaultSettings() Settings {
	return Settings{
		Aliases: map[string]string{
			"pg":          "postgresql",
			"postgres":    "postgresql",
			"mongo":       "mongodb",
			"react query": "@tanstack/react-query",
			"react-query": "@tanstack/react-query",
			"js":          "javascript",
			"ts":          "typescript",
		},
		Targets: []GuardrailTarget{
			{Kind: "eslint", Path: ".eslintrc.decree.json"},
			{Kind: "ruff", Path: "ruff.decree.toml"},
		},
	}
}

// LoadSettings reads the settings file from the ADR directory, falling
// back to defaults when absent. A present-but-broken file is an error —
// guessing at gate configuration would silently change verdicts.
func LoadSettings(adrDir string) (Settings, error) {
	path := filepath.Join(adrDir, SettingsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf("reading settings: %w", err)
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return settings, nil
}
