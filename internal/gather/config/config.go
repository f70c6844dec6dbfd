// Package config loads miner.yaml, the one file that selects what to process
// and where artifacts go. Flags on the command line override file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/gm2"
)

type Config struct {
	// DataDir holds the catalog datasets (zones.json, nodes/).
	DataDir string `yaml:"data_dir"`
	// OutDir receives the Mined_*.lua files and, unless CacheDir overrides
	// it, the node caches.
	OutDir   string `yaml:"out_dir"`
	CacheDir string `yaml:"cache_dir,omitempty"`

	// Expansions and Categories select what the run processes, by
	// abbreviation and category key.
	Expansions []string `yaml:"expansions"`
	Categories []string `yaml:"categories"`

	// SavedVariables is the GatherMate2.lua to merge into; empty or
	// WriteSavedVariables=false skips the merge step.
	SavedVariables      string `yaml:"saved_variables,omitempty"`
	WriteSavedVariables bool   `yaml:"write_saved_variables"`

	// BackupKeep is how many timestamped backups to retain per merge
	// target. 0 means the default; negative keeps everything.
	BackupKeep int `yaml:"backup_keep,omitempty"`

	// RunIndex is the sqlite run ledger path; "none" disables it, empty
	// defaults to <out_dir>/runs.db.
	RunIndex string `yaml:"run_index,omitempty"`
}

const defaultBackupKeep = 5

func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("miner.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("miner.yaml: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		DataDir:    "./configs",
		OutDir:     "./DATA",
		Expansions: []string{"DF", "TWW"},
		Categories: []string{string(gm2.Herbs), string(gm2.Ores)},
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./configs"
	}
	if strings.TrimSpace(c.OutDir) == "" {
		c.OutDir = "./DATA"
	}
	if strings.TrimSpace(c.CacheDir) == "" {
		c.CacheDir = c.OutDir
	}
	if c.BackupKeep == 0 {
		c.BackupKeep = defaultBackupKeep
	}
	if strings.TrimSpace(c.RunIndex) == "" {
		c.RunIndex = filepath.Join(c.OutDir, "runs.db")
	}
}

func (c Config) Validate() error {
	if len(c.Expansions) == 0 {
		return fmt.Errorf("expansions must not be empty")
	}
	seen := map[string]bool{}
	for _, e := range c.Expansions {
		if strings.TrimSpace(e) == "" {
			return fmt.Errorf("empty expansion abbreviation")
		}
		if seen[e] {
			return fmt.Errorf("duplicate expansion %s", e)
		}
		seen[e] = true
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("categories must not be empty")
	}
	for _, cat := range c.Categories {
		if !gm2.Category(cat).Valid() {
			return fmt.Errorf("unknown category %q", cat)
		}
	}
	if c.WriteSavedVariables && strings.TrimSpace(c.SavedVariables) == "" {
		return fmt.Errorf("write_saved_variables requires saved_variables path")
	}
	return nil
}

// SelectedCategories returns the configured categories in canonical order.
func (c Config) SelectedCategories() []gm2.Category {
	want := map[gm2.Category]bool{}
	for _, cat := range c.Categories {
		want[gm2.Category(cat)] = true
	}
	var out []gm2.Category
	for _, cat := range gm2.Order {
		if want[cat] {
			out = append(out, cat)
		}
	}
	return out
}

// IndexEnabled reports whether the run ledger should be opened.
func (c Config) IndexEnabled() bool { return c.RunIndex != "none" }
