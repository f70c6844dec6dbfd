package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/gm2"
)

func TestLoad_NoFileGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "./configs" || cfg.OutDir != "./DATA" {
		t.Fatalf("default dirs: %+v", cfg)
	}
	if cfg.CacheDir != cfg.OutDir {
		t.Fatalf("cache_dir should default to out_dir, got %q", cfg.CacheDir)
	}
	if cfg.BackupKeep != 5 {
		t.Fatalf("backup_keep = %d, want 5", cfg.BackupKeep)
	}
	if cfg.RunIndex != filepath.Join("./DATA", "runs.db") {
		t.Fatalf("run_index = %q", cfg.RunIndex)
	}
	if len(cfg.Expansions) == 0 || len(cfg.Categories) == 0 {
		t.Fatalf("empty default selection: %+v", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "miner.yaml")
	doc := `
data_dir: /data/catalogs
out_dir: /data/out
expansions: [CL, TBC]
categories: [herbs, ores, fish]
saved_variables: /wow/GatherMate2.lua
write_saved_variables: true
backup_keep: -1
run_index: none
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/data/catalogs" || cfg.OutDir != "/data/out" {
		t.Fatalf("dirs: %+v", cfg)
	}
	if len(cfg.Expansions) != 2 || cfg.Expansions[0] != "CL" {
		t.Fatalf("expansions: %v", cfg.Expansions)
	}
	if !cfg.WriteSavedVariables || cfg.SavedVariables != "/wow/GatherMate2.lua" {
		t.Fatalf("saved variables: %+v", cfg)
	}
	if cfg.BackupKeep != -1 {
		t.Fatalf("backup_keep = %d, want -1", cfg.BackupKeep)
	}
	if cfg.IndexEnabled() {
		t.Fatal("run_index none should disable the ledger")
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
	}{
		{"no expansions", func(c *Config) { c.Expansions = nil }},
		{"duplicate expansion", func(c *Config) { c.Expansions = []string{"DF", "DF"} }},
		{"no categories", func(c *Config) { c.Categories = nil }},
		{"unknown category", func(c *Config) { c.Categories = []string{"gems"} }},
		{"write without path", func(c *Config) {
			c.WriteSavedVariables = true
			c.SavedVariables = ""
		}},
	}
	for _, tc := range cases {
		cfg := defaults()
		cfg.Normalize()
		tc.mut(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: accepted", tc.name)
		}
	}
}

func TestSelectedCategories_CanonicalOrder(t *testing.T) {
	cfg := defaults()
	cfg.Categories = []string{"treasures", "herbs", "fish"}
	got := cfg.SelectedCategories()
	want := []gm2.Category{gm2.Herbs, gm2.Fish, gm2.Treasures}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
