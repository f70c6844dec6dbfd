// Package pipeline drives one miner run: resolve and aggregate observations,
// write the category table files, optionally merge them into a saved-
// variables document, and roll the per-expansion node caches forward.
package pipeline

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/aggregate"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/catalog"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/config"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/gm2"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/luadb"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/mergedb"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/nodecache"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/persistence/backup"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/persistence/obslog"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/persistence/runindex"
)

type Options struct {
	Config  config.Config
	Catalog *catalog.Catalog
	Logger  *log.Logger
	Index   *runindex.Index // optional run ledger
}

type Report struct {
	Total    int
	New      map[gm2.Category]int
	FirstRun bool
	Files    []string
	Tables   map[gm2.Category]luadb.ZoneMap

	// MergeErr is set when the saved-variables write failed. The table
	// files written earlier stay valid on their own, so this does not fail
	// the run.
	MergeErr   error
	BackupPath string
}

func (r *Report) TotalNew() int {
	n := 0
	for _, v := range r.New {
		n += v
	}
	return n
}

// Run executes the full pipeline over a fully materialized observation
// stream. Observation order is the caller's contract: collision allocation
// follows it, so the same input file always produces the same tables.
func Run(opts Options, observations []obslog.Observation) (*Report, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	for _, e := range cfg.Expansions {
		if !opts.Catalog.HasExpansion(e) {
			return nil, fmt.Errorf("unknown expansion %q", e)
		}
	}
	selectedExp := map[string]bool{}
	for _, e := range cfg.Expansions {
		selectedExp[e] = true
	}
	selectedCat := map[gm2.Category]bool{}
	for _, c := range cfg.SelectedCategories() {
		selectedCat[c] = true
	}

	var runID int64
	if opts.Index != nil {
		id, err := opts.Index.BeginRun(time.Now(), cfg.Expansions, cfg.Categories)
		if err != nil {
			return nil, fmt.Errorf("run ledger: %w", err)
		}
		runID = id
	}

	// Prior view across every selected expansion's cache; novelty is
	// checked against the union, snapshots are replaced per expansion.
	logger.Printf("loading expansion caches from %s", cfg.CacheDir)
	var priorSnaps []*nodecache.Snapshot
	snaps := map[string]*nodecache.Snapshot{}
	for _, e := range cfg.Expansions {
		old := nodecache.Load(cfg.CacheDir, e, logger)
		if old.Len() > 0 {
			logger.Printf("  %s: %d nodes (last: %s)", e, old.Len(), old.LastRun)
		} else {
			logger.Printf("  %s: no cache (first run)", e)
		}
		priorSnaps = append(priorSnaps, old)
		snaps[e] = nodecache.NewSnapshot(e)
	}
	prior := nodecache.Union(priorSnaps...)

	report := &Report{
		New:      map[gm2.Category]int{},
		FirstRun: prior.Len() == 0,
		Tables:   map[gm2.Category]luadb.ZoneMap{},
	}

	aggs := map[gm2.Category]*aggregate.Aggregator{}
	skipped := 0
	for _, obs := range observations {
		cat := gm2.Category(obs.Category)
		if !selectedExp[obs.Expansion] || !selectedCat[cat] {
			skipped++
			continue
		}
		zone, ok := opts.Catalog.ZoneByWowhead(obs.ZoneID)
		if !ok {
			if !opts.Catalog.Suppressed(obs.ZoneID) {
				logger.Printf("  found unlisted zone: %s", obs.ZoneID)
			}
			skipped++
			continue
		}

		agg := aggs[cat]
		if agg == nil {
			agg = aggregate.NewAggregator()
			aggs[cat] = agg
		}
		key, err := agg.Add(aggregate.Zone{
			ExternalID: zone.WowheadID,
			MapID:      zone.MapID,
			Name:       zone.Name,
		}, obs.X, obs.Y, obs.SourceID)
		if err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", cat, err)
		}

		snaps[obs.Expansion].Record(zone.MapID, cat, key, obs.SourceID)
		if !prior.Seen(zone.MapID, cat, key) {
			report.New[cat]++
		}
		report.Total++
	}
	if skipped > 0 {
		logger.Printf("skipped %d observations outside the selected expansions/categories", skipped)
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return nil, err
	}

	for _, cat := range gm2.Order {
		agg := aggs[cat]
		if agg == nil || agg.Table().Len() == 0 {
			continue
		}
		zm := zoneMapOf(agg.Table())
		report.Tables[cat] = zm

		path := filepath.Join(cfg.OutDir, cat.FileName())
		if err := writeTable(path, cat.DBName(), zm); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		report.Files = append(report.Files, path)
		logger.Printf("saved: %s (%d nodes, %d new)", path, zm.Len(), report.New[cat])
		recordArtifact(opts.Index, runID, "table", path, logger)
	}

	if cfg.WriteSavedVariables && cfg.SavedVariables != "" && len(report.Tables) > 0 {
		mergeSavedVariables(opts, runID, cfg, report, logger)
	}

	for _, e := range cfg.Expansions {
		snap := snaps[e]
		if snap.Len() == 0 {
			continue
		}
		if err := snap.Save(cfg.CacheDir); err != nil {
			return nil, fmt.Errorf("save cache %s: %w", e, err)
		}
		logger.Printf("  %s: %d nodes cached", e, snap.Len())
		recordArtifact(opts.Index, runID, "cache", filepath.Join(cfg.CacheDir, nodecache.FileName(e)), logger)
	}

	if report.FirstRun {
		logger.Printf("first run - all %d nodes are considered new", report.Total)
	} else {
		logger.Printf("new nodes since last run: %d (herbs %d, ores %d, fish %d, treasures %d)",
			report.TotalNew(), report.New[gm2.Herbs], report.New[gm2.Ores],
			report.New[gm2.Fish], report.New[gm2.Treasures])
	}

	if opts.Index != nil {
		if err := opts.Index.FinishRun(runID, time.Now(), report.Total, report.TotalNew()); err != nil {
			logger.Printf("WARN run ledger: %v", err)
		}
	}
	return report, nil
}

func mergeSavedVariables(opts Options, runID int64, cfg config.Config, report *Report, logger *log.Logger) {
	path := cfg.SavedVariables
	existing := gm2.SettingsDBName + " = {\n}\n"
	if raw, err := os.ReadFile(path); err == nil {
		existing = string(raw)
		logger.Printf("read existing: %s", path)
	} else if !os.IsNotExist(err) {
		report.MergeErr = err
		logger.Printf("ERROR reading %s: %v", path, err)
		return
	} else {
		logger.Printf("creating new saved-variables file")
	}

	merged := mergedb.Merge(existing, report.Tables, logger)
	backupPath, err := mergedb.WriteDocument(path, merged)
	if err != nil {
		// The Mined_*.lua files already on disk remain usable standalone.
		report.MergeErr = err
		logger.Printf("ERROR writing %s: %v", path, err)
		return
	}
	report.BackupPath = backupPath
	if backupPath != "" {
		logger.Printf("backup created: %s", backupPath)
		if opts.Index != nil {
			if err := opts.Index.RecordBackup(runID, path, backupPath); err != nil {
				logger.Printf("WARN run ledger: %v", err)
			}
		}
	}
	logger.Printf("merged data into %s", path)
	recordArtifact(opts.Index, runID, "saved_variables", path, logger)

	removed, err := backup.Prune(path, cfg.BackupKeep)
	if err != nil {
		logger.Printf("WARN pruning backups of %s: %v", path, err)
	}
	if len(removed) > 0 {
		logger.Printf("pruned %d old backups", len(removed))
		if opts.Index != nil {
			if err := opts.Index.ForgetBackups(removed); err != nil {
				logger.Printf("WARN run ledger: %v", err)
			}
		}
	}
}

func recordArtifact(idx *runindex.Index, runID int64, kind, path string, logger *log.Logger) {
	if idx == nil {
		return
	}
	if err := idx.RecordArtifact(runID, kind, path); err != nil {
		logger.Printf("WARN run ledger: %v", err)
	}
}

// zoneMapOf flattens an aggregated table into the serializer's structure.
func zoneMapOf(t *aggregate.CategoryTable) luadb.ZoneMap {
	zm := luadb.ZoneMap{}
	for _, zt := range t.Zones() {
		id, _ := strconv.Atoi(zt.Zone.MapID)
		nodes := luadb.Nodes{}
		for _, e := range zt.Entries {
			nodes[e.Coord] = e.SourceID
		}
		zm[id] = nodes
	}
	return zm
}

// writeTable writes one category file with scoped-resource semantics: open,
// write fully, sync, close, released even on a mid-write error.
func writeTable(path, dbName string, zm luadb.ZoneMap) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(luadb.Serialize(dbName, zm) + "\n"); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return f.Close()
}
