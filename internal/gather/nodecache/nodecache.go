// Package nodecache persists per-expansion snapshots of every node seen in a
// run and classifies incoming records as new or already seen. The cache is a
// change detector, not the source of truth: the merged saved-variables
// document carries the real data.
package nodecache

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/gm2"
)

// Snapshot is one expansion's cache file. Nodes is keyed by
// `<zoneId>_<category>`, then by the packed coordinate in decimal text,
// holding the source id.
type Snapshot struct {
	Expansion string                       `json:"expansion"`
	LastRun   string                       `json:"last_run"`
	Nodes     map[string]map[string]string `json:"nodes"`
}

// Prior is the read-only union of previously persisted snapshots, used for
// new-node classification.
type Prior map[string]map[string]string

func FileName(expansion string) string {
	return fmt.Sprintf("node_cache_%s.json", expansion)
}

// Key builds the composite zone+category cache key.
func Key(zoneID string, cat gm2.Category) string {
	return zoneID + "_" + string(cat)
}

// NewSnapshot returns an empty snapshot for an expansion.
func NewSnapshot(expansion string) *Snapshot {
	return &Snapshot{Expansion: expansion, Nodes: map[string]map[string]string{}}
}

// Load reads an expansion's snapshot from dir. A missing or corrupt file
// degrades to an empty snapshot (every node in that expansion will classify
// as new); corruption is logged, never fatal.
func Load(dir, expansion string, logger *log.Logger) *Snapshot {
	path := filepath.Join(dir, FileName(expansion))
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Printf("WARN %s: unreadable cache, starting empty: %v", expansion, err)
		}
		return NewSnapshot(expansion)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		logger.Printf("WARN %s: corrupt cache %s, starting empty: %v", expansion, path, err)
		return NewSnapshot(expansion)
	}
	if snap.Expansion == "" {
		snap.Expansion = expansion
	}
	if snap.Nodes == nil {
		snap.Nodes = map[string]map[string]string{}
	}
	return &snap
}

// Save writes the snapshot to dir with the current run timestamp, replacing
// any previous file wholesale.
func (s *Snapshot) Save(dir string) error {
	s.LastRun = time.Now().Format("2006-01-02 15:04:05")
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, FileName(s.Expansion)), b, 0o644)
}

// Record adds one aggregated node to the snapshot, overwriting any previous
// source id at the same coordinate key.
func (s *Snapshot) Record(zoneID string, cat gm2.Category, coord int64, sourceID string) {
	key := Key(zoneID, cat)
	if s.Nodes[key] == nil {
		s.Nodes[key] = map[string]string{}
	}
	s.Nodes[key][fmt.Sprintf("%d", coord)] = sourceID
}

// Len counts the recorded nodes.
func (s *Snapshot) Len() int {
	n := 0
	for _, nodes := range s.Nodes {
		n += len(nodes)
	}
	return n
}

// Union flattens snapshots into one prior view. Later snapshots win on
// duplicate coordinate keys, which does not affect classification: novelty is
// key presence, not value equality. A node whose source id changed between
// runs is deliberately still "already seen".
func Union(snaps ...*Snapshot) Prior {
	prior := Prior{}
	for _, s := range snaps {
		for key, nodes := range s.Nodes {
			if prior[key] == nil {
				prior[key] = map[string]string{}
			}
			for coordText, sourceID := range nodes {
				prior[key][coordText] = sourceID
			}
		}
	}
	return prior
}

// Seen reports whether the coordinate was present in any prior snapshot.
func (p Prior) Seen(zoneID string, cat gm2.Category, coord int64) bool {
	nodes, ok := p[Key(zoneID, cat)]
	if !ok {
		return false
	}
	_, ok = nodes[fmt.Sprintf("%d", coord)]
	return ok
}

// Len counts the nodes in the prior view.
func (p Prior) Len() int {
	n := 0
	for _, nodes := range p {
		n += len(nodes)
	}
	return n
}
