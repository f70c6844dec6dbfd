// Package mergedb merges freshly aggregated category tables into an existing
// saved-variables document. The merge is additive: new values overwrite the
// exact coordinate keys they collide with, everything else in the document
// survives, and the opaque settings table passes through verbatim.
package mergedb

import (
	"log"
	"strings"

	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/gm2"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/luadb"
)

// Merge combines newTables into the existing document text and returns the
// full replacement document. Categories missing from newTables pass through
// unchanged; categories whose existing section fails to parse are rebuilt
// from the new data alone (reported as a warning, never fatal). A missing
// settings table is synthesized empty.
func Merge(existing string, newTables map[gm2.Category]luadb.ZoneMap, logger *log.Logger) string {
	settings, ok := luadb.ExtractSection(existing, gm2.SettingsDBName)
	if !ok {
		settings = gm2.SettingsDBName + " = {\n}"
	}

	parts := []string{settings}
	for _, cat := range gm2.Order {
		prior, err := luadb.ParseCategory(existing, cat.DBName())
		if err != nil {
			logger.Printf("WARN %s: %v; merging as first write for this category", cat, err)
			prior = luadb.ZoneMap{}
		}
		merged := mergeZoneMaps(prior, newTables[cat])
		if len(merged) > 0 {
			parts = append(parts, luadb.Serialize(cat.DBName(), merged))
		}
	}
	return strings.Join(parts, "\n") + "\n"
}

// mergeZoneMaps unions fresh into existing, fresh values winning per
// coordinate key. Neither input is mutated. The union never drops a key: the
// engine cannot express "this node no longer exists".
func mergeZoneMaps(existing, fresh luadb.ZoneMap) luadb.ZoneMap {
	merged := existing.Clone()
	for zoneID, nodes := range fresh {
		if merged[zoneID] == nil {
			merged[zoneID] = luadb.Nodes{}
		}
		for k, v := range nodes {
			merged[zoneID][k] = v
		}
	}
	return merged
}
