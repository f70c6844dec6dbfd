// svmerge merges previously mined table files into a GatherMate2
// saved-variables document, standalone. Useful when mining and importing
// happen on different machines, or to re-apply an old mining result.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/gm2"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/luadb"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/mergedb"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/persistence/backup"
)

func main() {
	var (
		svPath  = flag.String("sv", "", "GatherMate2.lua saved-variables file")
		dataDir = flag.String("data", "./DATA", "directory holding Mined_*.lua files")
		keep    = flag.Int("keep", 5, "backups to retain per target (-1 keeps all)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[svmerge] ", log.LstdFlags|log.Lmicroseconds)

	if *svPath == "" {
		fmt.Fprintln(os.Stderr, "missing -sv")
		os.Exit(2)
	}

	tables := map[gm2.Category]luadb.ZoneMap{}
	for _, cat := range gm2.Order {
		path := filepath.Join(*dataDir, cat.FileName())
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
			os.Exit(1)
		}
		zm, err := luadb.ParseCategory(string(raw), cat.DBName())
		if err != nil {
			fmt.Fprintf(os.Stderr, "parse %s: %v\n", path, err)
			os.Exit(1)
		}
		if len(zm) > 0 {
			tables[cat] = zm
			logger.Printf("loaded %s: %d nodes in %d zones", path, zm.Len(), len(zm))
		}
	}
	if len(tables) == 0 {
		fmt.Fprintln(os.Stderr, "no Mined_*.lua files found in", *dataDir)
		os.Exit(1)
	}

	existing := gm2.SettingsDBName + " = {\n}\n"
	if raw, err := os.ReadFile(*svPath); err == nil {
		existing = string(raw)
		logger.Printf("read existing: %s", *svPath)
	} else if !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *svPath, err)
		os.Exit(1)
	} else {
		logger.Printf("creating new saved-variables file")
	}

	merged := mergedb.Merge(existing, tables, logger)
	backupPath, err := mergedb.WriteDocument(*svPath, merged)
	if err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *svPath, err)
		os.Exit(1)
	}
	if backupPath != "" {
		logger.Printf("backup created: %s", backupPath)
	}
	if removed, err := backup.Prune(*svPath, *keep); err != nil {
		logger.Printf("WARN pruning backups: %v", err)
	} else if len(removed) > 0 {
		logger.Printf("pruned %d old backups", len(removed))
	}
	logger.Printf("merged %d categories into %s", len(tables), *svPath)
}
