package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/catalog"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/config"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/pipeline"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/persistence/obslog"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/persistence/runindex"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to miner.yaml (optional)")
		obsPath    = flag.String("obs", "", "observation log (.jsonl or .jsonl.zst)")
		dataDir    = flag.String("data", "", "override data_dir (catalog datasets)")
		outDir     = flag.String("out", "", "override out_dir")
		svPath     = flag.String("sv", "", "override saved_variables path (implies -write-sv)")
		writeSV    = flag.Bool("write-sv", false, "merge into the saved-variables file")
		expansions = flag.String("expansions", "", "comma-separated expansion abbreviations")
		categories = flag.String("categories", "", "comma-separated categories (herbs,ores,fish,treasures)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[miner] ", log.LstdFlags|log.Lmicroseconds)

	if *obsPath == "" {
		fmt.Fprintln(os.Stderr, "missing -obs")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *outDir != "" {
		cfg.OutDir = *outDir
		cfg.CacheDir = ""
		cfg.RunIndex = ""
	}
	if *svPath != "" {
		cfg.SavedVariables = *svPath
		cfg.WriteSavedVariables = true
	}
	if *writeSV {
		cfg.WriteSavedVariables = true
	}
	if *expansions != "" {
		cfg.Expansions = splitCSV(*expansions)
	}
	if *categories != "" {
		cfg.Categories = splitCSV(*categories)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	cat, err := catalog.Load(cfg.DataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "catalog:", err)
		os.Exit(1)
	}

	observations, err := obslog.ReadAll(*obsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "observations:", err)
		os.Exit(1)
	}
	logger.Printf("loaded %d observations from %s", len(observations), *obsPath)

	var idx *runindex.Index
	if cfg.IndexEnabled() {
		idx, err = runindex.Open(cfg.RunIndex)
		if err != nil {
			// The ledger is bookkeeping; a broken db must not block mining.
			logger.Printf("WARN run ledger unavailable: %v", err)
		} else {
			defer idx.Close()
		}
	}

	report, err := pipeline.Run(pipeline.Options{
		Config:  cfg,
		Catalog: cat,
		Logger:  logger,
		Index:   idx,
	}, observations)
	if err != nil {
		fmt.Fprintln(os.Stderr, "run:", err)
		os.Exit(1)
	}
	if report.MergeErr != nil {
		fmt.Fprintln(os.Stderr, "saved-variables merge failed:", report.MergeErr)
		os.Exit(1)
	}
	logger.Printf("done: %d nodes, %d new, %d files", report.Total, report.TotalNew(), len(report.Files))
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
