// obsgen writes a deterministic synthetic observation log for a catalog
// selection. It stands in for the upstream fetcher so the pipeline can be
// exercised end to end without touching the network.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"strings"

	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/catalog"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/gm2"
	"github.com/kaiuwepeter/GatherMate2Miner/internal/persistence/obslog"
)

func main() {
	var (
		dataDir    = flag.String("data", "./configs", "catalog dataset directory")
		outPath    = flag.String("out", "observations.jsonl", "output log (.jsonl or .jsonl.zst)")
		expansions = flag.String("expansions", "DF,TWW", "comma-separated expansion abbreviations")
		categories = flag.String("categories", "herbs,ores", "comma-separated categories")
		seed       = flag.Int64("seed", 1, "rng seed")
		perNode    = flag.Int("per-node", 5, "observations per node per zone")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[obsgen] ", log.LstdFlags|log.Lmicroseconds)

	cat, err := catalog.Load(*dataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "catalog:", err)
		os.Exit(1)
	}

	selCats := map[gm2.Category]bool{}
	for _, c := range strings.Split(*categories, ",") {
		selCats[gm2.Category(strings.TrimSpace(c))] = true
	}

	w, err := obslog.NewWriter(*outPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	total := 0
	for _, abbrev := range strings.Split(*expansions, ",") {
		abbrev = strings.TrimSpace(abbrev)
		if !cat.HasExpansion(abbrev) {
			fmt.Fprintf(os.Stderr, "unknown expansion %q\n", abbrev)
			os.Exit(1)
		}
		zones := cat.ZonesFor(abbrev)
		if len(zones) == 0 {
			continue
		}
		for _, category := range gm2.Order {
			if !selCats[category] {
				continue
			}
			for _, node := range cat.Nodes(abbrev, category) {
				// Spread each node over a couple of the expansion's zones.
				nz := 1 + rng.Intn(2)
				for zi := 0; zi < nz && zi < len(zones); zi++ {
					zone := zones[rng.Intn(len(zones))]
					for i := 0; i < *perNode; i++ {
						obs := obslog.Observation{
							Expansion: abbrev,
							Category:  string(category),
							SourceID:  node.SourceID,
							ObjectID:  firstID(node),
							ZoneID:    zone.WowheadID,
							X:         roundCoord(5 + rng.Float64()*90),
							Y:         roundCoord(5 + rng.Float64()*90),
						}
						if err := w.Append(obs); err != nil {
							fmt.Fprintln(os.Stderr, "write:", err)
							os.Exit(1)
						}
						total++
					}
				}
			}
		}
	}
	if err := w.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "close:", err)
		os.Exit(1)
	}
	logger.Printf("wrote %d observations to %s", total, *outPath)
}

func firstID(n catalog.Node) string {
	if len(n.ObjectIDs) > 0 {
		return n.ObjectIDs[0]
	}
	return ""
}

// roundCoord keeps one decimal, matching the precision of upstream data.
func roundCoord(v float64) float64 {
	return math.Round(v*10) / 10
}
