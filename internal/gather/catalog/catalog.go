// Package catalog loads the static datasets the pipeline runs against: the
// expansion roster, the zone lookup table (upstream zone id to map id), the
// zone suppression list, and the per-expansion node definitions.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/gm2"
)

type Expansion struct {
	Abbrev string `json:"abbrev"`
	Name   string `json:"name"`
	Beta   bool   `json:"beta,omitempty"`
}

// Zone maps an upstream (wowhead) zone id to the canonical map id the table
// format uses. Several upstream ids may alias one map id; the map id is the
// identity.
type Zone struct {
	WowheadID      string `json:"wowhead_id"`
	MapID          string `json:"map_id"`
	Name           string `json:"name"`
	Expansion      string `json:"expansion"`
	SkipUIMapCheck bool   `json:"skip_uimap_check,omitempty"`
}

// Node is one tracked source object: the upstream object ids it is fetched
// under and the source id recorded in the tables.
type Node struct {
	Name      string       `json:"name"`
	ObjectIDs []string     `json:"object_ids"`
	SourceID  string       `json:"source_id"`
	Category  gm2.Category `json:"category"`
	Beta      bool         `json:"beta,omitempty"`
}

type Catalog struct {
	Expansions []Expansion
	Zones      []Zone

	byWowhead  map[string]Zone
	byAbbrev   map[string]Expansion
	suppressed map[string]bool
	nodes      map[string][]Node // by expansion abbrev, file order
}

// Load reads expansions.json, zones.json, suppressed_zones.json and
// nodes/<ABBREV>.json from dir. Node files may be absent for expansions with
// nothing tracked yet.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{
		byWowhead:  map[string]Zone{},
		byAbbrev:   map[string]Expansion{},
		suppressed: map[string]bool{},
		nodes:      map[string][]Node{},
	}

	if err := readJSON(filepath.Join(dir, "expansions.json"), &c.Expansions); err != nil {
		return nil, err
	}
	for _, e := range c.Expansions {
		if e.Abbrev == "" {
			return nil, fmt.Errorf("expansions.json: empty abbrev")
		}
		if _, dup := c.byAbbrev[e.Abbrev]; dup {
			return nil, fmt.Errorf("expansions.json: duplicate abbrev %s", e.Abbrev)
		}
		c.byAbbrev[e.Abbrev] = e
	}

	if err := readJSON(filepath.Join(dir, "zones.json"), &c.Zones); err != nil {
		return nil, err
	}
	for _, z := range c.Zones {
		if z.WowheadID == "" || z.MapID == "" {
			return nil, fmt.Errorf("zones.json: zone %q missing ids", z.Name)
		}
		if _, err := strconv.Atoi(z.MapID); err != nil {
			return nil, fmt.Errorf("zones.json: zone %q map id %q is not numeric", z.Name, z.MapID)
		}
		if _, dup := c.byWowhead[z.WowheadID]; dup {
			return nil, fmt.Errorf("zones.json: duplicate wowhead id %s", z.WowheadID)
		}
		if _, ok := c.byAbbrev[z.Expansion]; !ok {
			return nil, fmt.Errorf("zones.json: zone %q unknown expansion %q", z.Name, z.Expansion)
		}
		c.byWowhead[z.WowheadID] = z
	}

	var suppressed []string
	if err := readJSON(filepath.Join(dir, "suppressed_zones.json"), &suppressed); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	for _, id := range suppressed {
		c.suppressed[id] = true
	}

	for _, e := range c.Expansions {
		path := filepath.Join(dir, "nodes", e.Abbrev+".json")
		var nodes []Node
		if err := readJSON(path, &nodes); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, n := range nodes {
			if n.SourceID == "" {
				return nil, fmt.Errorf("nodes/%s.json: node %q missing source_id", e.Abbrev, n.Name)
			}
			if !n.Category.Valid() {
				return nil, fmt.Errorf("nodes/%s.json: node %q bad category %q", e.Abbrev, n.Name, n.Category)
			}
		}
		c.nodes[e.Abbrev] = nodes
	}

	return c, nil
}

func readJSON(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

// ZoneByWowhead resolves an upstream zone id.
func (c *Catalog) ZoneByWowhead(id string) (Zone, bool) {
	z, ok := c.byWowhead[id]
	return z, ok
}

// Suppressed reports whether an upstream zone id is on the ignore list
// (dungeons and other maps that never carry nodes).
func (c *Catalog) Suppressed(id string) bool { return c.suppressed[id] }

func (c *Catalog) HasExpansion(abbrev string) bool {
	_, ok := c.byAbbrev[abbrev]
	return ok
}

// ZonesFor returns an expansion's zones in file order.
func (c *Catalog) ZonesFor(abbrev string) []Zone {
	var out []Zone
	for _, z := range c.Zones {
		if z.Expansion == abbrev {
			out = append(out, z)
		}
	}
	return out
}

// Nodes returns an expansion's node definitions for one category in
// registration order. That order feeds the observation stream, which keeps
// collision allocation reproducible run to run.
func (c *Catalog) Nodes(abbrev string, cat gm2.Category) []Node {
	var out []Node
	for _, n := range c.nodes[abbrev] {
		if n.Category == cat {
			out = append(out, n)
		}
	}
	return out
}
