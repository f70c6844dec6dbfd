// Package aggregate groups raw per-object coordinate observations into
// per-zone, collision-free category tables.
package aggregate

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/coord"
)

// Zone identifies a region of the game world. Identity is the canonical map
// id only; the external id is the upstream lookup key and the name is
// display-only.
type Zone struct {
	ExternalID string
	MapID      string
	Name       string
}

// Entry is one recorded node: a packed coordinate owned by exactly one zone
// table, and the source id of the object that produced it.
type Entry struct {
	Coord    int64
	SourceID string
}

// ZoneTable holds the entries placed in one zone, in insertion order.
type ZoneTable struct {
	Zone    Zone
	Entries []Entry

	occupied map[int64]struct{}
}

// CategoryTable maps zones (by map id) to their entries for one record
// category.
type CategoryTable struct {
	zones []*ZoneTable
	index map[string]*ZoneTable
}

// Aggregator builds a CategoryTable from a stream of observations. Collision
// resolution is order-dependent within a zone, so callers must add
// observations in a defined, documented order (object registration order).
type Aggregator struct {
	table CategoryTable
}

func NewAggregator() *Aggregator {
	return &Aggregator{table: CategoryTable{index: map[string]*ZoneTable{}}}
}

// Add encodes one observation and places it in its zone, bumping the packed
// key past already-occupied slots, and returns the key it settled on. Every
// well-formed observation yields exactly one entry; out-of-range coordinates
// and non-numeric map ids are caller bugs and fail the whole aggregation.
func (a *Aggregator) Add(z Zone, x, y float64, sourceID string) (int64, error) {
	if x < 0 || x > 100 || y < 0 || y > 100 {
		return 0, fmt.Errorf("zone %s: coordinate (%v, %v) outside [0,100]", z.MapID, x, y)
	}
	if _, err := strconv.Atoi(z.MapID); err != nil {
		return 0, fmt.Errorf("zone %q: map id %q is not numeric", z.Name, z.MapID)
	}

	zt := a.table.index[z.MapID]
	if zt == nil {
		zt = &ZoneTable{Zone: z, occupied: map[int64]struct{}{}}
		a.table.index[z.MapID] = zt
		a.table.zones = append(a.table.zones, zt)
	}

	k := coord.Allocate(coord.Encode(x, y), zt.occupied)
	zt.occupied[k] = struct{}{}
	zt.Entries = append(zt.Entries, Entry{Coord: k, SourceID: sourceID})
	return k, nil
}

func (a *Aggregator) Table() *CategoryTable { return &a.table }

// Zones returns the zone tables sorted by ascending numeric map id. Entries
// inside each table keep insertion order; serialization sorts them.
func (t *CategoryTable) Zones() []*ZoneTable {
	out := make([]*ZoneTable, len(t.zones))
	copy(out, t.zones)
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i].Zone.MapID)
		b, _ := strconv.Atoi(out[j].Zone.MapID)
		return a < b
	})
	return out
}

func (t *CategoryTable) Len() int {
	n := 0
	for _, zt := range t.zones {
		n += len(zt.Entries)
	}
	return n
}

// SortedEntries returns the zone's entries in ascending packed-coordinate
// order, the order the persisted format requires.
func (zt *ZoneTable) SortedEntries() []Entry {
	out := make([]Entry, len(zt.Entries))
	copy(out, zt.Entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Coord < out[j].Coord })
	return out
}
