// Package luadb renders and parses the bracketed saved-variables table
// format: an outer table keyed by numeric zone id, an inner table keyed by
// packed coordinate, values are source ids. Parsing is a small tokenizer plus
// recursive descent with real brace-depth tracking; it never assumes a single
// nesting level.
package luadb

import (
	"fmt"
	"sort"
	"strings"
)

// Nodes maps a packed coordinate to its source id (kept as decimal text, the
// way the format stores it).
type Nodes map[int64]string

// ZoneMap maps a numeric zone id to that zone's nodes.
type ZoneMap map[int]Nodes

// Serialize renders one category table. Zones ascend by numeric id and
// entries by packed coordinate; consumers diff these files between runs, so
// the ordering is part of the contract.
func Serialize(dbName string, zm ZoneMap) string {
	zoneIDs := make([]int, 0, len(zm))
	for id := range zm {
		zoneIDs = append(zoneIDs, id)
	}
	sort.Ints(zoneIDs)

	var b strings.Builder
	fmt.Fprintf(&b, "%s = {\n", dbName)
	for _, id := range zoneIDs {
		nodes := zm[id]
		coords := make([]int64, 0, len(nodes))
		for k := range nodes {
			coords = append(coords, k)
		}
		sort.Slice(coords, func(i, j int) bool { return coords[i] < coords[j] })

		fmt.Fprintf(&b, "\t[%d] = {\n", id)
		for _, k := range coords {
			fmt.Fprintf(&b, "\t\t[%d] = %s,\n", k, nodes[k])
		}
		b.WriteString("\t},\n")
	}
	b.WriteString("}")
	return b.String()
}

// Clone returns a deep copy. Merging mutates zone maps in place, so callers
// that keep the parsed original need their own copy.
func (zm ZoneMap) Clone() ZoneMap {
	out := make(ZoneMap, len(zm))
	for id, nodes := range zm {
		nn := make(Nodes, len(nodes))
		for k, v := range nodes {
			nn[k] = v
		}
		out[id] = nn
	}
	return out
}

func (zm ZoneMap) Len() int {
	n := 0
	for _, nodes := range zm {
		n += len(nodes)
	}
	return n
}
