package luadb

import (
	"fmt"
	"strconv"
)

// ParseCategory extracts the named table (e.g. "GatherMate2HerbDB") from a
// document and returns its zone map. Surrounding content, other categories
// and the settings blob included, is ignored. A document without the table
// yields an empty map and no error; a table that opens but never closes is a
// parse error the caller should downgrade to "treat as empty" with a warning.
func ParseCategory(doc, dbName string) (ZoneMap, error) {
	sc := &scanner{src: doc}
	for {
		t := sc.next()
		if t.kind == tokEOF {
			return ZoneMap{}, nil
		}
		if t.kind != tokIdent || t.text != dbName {
			continue
		}
		mark := sc.pos
		if sc.next().kind == tokEq && sc.next().kind == tokLBrace {
			zm, err := parseZones(sc)
			if err != nil {
				return ZoneMap{}, fmt.Errorf("%s: %w", dbName, err)
			}
			return zm, nil
		}
		sc.pos = mark
	}
}

// parseZones consumes the body of a category table up to its closing brace.
// Well-formed `[zone] = { [coord] = value, ... }` pairs are collected;
// anything else inside the body is skipped, with nested braces tracked so a
// stray inner table cannot desynchronize the outer parse.
func parseZones(sc *scanner) (ZoneMap, error) {
	zm := ZoneMap{}
	for {
		t := sc.next()
		switch t.kind {
		case tokEOF:
			return nil, fmt.Errorf("unterminated table")
		case tokRBrace:
			return zm, nil
		case tokLBrace:
			if err := skipBalanced(sc); err != nil {
				return nil, err
			}
		case tokLBrack:
			key := sc.next()
			if key.kind != tokNumber {
				continue
			}
			if sc.next().kind != tokRBrack || sc.next().kind != tokEq {
				continue
			}
			val := sc.next()
			if val.kind != tokLBrace {
				// Zone values are always tables; a bare value here is
				// foreign content.
				continue
			}
			nodes, err := parseNodes(sc)
			if err != nil {
				return nil, err
			}
			zoneID, err := strconv.Atoi(key.text)
			if err != nil {
				continue
			}
			if len(nodes) > 0 {
				if zm[zoneID] == nil {
					zm[zoneID] = Nodes{}
				}
				for k, v := range nodes {
					zm[zoneID][k] = v
				}
			}
		}
	}
}

func parseNodes(sc *scanner) (Nodes, error) {
	nodes := Nodes{}
	for {
		t := sc.next()
		switch t.kind {
		case tokEOF:
			return nil, fmt.Errorf("unterminated zone table")
		case tokRBrace:
			return nodes, nil
		case tokLBrace:
			if err := skipBalanced(sc); err != nil {
				return nil, err
			}
		case tokLBrack:
			key := sc.next()
			if key.kind != tokNumber {
				continue
			}
			if sc.next().kind != tokRBrack || sc.next().kind != tokEq {
				continue
			}
			val := sc.next()
			if val.kind == tokLBrace {
				if err := skipBalanced(sc); err != nil {
					return nil, err
				}
				continue
			}
			if val.kind != tokNumber {
				continue
			}
			coord, err := strconv.ParseInt(key.text, 10, 64)
			if err != nil {
				continue
			}
			nodes[coord] = val.text
		}
	}
}

// skipBalanced consumes tokens until the brace opened just before the call is
// closed, counting nested pairs at any depth.
func skipBalanced(sc *scanner) error {
	depth := 1
	for depth > 0 {
		t := sc.next()
		switch t.kind {
		case tokEOF:
			return fmt.Errorf("unterminated table")
		case tokLBrace:
			depth++
		case tokRBrace:
			depth--
		}
	}
	return nil
}

// ExtractSection returns the verbatim source text of `<name> = { ... }`,
// from the identifier through the matching close brace. Used to carry the
// opaque settings table through a merge untouched.
func ExtractSection(doc, name string) (string, bool) {
	sc := &scanner{src: doc}
	for {
		t := sc.next()
		if t.kind == tokEOF {
			return "", false
		}
		if t.kind != tokIdent || t.text != name {
			continue
		}
		mark := sc.pos
		if sc.next().kind == tokEq && sc.next().kind == tokLBrace {
			if err := skipBalanced(sc); err != nil {
				return "", false
			}
			return doc[t.pos:sc.pos], true
		}
		sc.pos = mark
	}
}
