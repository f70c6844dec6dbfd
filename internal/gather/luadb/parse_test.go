package luadb

import (
	"strings"
	"testing"
)

const sampleDoc = `
GatherMate2DB = {
	["profileKeys"] = {
		["Char - Realm"] = "Default",
	},
	["profiles"] = {
		["Default"] = {
			["note"] = "braces in strings { } must not confuse the parser",
		},
	},
}
GatherMate2HerbDB = {
	[63] = {
		[1000200000] = 401,
		[1000200001] = 402,
	},
	[2248] = {
		[5000500000] = 1439,
	},
}
GatherMate2MineDB = {
	[2215] = {
		[123456700] = 1218,
	},
}
`

func TestParseCategory_PicksOneTable(t *testing.T) {
	zm, err := ParseCategory(sampleDoc, "GatherMate2HerbDB")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if zm.Len() != 3 {
		t.Fatalf("nodes = %d, want 3", zm.Len())
	}
	if zm[63][1000200001] != "402" {
		t.Fatalf("zone 63: %v", zm[63])
	}
	if zm[2248][5000500000] != "1439" {
		t.Fatalf("zone 2248: %v", zm[2248])
	}

	mine, err := ParseCategory(sampleDoc, "GatherMate2MineDB")
	if err != nil {
		t.Fatalf("parse mine: %v", err)
	}
	if mine.Len() != 1 || mine[2215][123456700] != "1218" {
		t.Fatalf("mine table: %v", mine)
	}
}

func TestParseCategory_AbsentTableIsEmpty(t *testing.T) {
	zm, err := ParseCategory(sampleDoc, "GatherMate2FishDB")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(zm) != 0 {
		t.Fatalf("absent table: %v", zm)
	}
}

func TestParseCategory_Unterminated(t *testing.T) {
	doc := "GatherMate2HerbDB = {\n\t[63] = {\n\t\t[10] = 401,\n"
	if _, err := ParseCategory(doc, "GatherMate2HerbDB"); err == nil {
		t.Fatal("unterminated table parsed without error")
	}
}

func TestParseCategory_SkipsForeignContent(t *testing.T) {
	doc := `GatherMate2HerbDB = {
	["version"] = 2,
	[63] = {
		["meta"] = { ["nested"] = { 1, 2, 3 } },
		[1000200000] = 401,
	},
	[64] = "not a table",
	[65] = {
		[2000100000] = 404,
	},
}`
	zm, err := ParseCategory(doc, "GatherMate2HerbDB")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if zm.Len() != 2 {
		t.Fatalf("nodes = %d, want 2 (%v)", zm.Len(), zm)
	}
	if zm[63][1000200000] != "401" || zm[65][2000100000] != "404" {
		t.Fatalf("parsed: %v", zm)
	}
}

func TestExtractSection_Verbatim(t *testing.T) {
	section, ok := ExtractSection(sampleDoc, "GatherMate2DB")
	if !ok {
		t.Fatal("settings section not found")
	}
	if !strings.HasPrefix(section, "GatherMate2DB = {") || !strings.HasSuffix(section, "}") {
		t.Fatalf("section bounds: %q", section)
	}
	if !strings.Contains(section, `braces in strings { } must not confuse the parser`) {
		t.Fatalf("settings content lost: %q", section)
	}
	// The capture must stop at the settings table, not swallow the herb db.
	if strings.Contains(section, "GatherMate2HerbDB") {
		t.Fatalf("section ran past its close brace: %q", section)
	}
}

func TestExtractSection_Missing(t *testing.T) {
	if _, ok := ExtractSection("GatherMate2HerbDB = {\n}", "GatherMate2DB"); ok {
		t.Fatal("found a section that is not there")
	}
}
