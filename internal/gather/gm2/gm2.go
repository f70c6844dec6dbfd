// Package gm2 holds the GatherMate2 constants shared across the pipeline:
// record categories, their table labels, and their output file names.
package gm2

type Category string

const (
	Herbs     Category = "herbs"
	Ores      Category = "ores"
	Fish      Category = "fish"
	Treasures Category = "treasures"
)

// Order is the canonical processing and output order within an expansion.
var Order = []Category{Herbs, Ores, Fish, Treasures}

var labels = map[Category]string{
	Herbs:     "Herb",
	Ores:      "Mine",
	Fish:      "Fish",
	Treasures: "Treasure",
}

var fileNames = map[Category]string{
	Herbs:     "Mined_HerbalismData.lua",
	Ores:      "Mined_MiningData.lua",
	Fish:      "Mined_FishData.lua",
	Treasures: "Mined_TreasureData.lua",
}

func (c Category) Valid() bool { return labels[c] != "" }

// Label is the table label, e.g. "Herb" for the GatherMate2HerbDB table.
func (c Category) Label() string { return labels[c] }

// DBName is the full saved-variables table name, e.g. "GatherMate2MineDB".
func (c Category) DBName() string { return "GatherMate2" + labels[c] + "DB" }

// FileName is the standalone table file written for this category.
func (c Category) FileName() string { return fileNames[c] }

// SettingsDBName is the opaque settings table carried through merges verbatim.
const SettingsDBName = "GatherMate2DB"
