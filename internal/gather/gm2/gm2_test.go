package gm2

import "testing"

func TestCategoryNaming(t *testing.T) {
	cases := []struct {
		cat    Category
		label  string
		dbName string
		file   string
	}{
		{Herbs, "Herb", "GatherMate2HerbDB", "Mined_HerbalismData.lua"},
		{Ores, "Mine", "GatherMate2MineDB", "Mined_MiningData.lua"},
		{Fish, "Fish", "GatherMate2FishDB", "Mined_FishData.lua"},
		{Treasures, "Treasure", "GatherMate2TreasureDB", "Mined_TreasureData.lua"},
	}
	for _, c := range cases {
		if !c.cat.Valid() {
			t.Fatalf("%s not valid", c.cat)
		}
		if c.cat.Label() != c.label || c.cat.DBName() != c.dbName || c.cat.FileName() != c.file {
			t.Fatalf("%s: %s %s %s", c.cat, c.cat.Label(), c.cat.DBName(), c.cat.FileName())
		}
	}
	if Category("gems").Valid() {
		t.Fatal("unknown category valid")
	}
	if len(Order) != 4 || Order[0] != Herbs || Order[3] != Treasures {
		t.Fatalf("Order: %v", Order)
	}
}
