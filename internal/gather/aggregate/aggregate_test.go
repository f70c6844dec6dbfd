package aggregate

import (
	"testing"

	"github.com/kaiuwepeter/GatherMate2Miner/internal/gather/coord"
)

var testZone = Zone{ExternalID: "14717", MapID: "2248", Name: "Isle of Dorn"}

func TestAdd_CollisionKeepsBothEntries(t *testing.T) {
	agg := NewAggregator()

	k1, err := agg.Add(testZone, 10, 20, "401")
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	k2, err := agg.Add(testZone, 10, 20, "402")
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	base := coord.Encode(10, 20)
	if k1 != base || k2 != base+1 {
		t.Fatalf("keys = %d, %d; want %d, %d", k1, k2, base, base+1)
	}

	zones := agg.Table().Zones()
	if len(zones) != 1 {
		t.Fatalf("zones = %d, want 1", len(zones))
	}
	entries := zones[0].SortedEntries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].SourceID != "401" || entries[1].SourceID != "402" {
		t.Fatalf("source ids = %s, %s", entries[0].SourceID, entries[1].SourceID)
	}
}

func TestAdd_CollisionIsPerZone(t *testing.T) {
	agg := NewAggregator()
	other := Zone{ExternalID: "14838", MapID: "2215", Name: "Hallowfall"}

	k1, err := agg.Add(testZone, 33, 44, "401")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	k2, err := agg.Add(other, 33, 44, "402")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if k1 != k2 {
		t.Fatalf("same position in different zones must not collide: %d vs %d", k1, k2)
	}
}

func TestAdd_OutOfRangeFails(t *testing.T) {
	agg := NewAggregator()
	if _, err := agg.Add(testZone, 100.01, 50, "401"); err == nil {
		t.Fatal("x > 100 accepted")
	}
	if _, err := agg.Add(testZone, 50, -0.1, "401"); err == nil {
		t.Fatal("y < 0 accepted")
	}
}

func TestAdd_NonNumericMapIDFails(t *testing.T) {
	agg := NewAggregator()
	bad := Zone{ExternalID: "1", MapID: "dorn", Name: "Bad"}
	if _, err := agg.Add(bad, 10, 10, "401"); err == nil {
		t.Fatal("non-numeric map id accepted")
	}
}

func TestZones_SortedByNumericMapID(t *testing.T) {
	agg := NewAggregator()
	for _, mapID := range []string{"2248", "63", "1161"} {
		z := Zone{ExternalID: "x" + mapID, MapID: mapID, Name: mapID}
		if _, err := agg.Add(z, 10, 10, "401"); err != nil {
			t.Fatalf("add %s: %v", mapID, err)
		}
	}
	zones := agg.Table().Zones()
	got := []string{zones[0].Zone.MapID, zones[1].Zone.MapID, zones[2].Zone.MapID}
	want := []string{"63", "1161", "2248"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("zone order = %v, want %v", got, want)
		}
	}
	if agg.Table().Len() != 3 {
		t.Fatalf("Len = %d, want 3", agg.Table().Len())
	}
}
