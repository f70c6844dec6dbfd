// Package coord packs normalized 2D map positions into single-integer
// GatherMate2 table keys and allocates collision-free slots near a hint.
package coord

import "math"

// Encode packs two 0-100 percentages into one integer key. Each axis is
// quantized to four fixed decimal digits; the x digits occupy the high end,
// the y digits the middle, and the two lowest decimal digits stay zero.
// Those low digits are the collision-breaking space, so bumped keys keep
// their position in a numeric sort.
func Encode(x, y float64) int64 {
	xi := int64(math.Floor(x/100*10000 + 0.5))
	yi := int64(math.Floor(y/100*10000 + 0.5))
	return xi*1_000_000 + yi*100
}

// Allocate returns the first key >= hint that is not in occupied. The caller
// owns the occupied set (one per zone) and must insert the returned key
// itself; results depend on insertion order, so callers feed observations in
// a defined order to keep runs reproducible.
func Allocate(hint int64, occupied map[int64]struct{}) int64 {
	k := hint
	for {
		if _, taken := occupied[k]; !taken {
			return k
		}
		k++
	}
}
