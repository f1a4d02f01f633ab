package utils

import "math"

// Ranks returns 1..count for a list that is already sorted best first.
// Ranks past math.MaxUint16 are clamped.
func Ranks(count int) []uint16 {
	if count <= 0 {
		return []uint16{}
	}
	ranks := make([]uint16, count)
	for i := range ranks {
		ranks[i] = uint16(min(i+1, math.MaxUint16))
	}
	return ranks
}
