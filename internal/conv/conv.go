// Package conv provides safe integer conversion helpers for the regex
// engine. They panic on overflow since that indicates a programming error
// (a pattern exceeding internal limits is rejected by the parser first).
package conv

import "math"

// IntToUint32 safely converts an int to uint32.
// Panics if n < 0 or n > math.MaxUint32.
func IntToUint32(n int) uint32 {
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("integer overflow: int value out of uint32 range")
	}
	return uint32(n)
}

// Uint64ToInt safely converts a uint64 to int.
// Panics if n > math.MaxInt.
func Uint64ToInt(n uint64) int {
	if n > uint64(math.MaxInt) {
		panic("integer overflow: uint64 value out of int range")
	}
	return int(n)
}
