// Package simd provides byte-scanning primitives for the unanchored
// starter's prefilters. The implementations are pure Go SWAR (SIMD Within
// A Register): 8 bytes are examined per uint64 operation, which is 2-5x
// faster than a byte loop on candidate-sparse inputs.
package simd

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/sys/cpu"
)

// wideStride reports whether the host profits from the 16-byte unrolled
// inner loop; on anything modern with SSE2-class load throughput it does.
var wideStride = cpu.X86.HasSSE2 || cpu.ARM64.HasASIMD

const (
	lo8 = 0x0101010101010101
	hi8 = 0x8080808080808080
)

// Memchr returns the index of the first instance of needle in haystack,
// or -1 if needle is not present.
func Memchr(haystack []byte, needle byte) int {
	n := len(haystack)
	if n < 8 {
		for i := 0; i < n; i++ {
			if haystack[i] == needle {
				return i
			}
		}
		return -1
	}

	mask := uint64(needle) * lo8
	i := 0

	if wideStride {
		for i+16 <= n {
			a := binary.LittleEndian.Uint64(haystack[i:]) ^ mask
			b := binary.LittleEndian.Uint64(haystack[i+8:]) ^ mask
			za := (a - lo8) & ^a & hi8
			zb := (b - lo8) & ^b & hi8
			if za != 0 {
				return i + bits.TrailingZeros64(za)/8
			}
			if zb != 0 {
				return i + 8 + bits.TrailingZeros64(zb)/8
			}
			i += 16
		}
	}
	for i+8 <= n {
		chunk := binary.LittleEndian.Uint64(haystack[i:]) ^ mask
		if z := (chunk - lo8) & ^chunk & hi8; z != 0 {
			return i + bits.TrailingZeros64(z)/8
		}
		i += 8
	}
	for ; i < n; i++ {
		if haystack[i] == needle {
			return i
		}
	}
	return -1
}

// Memchr2 returns the index of the first instance of either needle in
// haystack, or -1 if neither is present.
func Memchr2(haystack []byte, needle1, needle2 byte) int {
	n := len(haystack)
	mask1 := uint64(needle1) * lo8
	mask2 := uint64(needle2) * lo8

	i := 0
	for i+8 <= n {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		x1 := chunk ^ mask1
		x2 := chunk ^ mask2
		z := ((x1 - lo8) & ^x1 & hi8) | ((x2 - lo8) & ^x2 & hi8)
		if z != 0 {
			return i + bits.TrailingZeros64(z)/8
		}
		i += 8
	}
	for ; i < n; i++ {
		if haystack[i] == needle1 || haystack[i] == needle2 {
			return i
		}
	}
	return -1
}
