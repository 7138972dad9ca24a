package simd

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemchr(t *testing.T) {
	tests := []struct {
		haystack string
		needle   byte
	}{
		{"", 'x'},
		{"a", 'a'},
		{"a", 'b'},
		{"hello world", 'w'},
		{"hello world", 'z'},
		{strings.Repeat("a", 100) + "b", 'b'},
		{strings.Repeat("ab", 50), 'b'},
		{"1234567", '7'},  // below the SWAR width
		{"12345678", '8'}, // exactly one word
	}
	for _, tt := range tests {
		want := bytes.IndexByte([]byte(tt.haystack), tt.needle)
		got := Memchr([]byte(tt.haystack), tt.needle)
		if got != want {
			t.Errorf("Memchr(%q, %q) = %d, want %d", tt.haystack, tt.needle, got, want)
		}
	}
}

func TestMemchr2(t *testing.T) {
	tests := []struct {
		haystack string
		n1, n2   byte
		want     int
	}{
		{"", 'a', 'b', -1},
		{"xxayyb", 'a', 'b', 2},
		{"xxbyya", 'a', 'b', 2},
		{strings.Repeat("x", 64) + "A", 'a', 'A', 64},
		{"zzz", 'a', 'b', -1},
	}
	for _, tt := range tests {
		if got := Memchr2([]byte(tt.haystack), tt.n1, tt.n2); got != tt.want {
			t.Errorf("Memchr2(%q, %q, %q) = %d, want %d", tt.haystack, tt.n1, tt.n2, got, tt.want)
		}
	}
}

// TestMemchrAllOffsets cross-checks every position against the stdlib.
func TestMemchrAllOffsets(t *testing.T) {
	base := []byte(strings.Repeat("abcdefgh", 8))
	for i := range base {
		h := append([]byte(nil), base...)
		h[i] = 'Z'
		if got, want := Memchr(h, 'Z'), bytes.IndexByte(h, 'Z'); got != want {
			t.Fatalf("offset %d: got %d want %d", i, got, want)
		}
	}
}
