// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package natsort orders filenames so that embedded numbers compare by
// value: "page2.png" sorts before "page10.png".
package natsort

import (
	"slices"
	"strings"
)

// Segment is one run of a sort key. Keys alternate text and numeric
// segments, always starting and ending with a (possibly empty) text
// segment, so segments at the same index always have the same kind.
type Segment struct {
	// Text is the lowercased text run, or for numeric segments the digit
	// run with leading zeros removed.
	Text    string
	Numeric bool
}

// Key splits name into alternating text and digit runs. Text is folded to
// lower case (ASCII only); digit runs are kept as digit strings so numbers
// of any length compare by value.
func Key(name string) []Segment {
	key := make([]Segment, 0, 3)
	start := 0
	for i := 0; i <= len(name); i++ {
		if i < len(name) && !isDigit(name[i]) {
			continue
		}
		key = append(key, Segment{Text: asciiLower(name[start:i])})
		if i == len(name) {
			break
		}
		j := i
		for j < len(name) && isDigit(name[j]) {
			j++
		}
		key = append(key, Segment{Text: strings.TrimLeft(name[i:j], "0"), Numeric: true})
		start = j
		i = j - 1
	}
	return key
}

// Compare orders a and b by their natural keys and returns -1, 0, or +1.
// Names whose keys are equal (e.g. "a01" and "a1", or "A" and "a") compare 0.
func Compare(a, b string) int {
	return CompareKeys(Key(a), Key(b))
}

// CompareKeys orders two keys produced by Key.
func CompareKeys(a, b []Segment) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareSegment(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// Less reports whether a sorts before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Sort sorts names in natural order. The sort is stable: names with equal
// keys keep their input order.
func Sort(names []string) {
	keys := make(map[string][]Segment, len(names))
	for _, n := range names {
		if _, ok := keys[n]; !ok {
			keys[n] = Key(n)
		}
	}
	slices.SortStableFunc(names, func(a, b string) int {
		return CompareKeys(keys[a], keys[b])
	})
}

func compareSegment(a, b Segment) int {
	if a.Numeric && b.Numeric {
		if len(a.Text) != len(b.Text) {
			if len(a.Text) < len(b.Text) {
				return -1
			}
			return 1
		}
	}
	return strings.Compare(a.Text, b.Text)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
