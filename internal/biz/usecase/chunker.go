package usecase

import (
	"fmt"
	"strings"
	"unicode"
)

// PartMarkerReserve is kept free in every segment for the [i/n] marker
const PartMarkerReserve = 24

// SplitForTransport splits text into segments of at most limit characters.
// Cuts prefer a paragraph break, then a line break, when the segment keeps at
// least half the limit. Otherwise the last space wins, and without one the text is hard-cut.
// Empty input yields no segments. A non-positive limit falls back to the default.
func SplitForTransport(text string, limit int) []string {
	rest := []rune(strings.TrimSpace(text))
	if len(rest) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultTransportLimit - PartMarkerReserve
	}
	if len(rest) <= limit {
		return []string{string(rest)}
	}

	var segments []string
	for len(rest) > limit {
		cut := lastIndexAtOrBefore(rest, "\n\n", limit)
		if 2*cut < limit {
			cut = lastIndexAtOrBefore(rest, "\n", limit)
		}
		if 2*cut < limit {
			cut = lastIndexAtOrBefore(rest, " ", limit)
		}
		if cut <= 0 {
			cut = limit
		}

		segments = append(segments, strings.TrimRightFunc(string(rest[:cut]), unicode.IsSpace))
		rest = []rune(strings.TrimLeftFunc(string(rest[cut:]), unicode.IsSpace))
	}
	if len(rest) > 0 {
		segments = append(segments, string(rest))
	}
	return segments
}

// lastIndexAtOrBefore returns the last index i <= pos where sep starts, or -1
func lastIndexAtOrBefore(text []rune, sep string, pos int) int {
	needle := []rune(sep)
	start := pos
	if start > len(text)-len(needle) {
		start = len(text) - len(needle)
	}
	for i := start; i >= 0; i-- {
		match := true
		for j, r := range needle {
			if text[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// WithPartMarkers prefixes each segment with [i/n] when there is more than one
func WithPartMarkers(segments []string) []string {
	if len(segments) < 2 {
		return segments
	}
	marked := make([]string, len(segments))
	for i, s := range segments {
		marked[i] = fmt.Sprintf("[%d/%d]\n%s", i+1, len(segments), s)
	}
	return marked
}
