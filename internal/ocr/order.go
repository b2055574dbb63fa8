package ocr

import (
	"math"
	"sort"
	"strings"
)

// DefaultLineHeight is the vertical grouping threshold in pixels of the
// preprocessed (2x upscaled) region image.
const DefaultLineHeight = 20.0

// Lines groups spans into reading-order lines: spans are sorted by
// vertical center, greedily chained into a line while consecutive centers
// stay within lineHeight, and each line is ordered left to right.
func Lines(spans []Span, lineHeight float64) [][]Span {
	if len(spans) == 0 {
		return nil
	}
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Box.CenterY() < sorted[j].Box.CenterY()
	})

	var lines [][]Span
	current := []Span{sorted[0]}
	for _, span := range sorted[1:] {
		prev := current[len(current)-1]
		if math.Abs(span.Box.CenterY()-prev.Box.CenterY()) < lineHeight {
			current = append(current, span)
		} else {
			lines = append(lines, sortLine(current))
			current = []Span{span}
		}
	}
	lines = append(lines, sortLine(current))
	return lines
}

func sortLine(line []Span) []Span {
	sort.SliceStable(line, func(i, j int) bool {
		return line[i].Box.MinX < line[j].Box.MinX
	})
	return line
}

// JoinLines renders grouped spans as text: fragments within a line are
// joined by single spaces, lines by newlines.
func JoinLines(lines [][]Span) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		words := make([]string, 0, len(line))
		for _, span := range line {
			words = append(words, span.Text)
		}
		parts = append(parts, strings.Join(words, " "))
	}
	return strings.Join(parts, "\n")
}

// JoinLinesFlat renders grouped spans as a single line, used for short
// fields like dates and reference numbers that may wrap in the crop.
func JoinLinesFlat(lines [][]Span) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		words := make([]string, 0, len(line))
		for _, span := range line {
			words = append(words, span.Text)
		}
		parts = append(parts, strings.Join(words, " "))
	}
	return strings.Join(parts, " ")
}

// ReadingOrder reconstructs the text of a region from raw spans using the
// default line height.
func ReadingOrder(spans []Span) string {
	return JoinLines(Lines(spans, DefaultLineHeight))
}
