// Package postprocess cleans recognized region text and applies
// class-specific normalization before it lands in the field result set.
package postprocess

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CleanOptions configures the baseline text cleanup applied to every
// region before class-specific rules run.
type CleanOptions struct {
	NormalizeUnicode bool
	StripZeroWidth   bool
	StripControl     bool
	CollapseSpaces   bool
	TrimSpace        bool
}

// DefaultCleanOptions returns the cleanup applied to OCR output.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		NormalizeUnicode: true,
		StripZeroWidth:   true,
		StripControl:     true,
		CollapseSpaces:   true,
		TrimSpace:        true,
	}
}

var zeroWidthReplacer = strings.NewReplacer(
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\uFEFF", "",
)

// Clean applies the baseline cleanup. Newlines are preserved; carriage
// returns and other control characters are dropped.
func Clean(text string, opts CleanOptions) string {
	if opts.NormalizeUnicode {
		text = norm.NFC.String(text)
	}
	if opts.StripZeroWidth {
		text = zeroWidthReplacer.Replace(text)
	}
	if opts.StripControl {
		var b strings.Builder
		b.Grow(len(text))
		for _, r := range text {
			if r == '\n' || !unicode.IsControl(r) {
				b.WriteRune(r)
			}
		}
		text = b.String()
	}
	if opts.CollapseSpaces {
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			lines[i] = strings.Join(strings.Fields(line), " ")
		}
		text = strings.Join(lines, "\n")
	}
	if opts.TrimSpace {
		text = strings.TrimSpace(text)
	}
	return text
}
