package postprocess

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/vanban-tech/vanban/internal/fields"
)

// authorityTypos maps diacritic-stripped OCR misreads of common authority
// names to their correct form.
var authorityTypos = []struct{ from, to string }{
	{"UBND TINH", "UBND TỈNH"},
	{"UBND THANH PHO", "UBND THÀNH PHỐ"},
	{"CONG HOA", "CỘNG HÒA"},
	{"DOC LAP", "ĐỘC LẬP"},
}

var cleaners = map[fields.Class]func(string) string{
	fields.ClassAuthority:  cleanAuthority,
	fields.ClassIssueDate:  StandardizeDate,
	fields.ClassRecipients: cleanRecipients,
	fields.ClassRefNumber:  cleanRefNumber,
	fields.ClassUrgency:    cleanUrgency,
}

// urgencyLevels are the stamp texts used on administrative documents.
var urgencyLevels = []string{"Hỏa tốc hẹn giờ", "Hỏa tốc", "Thượng khẩn", "Khẩn"}

// Apply runs the baseline cleanup followed by the class-specific rule, if
// any. Classes without a dedicated rule pass through the baseline only.
func Apply(class fields.Class, text string) string {
	text = Clean(text, DefaultCleanOptions())
	if text == "" {
		return ""
	}
	if fn, ok := cleaners[class]; ok {
		text = fn(text)
	}
	return text
}

// cleanUrgency snaps OCR readings of the urgency stamp onto the canonical
// vocabulary, tolerating case and lost diacritics. Unrecognized text passes
// through unchanged.
func cleanUrgency(text string) string {
	folded := foldVietnamese(text)
	for _, level := range urgencyLevels {
		if folded == foldVietnamese(level) {
			return level
		}
	}
	return text
}

// foldVietnamese lowercases and strips diacritics for loose comparison.
func foldVietnamese(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(s)) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if r == 'đ' {
			r = 'd'
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

func cleanAuthority(text string) string {
	for _, t := range authorityTypos {
		text = strings.ReplaceAll(text, t.from, t.to)
	}
	return text
}

// cleanRefNumber normalizes document reference numbers such as
// "123/QĐ-UBND": dash variants unify, characters outside the reference
// alphabet are dropped and digits misread as letters are fixed.
func cleanRefNumber(text string) string {
	text = strings.NewReplacer("—", "-", "–", "-", "_", "-").Replace(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("/-_.,: ", r) {
			b.WriteRune(r)
		}
	}
	text = digitFixReplacer.Replace(b.String())
	return strings.TrimSpace(text)
}

// cleanRecipients shapes the recipient block: a "Nơi nhận:" header line
// followed by dash bullets.
func cleanRecipients(text string) string {
	lines := make([]string, 0, 8)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return ""
	}

	if !strings.HasPrefix(lines[0], "Nơi nhận") && !strings.HasPrefix(lines[0], "-") {
		lines = append([]string{"Nơi nhận:"}, lines...)
	}

	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if i == 0 && strings.HasPrefix(line, "Nơi nhận") {
			out = append(out, line)
			continue
		}
		if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "•") {
			line = "- " + line
		}
		out = append(out, line)
	}
	text = strings.Join(out, "\n")
	return strings.ReplaceAll(text, "..", ".")
}
