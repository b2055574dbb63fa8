package postprocess

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	numericDatePattern = regexp.MustCompile(`(\d{1,2})[-./](\d{1,2})[-./](\d{2,4})`)
	spelledDatePattern = regexp.MustCompile(`(?i)ngày\s+(\d{1,2})\s+tháng\s+(\d{1,2})\s+năm\s+(\d{2,4})`)
)

var digitFixReplacer = strings.NewReplacer("l", "1", "O", "0", "o", "0")

// StandardizeDate normalizes an issue date into the canonical
// "ngày D tháng M năm YYYY" phrase. Separators are unified, characters
// commonly misread as digits are fixed, and two-digit years are expanded
// into the 21st century. Text without a recognizable date is returned
// unchanged (after separator and digit fixes are reverted, i.e. the
// original cleaned input).
func StandardizeDate(text string) string {
	cleaned := strings.TrimSpace(text)
	normalized := strings.NewReplacer("/", "-", ".", "-").Replace(cleaned)
	normalized = digitFixReplacer.Replace(normalized)

	if m := numericDatePattern.FindStringSubmatch(normalized); m != nil {
		return formatDate(m[1], m[2], m[3])
	}
	if m := spelledDatePattern.FindStringSubmatch(normalized); m != nil {
		return formatDate(m[1], m[2], m[3])
	}
	return cleaned
}

func formatDate(day, month, year string) string {
	if len(year) == 2 {
		year = "20" + year
	}
	d, _ := strconv.Atoi(day)
	m, _ := strconv.Atoi(month)
	return fmt.Sprintf("ngày %d tháng %d năm %s", d, m, year)
}
