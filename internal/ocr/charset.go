package ocr

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Charset maps CTC class indices to recognition tokens. Class 0 is the
// CTC blank; class k (k > 0) maps to the token on line k of the
// dictionary file.
type Charset struct {
	tokens []string
}

// LoadCharset loads a dictionary file: one token per line, blank lines
// skipped, UTF-8 BOM stripped.
func LoadCharset(path string) (*Charset, error) {
	if path == "" {
		return nil, fmt.Errorf("dictionary path is empty")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer func() { _ = f.Close() }()

	var tokens []string
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			line = strings.TrimPrefix(line, "\uFEFF")
			first = false
		}
		if line == "" {
			continue
		}
		tokens = append(tokens, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("dictionary is empty: %s", path)
	}
	return &Charset{tokens: tokens}, nil
}

// Size returns the number of tokens, excluding the blank.
func (c *Charset) Size() int {
	return len(c.tokens)
}

// Token returns the token for a CTC class index, or "" for the blank and
// out-of-range indices.
func (c *Charset) Token(class int) string {
	if class < 1 || class > len(c.tokens) {
		return ""
	}
	return c.tokens[class-1]
}

// Decode converts collapsed CTC class indices into a string.
func (c *Charset) Decode(classes []int) string {
	var b strings.Builder
	for _, class := range classes {
		b.WriteString(c.Token(class))
	}
	return b.String()
}
