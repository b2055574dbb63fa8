package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanban-tech/vanban/internal/fields"
	"github.com/vanban-tech/vanban/internal/utils"
)

func span(x, y float64, text string) Span {
	return Span{Box: utils.NewBox(x, y, x+40, y+14), Text: text}
}

func TestLines_GroupsByVerticalCenter(t *testing.T) {
	spans := []Span{
		span(0, 0, "CỘNG"),
		span(50, 2, "HÒA"),
		span(0, 40, "Độc"),
		span(50, 41, "lập"),
	}
	lines := Lines(spans, DefaultLineHeight)
	require.Len(t, lines, 2)
	assert.Len(t, lines[0], 2)
	assert.Len(t, lines[1], 2)
}

func TestLines_SortsLeftToRight(t *testing.T) {
	spans := []Span{
		span(100, 0, "HÒA"),
		span(0, 1, "CỘNG"),
		span(200, 2, "XÃ"),
	}
	got := ReadingOrder(spans)
	assert.Equal(t, "CỘNG HÒA XÃ", got)
}

func TestReadingOrder_MultiLine(t *testing.T) {
	spans := []Span{
		span(0, 60, "- Lưu: VT."),
		span(0, 0, "Nơi nhận:"),
		span(0, 30, "- Như trên;"),
	}
	got := ReadingOrder(spans)
	assert.Equal(t, "Nơi nhận:\n- Như trên;\n- Lưu: VT.", got)
}

func TestReadingOrder_Empty(t *testing.T) {
	assert.Empty(t, ReadingOrder(nil))
}

func TestReadingOrder_SingleSpan(t *testing.T) {
	assert.Equal(t, "QUYẾT ĐỊNH", ReadingOrder([]Span{span(5, 5, "QUYẾT ĐỊNH")}))
}

func TestReadingOrder_Idempotent(t *testing.T) {
	// Feeding back spans laid out in the already reconstructed order must
	// reproduce the same text.
	spans := []Span{
		span(0, 0, "Số:"),
		span(45, 1, "123/QĐ-UBND"),
		span(0, 35, "Hà Nội,"),
		span(60, 36, "ngày 15 tháng 3 năm 2024"),
	}
	first := ReadingOrder(spans)

	lines := Lines(spans, DefaultLineHeight)
	var relaid []Span
	for i, line := range lines {
		for j, s := range line {
			relaid = append(relaid, span(float64(j)*100, float64(i)*50, s.Text))
		}
	}
	second := ReadingOrder(relaid)
	assert.Equal(t, first, second)
}

func TestLines_BoundaryAtThreshold(t *testing.T) {
	// Exactly lineHeight apart starts a new line; strictly less groups.
	a := span(0, 0, "a")      // center y = 7
	b := span(50, 20, "b")    // center y = 27, delta 20 -> new line
	c := span(100, 39.5, "c") // center y = 46.5, delta 19.5 from b -> same line
	lines := Lines([]Span{a, b, c}, 20)
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0][0].Text)
	assert.Len(t, lines[1], 2)
}

func TestJoinLinesFlat(t *testing.T) {
	spans := []Span{
		span(0, 0, "Số: 45/BC"),
		span(0, 40, "ngày 2-1-2024"),
	}
	got := JoinLinesFlat(Lines(spans, DefaultLineHeight))
	assert.Equal(t, "Số: 45/BC ngày 2-1-2024", got)
}

func TestLangsFor(t *testing.T) {
	tests := []struct {
		class fields.Class
		want  []string
	}{
		{fields.ClassRecipients, []string{"vi", "en"}},
		{fields.ClassRefNumber, []string{"vi", "en"}},
		{fields.ClassDocType, []string{"vi", "en"}},
		{fields.ClassContent, []string{"vi"}},
		{fields.ClassAuthority, []string{"vi"}},
		{fields.ClassUrgency, []string{"vi"}},
	}
	for _, tt := range tests {
		t.Run(tt.class.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, LangsFor(tt.class))
		})
	}
}
