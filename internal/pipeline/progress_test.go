package pipeline

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadPercent(t *testing.T) {
	assert.Equal(t, 0, loadPercent(0, 3))
	assert.Equal(t, 13, loadPercent(1, 3))
	assert.Equal(t, 40, loadPercent(3, 3))
	assert.Equal(t, 40, loadPercent(0, 0))
}

func TestOCRPercent(t *testing.T) {
	assert.Equal(t, 40, ocrPercent(0, 3))
	assert.Equal(t, 58, ocrPercent(1, 3))
	assert.Equal(t, 76, ocrPercent(2, 3))
	assert.Equal(t, 95, ocrPercent(3, 3))
	assert.Equal(t, 95, ocrPercent(0, 0))
}

func TestProgressFunc(t *testing.T) {
	var gotPercent int
	var gotMsg string
	cb := ProgressFunc(func(percent int, msg string) {
		gotPercent = percent
		gotMsg = msg
	})

	cb.OnStart(3)
	cb.OnProgress(42, "đang xử lý")
	cb.OnComplete()

	assert.Equal(t, 42, gotPercent)
	assert.Equal(t, "đang xử lý", gotMsg)
}

func TestConsoleProgress(t *testing.T) {
	var buf bytes.Buffer
	cp := NewConsoleProgress(&buf)

	cp.OnStart(2)
	cp.OnProgress(40, "Đang xử lý các trang...")
	cp.OnError(0, errors.New("mờ quá"))
	cp.OnProgress(100, "Hoàn thành!")
	cp.OnComplete()

	out := buf.String()
	assert.Contains(t, out, "2 trang")
	assert.Contains(t, out, "Đang xử lý các trang...")
	assert.Contains(t, out, "Lỗi trang 1")
	assert.Contains(t, out, "[100%] Hoàn thành!")
}

func TestConsoleProgress_ThrottlesButKeepsCompletion(t *testing.T) {
	var buf bytes.Buffer
	cp := NewConsoleProgress(&buf)

	cp.OnStart(1)
	for pct := 41; pct <= 94; pct++ {
		cp.OnProgress(pct, "Đang OCR trang 1/1...")
	}
	cp.OnProgress(100, "Hoàn thành!")

	lines := strings.Count(buf.String(), "\n")
	assert.Less(t, lines, 10, "rapid updates must be throttled")
	assert.Contains(t, buf.String(), "[100%]")
}

func TestMultiProgress(t *testing.T) {
	a := &progressRecorder{}
	b := &progressRecorder{}
	multi := MultiProgress{a, b}

	multi.OnStart(1)
	multi.OnProgress(50, "nửa chừng")
	multi.OnComplete()

	for _, rec := range []*progressRecorder{a, b} {
		assert.True(t, rec.started)
		assert.True(t, rec.complete)
		assert.Equal(t, []int{50}, rec.percents)
	}
}
