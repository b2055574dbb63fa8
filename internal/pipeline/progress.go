package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Progress phase boundaries: page loading fills 0-40, OCR 40-95 and
// finalization the rest.
const (
	progressLoadEnd  = 40
	progressOCREnd   = 95
	progressComplete = 100
)

// ProgressCallback receives document processing progress. percent is in
// [0, 100]; message is a human-readable status line.
type ProgressCallback interface {
	// OnStart is called once with the number of pages.
	OnStart(totalPages int)

	// OnProgress is called as phases advance.
	OnProgress(percent int, message string)

	// OnComplete is called when processing finished.
	OnComplete()

	// OnError is called for page-level failures that were degraded to
	// empty results.
	OnError(page int, err error)
}

// NoOpProgress implements ProgressCallback but does nothing.
type NoOpProgress struct{}

func (NoOpProgress) OnStart(totalPages int)              {}
func (NoOpProgress) OnProgress(percent int, msg string)  {}
func (NoOpProgress) OnComplete()                         {}
func (NoOpProgress) OnError(page int, err error)         {}

// ProgressFunc adapts a plain function to ProgressCallback.
type ProgressFunc func(percent int, message string)

func (f ProgressFunc) OnStart(totalPages int)             {}
func (f ProgressFunc) OnProgress(percent int, msg string) { f(percent, msg) }
func (f ProgressFunc) OnComplete()                        {}
func (f ProgressFunc) OnError(page int, err error)        {}

// ConsoleProgress prints progress lines to a writer, throttled so fast
// phases do not flood the terminal.
type ConsoleProgress struct {
	writer         io.Writer
	updateInterval time.Duration

	mu         sync.Mutex
	lastUpdate time.Time
	startTime  time.Time
}

// NewConsoleProgress creates a console progress reporter.
func NewConsoleProgress(writer io.Writer) *ConsoleProgress {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleProgress{writer: writer, updateInterval: 100 * time.Millisecond}
}

func (c *ConsoleProgress) OnStart(totalPages int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
	c.lastUpdate = time.Time{}
	_, _ = fmt.Fprintf(c.writer, "Xử lý tài liệu: %d trang\n", totalPages)
}

func (c *ConsoleProgress) OnProgress(percent int, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if now.Sub(c.lastUpdate) < c.updateInterval && percent < progressComplete {
		return
	}
	c.lastUpdate = now
	_, _ = fmt.Fprintf(c.writer, "[%3d%%] %s\n", percent, msg)
}

func (c *ConsoleProgress) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.writer, "Hoàn thành trong %v\n", time.Since(c.startTime).Round(time.Millisecond))
}

func (c *ConsoleProgress) OnError(page int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.writer, "Lỗi trang %d: %v\n", page+1, err)
}

// LogProgress reports progress through a structured logger.
type LogProgress struct {
	logger *slog.Logger
}

// NewLogProgress creates a slog-backed progress reporter.
func NewLogProgress(logger *slog.Logger) *LogProgress {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogProgress{logger: logger}
}

func (l *LogProgress) OnStart(totalPages int) {
	l.logger.Info("document processing started", "pages", totalPages)
}

func (l *LogProgress) OnProgress(percent int, msg string) {
	l.logger.Debug("document processing progress", "percent", percent, "status", msg)
}

func (l *LogProgress) OnComplete() {
	l.logger.Info("document processing complete")
}

func (l *LogProgress) OnError(page int, err error) {
	l.logger.Error("page processing failed", "page", page, "error", err)
}

// MultiProgress fans progress out to several callbacks.
type MultiProgress []ProgressCallback

func (m MultiProgress) OnStart(totalPages int) {
	for _, cb := range m {
		cb.OnStart(totalPages)
	}
}

func (m MultiProgress) OnProgress(percent int, msg string) {
	for _, cb := range m {
		cb.OnProgress(percent, msg)
	}
}

func (m MultiProgress) OnComplete() {
	for _, cb := range m {
		cb.OnComplete()
	}
}

func (m MultiProgress) OnError(page int, err error) {
	for _, cb := range m {
		cb.OnError(page, err)
	}
}

// loadPercent maps page loading progress into the 0-40 band.
func loadPercent(loaded, total int) int {
	if total == 0 {
		return progressLoadEnd
	}
	return loaded * progressLoadEnd / total
}

// ocrPercent maps OCR progress into the 40-95 band.
func ocrPercent(done, total int) int {
	if total == 0 {
		return progressOCREnd
	}
	return progressLoadEnd + done*(progressOCREnd-progressLoadEnd)/total
}
