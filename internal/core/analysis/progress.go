package analysis

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ProgressCallback receives one update per session
type ProgressCallback interface {
	Update(sessionID string, detail string)
	Finish()
}

// ProgressReporter draws a progress bar during a batch run
type ProgressReporter struct {
	writer    io.Writer
	total     int
	current   int
	startTime time.Time
}

// NewProgressReporter creates a new progress reporter
func NewProgressReporter(w io.Writer, total int) *ProgressReporter {
	return &ProgressReporter{
		writer:    w,
		total:     total,
		startTime: time.Now(),
	}
}

// Update advances the bar by one session
func (p *ProgressReporter) Update(sessionID string, detail string) {
	p.current++
	if p.total <= 0 {
		return
	}

	pct := float64(p.current) / float64(p.total) * 100

	barWidth := 30
	filled := int(float64(barWidth) * float64(p.current) / float64(p.total))
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	label := sessionID
	if len(label) > 8 {
		label = label[:8]
	}

	_, _ = fmt.Fprintf(p.writer, "\r\033[K[%s] %3.0f%% (%d/%d) %s %s",
		bar, pct, p.current, p.total, label, detail)
}

// Finish completes the progress display
func (p *ProgressReporter) Finish() {
	elapsed := time.Since(p.startTime)
	_, _ = fmt.Fprintf(p.writer, "\nCompleted: analyzed %d sessions in %s\n", p.current, elapsed.Round(time.Millisecond))
}
