package nmt

import (
	"fmt"
	"io"
	"time"
)

// DefaultReportInterval is the minimum wall-clock time
// between progress reports when none is configured.
const DefaultReportInterval = 5 * time.Second

// A Progress accumulates per-step losses for one epoch
// and rewrites a single console line in place, throttled
// by wall-clock interval.
//
// A report is always emitted for the final step.
// The zero value is usable after Start; state does not
// carry across epochs.
type Progress struct {
	// Interval between reports; zero means
	// DefaultReportInterval.
	Interval time.Duration

	// Out receives the report lines.
	// A nil Out discards them.
	Out io.Writer

	// Clock, if non-nil, replaces time.Now.
	Clock func() time.Time

	start     time.Time
	last      time.Time
	totalLoss float64
	steps     int
}

// Start marks the beginning of an epoch.
func (p *Progress) Start() {
	if p.Out == nil {
		p.Out = io.Discard
	}
	p.start = p.now()
	p.last = p.start
	p.totalLoss = 0
	p.steps = 0
}

// Step records one step's loss and reports if the
// configured interval has elapsed since the last report
// or if this is the final step.
func (p *Progress) Step(loss float64, index, total int) {
	p.totalLoss += loss
	p.steps++

	interval := p.Interval
	if interval == 0 {
		interval = DefaultReportInterval
	}
	now := p.now()
	if now.Sub(p.last) > interval || index == total {
		p.last = now
		p.report(now, index, total)
	}
}

// Finish terminates the progress line.
func (p *Progress) Finish() {
	if p.Out == nil {
		p.Out = io.Discard
	}
	fmt.Fprintln(p.Out)
}

// Average returns the running average loss.
func (p *Progress) Average() float64 {
	if p.steps == 0 {
		return 0
	}
	return p.totalLoss / float64(p.steps)
}

func (p *Progress) report(now time.Time, index, total int) {
	elapsed := now.Sub(p.start)
	estimated := time.Duration(float64(elapsed) * float64(total) / float64(index))
	fmt.Fprintf(p.Out, "\r%s (-%s(%d/%d) %.4f", minSec(elapsed),
		minSec(estimated-elapsed), index, total, p.Average())
}

func (p *Progress) now() time.Time {
	if p.Clock != nil {
		return p.Clock()
	}
	return time.Now()
}

func minSec(d time.Duration) string {
	s := int(d.Seconds())
	return fmt.Sprintf("%2dm %2ds", s/60, s%60)
}
