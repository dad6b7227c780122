package nmt

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

// fakeClock advances by a fixed amount per reading.
type fakeClock struct {
	current time.Time
	step    time.Duration
}

func (f *fakeClock) now() time.Time {
	f.current = f.current.Add(f.step)
	return f.current
}

func TestProgressSlowSteps(t *testing.T) {
	// With a 5s interval and 10s steps, every step
	// produces a report.
	clock := &fakeClock{step: 10 * time.Second}
	var buf bytes.Buffer
	p := &Progress{Interval: 5 * time.Second, Out: &buf, Clock: clock.now}

	p.Start()
	p.Step(1.0, 1, 3)
	p.Step(2.0, 2, 3)
	p.Step(3.0, 3, 3)
	p.Finish()

	out := buf.String()
	if n := strings.Count(out, "\r"); n != 3 {
		t.Errorf("expected 3 reports but got %d", n)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("missing final newline")
	}
	if !strings.Contains(out, "(3/3) 2.0000") {
		t.Errorf("missing final report in %q", out)
	}
}

func TestProgressThrottling(t *testing.T) {
	// Fast steps are throttled down to the forced
	// final-step report.
	clock := &fakeClock{step: time.Second}
	var buf bytes.Buffer
	p := &Progress{Interval: 5 * time.Second, Out: &buf, Clock: clock.now}

	p.Start()
	for i := 1; i <= 4; i++ {
		p.Step(1.0, i, 4)
	}
	p.Finish()

	if n := strings.Count(buf.String(), "\r"); n != 1 {
		t.Errorf("expected 1 report but got %d", n)
	}
}

func TestProgressFormat(t *testing.T) {
	clock := &fakeClock{step: 30 * time.Second}
	var buf bytes.Buffer
	p := &Progress{Interval: 5 * time.Second, Out: &buf, Clock: clock.now}

	p.Start()
	p.Step(0.125, 1, 2)

	// 30s elapsed, half the steps done: 30s remaining.
	expected := "\r 0m 30s (- 0m 30s(1/2) 0.1250"
	if buf.String() != expected {
		t.Errorf("expected %q but got %q", expected, buf.String())
	}
}

func TestProgressAverage(t *testing.T) {
	p := &Progress{}
	p.Start()
	if p.Average() != 0 {
		t.Error("empty average should be 0")
	}
	p.Step(2, 1, 2)
	p.Step(4, 2, 2)
	if p.Average() != 3 {
		t.Errorf("expected average 3 but got %f", p.Average())
	}
}
