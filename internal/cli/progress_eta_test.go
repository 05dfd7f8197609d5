package cli

import (
	"strings"
	"testing"
	"time"
)

func TestNewProgressWithETA(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA(3)
	if p.ProgressState == nil || len(p.progresses) != 3 {
		t.Fatalf("expected 3 tracked multipliers, got %+v", p.ProgressState)
	}
	if p.progressRate != 0 || p.startTime.IsZero() {
		t.Errorf("unexpected initial state: rate=%f start=%v", p.progressRate, p.startTime)
	}
}

func TestUpdateWithETA(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA(2)

	progress, eta := p.UpdateWithETA(0, 0.25)
	if progress != 0.125 {
		t.Errorf("progress = %f, want 0.125", progress)
	}
	if eta != 0 {
		t.Errorf("no estimate expected right after start, got %v", eta)
	}

	progress, _ = p.UpdateWithETA(1, 0.5)
	if progress != 0.375 {
		t.Errorf("progress = %f, want 0.375", progress)
	}
}

func TestUpdateWithETAProducesEstimate(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA(1)
	p.startTime = time.Now().Add(-time.Second)
	p.lastUpdate = p.startTime

	_, eta := p.UpdateWithETA(0, 0.5)
	if eta < 500*time.Millisecond || eta > 2*time.Second {
		t.Errorf("ETA = %v, want about 1s at half progress after 1s", eta)
	}
	if _, eta := p.UpdateWithETA(0, 1.0); eta != 0 {
		t.Errorf("ETA at completion = %v, want 0", eta)
	}
}

func TestGetETA(t *testing.T) {
	t.Parallel()
	p := NewProgressWithETA(1)
	if eta := p.GetETA(); eta != 0 {
		t.Errorf("initial ETA = %v, want 0", eta)
	}

	p.Update(0, 0.5)
	p.progressRate = 0.1
	if eta := p.GetETA(); eta < 4*time.Second || eta > 6*time.Second {
		t.Errorf("ETA = %v, want about 5s", eta)
	}

	p.progressRate = 1e-9
	if eta := p.GetETA(); eta != maxETA {
		t.Errorf("ETA = %v, want capped at %v", eta, maxETA)
	}
}

func TestFormatETA(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		eta      time.Duration
		expected string
	}{
		{0, "calculating..."},
		{-time.Second, "calculating..."},
		{500 * time.Millisecond, "< 1s"},
		{45 * time.Second, "45s"},
		{time.Minute, "1m"},
		{2*time.Minute + 30*time.Second, "2m30s"},
		{time.Hour, "1h"},
		{time.Hour + 15*time.Minute, "1h15m"},
	}
	for _, tc := range testCases {
		if got := FormatETA(tc.eta); got != tc.expected {
			t.Errorf("FormatETA(%v) = %q, want %q", tc.eta, got, tc.expected)
		}
	}
}

func TestFormatProgressBarWithETA(t *testing.T) {
	t.Parallel()
	got := FormatProgressBarWithETA(0.5, 30*time.Second, 10)
	want := " 50.00% [█████░░░░░] ETA: 30s"
	if got != want {
		t.Errorf("FormatProgressBarWithETA = %q, want %q", got, want)
	}
	if !strings.HasSuffix(FormatProgressBarWithETA(1, 0, 4), "ETA: calculating...") {
		t.Error("a zero ETA must render as calculating...")
	}
}
