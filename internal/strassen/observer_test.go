package strassen

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

type recordingObserver struct {
	mu      sync.Mutex
	updates []ProgressUpdate
}

func (r *recordingObserver) Update(index int, progress float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, ProgressUpdate{MultiplierIndex: index, Value: progress})
}

func TestProgressSubject(t *testing.T) {
	t.Parallel()
	s := NewProgressSubject()
	first, second := &recordingObserver{}, &recordingObserver{}
	s.Register(first)
	s.Register(second)
	s.Register(nil)
	if s.ObserverCount() != 2 {
		t.Fatalf("ObserverCount() = %d, want 2", s.ObserverCount())
	}

	s.AsProgressReporter(5)(0.5)
	s.Unregister(first)
	s.Notify(5, 1.0)

	if len(first.updates) != 1 || len(second.updates) != 2 {
		t.Errorf("unexpected update counts: %d and %d", len(first.updates), len(second.updates))
	}
	if second.updates[0] != (ProgressUpdate{MultiplierIndex: 5, Value: 0.5}) {
		t.Errorf("unexpected first update %+v", second.updates[0])
	}
}

func TestChannelObserver_NeverBlocks(t *testing.T) {
	t.Parallel()
	ch := make(chan ProgressUpdate, 1)
	o := NewChannelObserver(ch)
	o.Update(0, 0.2)
	o.Update(0, 1.7) // dropped: channel full

	got := <-ch
	if got.Value != 0.2 {
		t.Errorf("got %v, want 0.2", got.Value)
	}
	o.Update(0, 1.7)
	if got := <-ch; got.Value != 1.0 {
		t.Errorf("progress should be clamped to 1.0, got %v", got.Value)
	}
	NewChannelObserver(nil).Update(0, 1)
}

func TestLoggingObserver_Throttles(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	o := NewLoggingObserver(logger, 0.5)

	for _, p := range []float64{0.1, 0.2, 0.3, 0.7, 1.0} {
		o.Update(1, p)
	}
	lines := strings.Count(buf.String(), "multiplication progress")
	if lines != 3 {
		t.Errorf("expected 3 log lines (first, +0.5, final), got %d:\n%s", lines, buf.String())
	}
}

func TestMetricsAndNoOpObservers(t *testing.T) {
	t.Parallel()
	m := NewMetricsObserver()
	m.Update(9, 0.25)
	m.ResetMetrics()
	NewNoOpObserver().Update(0, 1)
}
