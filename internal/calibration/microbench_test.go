package calibration

import (
	"context"
	"testing"
	"time"

	"github.com/agbru/strassen/internal/strassen"
)

func TestNewMicroBenchmark(t *testing.T) {
	t.Parallel()
	mb := NewMicroBenchmark()

	if len(mb.LeafSizes) == 0 {
		t.Error("Expected LeafSizes to be set")
	}
	if mb.Iterations != MicroBenchIterations {
		t.Errorf("Iterations = %d, want %d", mb.Iterations, MicroBenchIterations)
	}
	if mb.Timeout != MicroBenchTimeout {
		t.Errorf("Timeout = %v, want %v", mb.Timeout, MicroBenchTimeout)
	}
}

func TestMicroBenchRunQuick(t *testing.T) {
	t.Parallel()
	mb := &MicroBenchmark{LeafSizes: []int{4, 8}, Iterations: 1, Timeout: 5 * time.Second}

	results, err := mb.RunQuick(context.Background())
	if err != nil {
		t.Fatalf("RunQuick() error: %v", err)
	}
	if results.LeafSize != 4 && results.LeafSize != 8 {
		t.Errorf("LeafSize = %d, want one of the candidates", results.LeafSize)
	}
	if results.Confidence < 0.4 || results.Confidence > 1 {
		t.Errorf("Confidence = %v out of range", results.Confidence)
	}
	if results.Duration <= 0 {
		t.Error("Expected positive duration")
	}
}

func TestQuickCalibrateWithDefault(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// No candidate can run, so the estimate has no confidence.
	if got := QuickCalibrateWithDefault(ctx, 24); got != 24 {
		t.Errorf("QuickCalibrateWithDefault() = %d, want the default 24", got)
	}
}

func TestMicroBenchAnalyzeResults(t *testing.T) {
	t.Parallel()
	ms := time.Millisecond
	mb := &MicroBenchmark{LeafSizes: []int{8, 16, 32, 64}}

	tests := []struct {
		name           string
		results        []stepResult
		wantLeaf       int
		wantConfidence float64
	}{
		{"Empty", nil, strassen.DefaultLeafSize, 0},
		{
			"Clean crossover",
			[]stepResult{{8, 1 * ms, 2 * ms}, {16, 3 * ms, 2 * ms}, {32, 9 * ms, 7 * ms}, {64, 30 * ms, 20 * ms}},
			16, 1.0,
		},
		{
			"Noisy crossover",
			[]stepResult{{8, 2 * ms, 1 * ms}, {16, 2 * ms, 3 * ms}, {32, 9 * ms, 7 * ms}, {64, 30 * ms, 20 * ms}},
			8, 0.75,
		},
		{
			"Timed out before the last candidate",
			[]stepResult{{8, 1 * ms, 2 * ms}, {16, 3 * ms, 2 * ms}},
			16, 0.75,
		},
		{
			"Direct always wins",
			[]stepResult{{8, 1 * ms, 2 * ms}, {16, 3 * ms, 4 * ms}},
			16, 0.4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := mb.analyzeResults(tt.results)
			if got.LeafSize != tt.wantLeaf || got.Confidence != tt.wantConfidence {
				t.Errorf("analyzeResults() = (%d, %v), want (%d, %v)",
					got.LeafSize, got.Confidence, tt.wantLeaf, tt.wantConfidence)
			}
		})
	}
}

func TestMicroBenchContextCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := NewMicroBenchmark().RunQuick(ctx)
	if err != nil {
		t.Fatalf("RunQuick() error: %v", err)
	}
	if results.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0 for a canceled run", results.Confidence)
	}
}
