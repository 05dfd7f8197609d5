package strassen

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	apperrors "github.com/agbru/strassen/internal/errors"
	"github.com/agbru/strassen/internal/matrix"
	"github.com/agbru/strassen/internal/parallel"
)

func randomPair(t *testing.T, size int, seed int64) (*matrix.Matrix, *matrix.Matrix) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	a, err := matrix.Random(size, rng)
	if err != nil {
		t.Fatalf("random A: %v", err)
	}
	b, err := matrix.Random(size, rng)
	if err != nil {
		t.Fatalf("random B: %v", err)
	}
	return a, b
}

func engines(t *testing.T, leaf int) map[string]*Engine {
	t.Helper()
	seq, err := NewSequentialEngine(leaf)
	if err != nil {
		t.Fatalf("NewSequentialEngine(%d): %v", leaf, err)
	}
	par, err := NewParallelEngine(leaf)
	if err != nil {
		t.Fatalf("NewParallelEngine(%d): %v", leaf, err)
	}
	return map[string]*Engine{"sequential": seq, "parallel": par}
}

// assertClose fails when got and want differ by more than tol relative to
// the largest magnitude in want.
func assertClose(t *testing.T, got, want *matrix.Matrix, tol float64) {
	t.Helper()
	diff, err := matrix.MaxAbsDiff(got, want)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	scale := matrix.MaxAbs(want)
	if scale < 1 {
		scale = 1
	}
	if diff/scale > tol {
		t.Errorf("max relative difference %g exceeds %g", diff/scale, tol)
	}
}

func TestEngine_BaseCaseAtThreshold(t *testing.T) {
	t.Parallel()
	a, _ := matrix.FromValues(2, []float64{1, 2, 3, 4})
	b, _ := matrix.FromValues(2, []float64{5, 6, 7, 8})
	want := []float64{19, 22, 43, 50}

	for _, leaf := range []int{2, 4, 8} {
		for name, e := range engines(t, leaf) {
			got, err := e.Multiply(context.Background(), a, b)
			if err != nil {
				t.Fatalf("%s leaf=%d: %v", name, leaf, err)
			}
			for i, v := range got.Values() {
				if v != want[i] {
					t.Errorf("%s leaf=%d: C[%d] = %v, want %v", name, leaf, i, v, want[i])
				}
			}
		}
	}
}

func TestEngine_OneLevelMatchesDirect(t *testing.T) {
	t.Parallel()
	a, b := randomPair(t, 8, 11)
	want, err := matrix.MultiplyDirect(a, b)
	if err != nil {
		t.Fatal(err)
	}

	for name, e := range engines(t, 4) {
		t.Run(name, func(t *testing.T) {
			got, err := e.Multiply(context.Background(), a, b)
			if err != nil {
				t.Fatalf("Multiply: %v", err)
			}
			assertClose(t, got, want, 1e-12)
		})
	}
}

func TestEngine_NonCommutingBlocks(t *testing.T) {
	t.Parallel()
	// Integer operands keep every intermediate exact, so any operand-order
	// error in the products shows up as an exact mismatch.
	rng := rand.New(rand.NewSource(5))
	a, _ := matrix.RandomIntegers(16, 10, rng)
	b, _ := matrix.RandomIntegers(16, 10, rng)
	want, _ := matrix.MultiplyDirect(a, b)

	for name, e := range engines(t, 2) {
		got, err := e.Multiply(context.Background(), a, b)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !matrix.Equal(got, want) {
			t.Errorf("%s: integer product differs from direct multiplication", name)
		}
	}
}

func TestEngine_SequentialAndParallelBitIdentical(t *testing.T) {
	t.Parallel()
	a, b := randomPair(t, 64, 99)
	e := engines(t, 4)

	seq, err := e["sequential"].Multiply(context.Background(), a, b)
	if err != nil {
		t.Fatal(err)
	}
	par, err := e["parallel"].Multiply(context.Background(), a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !matrix.Equal(seq, par) {
		t.Error("sequential and parallel engines must produce bit-identical results")
	}
}

func TestEngine_FanOutIsExactlyOneLevel(t *testing.T) {
	SetDispatchBudget(ProductCount)
	defer SetDispatchBudget(DefaultDispatchBudget())

	a, b := randomPair(t, 64, 3) // 64 -> 32 -> 16 -> 8 -> 4: four recursive levels

	var mu sync.Mutex
	var dispatches []int
	par, _ := NewParallelEngine(4)
	par.onDispatch = func(n int) {
		mu.Lock()
		defer mu.Unlock()
		dispatches = append(dispatches, n)
	}
	if _, err := par.Multiply(context.Background(), a, b); err != nil {
		t.Fatal(err)
	}
	if len(dispatches) != 1 || dispatches[0] != ProductCount {
		t.Errorf("parallel engine dispatched %v, want exactly one fan-out of %d", dispatches, ProductCount)
	}

	var seqDispatches atomic.Int32
	seq, _ := NewSequentialEngine(4)
	seq.onDispatch = func(int) { seqDispatches.Add(1) }
	if _, err := seq.Multiply(context.Background(), a, b); err != nil {
		t.Fatal(err)
	}
	if n := seqDispatches.Load(); n != 0 {
		t.Errorf("sequential engine dispatched %d times, want 0", n)
	}
}

func TestEngine_BudgetExhaustionDegradesToSequential(t *testing.T) {
	SetDispatchBudget(ProductCount - 1)
	defer SetDispatchBudget(DefaultDispatchBudget())

	a, b := randomPair(t, 32, 8)
	var dispatched atomic.Int32
	par, _ := NewParallelEngine(4)
	par.onDispatch = func(int) { dispatched.Add(1) }

	got, err := par.Multiply(context.Background(), a, b)
	if err != nil {
		t.Fatalf("expected the engine to degrade, got error %v", err)
	}
	if dispatched.Load() != 0 {
		t.Error("expected no concurrent dispatch with an exhausted budget")
	}
	seq, _ := NewSequentialEngine(4)
	want, _ := seq.Multiply(context.Background(), a, b)
	if !matrix.Equal(got, want) {
		t.Error("degraded run must match the sequential engine")
	}
}

func TestEngine_InvalidSizeIsConfigError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		size     int
		leaf     int
		badSize  string
		badLimit string
	}{
		{"half below leaf", 12, 4, "size 6", "leaf size 4"},
		{"odd dimension", 10, 2, "size 5", "leaf size 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := randomPair(t, tt.size, 1)
			for name, e := range engines(t, tt.leaf) {
				_, err := e.Multiply(context.Background(), a, b)
				if err == nil {
					t.Fatalf("%s: expected an error for size %d with leaf %d", name, tt.size, tt.leaf)
				}
				if !apperrors.IsConfigError(err) {
					t.Errorf("%s: expected a ConfigError, got %T: %v", name, err, err)
				}
				if !errors.Is(err, matrix.ErrSubdivision) {
					t.Errorf("%s: expected the error to wrap matrix.ErrSubdivision", name)
				}
				if msg := err.Error(); !strings.Contains(msg, tt.badSize) || !strings.Contains(msg, tt.badLimit) {
					t.Errorf("%s: message %q should name %q and %q", name, msg, tt.badSize, tt.badLimit)
				}
			}
		})
	}
}

func TestEngine_SizeMismatch(t *testing.T) {
	t.Parallel()
	a, _ := matrix.New(4)
	b, _ := matrix.New(8)
	for name, e := range engines(t, 2) {
		if _, err := e.Multiply(context.Background(), a, b); !errors.Is(err, matrix.ErrSizeMismatch) {
			t.Errorf("%s: expected ErrSizeMismatch, got %v", name, err)
		}
	}
}

func TestEngine_InvalidLeafSize(t *testing.T) {
	t.Parallel()
	if _, err := NewSequentialEngine(0); !apperrors.IsConfigError(err) {
		t.Errorf("expected ConfigError for leaf size 0, got %v", err)
	}
	if _, err := NewParallelEngine(-4); !apperrors.IsConfigError(err) {
		t.Errorf("expected ConfigError for leaf size -4, got %v", err)
	}
}

func TestEngine_Cancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a, b := randomPair(t, 16, 2)

	for name, e := range engines(t, 4) {
		if _, err := e.Multiply(ctx, a, b); !errors.Is(err, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", name, err)
		}
	}
}

func TestEngine_ReportsProgress(t *testing.T) {
	t.Parallel()
	a, b := randomPair(t, 16, 4)

	var mu sync.Mutex
	var values []float64
	e, _ := newEngine(4, true, func(p float64) {
		mu.Lock()
		defer mu.Unlock()
		values = append(values, p)
	})
	if _, err := e.Multiply(context.Background(), a, b); err != nil {
		t.Fatal(err)
	}
	// Completion is reported by the Multiplier decorator, not the engine.
	if len(values) != ProductCount {
		t.Fatalf("expected %d progress reports, got %d", ProductCount, len(values))
	}
	for _, v := range values {
		if v <= 0 || v >= 1 {
			t.Errorf("intermediate progress %v out of (0, 1)", v)
		}
	}
}

func TestExecuteTasks_PanicBecomesError(t *testing.T) {
	t.Parallel()
	e, _ := NewSequentialEngine(1)
	ok, _ := matrix.Identity(2)
	tasks := []multiplicationTask{
		{a: ok, b: ok, ctx: context.Background(), engine: e},
		{a: nil, b: ok, ctx: context.Background(), engine: e}, // dereferences nil
	}

	err := executeTasks(tasks, true)
	var pe *parallel.PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("expected a *parallel.PanicError, got %v", err)
	}
	if !strings.Contains(err.Error(), "p2") {
		t.Errorf("expected the failing product to be named, got %q", err.Error())
	}
	if tasks[0].result == nil {
		t.Error("expected the healthy task to complete before the join")
	}
}

func TestCheckSize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		size, leaf int
		wantErr    bool
	}{
		{2, 2, false},
		{1, 8, false},
		{256, 8, false},
		{96, 3, false},
		{12, 4, true},
		{10, 2, true},
		{0, 4, true},
		{16, 0, true},
	}
	for _, tt := range tests {
		err := CheckSize(tt.size, tt.leaf)
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckSize(%d, %d) = %v, wantErr %v", tt.size, tt.leaf, err, tt.wantErr)
		}
		if err != nil && !apperrors.IsConfigError(err) {
			t.Errorf("CheckSize(%d, %d) returned %T, want ConfigError", tt.size, tt.leaf, err)
		}
	}
}
