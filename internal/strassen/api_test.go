package strassen

import (
	"context"
	"errors"
	"testing"

	"github.com/agbru/strassen/internal/matrix"
)

func TestMultiply_BufferEntryPoint(t *testing.T) {
	t.Parallel()
	// 2x2 operands stored with padded leading dimensions.
	a := []float64{1, 2, 0, 3, 4}
	b := []float64{5, 6, 0, 0, 7, 8}
	const sentinel = -42.0
	c := []float64{sentinel, sentinel, sentinel, sentinel, sentinel, sentinel}

	for _, sequential := range []bool{false, true} {
		if err := Multiply(context.Background(), a, 3, b, 4, c, 3, 2, Options{LeafSize: 1, Sequential: sequential}); err != nil {
			t.Fatalf("Multiply(sequential=%v): %v", sequential, err)
		}
		want := []float64{19, 22, sentinel, 43, 50, sentinel}
		for i := range want {
			if c[i] != want[i] {
				t.Errorf("sequential=%v: c[%d] = %v, want %v", sequential, i, c[i], want[i])
			}
		}
	}
	if a[2] != 0 || b[2] != 0 {
		t.Error("operands must not be modified")
	}
}

func TestMultiply_NoHiddenState(t *testing.T) {
	t.Parallel()
	a, b := randomPair(t, 32, 21)
	av, bv := a.Values(), b.Values()

	first := make([]float64, 32*32)
	second := make([]float64, 32*32)
	if err := Multiply(context.Background(), av, 32, bv, 32, first, 32, 32, Options{}); err != nil {
		t.Fatal(err)
	}
	// An unrelated call in between must not influence the next one.
	other := make([]float64, 16*16)
	if err := Multiply(context.Background(), av[:16*16], 16, bv[:16*16], 16, other, 16, 16, Options{LeafSize: 4}); err != nil {
		t.Fatal(err)
	}
	if err := Multiply(context.Background(), av, 32, bv, 32, second, 32, 32, Options{}); err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("repeated call differs at %d", i)
		}
	}
}

func TestMultiply_BufferErrors(t *testing.T) {
	t.Parallel()
	ok := make([]float64, 16)
	ctx := context.Background()

	if err := Multiply(ctx, ok[:3], 4, ok, 4, ok, 4, 4, Options{}); !errors.Is(err, matrix.ErrBufferTooSmall) {
		t.Errorf("short A: got %v", err)
	}
	if err := Multiply(ctx, ok, 4, ok[:10], 4, ok, 4, 4, Options{}); !errors.Is(err, matrix.ErrBufferTooSmall) {
		t.Errorf("short B: got %v", err)
	}
	if err := Multiply(ctx, ok, 4, ok, 4, make([]float64, 5), 4, 4, Options{}); !errors.Is(err, matrix.ErrBufferTooSmall) {
		t.Errorf("short C: got %v", err)
	}
}

func TestMultiplyInto_UsesGivenMultiplier(t *testing.T) {
	t.Parallel()
	want, _ := matrix.FromValues(2, []float64{1, 1, 1, 1})
	mock := &MockMultiplier{Result: want}
	c := make([]float64, 4)
	if err := MultiplyInto(context.Background(), mock, make([]float64, 4), 2, make([]float64, 4), 2, c, 2, 2, Options{}); err != nil {
		t.Fatal(err)
	}
	for i, v := range c {
		if v != 1 {
			t.Errorf("c[%d] = %v, want 1", i, v)
		}
	}

	mock.Err = errors.New("engine failure")
	if err := MultiplyInto(context.Background(), mock, make([]float64, 4), 2, make([]float64, 4), 2, c, 2, 2, Options{}); !errors.Is(err, mock.Err) {
		t.Errorf("expected engine failure to propagate, got %v", err)
	}
}
