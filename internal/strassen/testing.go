package strassen

import (
	"context"
	"sort"

	"github.com/agbru/strassen/internal/matrix"
)

// MockMultiplier is a hand-rolled Multiplier for tests in other packages.
type MockMultiplier struct {
	NameValue string
	Result    *matrix.Matrix
	Err       error
	Fn        func(ctx context.Context, a, b *matrix.Matrix) (*matrix.Matrix, error)
}

// Name returns NameValue, or "mock".
func (m *MockMultiplier) Name() string {
	if m.NameValue != "" {
		return m.NameValue
	}
	return "mock"
}

// Multiply returns the configured Result and Err, or calls Fn if provided.
func (m *MockMultiplier) Multiply(ctx context.Context, progressChan chan<- ProgressUpdate, index int, a, b *matrix.Matrix, opts Options) (*matrix.Matrix, error) {
	if m.Fn != nil {
		return m.Fn(ctx, a, b)
	}
	if progressChan != nil {
		progressChan <- ProgressUpdate{MultiplierIndex: index, Value: 1.0}
	}
	return m.Result, m.Err
}

// TestFactory is a MultiplierFactory over a fixed set of multipliers.
type TestFactory struct {
	multipliers map[string]Multiplier
}

// NewTestFactory creates a factory holding the given multipliers.
func NewTestFactory(multipliers map[string]Multiplier) *TestFactory {
	if multipliers == nil {
		multipliers = make(map[string]Multiplier)
	}
	return &TestFactory{multipliers: multipliers}
}

// Create returns the multiplier by name.
func (f *TestFactory) Create(name string) (Multiplier, error) {
	return f.Get(name)
}

// Get returns the multiplier by name.
func (f *TestFactory) Get(name string) (Multiplier, error) {
	m, ok := f.multipliers[name]
	if !ok {
		return nil, &UnknownMultiplierError{Name: name}
	}
	return m, nil
}

// List returns the multiplier names.
func (f *TestFactory) List() []string {
	names := make([]string, 0, len(f.multipliers))
	for name := range f.multipliers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register is a no-op: multipliers are set at construction.
func (f *TestFactory) Register(string, func() coreMultiplier) error {
	return nil
}

// GetAll returns a copy of all multipliers.
func (f *TestFactory) GetAll() map[string]Multiplier {
	result := make(map[string]Multiplier, len(f.multipliers))
	for k, v := range f.multipliers {
		result[k] = v
	}
	return result
}
