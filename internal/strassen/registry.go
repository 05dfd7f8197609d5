package strassen

import (
	"fmt"
	"sort"
	"sync"
)

// Names of the built-in multipliers.
const (
	AlgoNaive    = "naive"
	AlgoStrassen = "strassen"
	AlgoParallel = "parallel"
)

// MultiplierFactory creates and caches multipliers by name.
type MultiplierFactory interface {
	// Create returns a new, uncached multiplier.
	Create(name string) (Multiplier, error)
	// Get returns the cached multiplier, creating it on first use.
	Get(name string) (Multiplier, error)
	// List returns the registered names in sorted order.
	List() []string
	// Register adds or replaces a multiplier constructor.
	Register(name string, creator func() coreMultiplier) error
	// GetAll returns every registered multiplier.
	GetAll() map[string]Multiplier
}

// DefaultFactory is the MultiplierFactory used by the application.
// It is safe for concurrent use.
type DefaultFactory struct {
	mu          sync.RWMutex
	creators    map[string]func() coreMultiplier
	multipliers map[string]Multiplier
}

// NewDefaultFactory creates a factory with the built-in multipliers.
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{
		creators:    make(map[string]func() coreMultiplier),
		multipliers: make(map[string]Multiplier),
	}

	_ = f.Register(AlgoNaive, func() coreMultiplier { return NaiveMultiplier{} })
	_ = f.Register(AlgoStrassen, func() coreMultiplier { return SequentialStrassen{} })
	_ = f.Register(AlgoParallel, func() coreMultiplier { return ParallelStrassen{} })

	return f
}

// Register adds or replaces a constructor and drops any cached instance.
func (f *DefaultFactory) Register(name string, creator func() coreMultiplier) error {
	if name == "" || creator == nil {
		return fmt.Errorf("invalid registration for multiplier %q", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.creators[name] = creator
	delete(f.multipliers, name)
	return nil
}

// Create returns a new multiplier instance.
func (f *DefaultFactory) Create(name string) (Multiplier, error) {
	f.mu.RLock()
	creator, ok := f.creators[name]
	f.mu.RUnlock()

	if !ok {
		return nil, &UnknownMultiplierError{Name: name}
	}
	return NewMultiplier(creator()), nil
}

// Get returns the cached multiplier for name.
func (f *DefaultFactory) Get(name string) (Multiplier, error) {
	f.mu.RLock()
	if m, exists := f.multipliers[name]; exists {
		f.mu.RUnlock()
		return m, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	if m, exists := f.multipliers[name]; exists {
		return m, nil
	}
	creator, ok := f.creators[name]
	if !ok {
		return nil, &UnknownMultiplierError{Name: name}
	}
	m := NewMultiplier(creator())
	f.multipliers[name] = m
	return m, nil
}

// List returns the registered names, sorted.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAll instantiates and returns every registered multiplier.
func (f *DefaultFactory) GetAll() map[string]Multiplier {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, creator := range f.creators {
		if _, exists := f.multipliers[name]; !exists {
			f.multipliers[name] = NewMultiplier(creator())
		}
	}
	result := make(map[string]Multiplier, len(f.multipliers))
	for name, m := range f.multipliers {
		result[name] = m
	}
	return result
}

// Has reports whether name is registered.
func (f *DefaultFactory) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, exists := f.creators[name]
	return exists
}

var globalFactory = NewDefaultFactory()

// GlobalFactory returns the process-wide factory. Build-tagged algorithms
// register themselves into it from init.
func GlobalFactory() *DefaultFactory {
	return globalFactory
}

// RegisterMultiplier registers a constructor in the global factory.
func RegisterMultiplier(name string, creator func() coreMultiplier) error {
	return globalFactory.Register(name, creator)
}

// UnknownMultiplierError is returned when a multiplier name is not found.
type UnknownMultiplierError struct {
	Name string
}

func (e *UnknownMultiplierError) Error() string {
	return "unknown multiplier: " + e.Name
}
