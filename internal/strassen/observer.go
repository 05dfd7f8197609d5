package strassen

import "sync"

// ProgressObserver receives progress notifications. Implementations must be
// safe for concurrent use, since the parallel engine reports from its
// worker goroutines.
type ProgressObserver interface {
	// Update is called with the index of the multiplier and its normalized
	// progress (0.0 to 1.0).
	Update(multiplierIndex int, progress float64)
}

// ProgressSubject fans progress notifications out to registered observers.
type ProgressSubject struct {
	observers []ProgressObserver
	mu        sync.RWMutex
}

// NewProgressSubject creates a subject with no observers.
func NewProgressSubject() *ProgressSubject {
	return &ProgressSubject{
		observers: make([]ProgressObserver, 0),
	}
}

// Register adds an observer. Nil observers are ignored.
func (s *ProgressSubject) Register(observer ProgressObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

// Unregister removes the first occurrence of observer.
func (s *ProgressSubject) Unregister(observer ProgressObserver) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, o := range s.observers {
		if o == observer {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// Notify forwards an update to every registered observer.
func (s *ProgressSubject) Notify(multiplierIndex int, progress float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, observer := range s.observers {
		observer.Update(multiplierIndex, progress)
	}
}

// ObserverCount returns the number of registered observers.
func (s *ProgressSubject) ObserverCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// AsProgressReporter adapts the subject into the callback used by engines.
func (s *ProgressSubject) AsProgressReporter(multiplierIndex int) ProgressReporter {
	return func(progress float64) {
		s.Notify(multiplierIndex, progress)
	}
}
