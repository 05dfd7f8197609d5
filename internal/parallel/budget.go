package parallel

import "golang.org/x/sync/semaphore"

// Budget bounds the number of goroutines that may be dispatched at once
// across the whole process. Acquisition never blocks: a caller that cannot
// obtain its slots is expected to run its work inline instead.
type Budget struct {
	capacity int64
	sem      *semaphore.Weighted
}

// NewBudget creates a budget allowing up to capacity concurrent goroutines.
// A non-positive capacity yields a budget that refuses every request.
func NewBudget(capacity int64) *Budget {
	if capacity < 0 {
		capacity = 0
	}
	return &Budget{capacity: capacity, sem: semaphore.NewWeighted(capacity)}
}

// TryAcquire reserves n slots if they are all available right now.
func (b *Budget) TryAcquire(n int64) bool {
	if b == nil {
		return true
	}
	if n > b.capacity {
		return false
	}
	return b.sem.TryAcquire(n)
}

// Release returns n slots previously obtained with TryAcquire.
func (b *Budget) Release(n int64) {
	if b == nil {
		return
	}
	b.sem.Release(n)
}

// Capacity returns the total number of slots.
func (b *Budget) Capacity() int64 {
	if b == nil {
		return 0
	}
	return b.capacity
}
