// Package parallel provides the primitives used to fan work out to
// goroutines: first-error collection, panic containment and a process-wide
// dispatch budget.
package parallel

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// ErrorCollector collects the first error from parallel goroutines.
// It is safe for concurrent use.
//
// Usage:
//
//	var ec parallel.ErrorCollector
//	var wg sync.WaitGroup
//	wg.Add(2)
//	go func() {
//	    defer wg.Done()
//	    ec.SetError(parallel.Run(work1))
//	}()
//	go func() {
//	    defer wg.Done()
//	    ec.SetError(parallel.Run(work2))
//	}()
//	wg.Wait()
//	if err := ec.Err(); err != nil {
//	    return err
//	}
type ErrorCollector struct {
	once sync.Once
	err  error
}

// SetError records err if no error has been recorded yet. Nil is ignored.
func (c *ErrorCollector) SetError(err error) {
	if err != nil {
		c.once.Do(func() {
			c.err = err
		})
	}
}

// Err returns the first recorded error, or nil. It should be called after
// all goroutines have completed.
func (c *ErrorCollector) Err() error {
	return c.err
}

// PanicError reports a panic raised inside a unit of work.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// Run calls fn and converts a panic into a *PanicError, so that an abnormal
// termination of one goroutine fails its whole batch instead of the process.
func Run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
