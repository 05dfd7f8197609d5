package strassen

import (
	"context"
	"fmt"
	"sync"

	"github.com/agbru/strassen/internal/matrix"
	"github.com/agbru/strassen/internal/parallel"
)

// task is a unit of work that can run inline or on its own goroutine.
type task interface {
	execute() error
}

// multiplicationTask describes one of the seven Strassen products of a
// recursive step: its operands, its result once executed, and whether the
// recursive call it performs may itself fan out. isRoot is false for every
// task an engine creates, which keeps parallelism exactly one level deep.
type multiplicationTask struct {
	a, b   *matrix.Matrix
	result *matrix.Matrix
	isRoot bool

	ctx    context.Context
	engine *Engine
	onDone func()
}

// execute performs the sub-multiplication and stores its result.
func (t *multiplicationTask) execute() error {
	r, err := t.engine.multiply(t.ctx, t.a, t.b, t.isRoot, false)
	if err != nil {
		return err
	}
	t.result = r
	if t.onDone != nil {
		t.onDone()
	}
	return nil
}

// executeTasks runs a batch of tasks either inline, in order, or each on its
// own goroutine followed by a join on all of them. In parallel mode a panic
// in one task is recovered and reported as that task's error; the first error
// of the batch is returned only once every task has finished.
//
// Type Parameters:
//   - T: The value type of the task.
//   - PT: A pointer type to T that implements the task interface.
//
// Parameters:
//   - tasks: The tasks to execute (values, not pointers).
//   - inParallel: Whether to execute tasks concurrently.
//
// Returns:
//   - error: The first error reported by a task, if any.
func executeTasks[T any, PT interface {
	*T
	task
}](tasks []T, inParallel bool) error {
	if inParallel {
		var wg sync.WaitGroup
		var ec parallel.ErrorCollector
		wg.Add(len(tasks))
		for i := range tasks {
			go func(index int, t PT) {
				defer wg.Done()
				if err := parallel.Run(t.execute); err != nil {
					ec.SetError(fmt.Errorf("product p%d: %w", index+1, err))
				}
			}(i, PT(&tasks[i]))
		}
		wg.Wait()
		return ec.Err()
	}
	for i := range tasks {
		if err := PT(&tasks[i]).execute(); err != nil {
			return err
		}
	}
	return nil
}
