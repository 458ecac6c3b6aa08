// Package fabric is the parallel compute fabric (C5): a uniform abstraction
// for running many independent CPU-bound units across a worker pool sized
// to hardware parallelism, collecting their results by key.
//
// It generalizes the original source's ConcurrentCompute trait
// (original_source/.../crypto/src/traits.rs, built on crossbeam::thread::scope)
// into Go generics atop github.com/sourcegraph/conc/pool, which already
// supplies the bounded-goroutine worker pool and admission semaphore
// spec.md asks for (WithMaxGoroutines sized to runtime.NumCPU()).
package fabric

import (
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// Unit is one independent computation dispatched through the fabric: Key
// identifies it in the output map, Run produces a value or an error.
type Unit[T any] struct {
	Key string
	Run func() (T, error)
}

// Result is the fabric's per-unit output: the computed value, or the error
// that unit failed with. Exactly one of Value/Err is meaningful depending
// on whether Err is nil.
type Result[T any] struct {
	Key   string
	Value T
	Err   error
}

// RunAll dispatches every unit onto a worker pool sized to runtime.NumCPU()
// and returns a map from key to result once all units have terminated.
// Failure of one unit never cancels its peers: each unit's outcome is
// captured independently in the returned map, and a unit that panics is
// reported as that unit's error. Ordering across units is not
// guaranteed; within a unit, it runs to completion on exactly one worker.
func RunAll[T any](units []Unit[T]) map[string]Result[T] {
	return RunAllWithConcurrency(units, runtime.NumCPU())
}

// RunAllWithConcurrency is RunAll with an explicit worker-pool size, mainly
// for tests that want to force contention on a small pool.
func RunAllWithConcurrency[T any](units []Unit[T], concurrency int) map[string]Result[T] {
	if concurrency < 1 {
		concurrency = 1
	}
	p := pool.NewWithResults[Result[T]]().WithMaxGoroutines(concurrency)
	for _, u := range units {
		u := u
		p.Go(func() (r Result[T]) {
			defer func() {
				if rec := recover(); rec != nil {
					r = Result[T]{Key: u.Key, Err: fmt.Errorf("unit %s panicked: %v", u.Key, rec)}
				}
			}()
			value, err := u.Run()
			return Result[T]{Key: u.Key, Value: value, Err: err}
		})
	}
	results := p.Wait()
	out := make(map[string]Result[T], len(results))
	for _, r := range results {
		out[r.Key] = r
	}
	return out
}
