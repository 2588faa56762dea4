// Package concurrency implements a simple channel based resource manager for concurrent operations.
package concurrency

import (
	"sync"
)

// ResourceManager stores a channel of resources (e.g. a [bgv.Encryptor]) meant to be
// used concurrently, each resource being held by at most one task at a time.
type ResourceManager[T any] struct {
	wg        sync.WaitGroup
	resources chan T
	mu        sync.Mutex
	err       error
}

// NewResourceManager instantiates a new [ResourceManager] from a non-empty slice of resources.
// The number of resources bounds the number of tasks running at the same time.
func NewResourceManager[T any](resources []T) *ResourceManager[T] {
	ch := make(chan T, len(resources))
	for i := range resources {
		ch <- resources[i]
	}
	return &ResourceManager[T]{resources: ch}
}

// Task is a function taking as input a resource that is exclusively held for its duration.
type Task[T any] func(resource T) (err error)

// Run runs a [Task] concurrently, as soon as a resource is available.
// Once a task has failed, subsequent tasks are skipped.
func (r *ResourceManager[T]) Run(f Task[T]) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		resource := <-r.resources
		defer func() { r.resources <- resource }()

		if r.failed() {
			return
		}

		if err := f(resource); err != nil {
			r.mu.Lock()
			if r.err == nil {
				r.err = err
			}
			r.mu.Unlock()
		}
	}()
}

// Wait waits until all tasks have finished and returns the first encountered error, if any.
func (r *ResourceManager[T]) Wait() (err error) {
	r.wg.Wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *ResourceManager[T]) failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err != nil
}
