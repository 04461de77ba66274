// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool limits the number of goroutines running engine kernels in
// parallel. Engines fan work out across independent lines of a buffer; the pool
// keeps that fan-out at a soft parallelism target instead of one goroutine per line.
package workerspool

import (
	"runtime"
	"sync"
)

// Pool controls how many tasks run concurrently.
//
// The parallelism target is soft: the number of live goroutines can temporarily
// exceed it while tasks finish. A Pool is safe for concurrent use.
type Pool struct {
	// maxParallelism is a soft target on the limit of parallel work to do.
	// 0 disables parallelism (tasks run inline); negative means unlimited.
	maxParallelism int

	mu         sync.Mutex
	cond       sync.Cond // Signaled whenever numRunning decreases.
	numRunning int
}

// New returns a new Pool with the default parallelism target (runtime.NumCPU()).
func New() *Pool {
	return NewWithParallelism(runtime.NumCPU())
}

// NewWithParallelism returns a new Pool with the given parallelism target.
// Use 0 to disable parallelism and a negative value for unlimited parallelism.
func NewWithParallelism(maxParallelism int) *Pool {
	p := &Pool{maxParallelism: maxParallelism}
	p.cond = sync.Cond{L: &p.mu}
	return p
}

// IsEnabled returns whether parallelism is enabled (MaxParallelism != 0).
func (p *Pool) IsEnabled() bool {
	return p.maxParallelism != 0
}

// IsUnlimited returns whether parallelism is unlimited (MaxParallelism < 0).
func (p *Pool) IsUnlimited() bool {
	return p.maxParallelism < 0
}

// MaxParallelism returns the soft target for parallelism.
func (p *Pool) MaxParallelism() int {
	return p.maxParallelism
}

// SetMaxParallelism changes the parallelism target.
//
// Only change the parallelism before any tasks start running; if changed during
// execution the behavior is undefined.
func (p *Pool) SetMaxParallelism(maxParallelism int) {
	p.maxParallelism = maxParallelism
}

// lockedIsFull returns whether all available workers are in use.
//
// It must be called with p.mu held.
func (p *Pool) lockedIsFull() bool {
	if p.maxParallelism == 0 {
		return true
	} else if p.maxParallelism < 0 {
		return false
	}
	return p.numRunning >= p.maxParallelism
}

// WaitToStart blocks until a worker is available and then runs the task in its
// own goroutine.
//
// If parallelism is disabled, the task runs inline and WaitToStart returns when
// it finishes.
func (p *Pool) WaitToStart(task func()) {
	if p.IsUnlimited() {
		go task()
		return
	} else if p.maxParallelism == 0 {
		task()
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for p.lockedIsFull() {
		p.cond.Wait()
	}
	p.lockedRunTaskInGoroutine(task)
}

// StartIfAvailable runs the task in a separate goroutine if there are workers
// left, returning whether it did. It never blocks.
//
// It's up to the caller to synchronize the end of the task execution.
func (p *Pool) StartIfAvailable(task func()) bool {
	if p.IsUnlimited() {
		go task()
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lockedIsFull() {
		return false
	}
	p.lockedRunTaskInGoroutine(task)
	return true
}

// lockedRunTaskInGoroutine runs task keeping tabs on p.numRunning.
//
// It must be called with p.mu held.
func (p *Pool) lockedRunTaskInGoroutine(task func()) {
	p.numRunning++
	go func() {
		task()
		p.mu.Lock()
		p.numRunning--
		p.cond.Signal()
		p.mu.Unlock()
	}()
}
