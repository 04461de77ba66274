// Copyright 2025-2026 The NDKit Authors. SPDX-License-Identifier: Apache-2.0

package workerspool

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitToStartRunsEverything(t *testing.T) {
	p := NewWithParallelism(4)
	const numTasks = 100
	var counter atomic.Int64
	var wg sync.WaitGroup
	for _i := 0; _i < numTasks; _i++ {
		wg.Add(1)
		p.WaitToStart(func() {
			defer wg.Done()
			counter.Add(1)
		})
	}
	wg.Wait()
	assert.Equal(t, int64(numTasks), counter.Load())
}

func TestParallelismIsCapped(t *testing.T) {
	const limit = 3
	p := NewWithParallelism(limit)
	var running, peak atomic.Int64
	var wg sync.WaitGroup
	for _i := 0; _i < 50; _i++ {
		wg.Add(1)
		p.WaitToStart(func() {
			defer wg.Done()
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			running.Add(-1)
		})
	}
	wg.Wait()
	assert.LessOrEqual(t, peak.Load(), int64(limit))
}

func TestDisabledRunsInline(t *testing.T) {
	p := NewWithParallelism(0)
	require.False(t, p.IsEnabled())
	ran := false
	p.WaitToStart(func() { ran = true })
	// Inline execution: done by the time WaitToStart returns, no
	// synchronization needed.
	assert.True(t, ran)
	assert.False(t, p.StartIfAvailable(func() { t.Fatal("must not start") }))
}

func TestUnlimited(t *testing.T) {
	p := NewWithParallelism(-1)
	require.True(t, p.IsUnlimited())
	var wg sync.WaitGroup
	wg.Add(10)
	for _i := 0; _i < 10; _i++ {
		started := p.StartIfAvailable(func() { wg.Done() })
		assert.True(t, started)
	}
	wg.Wait()
}

func TestStartIfAvailable(t *testing.T) {
	p := NewWithParallelism(1)
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	started := p.StartIfAvailable(func() {
		<-release
		wg.Done()
	})
	require.True(t, started)

	// Single worker busy: a second task must be refused.
	assert.False(t, p.StartIfAvailable(func() { t.Error("must not start") }))
	close(release)
	wg.Wait()
}
