// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package threadpool

import (
	"context"
	"sync"

	"github.com/go-kit/log"
	"golang.org/x/sync/semaphore"
)

// WorkStealingPool stands in for RayonThreadPool from the original kvs
// course. Rayon's global thread pool is itself a work-stealing scheduler
// bounded to a fixed number of OS threads; Go's runtime scheduler already
// work-steals goroutines across Ps, so this pool's only remaining job is to
// bound concurrency to `threads` in-flight jobs at a time, using a weighted
// semaphore.
type WorkStealingPool struct {
	sem    *semaphore.Weighted
	logger log.Logger
	wg     sync.WaitGroup
}

// NewWorkStealingPool constructs a pool that never runs more than threads
// jobs concurrently, each on its own goroutine.
func NewWorkStealingPool(threads int, logger log.Logger) *WorkStealingPool {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if threads < 1 {
		threads = 1
	}
	return &WorkStealingPool{
		sem:    semaphore.NewWeighted(int64(threads)),
		logger: logger,
	}
}

// Spawn returns immediately; the new goroutine blocks on the semaphore
// itself, so at most `threads` jobs ever run at once without Spawn's caller
// waiting for a free slot.
func (p *WorkStealingPool) Spawn(fn func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)
		defer recoverAndLog(p.logger)
		fn()
	}()
}

// Close waits for every in-flight job to finish.
func (p *WorkStealingPool) Close() {
	p.wg.Wait()
}
