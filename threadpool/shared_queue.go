// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package threadpool

import (
	"sync"

	"github.com/go-kit/log"
)

// SharedQueuePool runs work on a fixed number of long-lived worker
// goroutines pulling from one shared channel, matching SharedQueueThreadPool
// from the original kvs course. If a worker panics while running a job, the
// same goroutine recovers and keeps pulling from the queue, so pool
// capacity never permanently shrinks.
type SharedQueuePool struct {
	jobs   chan func()
	logger log.Logger
	wg     sync.WaitGroup
}

// NewSharedQueuePool starts threads worker goroutines reading from a shared
// job queue.
func NewSharedQueuePool(threads int, logger log.Logger) *SharedQueuePool {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if threads < 1 {
		threads = 1
	}
	p := &SharedQueuePool{
		jobs:   make(chan func()),
		logger: logger,
	}
	for i := 0; i < threads; i++ {
		p.startWorker()
	}
	return p
}

func (p *SharedQueuePool) startWorker() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runWorker()
	}()
}

// runWorker processes jobs until the channel is closed. The original kvs
// course has to respawn a worker thread whenever a job panics, because a
// panicking OS thread in Rust unwinds and dies; in Go, recovering inside the
// loop keeps the same goroutine alive to pick up the next job, so no
// replacement is needed.
func (p *SharedQueuePool) runWorker() {
	for {
		job, ok := <-p.jobs
		if !ok {
			return
		}
		p.runJob(job)
	}
}

func (p *SharedQueuePool) runJob(job func()) {
	defer recoverAndLog(p.logger)
	job()
}

// Spawn enqueues fn for the next free worker.
func (p *SharedQueuePool) Spawn(fn func()) {
	p.jobs <- fn
}

// Close stops accepting new work and waits for all workers to drain and
// exit.
func (p *SharedQueuePool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
