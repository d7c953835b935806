// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package threadpool

import (
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// NaivePool spawns one goroutine per unit of work with no bound on
// concurrency, matching NaiveThreadPool from the original kvs course: the
// simplest possible pool, useful mainly as a baseline to compare the bounded
// pools against.
type NaivePool struct {
	logger log.Logger
	wg     sync.WaitGroup
}

// NewNaivePool constructs a NaivePool. threads is accepted for interface
// parity with the bounded pools but is otherwise unused.
func NewNaivePool(threads int, logger log.Logger) *NaivePool {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &NaivePool{logger: logger}
}

// Spawn starts a new goroutine for fn, recovering any panic so it cannot
// crash the server.
func (p *NaivePool) Spawn(fn func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer recoverAndLog(p.logger)
		fn()
	}()
}

// Close waits for every spawned goroutine to return.
func (p *NaivePool) Close() {
	p.wg.Wait()
}

func recoverAndLog(logger log.Logger) {
	if r := recover(); r != nil {
		level.Error(logger).Log("msg", "worker panicked, recovered", "panic", r)
	}
}
