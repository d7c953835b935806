// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package threadpool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func allKinds() []Kind {
	return []Kind{KindNaive, KindSharedQueue, KindWorkStealing}
}

func TestPoolRunsAllJobs(t *testing.T) {
	for _, kind := range allKinds() {
		kind := kind
		t.Run(string(kind), func(t *testing.T) {
			p, err := New(kind, 4, nil)
			require.NoError(t, err)

			var n int64
			const jobs = 200
			for i := 0; i < jobs; i++ {
				p.Spawn(func() { atomic.AddInt64(&n, 1) })
			}
			p.Close()
			require.EqualValues(t, jobs, atomic.LoadInt64(&n))
		})
	}
}

func TestPoolSurvivesPanickingJob(t *testing.T) {
	for _, kind := range allKinds() {
		kind := kind
		t.Run(string(kind), func(t *testing.T) {
			p, err := New(kind, 2, nil)
			require.NoError(t, err)

			var ran int64
			p.Spawn(func() { panic("boom") })
			p.Spawn(func() { atomic.AddInt64(&ran, 1) })

			// Give goroutines a chance to run before Close, which for
			// SharedQueuePool only waits on workers, not pending sends.
			time.Sleep(50 * time.Millisecond)
			p.Close()
			require.EqualValues(t, 1, atomic.LoadInt64(&ran))
		})
	}
}

func TestWorkStealingPoolBoundsConcurrency(t *testing.T) {
	p, err := New(KindWorkStealing, 2, nil)
	require.NoError(t, err)

	var cur, maxSeen int64
	start := make(chan struct{})
	done := make(chan struct{})
	for i := 0; i < 6; i++ {
		p.Spawn(func() {
			<-start
			c := atomic.AddInt64(&cur, 1)
			for {
				m := atomic.LoadInt64(&maxSeen)
				if c <= m || atomic.CompareAndSwapInt64(&maxSeen, m, c) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt64(&cur, -1)
			done <- struct{}{}
		})
	}
	close(start)
	for i := 0; i < 6; i++ {
		<-done
	}
	p.Close()
	require.LessOrEqual(t, atomic.LoadInt64(&maxSeen), int64(2))
}
