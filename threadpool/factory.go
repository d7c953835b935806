// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package threadpool

import (
	"fmt"

	"github.com/go-kit/log"
)

// Kind names one of the available Pool strategies, selectable from the
// server's command line the way the original kvs-server lets an operator
// pick an engine.
type Kind string

const (
	KindNaive       Kind = "naive"
	KindSharedQueue Kind = "shared-queue"
	KindWorkStealing Kind = "work-stealing"
)

// New builds a Pool of the given kind with threads workers (or threads
// concurrency slots, for WorkStealingPool).
func New(kind Kind, threads int, logger log.Logger) (Pool, error) {
	switch kind {
	case KindNaive:
		return NewNaivePool(threads, logger), nil
	case KindSharedQueue:
		return NewSharedQueuePool(threads, logger), nil
	case KindWorkStealing:
		return NewWorkStealingPool(threads, logger), nil
	default:
		return nil, fmt.Errorf("unknown thread pool kind %q", kind)
	}
}
