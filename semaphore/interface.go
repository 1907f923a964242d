/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package semaphore provides a counting semaphore with timed acquisition and
// an optional cap on the number of concurrent waiters.
//
// The semaphore bounds the number of permits handed out at any time. A caller
// that cannot obtain a permit immediately blocks until one is released, until
// the given timeout expires, or, when a waiter cap is configured, fails
// immediately once the cap of blocked callers is reached.
//
// Example usage:
//
//	import libsem "github.com/didibz/mongolib/semaphore"
//
//	sem := libsem.New(10, 50)
//	if err := sem.Acquire(5 * time.Second); err != nil {
//	    return err
//	}
//	defer sem.Release()
package semaphore

import (
	"time"

	liberr "github.com/nabbar/golib/errors"
	sdsync "golang.org/x/sync/semaphore"
)

// Sem is a counting semaphore with timed acquisition.
//
// All operations are safe for concurrent use. A semaphore created with a
// non-positive size is unbounded: every acquisition succeeds immediately and
// Release is a no-op.
type Sem interface {
	// Acquire obtains one permit, blocking up to the given timeout.
	// A non-positive timeout blocks until a permit is available.
	// It returns nil on success, ErrorSemTimeout when the timeout expires,
	// or ErrorSemOverflow when the waiter cap is already reached.
	Acquire(timeout time.Duration) liberr.Error

	// TryAcquire obtains one permit without blocking.
	// It returns true on success.
	TryAcquire() bool

	// Release returns one permit. It must be called exactly once for each
	// successful Acquire or TryAcquire.
	Release()

	// Size returns the configured number of permits, or 0 when unbounded.
	Size() int64

	// Waiters returns the number of callers currently blocked in Acquire.
	Waiters() int64
}

// New returns a Sem holding size permits.
//
// A non-positive size means unbounded. A positive maxWaiters caps the number
// of callers allowed to block in Acquire at one time; beyond the cap,
// Acquire fails with ErrorSemOverflow instead of queuing.
func New(size int64, maxWaiters int64) Sem {
	var w *sdsync.Weighted

	if size > 0 {
		w = sdsync.NewWeighted(size)
	} else {
		size = 0
	}

	if maxWaiters < 0 {
		maxWaiters = 0
	}

	return &sem{
		w: w,
		s: size,
		c: maxWaiters,
	}
}
