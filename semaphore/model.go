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

package semaphore

import (
	"context"
	"sync/atomic"
	"time"

	liberr "github.com/nabbar/golib/errors"
	sdsync "golang.org/x/sync/semaphore"
)

type sem struct {
	w *sdsync.Weighted // nil when unbounded
	s int64            // permit count
	c int64            // waiter cap, 0 when uncapped
	n atomic.Int64     // current waiters
}

func (o *sem) Acquire(timeout time.Duration) liberr.Error {
	if o.w == nil {
		return nil
	}

	if o.w.TryAcquire(1) {
		return nil
	}

	if o.c > 0 && o.n.Load() >= o.c {
		return ErrorSemOverflow.Error(nil)
	}

	o.n.Add(1)
	defer o.n.Add(-1)

	var (
		ctx = context.Background()
		cnl context.CancelFunc
	)

	if timeout > 0 {
		ctx, cnl = context.WithTimeout(ctx, timeout)
		defer cnl()
	}

	if e := o.w.Acquire(ctx, 1); e != nil {
		return ErrorSemTimeout.Error(e)
	}

	return nil
}

func (o *sem) TryAcquire() bool {
	if o.w == nil {
		return true
	}

	return o.w.TryAcquire(1)
}

func (o *sem) Release() {
	if o.w == nil {
		return
	}

	o.w.Release(1)
}

func (o *sem) Size() int64 {
	return o.s
}

func (o *sem) Waiters() int64 {
	return o.n.Load()
}
