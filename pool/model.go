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

package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	libaut "github.com/didibz/mongolib/auth"
	libcnn "github.com/didibz/mongolib/connection"
	libmsg "github.com/didibz/mongolib/message"
	libsem "github.com/didibz/mongolib/semaphore"
	libatm "github.com/nabbar/golib/atomic"
	libtls "github.com/nabbar/golib/certificates"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
)

// defaultCheckInterval is how long a connection may sit idle before being
// probed for remote closure on its next checkout.
const defaultCheckInterval = time.Second

type pool struct {
	m sync.Mutex
	i map[libcnn.Connection]struct{} // idle set, keyed by connection identity

	g atomic.Uint64 // generation, bumped on reset
	p atomic.Int64  // owning pid

	s libsem.Sem
	c *Config

	hn string // pre-resolution hostname, or unix socket path
	pt string // port, empty for unix sockets
	ux bool

	tl libtls.TLSConfig
	fp func() int // pid source

	fl libatm.Value[liblog.FuncLog]
	fc libatm.Value[libmsg.FuncCheckResponse]
	fa libatm.Value[libaut.FuncAuthenticate]
	fo libatm.Value[libaut.FuncLogout]
}

func (o *pool) ctx() context.Context {
	if o.c.fctx != nil {
		if x := o.c.fctx(); x != nil {
			return x
		}
	}

	return context.Background()
}

func (o *pool) Generation() uint64 {
	return o.g.Load()
}

func (o *pool) Len() int {
	o.m.Lock()
	defer o.m.Unlock()

	return len(o.i)
}

func (o *pool) RegisterLogger(fct liblog.FuncLog) {
	o.fl.Store(fct)
}

func (o *pool) RegisterCheckResponse(fct libmsg.FuncCheckResponse) {
	o.fc.Store(fct)
}

func (o *pool) RegisterAuthHandler(fa libaut.FuncAuthenticate, fl libaut.FuncLogout) {
	o.fa.Store(fa)
	o.fo.Store(fl)
}

// forked reports whether the current process is no longer the one that owns
// the pool. Racing readers tolerate a stale value: the worst case is one
// extra reset.
func (o *pool) forked() bool {
	return o.p.Load() != int64(o.fp())
}

// Reset invalidates the whole pool: the generation is bumped so checked-out
// connections are discarded on return, and the idle set is swapped out and
// closed outside the lock. The semaphore is untouched; outstanding checkouts
// keep their permits.
func (o *pool) Reset() {
	o.g.Add(1)
	o.p.Store(int64(o.fp()))

	o.m.Lock()
	old := o.i
	o.i = make(map[libcnn.Connection]struct{}, len(old))
	o.m.Unlock()

	for cn := range old {
		cn.Close()
	}

	o.logDebug("pool : reset to generation '%d', closed '%d' idle connection(s)", o.Generation(), len(old))
}

func (o *pool) Close() {
	o.Reset()
}

func (o *pool) Get(all map[string]libaut.Credential, minWire, maxWire int32, checkout bool, fct FuncConnection) liberr.Error {
	cn, err := o.Acquire(all, minWire, maxWire)
	if err != nil {
		return err
	}

	if fct != nil {
		if e := fct(cn); e != nil {
			o.failClose(cn, e)
			o.Release(cn)

			if l, ok := e.(liberr.Error); ok {
				return l
			}

			return ErrorScopedCall.Error(e)
		}
	}

	if !checkout {
		o.Release(cn)
	}

	return nil
}

// Acquire checks a connection out: fork check, permit, idle pop or fresh
// connect, liveness check on pooled members, wire window, then credential
// reconciliation. Ownership passes to the caller.
func (o *pool) Acquire(all map[string]libaut.Credential, minWire, maxWire int32) (libcnn.Connection, liberr.Error) {
	cn, err := o.checkOut()
	if err != nil {
		return nil, err
	}

	cn.SetWireVersionRange(minWire, maxWire)

	if err = cn.ReconcileAuth(all); err != nil {
		o.failClose(cn, err)
		o.Release(cn)
		return nil, err
	}

	return cn, nil
}

// checkOut obtains a permit then a connection. The permit is released on
// every error path; on success the caller holds it until Release.
func (o *pool) checkOut() (libcnn.Connection, liberr.Error) {
	// After a fork the inherited descriptors still belong, server side, to
	// the parent; none of them may be reused.
	if o.forked() {
		o.logDebug("pool : owning process changed, resetting")
		o.Reset()
	}

	if err := o.s.Acquire(o.c.WaitQueueTimeout.Time()); err != nil {
		if err.IsCode(libsem.ErrorSemTimeout) {
			return nil, ErrorWaitQueueTimeout.Error(fmt.Errorf(
				"timed out waiting for socket from pool with max_size %d and wait_queue_timeout %s",
				o.c.MaxPoolSize, o.c.WaitQueueTimeout.Time()))
		}

		return nil, err
	}

	var (
		cn       libcnn.Connection
		err      liberr.Error
		fromPool bool
	)

	o.m.Lock()
	for c := range o.i {
		cn = c
		delete(o.i, c)
		fromPool = true
		break
	}
	o.m.Unlock()

	if !fromPool {
		cn, err = o.connect()
	} else {
		cn, err = o.check(cn)
	}

	if err != nil {
		o.s.Release()
		return nil, err
	}

	cn.SetLastCheckout(time.Now())

	return cn, nil
}

// Release hands a connection back to the pool, or discards it when it is
// closed, stale, or the pool is already full. Exactly one permit is released
// on every branch.
func (o *pool) Release(cn libcnn.Connection) {
	if cn == nil {
		return
	}

	if o.forked() {
		o.s.Release()
		o.Reset()
		return
	}

	if cn.Closed() {
		o.s.Release()
		return
	}

	var discard bool

	o.m.Lock()
	if (o.c.MaxPoolSize > 0 && len(o.i) >= o.c.MaxPoolSize) || cn.Generation() != o.Generation() {
		discard = true
	} else {
		o.i[cn] = struct{}{}
	}
	o.m.Unlock()

	if discard {
		cn.Close()
		o.logDebug("pool : discarded connection with generation '%d' on release", cn.Generation())
	}

	o.s.Release()
}

// check vets a connection popped from the idle set: already closed, minted
// before the last reset, or found remotely closed by the readability probe,
// it is replaced by a fresh connect. A failed replacement resets the pool
// and surfaces the connect error.
func (o *pool) check(cn libcnn.Connection) (libcnn.Connection, liberr.Error) {
	var dead bool

	switch {
	case cn.Closed():
		dead = true

	case cn.Generation() != o.Generation():
		cn.Close()
		dead = true

	case o.probeDue(cn):
		if cn.RemoteClosed() {
			cn.Close()
			dead = true
		}
	}

	if !dead {
		return cn, nil
	}

	o.logDebug("pool : pooled connection found dead, replacing")

	rpl, err := o.connect()
	if err != nil {
		o.logError("pool : cannot replace dead pooled connection", err)
		o.Reset()
		return nil, err
	}

	return rpl, nil
}

// probeDue applies the check-interval policy: disabled means never, a zero
// interval means always, otherwise only when the connection has been idle
// longer than the interval.
func (o *pool) probeDue(cn libcnn.Connection) bool {
	if o.c.DisableCheck {
		return false
	}

	itv := defaultCheckInterval

	if o.c.CheckInterval != nil {
		itv = o.c.CheckInterval.Time()
	}

	return itv == 0 || time.Since(cn.LastCheckout()) > itv
}

// failClose closes the connection when the error is a connection-level
// failure; domain errors leave it open so Release can re-pool it.
func (o *pool) failClose(cn libcnn.Connection, e error) {
	if cn.Closed() {
		return
	}

	l, ok := e.(liberr.Error)
	if !ok {
		return
	}

	for _, c := range []liberr.CodeError{
		libcnn.ErrorConnClosed,
		libcnn.ErrorSend,
		libcnn.ErrorReceive,
		ErrorConnectionFailure,
		ErrorAddressResolve,
		ErrorUnixSocket,
		ErrorTLSHandshake,
		ErrorTLSCertificate,
	} {
		if l.HasCode(c) {
			cn.Close()
			return
		}
	}
}
