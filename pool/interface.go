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

// Package pool implements a bounded, thread-safe pool of driver connections
// to one server endpoint.
//
// Checkout is bounded by a counting semaphore, waiting is bounded by a
// configurable timeout, and every exit path releases its permit exactly
// once. Connections carry the pool generation they were minted at; Reset
// bumps the generation so in-flight connections invalidate themselves on
// return without being enumerated. The pool also detects that the owning
// process was forked and rebuilds its identity rather than reuse inherited
// descriptors, and it reconciles each connection's credential set against
// the caller's before lending it out.
//
// Example usage:
//
//	import libpol "github.com/didibz/mongolib/pool"
//
//	cfg := &libpol.Config{
//	    Endpoint:         "db0.example.com:27017",
//	    MaxPoolSize:      100,
//	    WaitQueueTimeout: libdur.ParseDuration(5 * time.Second),
//	}
//
//	p, err := libpol.New(cfg)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	err = p.Get(creds, minWire, maxWire, false, func(cn libcnn.Connection) error {
//	    if err := cn.Send(msg); err != nil {
//	        return err
//	    }
//	    _, err := cn.Receive(libmsg.OpReply, &rid)
//	    return err
//	})
package pool

import (
	"context"
	"os"
	"sync"

	libaut "github.com/didibz/mongolib/auth"
	libcnn "github.com/didibz/mongolib/connection"
	libmsg "github.com/didibz/mongolib/message"
	libsem "github.com/didibz/mongolib/semaphore"
	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	montps "github.com/nabbar/golib/monitor/types"
	libver "github.com/nabbar/golib/version"
)

// FuncConnection is the scoped body run while a connection is checked out.
type FuncConnection func(cn libcnn.Connection) error

// Pool is a bounded set of connections to one endpoint.
//
// All operations are safe for concurrent use by many callers; a single
// connection is only ever held by one caller at a time.
type Pool interface {
	// Get checks a connection out, runs fct with it, and returns it.
	//
	// The connection handed to fct has its wire-version window set from
	// minWire / maxWire and its credential set reconciled against all.
	// When fct returns an error the connection is released unconditionally
	// (and closed first if the error is a connection failure); on success
	// it is released unless checkout is true, in which case ownership
	// passes to the caller, who must call Release.
	Get(all map[string]libaut.Credential, minWire, maxWire int32, checkout bool, fct FuncConnection) liberr.Error

	// Acquire checks a connection out and transfers ownership to the
	// caller, who must hand it back with Release.
	Acquire(all map[string]libaut.Credential, minWire, maxWire int32) (libcnn.Connection, liberr.Error)

	// Release hands a connection back. Closed or stale connections are
	// discarded, live ones re-pooled; the checkout permit is released
	// either way. After a fork the connection is never re-pooled and the
	// pool resets itself instead.
	Release(cn libcnn.Connection)

	// Reset invalidates every pooled and in-flight connection by bumping
	// the pool generation. Idle connections are closed now; checked-out
	// ones are closed when released.
	Reset()

	// Close resets the pool, closing all idle connections.
	Close()

	// Len returns the current number of idle connections.
	Len() int

	// Generation returns the current pool generation.
	Generation() uint64

	// HealthCheck opens and closes a raw socket to the endpoint.
	HealthCheck(ctx context.Context) error

	// Monitor returns a started monitor running HealthCheck periodically.
	Monitor(vrs libver.Version) (montps.Monitor, error)

	// RegisterLogger sets the logger used for pool lifecycle events.
	RegisterLogger(fct liblog.FuncLog)

	// RegisterCheckResponse sets the command-reply checker installed on
	// each new connection.
	RegisterCheckResponse(fct libmsg.FuncCheckResponse)

	// RegisterAuthHandler sets the authentication hooks installed on each
	// new connection.
	RegisterAuthHandler(fa libaut.FuncAuthenticate, fl libaut.FuncLogout)
}

// New builds a Pool from the given config.
//
// The semaphore is sized at MaxPoolSize permits with a waiter cap of
// MaxPoolSize times WaitQueueMultiple when both are set.
func New(cfg *Config) (Pool, liberr.Error) {
	if cfg == nil {
		return nil, ErrorParamsEmpty.Error(nil)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hst, prt, ux, err := cfg.parseEndpoint()
	if err != nil {
		return nil, err
	}

	var maxWaiters int64

	if cfg.MaxPoolSize > 0 && cfg.WaitQueueMultiple > 0 {
		maxWaiters = int64(cfg.MaxPoolSize) * int64(cfg.WaitQueueMultiple)
	}

	p := &pool{
		m:  sync.Mutex{},
		i:  make(map[libcnn.Connection]struct{}),
		s:  libsem.New(int64(cfg.MaxPoolSize), maxWaiters),
		c:  cfg,
		hn: hst,
		pt: prt,
		ux: ux,
		fp: os.Getpid,
		fl: libatm.NewValue[liblog.FuncLog](),
		fc: libatm.NewValue[libmsg.FuncCheckResponse](),
		fa: libatm.NewValue[libaut.FuncAuthenticate](),
		fo: libatm.NewValue[libaut.FuncLogout](),
	}

	if cfg.EnableTLS {
		p.tl = cfg.newTLS()
	}

	p.p.Store(int64(p.fp()))

	return p, nil
}
