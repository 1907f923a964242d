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

// Package connection wraps one live stream socket with the metadata the pool
// tracks for it: the generation tag it was minted at, the credential set
// authenticated on it, the wire-version window and the monotone closed flag.
//
// It exposes framed send/receive with strict correlation against the wire
// header, a single-document command helper, and the credential
// reconciliation applied by the pool before each handoff.
//
// A connection is owned by exactly one of the pool's idle set or a single
// caller at any time; its operations are not meant for concurrent use by
// several callers.
package connection

import (
	"net"
	"time"

	libaut "github.com/didibz/mongolib/auth"
	libmsg "github.com/didibz/mongolib/message"
	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
)

// Connection is one pooled socket plus its pool metadata.
type Connection interface {
	libaut.Conn

	// Send writes one complete, already framed message. Any write error
	// closes the connection before surfacing.
	Send(m []byte) liberr.Error

	// Receive reads one framed message and returns its body.
	//
	// The received opcode must match op; when requestID is non nil, the
	// header's response-to field must match it. Either mismatch means the
	// stream is desynchronized beyond recovery: the connection is closed and
	// the call panics. A nil requestID skips id correlation, which is how
	// exhaust-cursor streams are read.
	//
	// Any I/O error or short read closes the connection and surfaces as
	// ErrorConnClosed. A header announcing a length below the header size
	// or above the maximum message size closes the connection and surfaces
	// as ErrorReceive.
	Receive(op libmsg.OpCode, requestID *int32) ([]byte, liberr.Error)

	// ReconcileAuth brings the connection's credential set in line with the
	// desired one: credentials no longer desired are logged out first, then
	// missing ones are logged in. The set reflects whatever completed before
	// a failure.
	ReconcileAuth(desired map[string]libaut.Credential) liberr.Error

	// Authenticate logs the credential in and records it in the set.
	Authenticate(cred libaut.Credential) liberr.Error

	// AuthSet returns a snapshot of the authenticated credentials.
	AuthSet() []libaut.Credential

	// SetWireVersionRange records the server's wire-version window. It must
	// be called before MinWireVersion or MaxWireVersion are read.
	SetWireVersionRange(min, max int32)

	// Host returns the pre-resolution hostname the socket was opened for.
	Host() string

	// Generation returns the pool generation the connection was minted at.
	Generation() uint64

	// LastCheckout returns the time of the most recent checkout.
	LastCheckout() time.Time

	// SetLastCheckout records the time of a checkout.
	SetLastCheckout(t time.Time)

	// Closed reports whether Close has been called. The flag is monotone.
	Closed() bool

	// Close marks the connection closed and closes the socket. Closing an
	// already closed connection is a no-op; socket errors are swallowed.
	Close()

	// RemoteClosed probes the socket for readability without blocking.
	// A readable idle socket means the peer hung up or sent unsolicited
	// data; either way the connection is unusable. Probe failures count
	// as closed.
	RemoteClosed() bool

	// RegisterCheckResponse sets the external command-reply checker used
	// by Command.
	RegisterCheckResponse(fct libmsg.FuncCheckResponse)

	// RegisterAuthHandler sets the external authentication hooks used by
	// ReconcileAuth and Authenticate.
	RegisterAuthHandler(fa libaut.FuncAuthenticate, fl libaut.FuncLogout)
}

// New wraps an established socket. The host is the pre-resolution hostname,
// kept for logging and re-handshake; generation is the pool generation the
// socket was minted at; timeout bounds each send and each receive, zero
// meaning no bound.
func New(nc net.Conn, host string, generation uint64, timeout time.Duration) (Connection, liberr.Error) {
	if nc == nil {
		return nil, ErrorParamsEmpty.Error(nil)
	}

	c := &cnn{
		nc: nc,
		hn: host,
		gn: generation,
		to: timeout,
		au: make(map[libaut.Credential]struct{}),
		lc: libatm.NewValue[time.Time](),
		fc: libatm.NewValue[libmsg.FuncCheckResponse](),
		fa: libatm.NewValue[libaut.FuncAuthenticate](),
		fl: libatm.NewValue[libaut.FuncLogout](),
	}

	c.lc.Store(time.Now())

	return c, nil
}
