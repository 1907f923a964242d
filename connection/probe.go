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

package connection

import (
	"crypto/tls"
	"net"
	"syscall"
	"time"
)

// RemoteClosed reports whether the idle socket is readable right now.
// A healthy idle connection is not readable; readability means the peer
// closed it or sent something unsolicited, and either makes it unusable.
func (o *cnn) RemoteClosed() bool {
	if o.Closed() {
		return true
	}

	raw := o.nc

	if t, ok := raw.(*tls.Conn); ok {
		raw = t.NetConn()
	}

	if sc, ok := raw.(syscall.Conn); ok {
		if readable, done := pollReadable(sc); done {
			return readable
		}
	}

	return deadlineReadable(o.nc)
}

// deadlineReadable emulates a zero-timeout readability probe with an
// immediate read deadline, for sockets whose descriptor cannot be polled.
func deadlineReadable(nc net.Conn) bool {
	if e := nc.SetReadDeadline(time.Now()); e != nil {
		return true
	}

	var b [1]byte

	n, e := nc.Read(b[:])

	_ = nc.SetReadDeadline(time.Time{})

	if n > 0 {
		return true
	}

	if ne, ok := e.(net.Error); ok && ne.Timeout() {
		return false
	}

	return true
}
