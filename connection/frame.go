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
	"fmt"
	"io"
	"time"

	libmsg "github.com/didibz/mongolib/message"
	liberr "github.com/nabbar/golib/errors"
)

// maxMessageSize caps one wire frame; a header announcing more means the
// stream is corrupt, not that the server sent a bigger reply.
const maxMessageSize = 48000000

func (o *cnn) Send(m []byte) liberr.Error {
	if o.Closed() {
		return ErrorConnClosed.Error(nil)
	}

	if o.to > 0 {
		_ = o.nc.SetWriteDeadline(time.Now().Add(o.to))
	}

	if _, e := o.nc.Write(m); e != nil {
		o.Close()
		return ErrorSend.Error(e)
	}

	return nil
}

func (o *cnn) Receive(op libmsg.OpCode, requestID *int32) ([]byte, liberr.Error) {
	var hdr [libmsg.HeaderLen]byte

	if err := o.read(hdr[:]); err != nil {
		return nil, err
	}

	h := libmsg.DecodeHeader(hdr)

	if h.OpCode != op {
		o.Close()
		panic(fmt.Errorf("connection : stream desynchronized, got opcode %d while expecting %d", h.OpCode, op))
	}

	if requestID != nil && h.ResponseTo != *requestID {
		o.Close()
		panic(fmt.Errorf("connection : stream desynchronized, reply to request %d while expecting %d", h.ResponseTo, *requestID))
	}

	if h.Length < libmsg.HeaderLen {
		o.Close()
		return nil, ErrorReceive.Error(fmt.Errorf("frame length %d is shorter than its header", h.Length))
	}

	if h.Length > maxMessageSize {
		o.Close()
		return nil, ErrorReceive.Error(fmt.Errorf("frame length %d exceeds the maximum message size %d", h.Length, maxMessageSize))
	}

	b := make([]byte, h.Length-libmsg.HeaderLen)

	if err := o.read(b); err != nil {
		return nil, err
	}

	return b, nil
}

func (o *cnn) read(b []byte) liberr.Error {
	if o.Closed() {
		return ErrorConnClosed.Error(nil)
	}

	if o.to > 0 {
		_ = o.nc.SetReadDeadline(time.Now().Add(o.to))
	}

	if _, e := io.ReadFull(o.nc, b); e != nil {
		o.Close()
		return ErrorConnClosed.Error(e)
	}

	return nil
}
