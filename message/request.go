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

package message

import (
	"encoding/binary"
	"strings"
	"sync/atomic"

	liberr "github.com/nabbar/golib/errors"
)

// FuncCheckResponse inspects the first document of a command reply and
// returns a domain error for non-ok replies. The template is a printf format
// with one %s verb to receive the server error detail.
//
// The document interpreter lives outside this module; this type is only the
// contract it is invoked through.
type FuncCheckResponse func(doc []byte, template string) error

var requestID atomic.Int32

// NewRequestID returns a new process-wide request identifier.
// Identifiers increase monotonically and wrap on int32 overflow.
func NewRequestID() int32 {
	return requestID.Add(1)
}

// Query builds an OP_QUERY frame around an already encoded document and
// returns the request id it was stamped with, along with the complete
// length-prefixed frame.
//
// The namespace must not contain a NUL byte and the document must carry at
// least its own length prefix.
func Query(flags int32, ns string, skip, limit int32, doc []byte) (int32, []byte, liberr.Error) {
	if strings.ContainsRune(ns, 0) {
		return 0, nil, ErrorNamespaceInvalid.Error(nil)
	}

	if len(doc) < 4 {
		return 0, nil, ErrorDocumentInvalid.Error(nil)
	}

	var (
		rid  = NewRequestID()
		size = HeaderLen + 4 + len(ns) + 1 + 4 + 4 + len(doc)
		buf  = make([]byte, 0, size)
		hdr  = Header{
			Length:    int32(size),
			RequestID: rid,
			OpCode:    OpQuery,
		}.Encode()
	)

	buf = append(buf, hdr[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(flags))
	buf = append(buf, ns...)
	buf = append(buf, 0)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(skip))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(limit))
	buf = append(buf, doc...)

	return rid, buf, nil
}
