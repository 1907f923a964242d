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

// Package message implements the framing layer of the wire protocol: the
// 16-byte little-endian message header, the process-wide request-id counter,
// the query frame builder and the reply frame parser.
//
// The package never encodes or decodes document bodies; documents travel as
// opaque, already-encoded byte slices, and interpreting their content is left
// to the caller.
package message

import (
	"encoding/binary"
)

// HeaderLen is the fixed size in bytes of a wire message header.
const HeaderLen = 16

// OpCode identifies the operation carried by a wire message.
type OpCode int32

const (
	OpReply       OpCode = 1
	OpMessage     OpCode = 1000
	OpUpdate      OpCode = 2001
	OpInsert      OpCode = 2002
	OpQuery       OpCode = 2004
	OpGetMore     OpCode = 2005
	OpDelete      OpCode = 2006
	OpKillCursors OpCode = 2007
)

// Header is the fixed preamble of every wire message.
//
// Length is the total message size including the header itself. ResponseTo
// carries, on server replies, the RequestID of the request being answered.
type Header struct {
	Length     int32
	RequestID  int32
	ResponseTo int32
	OpCode     OpCode
}

// DecodeHeader parses a 16-byte little-endian header.
func DecodeHeader(b [HeaderLen]byte) Header {
	return Header{
		Length:     int32(binary.LittleEndian.Uint32(b[0:4])),
		RequestID:  int32(binary.LittleEndian.Uint32(b[4:8])),
		ResponseTo: int32(binary.LittleEndian.Uint32(b[8:12])),
		OpCode:     OpCode(binary.LittleEndian.Uint32(b[12:16])),
	}
}

// Encode serializes the header to its 16-byte little-endian wire form.
func (h Header) Encode() [HeaderLen]byte {
	var b [HeaderLen]byte

	binary.LittleEndian.PutUint32(b[0:4], uint32(h.Length))
	binary.LittleEndian.PutUint32(b[4:8], uint32(h.RequestID))
	binary.LittleEndian.PutUint32(b[8:12], uint32(h.ResponseTo))
	binary.LittleEndian.PutUint32(b[12:16], uint32(h.OpCode))

	return b
}
