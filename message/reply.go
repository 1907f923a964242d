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

	liberr "github.com/nabbar/golib/errors"
)

// ReplyFlag is the response-flag bitfield of an OP_REPLY message.
type ReplyFlag int32

const (
	FlagCursorNotFound   ReplyFlag = 1 << 0
	FlagQueryFailure     ReplyFlag = 1 << 1
	FlagShardConfigStale ReplyFlag = 1 << 2
	FlagAwaitCapable     ReplyFlag = 1 << 3
)

const replyPreambleLen = 20

// Reply is a parsed OP_REPLY body. Documents hold the raw encoded documents
// in server order; the package never decodes their content.
type Reply struct {
	Flags          ReplyFlag
	CursorID       int64
	StartingFrom   int32
	NumberReturned int32
	Documents      [][]byte
}

// CursorNotFound reports whether the server flagged the cursor id as unknown.
func (r *Reply) CursorNotFound() bool {
	return r.Flags&FlagCursorNotFound != 0
}

// QueryFailure reports whether the server flagged the operation as failed;
// the failure detail is then the first (and only) document of the reply.
func (r *Reply) QueryFailure() bool {
	return r.Flags&FlagQueryFailure != 0
}

// UnpackReply parses an OP_REPLY body (the frame minus its 16-byte header).
//
// Documents are split on their own length prefixes without being decoded.
// A body too short for its preamble, a document overrunning the buffer, or a
// document count not matching NumberReturned yields ErrorReplyMalformed.
func UnpackReply(b []byte) (*Reply, liberr.Error) {
	if len(b) < replyPreambleLen {
		return nil, ErrorReplyMalformed.Error(nil)
	}

	r := &Reply{
		Flags:          ReplyFlag(binary.LittleEndian.Uint32(b[0:4])),
		CursorID:       int64(binary.LittleEndian.Uint64(b[4:12])),
		StartingFrom:   int32(binary.LittleEndian.Uint32(b[12:16])),
		NumberReturned: int32(binary.LittleEndian.Uint32(b[16:20])),
	}

	if r.NumberReturned < 0 {
		return nil, ErrorReplyMalformed.Error(nil)
	}

	r.Documents = make([][]byte, 0, r.NumberReturned)

	for o := replyPreambleLen; o < len(b); {
		if len(b)-o < 4 {
			return nil, ErrorReplyMalformed.Error(nil)
		}

		s := int(int32(binary.LittleEndian.Uint32(b[o : o+4])))

		if s < 4 || o+s > len(b) {
			return nil, ErrorReplyMalformed.Error(nil)
		}

		r.Documents = append(r.Documents, b[o:o+s])
		o += s
	}

	if int32(len(r.Documents)) != r.NumberReturned {
		return nil, ErrorReplyMalformed.Error(nil)
	}

	return r, nil
}
