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

	libmsg "github.com/didibz/mongolib/message"
	liberr "github.com/nabbar/golib/errors"
)

// Command sends spec as a single-document query against <dbname>.$cmd and
// returns the first reply document. The reply is correlated on the request
// id, then handed to the registered response checker, whose domain error is
// surfaced for non-ok replies.
func (o *cnn) Command(dbname string, spec []byte) ([]byte, liberr.Error) {
	ns := dbname + ".$cmd"

	rid, frm, err := libmsg.Query(0, ns, 0, -1, spec)
	if err != nil {
		return nil, err
	}

	if err = o.Send(frm); err != nil {
		return nil, err
	}

	var body []byte

	if body, err = o.Receive(libmsg.OpReply, &rid); err != nil {
		return nil, err
	}

	var rep *libmsg.Reply

	if rep, err = libmsg.UnpackReply(body); err != nil {
		o.Close()
		return nil, err
	}

	if rep.CursorNotFound() {
		return nil, ErrorCommand.Error(fmt.Errorf("cursor not found on namespace %s", ns))
	}

	if len(rep.Documents) == 0 {
		o.Close()
		return nil, ErrorReceive.Error(fmt.Errorf("command reply on namespace %s contains no document", ns))
	}

	doc := rep.Documents[0]

	if fct := o.fc.Load(); fct != nil {
		if e := fct(doc, fmt.Sprintf("command on namespace %s failed: %%s", ns)); e != nil {
			return nil, ErrorCommand.Error(e)
		}
	}

	return doc, nil
}
