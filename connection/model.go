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
	"net"
	"sync/atomic"
	"time"

	libaut "github.com/didibz/mongolib/auth"
	libmsg "github.com/didibz/mongolib/message"
	libatm "github.com/nabbar/golib/atomic"
)

type cnn struct {
	nc net.Conn
	hn string        // pre-resolution hostname
	gn uint64        // pool generation at mint time
	to time.Duration // per-operation socket timeout

	cl atomic.Bool              // closed, monotone
	lc libatm.Value[time.Time]  // last checkout
	au map[libaut.Credential]struct{}

	wm atomic.Int32 // wire version min
	wx atomic.Int32 // wire version max
	ws atomic.Bool  // wire version window set

	fc libatm.Value[libmsg.FuncCheckResponse]
	fa libatm.Value[libaut.FuncAuthenticate]
	fl libatm.Value[libaut.FuncLogout]
}

func (o *cnn) Host() string {
	return o.hn
}

func (o *cnn) Generation() uint64 {
	return o.gn
}

func (o *cnn) LastCheckout() time.Time {
	return o.lc.Load()
}

func (o *cnn) SetLastCheckout(t time.Time) {
	o.lc.Store(t)
}

func (o *cnn) Closed() bool {
	return o.cl.Load()
}

func (o *cnn) Close() {
	if o.cl.Swap(true) {
		return
	}

	_ = o.nc.Close()
}

func (o *cnn) SetWireVersionRange(min, max int32) {
	o.wm.Store(min)
	o.wx.Store(max)
	o.ws.Store(true)
}

func (o *cnn) MinWireVersion() int32 {
	if !o.ws.Load() {
		panic(fmt.Errorf("connection : wire version window read before being set"))
	}

	return o.wm.Load()
}

func (o *cnn) MaxWireVersion() int32 {
	if !o.ws.Load() {
		panic(fmt.Errorf("connection : wire version window read before being set"))
	}

	return o.wx.Load()
}

func (o *cnn) RegisterCheckResponse(fct libmsg.FuncCheckResponse) {
	o.fc.Store(fct)
}

func (o *cnn) RegisterAuthHandler(fa libaut.FuncAuthenticate, fl libaut.FuncLogout) {
	o.fa.Store(fa)
	o.fl.Store(fl)
}
