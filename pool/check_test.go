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

package pool_test

import (
	"time"

	libpol "github.com/didibz/mongolib/pool"
	libdur "github.com/nabbar/golib/duration"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pool Liveness Check", func() {
	var srv *testServer

	BeforeEach(func() {
		srv = startTestServer()
	})

	AfterEach(func() {
		srv.Close()
	})

	It("should silently replace a pooled connection the peer hung up on", func() {
		cfg := newTestConfig(srv.Addr(), 2, 100*time.Millisecond)

		// probe on every reacquisition
		zero := libdur.ParseDuration(0)
		cfg.CheckInterval = &zero

		p, err := libpol.New(cfg)
		Expect(err).To(BeNil())
		defer p.Close()

		a, err := p.Acquire(nil, 0, 0)
		Expect(err).To(BeNil())
		p.Release(a)
		Expect(p.Len()).To(Equal(1))

		srv.CloseConns()

		// give the FIN time to land
		time.Sleep(50 * time.Millisecond)

		b, err := p.Acquire(nil, 0, 0)
		Expect(err).To(BeNil())
		defer p.Release(b)

		Expect(b).ToNot(BeIdenticalTo(a))
		Expect(a.Closed()).To(BeTrue())
		Expect(b.Closed()).To(BeFalse())
	})

	It("should not probe when the check is disabled", func() {
		cfg := newTestConfig(srv.Addr(), 2, 100*time.Millisecond)
		cfg.DisableCheck = true

		p, err := libpol.New(cfg)
		Expect(err).To(BeNil())
		defer p.Close()

		a, err := p.Acquire(nil, 0, 0)
		Expect(err).To(BeNil())
		p.Release(a)

		srv.CloseConns()
		time.Sleep(50 * time.Millisecond)

		b, err := p.Acquire(nil, 0, 0)
		Expect(err).To(BeNil())
		defer p.Release(b)

		// without the probe, the dead member is handed back untouched
		Expect(b).To(BeIdenticalTo(a))
	})

	It("should reset the pool when the replacement dial fails", func() {
		cfg := newTestConfig(srv.Addr(), 2, 100*time.Millisecond)

		zero := libdur.ParseDuration(0)
		cfg.CheckInterval = &zero

		p, err := libpol.New(cfg)
		Expect(err).To(BeNil())
		defer p.Close()

		a, err := p.Acquire(nil, 0, 0)
		Expect(err).To(BeNil())
		p.Release(a)

		g := p.Generation()

		// kill the connection and the listener: the probe fails and so does
		// the replacement dial
		srv.Close()
		time.Sleep(50 * time.Millisecond)

		_, err = p.Acquire(nil, 0, 0)

		Expect(err).ToNot(BeNil())
		Expect(p.Generation()).To(BeNumerically(">", g))

		// the dead member was not put back into the idle set
		Expect(p.Len()).To(Equal(0))
	})
})
