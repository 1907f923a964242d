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

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pool Reset", func() {
	var srv *testServer

	BeforeEach(func() {
		srv = startTestServer()
	})

	AfterEach(func() {
		srv.Close()
	})

	It("should only bump the generation on an empty pool", func() {
		p, err := libpol.New(newTestConfig(srv.Addr(), 2, 100*time.Millisecond))
		Expect(err).To(BeNil())
		defer p.Close()

		g := p.Generation()

		p.Reset()

		Expect(p.Generation()).To(Equal(g + 1))
		Expect(p.Len()).To(Equal(0))
	})

	It("should close idle connections and never let them reappear", func() {
		p, err := libpol.New(newTestConfig(srv.Addr(), 2, 100*time.Millisecond))
		Expect(err).To(BeNil())
		defer p.Close()

		a, err := p.Acquire(nil, 0, 0)
		Expect(err).To(BeNil())
		p.Release(a)
		Expect(p.Len()).To(Equal(1))

		p.Reset()

		Expect(a.Closed()).To(BeTrue())
		Expect(p.Len()).To(Equal(0))
	})

	It("should discard a connection checked out across a reset", func() {
		p, err := libpol.New(newTestConfig(srv.Addr(), 2, 100*time.Millisecond))
		Expect(err).To(BeNil())
		defer p.Close()

		a, err := p.Acquire(nil, 0, 0)
		Expect(err).To(BeNil())
		Expect(a.Generation()).To(Equal(uint64(0)))

		p.Reset()
		Expect(p.Generation()).To(Equal(uint64(1)))

		p.Release(a)

		// stale generation: closed, not re-pooled, permit released
		Expect(a.Closed()).To(BeTrue())
		Expect(p.Len()).To(Equal(0))

		b, err := p.Acquire(nil, 0, 0)
		Expect(err).To(BeNil())
		Expect(b.Generation()).To(Equal(uint64(1)))
		p.Release(b)
	})

	It("should never decrease the generation", func() {
		p, err := libpol.New(newTestConfig(srv.Addr(), 2, 100*time.Millisecond))
		Expect(err).To(BeNil())
		defer p.Close()

		last := p.Generation()

		for i := 0; i < 5; i++ {
			p.Reset()
			Expect(p.Generation()).To(BeNumerically(">", last))
			last = p.Generation()
		}
	})

	It("should close idle connections on pool close", func() {
		p, err := libpol.New(newTestConfig(srv.Addr(), 2, 100*time.Millisecond))
		Expect(err).To(BeNil())

		a, err := p.Acquire(nil, 0, 0)
		Expect(err).To(BeNil())
		p.Release(a)

		p.Close()

		Expect(a.Closed()).To(BeTrue())
		Expect(p.Len()).To(Equal(0))
	})
})
