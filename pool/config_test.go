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
	libpol "github.com/didibz/mongolib/pool"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pool Config", func() {
	Describe("New", func() {
		It("should reject a nil config", func() {
			p, err := libpol.New(nil)

			Expect(p).To(BeNil())
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(libpol.ErrorParamsEmpty)).To(BeTrue())
		})

		It("should reject a config without endpoint", func() {
			p, err := libpol.New(&libpol.Config{})

			Expect(p).To(BeNil())
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(libpol.ErrorValidatorError)).To(BeTrue())
		})

		It("should reject an endpoint that is neither host:port nor a socket path", func() {
			p, err := libpol.New(&libpol.Config{Endpoint: "just-a-host"})

			Expect(p).To(BeNil())
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(libpol.ErrorEndpointParser)).To(BeTrue())
		})

		It("should accept a unix socket path endpoint", func() {
			p, err := libpol.New(&libpol.Config{Endpoint: "/var/run/db.sock"})

			Expect(err).To(BeNil())
			Expect(p).ToNot(BeNil())

			p.Close()
		})

		It("should accept a host and port endpoint", func() {
			p, err := libpol.New(&libpol.Config{Endpoint: "db0.example.com:27017", MaxPoolSize: 10})

			Expect(err).To(BeNil())
			Expect(p).ToNot(BeNil())
			Expect(p.Generation()).To(Equal(uint64(0)))
			Expect(p.Len()).To(Equal(0))

			p.Close()
		})
	})

	Describe("Validate", func() {
		It("should reject a negative pool size", func() {
			cfg := &libpol.Config{Endpoint: "db0.example.com:27017", MaxPoolSize: -1}

			Expect(cfg.Validate()).ToNot(BeNil())
		})

		It("should accept an unbounded pool", func() {
			cfg := &libpol.Config{Endpoint: "db0.example.com:27017"}

			Expect(cfg.Validate()).To(BeNil())
		})
	})
})
