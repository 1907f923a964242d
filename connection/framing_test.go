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

package connection_test

import (
	"bytes"

	libcnn "github.com/didibz/mongolib/connection"
	libmsg "github.com/didibz/mongolib/message"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Connection Framing", func() {
	Describe("Receive", func() {
		It("should return the body of a correlated reply", func() {
			cn, srv := newPipeConnection()
			defer cn.Close()

			body := bytes.Repeat([]byte{0xAA}, 16)

			go func() {
				defer GinkgoRecover()
				_, e := srv.Write(buildFrame(0, 7, libmsg.OpReply, body))
				Expect(e).ToNot(HaveOccurred())
			}()

			rid := int32(7)
			got, err := cn.Receive(libmsg.OpReply, &rid)

			Expect(err).To(BeNil())
			Expect(got).To(Equal(body))
			Expect(cn.Closed()).To(BeFalse())
		})

		It("should ignore the response-to field when no request id is given", func() {
			cn, srv := newPipeConnection()
			defer cn.Close()

			body := bytes.Repeat([]byte{0xBB}, 8)

			go func() {
				defer GinkgoRecover()
				_, e := srv.Write(buildFrame(0, 99, libmsg.OpReply, body))
				Expect(e).ToNot(HaveOccurred())
			}()

			got, err := cn.Receive(libmsg.OpReply, nil)

			Expect(err).To(BeNil())
			Expect(got).To(Equal(body))
		})

		It("should panic on a response id mismatch", func() {
			cn, srv := newPipeConnection()

			go func() {
				defer GinkgoRecover()
				_, _ = srv.Write(buildFrame(0, 7, libmsg.OpReply, bytes.Repeat([]byte{0xAA}, 16)))
			}()

			rid := int32(8)

			Expect(func() {
				_, _ = cn.Receive(libmsg.OpReply, &rid)
			}).To(Panic())
			Expect(cn.Closed()).To(BeTrue())
		})

		It("should panic on an opcode mismatch", func() {
			cn, srv := newPipeConnection()

			go func() {
				defer GinkgoRecover()
				_, _ = srv.Write(buildFrame(0, 7, libmsg.OpReply, bytes.Repeat([]byte{0xAA}, 16)))
			}()

			rid := int32(7)

			Expect(func() {
				_, _ = cn.Receive(libmsg.OpQuery, &rid)
			}).To(Panic())
			Expect(cn.Closed()).To(BeTrue())
		})

		It("should surface a peer hangup mid-header as a closed connection", func() {
			cn, srv := newPipeConnection()

			go func() {
				defer GinkgoRecover()
				frm := buildFrame(0, 7, libmsg.OpReply, bytes.Repeat([]byte{0xAA}, 16))
				_, _ = srv.Write(frm[:8])
				_ = srv.Close()
			}()

			rid := int32(7)
			_, err := cn.Receive(libmsg.OpReply, &rid)

			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(libcnn.ErrorConnClosed)).To(BeTrue())
			Expect(cn.Closed()).To(BeTrue())
		})

		It("should surface a peer hangup mid-body as a closed connection", func() {
			cn, srv := newPipeConnection()

			go func() {
				defer GinkgoRecover()
				frm := buildFrame(0, 7, libmsg.OpReply, bytes.Repeat([]byte{0xAA}, 16))
				_, _ = srv.Write(frm[:libmsg.HeaderLen+4])
				_ = srv.Close()
			}()

			rid := int32(7)
			_, err := cn.Receive(libmsg.OpReply, &rid)

			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(libcnn.ErrorConnClosed)).To(BeTrue())
			Expect(cn.Closed()).To(BeTrue())
		})

		It("should reject a frame announcing more than the maximum message size", func() {
			cn, srv := newPipeConnection()

			go func() {
				defer GinkgoRecover()
				h := libmsg.Header{Length: 1 << 30, ResponseTo: 7, OpCode: libmsg.OpReply}.Encode()
				_, _ = srv.Write(h[:])
			}()

			rid := int32(7)
			_, err := cn.Receive(libmsg.OpReply, &rid)

			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(libcnn.ErrorReceive)).To(BeTrue())
			Expect(cn.Closed()).To(BeTrue())
		})

		It("should reject a frame shorter than its header", func() {
			cn, srv := newPipeConnection()

			go func() {
				defer GinkgoRecover()
				h := libmsg.Header{Length: 4, ResponseTo: 7, OpCode: libmsg.OpReply}.Encode()
				_, _ = srv.Write(h[:])
			}()

			rid := int32(7)
			_, err := cn.Receive(libmsg.OpReply, &rid)

			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(libcnn.ErrorReceive)).To(BeTrue())
			Expect(cn.Closed()).To(BeTrue())
		})
	})

	Describe("Send", func() {
		It("should write the message through", func() {
			cn, srv := newPipeConnection()
			defer cn.Close()

			msg := []byte("ping")
			got := make([]byte, len(msg))

			done := make(chan struct{})
			go func() {
				defer GinkgoRecover()
				defer close(done)
				_, e := srv.Read(got)
				Expect(e).ToNot(HaveOccurred())
			}()

			Expect(cn.Send(msg)).To(BeNil())
			Eventually(done).Should(BeClosed())
			Expect(got).To(Equal(msg))
		})

		It("should close the connection on a write error", func() {
			cn, srv := newPipeConnection()

			_ = srv.Close()

			err := cn.Send([]byte("ping"))

			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(libcnn.ErrorSend)).To(BeTrue())
			Expect(cn.Closed()).To(BeTrue())
		})

		It("should refuse to send on a closed connection", func() {
			cn, _ := newPipeConnection()
			cn.Close()

			err := cn.Send([]byte("ping"))

			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(libcnn.ErrorConnClosed)).To(BeTrue())
		})
	})

	Describe("Close", func() {
		It("should be idempotent", func() {
			cn, _ := newPipeConnection()

			cn.Close()
			Expect(cn.Closed()).To(BeTrue())

			cn.Close()
			Expect(cn.Closed()).To(BeTrue())
		})
	})

	Describe("Wire version window", func() {
		It("should panic when read before being set", func() {
			cn, _ := newPipeConnection()
			defer cn.Close()

			Expect(func() {
				_ = cn.MinWireVersion()
			}).To(Panic())
		})

		It("should return the window once set", func() {
			cn, _ := newPipeConnection()
			defer cn.Close()

			cn.SetWireVersionRange(2, 6)

			Expect(cn.MinWireVersion()).To(Equal(int32(2)))
			Expect(cn.MaxWireVersion()).To(Equal(int32(6)))
		})
	})
})
