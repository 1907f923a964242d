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

package pool

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"syscall"

	libaut "github.com/didibz/mongolib/auth"
	libcnn "github.com/didibz/mongolib/connection"
	liberr "github.com/nabbar/golib/errors"
)

// createConnection opens one raw stream socket to the endpoint: a unix
// socket when the endpoint is a ".sock" path, otherwise a TCP socket to the
// first resolver candidate that accepts the connection. The connect timeout
// bounds this function and the TLS handshake in connect; established sockets
// run under the socket timeout.
func (o *pool) createConnection() (net.Conn, liberr.Error) {
	if o.ux {
		nc, e := net.DialTimeout("unix", o.hn, o.c.ConnectTimeout.Time())

		if e != nil {
			if errors.Is(e, syscall.EAFNOSUPPORT) || errors.Is(e, syscall.EPROTONOSUPPORT) {
				return nil, ErrorUnixSocket.Error(e)
			}

			return nil, ErrorConnectionFailure.Error(e)
		}

		return nc, nil
	}

	var (
		ctx = o.ctx()
		cnl context.CancelFunc
	)

	if t := o.c.ConnectTimeout.Time(); t > 0 {
		ctx, cnl = context.WithTimeout(ctx, t)
		defer cnl()
	}

	adr, e := net.DefaultResolver.LookupIPAddr(ctx, o.hn)
	if e != nil {
		return nil, ErrorAddressResolve.Error(e)
	}

	// ::1 answers for localhost on hosts without routable IPv6, but slow
	// fallback behavior differs per platform; keep localhost on IPv4.
	if o.hn == "localhost" {
		v4 := make([]net.IPAddr, 0, len(adr))

		for _, a := range adr {
			if a.IP.To4() != nil {
				v4 = append(v4, a)
			}
		}

		adr = v4
	}

	var last error

	for _, a := range adr {
		d := &net.Dialer{
			Timeout: o.c.ConnectTimeout.Time(),
		}

		nc, err := d.DialContext(ctx, "tcp", net.JoinHostPort(a.IP.String(), o.pt))

		if err != nil {
			last = err
			continue
		}

		if tc, ok := nc.(*net.TCPConn); ok {
			_ = tc.SetNoDelay(true)
			_ = tc.SetKeepAlive(o.c.SocketKeepalive)
		}

		return nc, nil
	}

	if last != nil {
		return nil, ErrorConnectionFailure.Error(last)
	}

	return nil, ErrorAddressResolve.Error(nil)
}

// connect opens a socket, wraps it in TLS when configured, and returns it as
// a Connection minted at the current pool generation with the external hooks
// installed.
func (o *pool) connect() (libcnn.Connection, liberr.Error) {
	nc, err := o.createConnection()
	if err != nil {
		return nil, err
	}

	if o.tl != nil {
		var (
			ctx = o.ctx()
			cnl context.CancelFunc
		)

		if t := o.c.ConnectTimeout.Time(); t > 0 {
			ctx, cnl = context.WithTimeout(ctx, t)
		}

		tc := tls.Client(nc, o.tl.TlsConfig(o.hn))

		e := tc.HandshakeContext(ctx)

		if cnl != nil {
			cnl()
		}

		if e != nil {
			_ = nc.Close()

			if isCertificateError(e) {
				return nil, ErrorTLSCertificate.Error(e)
			}

			return nil, ErrorTLSHandshake.Error(e)
		}

		nc = tc
	}

	cn, err := libcnn.New(nc, o.hn, o.Generation(), o.c.SocketTimeout.Time())
	if err != nil {
		_ = nc.Close()
		return nil, err
	}

	// forwarders, so that handlers registered on the pool after this
	// connection was minted still apply to it
	cn.RegisterCheckResponse(func(doc []byte, template string) error {
		if f := o.fc.Load(); f != nil {
			return f(doc, template)
		}

		return nil
	})

	cn.RegisterAuthHandler(
		func(cred libaut.Credential, c libaut.Conn) error {
			if f := o.fa.Load(); f != nil {
				return f(cred, c)
			}

			return libcnn.ErrorAuthHandler.Error(nil)
		},
		func(source string, c libaut.Conn) error {
			if f := o.fo.Load(); f != nil {
				return f(source, c)
			}

			return libcnn.ErrorAuthHandler.Error(nil)
		},
	)

	o.logDebug("pool : new connection to '%s' with generation '%d'", o.hn, cn.Generation())

	return cn, nil
}

func isCertificateError(e error) bool {
	var (
		h x509.HostnameError
		u x509.UnknownAuthorityError
		i x509.CertificateInvalidError
		v *tls.CertificateVerificationError
	)

	return errors.As(e, &h) || errors.As(e, &u) || errors.As(e, &i) || errors.As(e, &v)
}
