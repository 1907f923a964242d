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
	"fmt"

	liberr "github.com/nabbar/golib/errors"
)

const (
	ErrorParamsEmpty liberr.CodeError = iota + liberr.MinAvailable + 60
	ErrorValidatorError
	ErrorEndpointParser
	ErrorUnixSocket
	ErrorAddressResolve
	ErrorConnectionFailure
	ErrorTLSHandshake
	ErrorTLSCertificate
	ErrorWaitQueueTimeout
	ErrorScopedCall
)

func init() {
	if liberr.ExistInMapMessage(ErrorParamsEmpty) {
		panic(fmt.Errorf("error code collision with package mongolib/pool"))
	}
	liberr.RegisterIdFctMessage(ErrorParamsEmpty, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorParamsEmpty:
		return "given parameters is empty"
	case ErrorValidatorError:
		return "pool : invalid config"
	case ErrorEndpointParser:
		return "pool : cannot understand given endpoint"
	case ErrorUnixSocket:
		return "pool : UNIX-sockets are not supported on this system"
	case ErrorAddressResolve:
		return "pool : resolving endpoint returned no usable address"
	case ErrorConnectionFailure:
		return "pool : cannot connect to server"
	case ErrorTLSHandshake:
		return "pool : SSL handshake failed"
	case ErrorTLSCertificate:
		return "pool : peer certificate verification failed"
	case ErrorWaitQueueTimeout:
		return "pool : timed out waiting for a free connection"
	case ErrorScopedCall:
		return "pool : checked out call trigger an error"
	}

	return liberr.NullMessage
}
