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

// Package auth defines the credential identity model of the pool and the
// contracts through which external authentication mechanisms are invoked.
//
// The mechanisms themselves (SCRAM, X.509, ...) live outside this module;
// the pool only calls them through FuncAuthenticate and FuncLogout to bring
// a connection's credential set in line with the caller's.
package auth

import (
	liberr "github.com/nabbar/golib/errors"
)

// Conn is the view of a connection an authentication mechanism needs: a way
// to run commands and the wire-version window used to select a mechanism.
type Conn interface {
	// Command runs an already encoded command document against the $cmd
	// collection of the given database and returns the first reply document.
	Command(dbname string, spec []byte) ([]byte, liberr.Error)

	// MinWireVersion returns the lower bound of the wire-version window.
	MinWireVersion() int32

	// MaxWireVersion returns the upper bound of the wire-version window.
	MaxWireVersion() int32
}

// FuncAuthenticate logs the credential in on the given connection.
type FuncAuthenticate func(cred Credential, cn Conn) error

// FuncLogout clears authentication against the given source on the
// given connection.
type FuncLogout func(source string, cn Conn) error
