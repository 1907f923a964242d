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
	libaut "github.com/didibz/mongolib/auth"
	liberr "github.com/nabbar/golib/errors"
)

// ReconcileAuth applies the differential between the connection's credential
// set and the desired one. Logouts run before logins; within each phase the
// order is unspecified. The set is updated after each successful external
// call, so a failure leaves it reflecting exactly the completed work.
func (o *cnn) ReconcileAuth(desired map[string]libaut.Credential) liberr.Error {
	if len(desired) == 0 && len(o.au) == 0 {
		return nil
	}

	target := make(map[libaut.Credential]struct{}, len(desired))

	for _, c := range desired {
		target[c] = struct{}{}
	}

	fl := o.fl.Load()
	fa := o.fa.Load()

	for c := range o.au {
		if _, ok := target[c]; ok {
			continue
		}

		if fl == nil {
			return ErrorAuthHandler.Error(nil)
		}

		if e := fl(c.Source, o); e != nil {
			return ErrorAuthLogout.Error(e)
		}

		delete(o.au, c)
	}

	for c := range target {
		if _, ok := o.au[c]; ok {
			continue
		}

		if fa == nil {
			return ErrorAuthHandler.Error(nil)
		}

		if e := fa(c, o); e != nil {
			return ErrorAuthLogin.Error(e)
		}

		o.au[c] = struct{}{}
	}

	return nil
}

// Authenticate logs the credential in and records it in the set.
func (o *cnn) Authenticate(cred libaut.Credential) liberr.Error {
	fa := o.fa.Load()

	if fa == nil {
		return ErrorAuthHandler.Error(nil)
	}

	if e := fa(cred, o); e != nil {
		return ErrorAuthLogin.Error(e)
	}

	o.au[cred] = struct{}{}
	return nil
}

func (o *cnn) AuthSet() []libaut.Credential {
	res := make([]libaut.Credential, 0, len(o.au))

	for c := range o.au {
		res = append(res, c)
	}

	return res
}
