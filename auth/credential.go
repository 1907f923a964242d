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

package auth

import (
	"crypto/sha256"
)

// Credential identifies one authenticated principal on a connection.
//
// Two credentials are the same principal if and only if their source,
// mechanism, username and key-material digest all match; the struct is
// comparable so it can key a set directly. The key material itself is
// digested at construction and never retained.
type Credential struct {
	Source    string
	Mechanism string
	Username  string

	digest [sha256.Size]byte
}

// NewCredential builds a Credential from its identity components.
// The password may be empty for mechanisms without key material.
func NewCredential(source, mechanism, username, password string) Credential {
	return Credential{
		Source:    source,
		Mechanism: mechanism,
		Username:  username,
		digest:    sha256.Sum256([]byte(password)),
	}
}
