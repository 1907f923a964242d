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
	"fmt"
	"net"
	"strings"

	libval "github.com/go-playground/validator/v10"
	libtls "github.com/nabbar/golib/certificates"
	libdur "github.com/nabbar/golib/duration"
	liberr "github.com/nabbar/golib/errors"
	moncfg "github.com/nabbar/golib/monitor/types"
)

// unixSuffix marks an endpoint as a local stream socket path.
const unixSuffix = ".sock"

type Config struct {
	// Endpoint define the server to connect to, as host:port, or as a
	// filesystem path ending in ".sock" for a local stream socket.
	Endpoint string `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint" toml:"endpoint" validate:"required"`

	// MaxPoolSize define the maximum number of connections lent out and
	// pooled at one time. Zero means unbounded.
	MaxPoolSize int `mapstructure:"max_pool_size" json:"max_pool_size" yaml:"max_pool_size" toml:"max_pool_size" validate:"gte=0"`

	// WaitQueueMultiple caps the callers allowed to block waiting for a
	// connection at MaxPoolSize times this value. Zero means no cap.
	WaitQueueMultiple int `mapstructure:"wait_queue_multiple" json:"wait_queue_multiple" yaml:"wait_queue_multiple" toml:"wait_queue_multiple" validate:"gte=0"`

	// ConnectTimeout bounds the opening of one socket, TLS handshake
	// included. Zero means no bound.
	ConnectTimeout libdur.Duration `mapstructure:"connect_timeout" json:"connect_timeout" yaml:"connect_timeout" toml:"connect_timeout"`

	// SocketTimeout bounds each send and each receive on an established
	// connection. Zero means no bound.
	SocketTimeout libdur.Duration `mapstructure:"socket_timeout" json:"socket_timeout" yaml:"socket_timeout" toml:"socket_timeout"`

	// WaitQueueTimeout bounds the wait for a free connection when the pool
	// is exhausted. Zero means wait indefinitely.
	WaitQueueTimeout libdur.Duration `mapstructure:"wait_queue_timeout" json:"wait_queue_timeout" yaml:"wait_queue_timeout" toml:"wait_queue_timeout"`

	// SocketKeepalive enable TCP keepalive probes on new sockets.
	SocketKeepalive bool `mapstructure:"socket_keepalive" json:"socket_keepalive" yaml:"socket_keepalive" toml:"socket_keepalive"`

	// CheckInterval define how long a pooled connection may stay idle
	// before being probed for remote closure on reacquisition. Nil applies
	// the default of one second; an explicit zero probes on every
	// reacquisition.
	CheckInterval *libdur.Duration `mapstructure:"check_interval" json:"check_interval" yaml:"check_interval" toml:"check_interval"`

	// DisableCheck disable the remote-closure probe entirely.
	DisableCheck bool `mapstructure:"disable_check" json:"disable_check" yaml:"disable_check" toml:"disable_check"`

	// EnableTLS wraps every new socket in a TLS session handshaked against
	// the pre-resolution hostname of Endpoint.
	EnableTLS bool `mapstructure:"enable_tls" json:"enable_tls" yaml:"enable_tls" toml:"enable_tls"`

	// TLS define the client TLS config used when EnableTLS is set.
	TLS libtls.Config `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`

	// Monitor defined the monitoring configuration
	Monitor moncfg.Config `mapstructure:"monitor" json:"monitor" yaml:"monitor" toml:"monitor"`

	fctx func() context.Context
	ftls func() libtls.TLSConfig
}

// Validate allow checking if the config' struct is valid with the awaiting model
func (c *Config) Validate() liberr.Error {
	var e = ErrorValidatorError.Error(nil)

	if err := libval.New().Struct(c); err != nil {
		if er, ok := err.(*libval.InvalidValidationError); ok {
			e.Add(er)
		}

		for _, er := range err.(libval.ValidationErrors) {
			//nolint #goerr113
			e.Add(fmt.Errorf("config field '%s' is not validated by constraint '%s'", er.Namespace(), er.ActualTag()))
		}
	}

	if !e.HasParent() {
		e = nil
	}

	return e
}

func (c *Config) RegisterContext(fct func() context.Context) {
	c.fctx = fct
}

func (c *Config) RegisterDefaultTLS(fct func() libtls.TLSConfig) {
	c.ftls = fct
}

// parseEndpoint splits the endpoint into either a unix socket path or a
// host and port pair.
func (c *Config) parseEndpoint() (host string, port string, unix bool, err liberr.Error) {
	if strings.HasSuffix(c.Endpoint, unixSuffix) {
		return c.Endpoint, "", true, nil
	}

	if h, p, e := net.SplitHostPort(c.Endpoint); e != nil {
		return "", "", false, ErrorEndpointParser.Error(e)
	} else {
		return h, p, false, nil
	}
}

func (c *Config) newTLS() libtls.TLSConfig {
	if c.ftls != nil {
		return c.TLS.NewFrom(c.ftls())
	}

	return c.TLS.New()
}
