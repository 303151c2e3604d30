// Copyright 2021 lesismal. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nbproxy

import (
	"net"
)

// Conn is an established tunnel. It behaves as the raw connection to the
// destination, except that bytes which arrived from the proxy beyond the
// end of the handshake are replayed before the socket is read again.
type Conn struct {
	net.Conn
	pending []byte
}

//go:norace
func newConn(c net.Conn, pending []byte) *Conn {
	return &Conn{Conn: c, pending: pending}
}

//go:norace
func (c *Conn) Read(b []byte) (int, error) {
	if len(c.pending) > 0 {
		n := copy(b, c.pending)
		c.pending = c.pending[n:]
		return n, nil
	}
	return c.Conn.Read(b)
}
