// Copyright 2021 lesismal. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package nbproxy negotiates client-side proxy tunnels (HTTP CONNECT,
// SOCKS5, SOCKS4) as resumable state machines driven by an external I/O
// loop. A Negotiator never blocks: it consumes whatever bytes have
// arrived, appends whatever it needs transmitted, and suspends until the
// driver re-enters it with more input or an answered credential prompt.
package nbproxy

import (
	"net"
	"strconv"
)

// Settings describes one tunnel attempt: the destination behind the
// proxy and any pre-configured credentials. Username/Password may be
// empty; Interactor may be nil if no interactive prompting is possible.
type Settings struct {
	RemoteHost string
	RemotePort int

	Username string
	Password string

	Interactor Interactor
}

//go:norace
func (st *Settings) remoteAddr() string {
	return net.JoinHostPort(st.RemoteHost, strconv.Itoa(st.RemotePort))
}

// Negotiator is one proxy-protocol handshake strategy. The driver owns
// the in/out Bufchains and the connection; it appends received bytes to
// in, calls Step, transmits whatever Step left in out, and repeats until
// Done, Aborted, or a non-nil error. Step returning nil with Done and
// Aborted both false means the handshake suspended waiting for more
// input or for an outstanding prompt.
//
// A Negotiator is owned by a single handshake and is not safe for
// concurrent use. Close releases any outstanding prompt and zeroes
// credential buffers; it must be called exactly once when the driver is
// finished with the negotiator, terminal state or not.
type Negotiator interface {
	Type() string
	Step(in, out *Bufchain) error
	Done() bool
	Aborted() bool
	Close()
}
