// Copyright 2021 lesismal. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nbproxy

import (
	"fmt"
	"net"

	"github.com/lesismal/nbio/logging"
)

const (
	socks4Version    = 0x04
	socks4CmdConnect = 0x01

	socks4Granted        = 90
	socks4Rejected       = 91
	socks4IdentdFailed   = 92
	socks4IdentdMismatch = 93
)

var socks4ReplyNames = map[byte]string{
	socks4Rejected:       "request rejected or failed",
	socks4IdentdFailed:   "request rejected: cannot connect to identd",
	socks4IdentdMismatch: "request rejected: identd reports different user-id",
}

// SOCKS4Negotiator performs the client side of a SOCKS4 handshake, using
// the 4A hostname extension when the destination is not an IPv4 literal.
// The configured username travels as the protocol's user-id field; there
// is no password and no interactive prompting in SOCKS4.
type SOCKS4Negotiator struct {
	settings *Settings

	state   int8
	done    bool
	aborted bool

	scratch [8]byte
}

// NewSOCKS4Negotiator creates a SOCKS4/4A negotiator for settings.
//
//go:norace
func NewSOCKS4Negotiator(settings *Settings) *SOCKS4Negotiator {
	return &SOCKS4Negotiator{
		settings: settings,
		state:    stateSOCKS4Init,
	}
}

//go:norace
func (s *SOCKS4Negotiator) Type() string {
	return "SOCKS4"
}

//go:norace
func (s *SOCKS4Negotiator) Done() bool {
	return s.done
}

//go:norace
func (s *SOCKS4Negotiator) Aborted() bool {
	return s.aborted
}

//go:norace
func (s *SOCKS4Negotiator) Close() {
	s.state = stateSOCKS4Closed
}

//go:norace
func (s *SOCKS4Negotiator) sendConnect(out *Bufchain) error {
	host := s.settings.RemoteHost
	port := s.settings.RemotePort
	out.Write([]byte{socks4Version, socks4CmdConnect, byte(port >> 8), byte(port)})

	ip4 := net.ParseIP(host).To4()
	if ip4 != nil {
		out.Write(ip4)
	} else {
		if len(host) > 255 {
			return ErrSOCKSAddrTooLong
		}
		// SOCKS4A: an impossible destination 0.0.0.x asks the proxy to
		// resolve the hostname appended after the user-id.
		out.Write([]byte{0, 0, 0, 1})
	}
	out.WriteString(s.settings.Username)
	out.Write([]byte{0})
	if ip4 == nil {
		out.WriteString(host)
		out.Write([]byte{0})
	}
	return nil
}

//go:norace
func (s *SOCKS4Negotiator) Step(in, out *Bufchain) error {
	for {
		switch s.state {
		case stateSOCKS4Init:
			s.state = stateSOCKS4ConnectRequest
		case stateSOCKS4ConnectRequest:
			if err := s.sendConnect(out); err != nil {
				return err
			}
			s.state = stateSOCKS4Reply
			return nil
		case stateSOCKS4Reply:
			if !in.TryFetch(s.scratch[:8]) {
				return nil
			}
			if s.scratch[0] != 0x00 {
				return fmt.Errorf("%w 0x%02x", ErrSOCKSVersion, s.scratch[0])
			}
			if s.scratch[1] != socks4Granted {
				if name, ok := socks4ReplyNames[s.scratch[1]]; ok {
					return fmt.Errorf("%w: %s", ErrSOCKSRejected, name)
				}
				return fmt.Errorf("%w: unknown reply code %d", ErrSOCKSRejected, s.scratch[1])
			}
			s.done = true
			s.state = stateSOCKS4Done
			logging.Debug("nbproxy: SOCKS4 tunnel to %v established", s.settings.remoteAddr())
			return nil
		default:
			// stateSOCKS4Done, stateSOCKS4Closed
			return nil
		}
	}
}
