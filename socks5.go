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
	socks5Version     = 0x05
	socks5AuthVersion = 0x01

	socks5MethodNoAuth       = 0x00
	socks5MethodUserPass     = 0x02
	socks5MethodNoAcceptable = 0xFF

	socks5CmdConnect = 0x01

	socks5ATypIPv4   = 0x01
	socks5ATypDomain = 0x03
	socks5ATypIPv6   = 0x04
)

var socks5ReplyNames = map[byte]string{
	0x01: "general SOCKS server failure",
	0x02: "connection not allowed by ruleset",
	0x03: "network unreachable",
	0x04: "host unreachable",
	0x05: "connection refused",
	0x06: "TTL expired",
	0x07: "command not supported",
	0x08: "address type not supported",
}

// SOCKS5Negotiator performs the client side of a SOCKS5 (RFC 1928)
// handshake, offering no-auth and, when credentials or an Interactor are
// available, RFC 1929 username/password.
type SOCKS5Negotiator struct {
	settings *Settings

	state   int8
	done    bool
	aborted bool

	username []byte
	password []byte

	scratch  [4]byte
	addrRest int

	prompts             *Prompts
	usernamePromptIndex int
	passwordPromptIndex int
}

// NewSOCKS5Negotiator creates a SOCKS5 negotiator for settings.
//
//go:norace
func NewSOCKS5Negotiator(settings *Settings) *SOCKS5Negotiator {
	return &SOCKS5Negotiator{
		settings: settings,
		state:    stateSOCKS5Init,
	}
}

//go:norace
func (s *SOCKS5Negotiator) Type() string {
	return "SOCKS5"
}

//go:norace
func (s *SOCKS5Negotiator) Done() bool {
	return s.done
}

//go:norace
func (s *SOCKS5Negotiator) Aborted() bool {
	return s.aborted
}

//go:norace
func (s *SOCKS5Negotiator) Close() {
	if s.prompts != nil {
		s.prompts.Free()
		s.prompts = nil
	}
	memclr(s.password)
	s.password = nil
	memclr(s.username)
	s.username = nil
	s.state = stateSOCKS5Closed
}

//go:norace
func (s *SOCKS5Negotiator) sendGreeting(out *Bufchain) {
	methods := []byte{socks5MethodNoAuth}
	if len(s.username) > 0 || len(s.password) > 0 || s.settings.Interactor != nil {
		methods = append(methods, socks5MethodUserPass)
	}
	out.Write([]byte{socks5Version, byte(len(methods))})
	out.Write(methods)
}

//go:norace
func (s *SOCKS5Negotiator) sendUserPass(out *Bufchain) {
	out.Write([]byte{socks5AuthVersion, byte(len(s.username))})
	out.Write(s.username)
	out.Write([]byte{byte(len(s.password))})
	out.Write(s.password)
}

//go:norace
func (s *SOCKS5Negotiator) sendConnect(out *Bufchain) error {
	out.Write([]byte{socks5Version, socks5CmdConnect, 0x00})
	host := s.settings.RemoteHost
	if ip := net.ParseIP(host); ip != nil {
		if ip4 := ip.To4(); ip4 != nil {
			out.Write([]byte{socks5ATypIPv4})
			out.Write(ip4)
		} else {
			out.Write([]byte{socks5ATypIPv6})
			out.Write(ip.To16())
		}
	} else {
		if len(host) > 255 {
			return ErrSOCKSAddrTooLong
		}
		out.Write([]byte{socks5ATypDomain, byte(len(host))})
		out.WriteString(host)
	}
	port := s.settings.RemotePort
	out.Write([]byte{byte(port >> 8), byte(port)})
	return nil
}

//go:norace
func (s *SOCKS5Negotiator) Step(in, out *Bufchain) error {
	for {
		switch s.state {
		case stateSOCKS5Init:
			s.username = append(s.username[:0], s.settings.Username...)
			s.password = append(s.password[:0], s.settings.Password...)
			s.state = stateSOCKS5Greeting
		case stateSOCKS5Greeting:
			s.sendGreeting(out)
			s.state = stateSOCKS5MethodReply
			return nil
		case stateSOCKS5MethodReply:
			if !in.TryFetch(s.scratch[:2]) {
				return nil
			}
			if s.scratch[0] != socks5Version {
				return fmt.Errorf("%w 0x%02x", ErrSOCKSVersion, s.scratch[0])
			}
			switch s.scratch[1] {
			case socks5MethodNoAuth:
				s.state = stateSOCKS5ConnectRequest
			case socks5MethodUserPass:
				if len(s.username) > 0 || len(s.password) > 0 {
					s.state = stateSOCKS5UserPassRequest
					continue
				}
				if s.settings.Interactor == nil {
					return ErrNoCredentials
				}
				s.prompts = NewPrompts("SOCKS proxy authentication")
				s.usernamePromptIndex = s.prompts.Add("Proxy username: ", true)
				s.passwordPromptIndex = s.prompts.Add("Proxy password: ", false)
				s.state = stateSOCKS5AuthPrompt
			case socks5MethodNoAcceptable:
				return ErrSOCKSNoAcceptableAuth
			default:
				return fmt.Errorf("%w 0x%02x", ErrSOCKSUnsupportedAuthMethod, s.scratch[1])
			}
		case stateSOCKS5AuthPrompt:
			switch s.settings.Interactor.GetUserPass(s.prompts) {
			case PromptAnswered:
				memclr(s.username)
				s.username = append(s.username[:0], s.prompts.Prompts[s.usernamePromptIndex].Result...)
				memclr(s.password)
				s.password = append(s.password[:0], s.prompts.Prompts[s.passwordPromptIndex].Result...)
				s.prompts.Free()
				s.prompts = nil
				s.state = stateSOCKS5UserPassRequest
			case PromptCancelled:
				s.prompts.Free()
				s.prompts = nil
				s.aborted = true
				s.state = stateSOCKS5Closed
				return nil
			default:
				return nil
			}
		case stateSOCKS5UserPassRequest:
			s.sendUserPass(out)
			s.state = stateSOCKS5UserPassReply
			return nil
		case stateSOCKS5UserPassReply:
			if !in.TryFetch(s.scratch[:2]) {
				return nil
			}
			if s.scratch[1] != 0x00 {
				return ErrSOCKSAuthFailed
			}
			logging.Debug("nbproxy: SOCKS5 proxy accepted user %q", string(s.username))
			s.state = stateSOCKS5ConnectRequest
		case stateSOCKS5ConnectRequest:
			if err := s.sendConnect(out); err != nil {
				return err
			}
			s.state = stateSOCKS5ReplyHeader
			return nil
		case stateSOCKS5ReplyHeader:
			if !in.TryFetch(s.scratch[:4]) {
				return nil
			}
			if s.scratch[0] != socks5Version {
				return fmt.Errorf("%w 0x%02x", ErrSOCKSVersion, s.scratch[0])
			}
			if s.scratch[1] != 0x00 {
				if name, ok := socks5ReplyNames[s.scratch[1]]; ok {
					return fmt.Errorf("%w: %s", ErrSOCKSRejected, name)
				}
				return fmt.Errorf("%w: unknown reply code 0x%02x", ErrSOCKSRejected, s.scratch[1])
			}
			switch s.scratch[3] {
			case socks5ATypIPv4:
				s.addrRest = 4 + 2
				s.state = stateSOCKS5ReplyAddr
			case socks5ATypIPv6:
				s.addrRest = 16 + 2
				s.state = stateSOCKS5ReplyAddr
			case socks5ATypDomain:
				s.state = stateSOCKS5ReplyDomainLen
			default:
				return fmt.Errorf("%w: unknown address type 0x%02x in reply", ErrSOCKSRejected, s.scratch[3])
			}
		case stateSOCKS5ReplyDomainLen:
			if !in.TryFetch(s.scratch[:1]) {
				return nil
			}
			s.addrRest = int(s.scratch[0]) + 2
			s.state = stateSOCKS5ReplyAddr
		case stateSOCKS5ReplyAddr:
			// The bound address is irrelevant for CONNECT; skip it.
			if !in.TryConsume(s.addrRest) {
				return nil
			}
			s.done = true
			s.state = stateSOCKS5Done
			logging.Debug("nbproxy: SOCKS5 tunnel to %v established", s.settings.remoteAddr())
			return nil
		default:
			// stateSOCKS5Done, stateSOCKS5Closed
			return nil
		}
	}
}
