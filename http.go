// Copyright 2021 lesismal. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nbproxy

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/lesismal/nbio/logging"
)

const (
	hdrUnknown int8 = iota
	hdrConnection
	hdrContentLength
	hdrProxyAuthenticate
)

//go:norace
func matchHeader(name []byte) int8 {
	switch {
	case asciiEqualFold(name, "Connection"):
		return hdrConnection
	case asciiEqualFold(name, "Content-Length"):
		return hdrContentLength
	case asciiEqualFold(name, "Proxy-Authenticate"):
		return hdrProxyAuthenticate
	}
	return hdrUnknown
}

// parseDecimal parses a run of ASCII digits starting at pos.
//
//go:norace
func parseDecimal(line []byte, pos int) (int, int, bool) {
	v, start := 0, pos
	for pos < len(line) && line[pos] >= '0' && line[pos] <= '9' {
		v = v*10 + int(line[pos]-'0')
		pos++
	}
	return v, pos, pos > start
}

// parseStatusLine parses "HTTP/<major>.<minor> <status><rest>" and
// returns the offset of the status field, which prefixes the
// human-readable reason phrase kept for error messages.
//
//go:norace
func parseStatusLine(line []byte) (major, minor, status, statusPos int, ok bool) {
	const prefix = "HTTP/"
	if len(line) < len(prefix) || string(line[:len(prefix)]) != prefix {
		return
	}
	pos := len(prefix)
	major, pos, ok = parseDecimal(line, pos)
	if !ok {
		return
	}
	if pos >= len(line) || line[pos] != '.' {
		ok = false
		return
	}
	minor, pos, ok = parseDecimal(line, pos+1)
	if !ok {
		return
	}
	for pos < len(line) && line[pos] == ' ' {
		pos++
	}
	statusPos = pos
	status, _, ok = parseDecimal(line, pos)
	return
}

// writeBasicAuth appends base64(username ":" password) to out and zeroes
// the plaintext and encoding scratch afterwards.
//
//go:norace
func writeBasicAuth(out *Bufchain, username, password []byte) {
	plain := make([]byte, 0, len(username)+1+len(password))
	plain = append(plain, username...)
	plain = append(plain, ':')
	plain = append(plain, password...)
	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(plain)))
	base64.StdEncoding.Encode(encoded, plain)
	out.Write(encoded)
	memclr(plain)
	memclr(encoded)
}

// HTTPNegotiator performs the client side of an HTTP CONNECT handshake,
// including Basic authentication: the first CONNECT is always sent
// without credentials, a 407 retries once with configured credentials,
// and further 407s fall through to the Interactor.
type HTTPNegotiator struct {
	settings *Settings

	state   int8
	done    bool
	aborted bool

	response []byte
	header   []byte

	username []byte
	password []byte

	httpMajor       int
	httpMinor       int
	httpStatus      int
	statusReasonPos int

	contentLength   int
	connectionClose bool

	triedNoAuth     bool
	tryAuthFromConf bool

	prompts             *Prompts
	usernamePromptIndex int
	passwordPromptIndex int
}

// NewHTTPNegotiator creates an HTTP CONNECT negotiator for settings.
//
//go:norace
func NewHTTPNegotiator(settings *Settings) *HTTPNegotiator {
	return &HTTPNegotiator{
		settings: settings,
		state:    stateHTTPInit,
	}
}

//go:norace
func (s *HTTPNegotiator) Type() string {
	return "HTTP"
}

//go:norace
func (s *HTTPNegotiator) Done() bool {
	return s.done
}

//go:norace
func (s *HTTPNegotiator) Aborted() bool {
	return s.aborted
}

// Close releases any outstanding prompt and zeroes credentials.
//
//go:norace
func (s *HTTPNegotiator) Close() {
	if s.prompts != nil {
		s.prompts.Free()
		s.prompts = nil
	}
	memclr(s.password)
	s.password = nil
	memclr(s.username)
	s.username = nil
	s.state = stateHTTPClosed
}

//go:norace
func (s *HTTPNegotiator) sendRequest(out *Bufchain) {
	addr := s.settings.remoteAddr()
	out.WriteString("CONNECT ")
	out.WriteString(addr)
	out.WriteString(" HTTP/1.1\r\nHost: ")
	out.WriteString(addr)
	out.WriteString("\r\n")

	// Basic auth is only offered after a bare attempt was rejected,
	// even if credentials were configured up front.
	if s.triedNoAuth {
		if len(s.username) > 0 || len(s.password) > 0 {
			out.WriteString("Proxy-Authorization: Basic ")
			writeBasicAuth(out, s.username, s.password)
			out.WriteString("\r\n")
		}
	} else {
		s.triedNoAuth = true
	}

	out.WriteString("\r\n")
}

// processHeaderLine interprets one unfolded header line. Lines that do
// not lex as "name ':' value" are skipped rather than fatal; the only
// fatal outcome is a Proxy-Authenticate scheme other than Basic.
//
//go:norace
func (s *HTTPNegotiator) processHeaderLine() error {
	lx := headerLexer{line: s.header}
	name, ok := lx.nextToken()
	if !ok {
		return nil
	}
	hdr := matchHeader(name)
	if !lx.nextSeparator(':') {
		return nil
	}

	switch hdr {
	case hdrContentLength:
		tok, ok := lx.nextToken()
		if !ok {
			return nil
		}
		// An unparsable value is treated as 0 rather than fatal. That
		// matches the header loop's skip-and-continue policy, at the
		// known risk of under-skipping a body on a reused connection.
		if n, err := strconv.ParseUint(string(tok), 10, 32); err == nil {
			s.contentLength = int(n)
		}
	case hdrConnection:
		tok, ok := lx.nextToken()
		if !ok {
			return nil
		}
		if asciiEqualFold(tok, "close") {
			s.connectionClose = true
		} else if asciiEqualFold(tok, "keep-alive") {
			s.connectionClose = false
		}
	case hdrProxyAuthenticate:
		tok, ok := lx.nextToken()
		if !ok {
			return nil
		}
		if !asciiEqualFold(tok, "Basic") {
			return fmt.Errorf("%w '%s'", ErrHTTPUnsupportedAuthType, tok)
		}
	}
	return nil
}

//go:norace
func (s *HTTPNegotiator) decide() error {
	if s.httpStatus >= 200 && s.httpStatus < 300 {
		s.done = true
		s.state = stateHTTPDone
		logging.Debug("nbproxy: HTTP CONNECT to %v established", s.settings.remoteAddr())
		return nil
	}

	if s.httpStatus != 407 {
		return fmt.Errorf("%w: HTTP response %s", ErrHTTPRejected, s.response[s.statusReasonPos:])
	}

	if s.connectionClose {
		return ErrHTTPAuthClosed
	}

	// Configured credentials get exactly one try before prompting.
	if s.tryAuthFromConf {
		s.tryAuthFromConf = false
		s.state = stateHTTPConnectRequest
		return nil
	}

	if s.settings.Interactor == nil {
		return ErrNoCredentials
	}

	// Always re-ask for the password (whatever we sent was just
	// rejected); ask for the username only if we don't have one.
	s.prompts = NewPrompts("HTTP proxy authentication")
	if len(s.username) == 0 {
		s.usernamePromptIndex = s.prompts.Add("Proxy username: ", true)
	} else {
		s.usernamePromptIndex = -1
	}
	s.passwordPromptIndex = s.prompts.Add("Proxy password: ", false)
	s.state = stateHTTPAuthPrompt
	return nil
}

// Step advances the handshake as far as the available input, pending
// output, and outstanding prompt allow.
//
//go:norace
func (s *HTTPNegotiator) Step(in, out *Bufchain) error {
	for {
		switch s.state {
		case stateHTTPInit:
			s.username = append(s.username[:0], s.settings.Username...)
			s.password = append(s.password[:0], s.settings.Password...)
			if len(s.username) > 0 || len(s.password) > 0 {
				s.tryAuthFromConf = true
			}
			s.state = stateHTTPConnectRequest
		case stateHTTPConnectRequest:
			s.contentLength = 0
			s.connectionClose = false
			s.response = s.response[:0]
			s.sendRequest(out)
			s.state = stateHTTPStatusLine
			// Hand control back so the request can be transmitted.
			return nil
		case stateHTTPStatusLine:
			if !readLine(in, &s.response, false) {
				return nil
			}
			major, minor, status, statusPos, ok := parseStatusLine(s.response)
			if !ok {
				return ErrHTTPMalformedResponse
			}
			s.httpMajor = major
			s.httpMinor = minor
			s.httpStatus = status
			s.statusReasonPos = statusPos
			if major < 1 || (major == 1 && minor < 1) {
				// Before HTTP/1.1, connections close by default.
				s.connectionClose = true
			}
			s.header = s.header[:0]
			s.state = stateHTTPHeaderLine
		case stateHTTPHeaderLine:
			if !readLine(in, &s.header, true) {
				return nil
			}
			if len(s.header) == 0 {
				s.state = stateHTTPBodySkip
				continue
			}
			if err := s.processHeaderLine(); err != nil {
				return err
			}
			s.header = s.header[:0]
		case stateHTTPBodySkip:
			// Discard the response document before acting on the status.
			if !in.TryConsume(s.contentLength) {
				return nil
			}
			if err := s.decide(); err != nil {
				return err
			}
		case stateHTTPAuthPrompt:
			switch s.settings.Interactor.GetUserPass(s.prompts) {
			case PromptAnswered:
				if s.usernamePromptIndex >= 0 {
					memclr(s.username)
					s.username = append(s.username[:0], s.prompts.Prompts[s.usernamePromptIndex].Result...)
				}
				memclr(s.password)
				s.password = append(s.password[:0], s.prompts.Prompts[s.passwordPromptIndex].Result...)
				s.prompts.Free()
				s.prompts = nil
				logging.Debug("nbproxy: retrying HTTP CONNECT as user %q", string(s.username))
				s.state = stateHTTPConnectRequest
			case PromptCancelled:
				s.prompts.Free()
				s.prompts = nil
				s.aborted = true
				s.state = stateHTTPClosed
				return nil
			default:
				// Still waiting on the user.
				return nil
			}
		default:
			// stateHTTPDone, stateHTTPClosed
			return nil
		}
	}
}
