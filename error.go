// Copyright 2021 lesismal. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nbproxy

import (
	"errors"
)

var (
	// ErrHTTPMalformedResponse .
	ErrHTTPMalformedResponse = errors.New("HTTP response was absent or malformed")

	// ErrHTTPUnsupportedAuthType .
	ErrHTTPUnsupportedAuthType = errors.New("HTTP proxy asked for unsupported authentication type")

	// ErrHTTPAuthClosed .
	ErrHTTPAuthClosed = errors.New("HTTP proxy closed connection after asking for authentication")

	// ErrHTTPRejected .
	ErrHTTPRejected = errors.New("HTTP proxy rejected CONNECT request")

	// ErrNoCredentials .
	ErrNoCredentials = errors.New("proxy requested authentication which we do not have")

	// ErrHandshakeAborted .
	ErrHandshakeAborted = errors.New("proxy handshake aborted by user")
)

var (
	// ErrSOCKSVersion .
	ErrSOCKSVersion = errors.New("SOCKS proxy returned unexpected protocol version")

	// ErrSOCKSNoAcceptableAuth .
	ErrSOCKSNoAcceptableAuth = errors.New("SOCKS proxy rejected every offered authentication method")

	// ErrSOCKSUnsupportedAuthMethod .
	ErrSOCKSUnsupportedAuthMethod = errors.New("SOCKS proxy selected unsupported authentication method")

	// ErrSOCKSAuthFailed .
	ErrSOCKSAuthFailed = errors.New("SOCKS proxy rejected username/password")

	// ErrSOCKSRejected .
	ErrSOCKSRejected = errors.New("SOCKS proxy refused connection")

	// ErrSOCKSAddrTooLong .
	ErrSOCKSAddrTooLong = errors.New("SOCKS destination hostname too long")
)
