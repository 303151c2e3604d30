// Copyright 2021 lesismal. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nbproxy

// state: HTTP CONNECT
const (
	stateHTTPClosed int8 = iota
	stateHTTPInit
	stateHTTPConnectRequest
	stateHTTPStatusLine
	stateHTTPHeaderLine
	stateHTTPBodySkip
	stateHTTPAuthPrompt
	stateHTTPDone
)

// state: SOCKS5
const (
	stateSOCKS5Closed int8 = iota
	stateSOCKS5Init
	stateSOCKS5Greeting
	stateSOCKS5MethodReply
	stateSOCKS5AuthPrompt
	stateSOCKS5UserPassRequest
	stateSOCKS5UserPassReply
	stateSOCKS5ConnectRequest
	stateSOCKS5ReplyHeader
	stateSOCKS5ReplyDomainLen
	stateSOCKS5ReplyAddr
	stateSOCKS5Done
)

// state: SOCKS4
const (
	stateSOCKS4Closed int8 = iota
	stateSOCKS4Init
	stateSOCKS4ConnectRequest
	stateSOCKS4Reply
	stateSOCKS4Done
)
