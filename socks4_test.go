// Copyright 2021 lesismal. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nbproxy

import (
	"errors"
	"testing"
)

func TestSOCKS4IPv4(t *testing.T) {
	neg := NewSOCKS4Negotiator(&Settings{
		RemoteHost: "1.2.3.4",
		RemotePort: 80,
		Username:   "bob",
	})
	defer neg.Close()

	requests, err := runHandshake(t, neg, "\x00\x5a\x00\x00\x00\x00\x00\x00")
	if err != nil {
		t.Fatalf("handshake failed: %v", err)
	}
	if !neg.Done() {
		t.Fatalf("handshake not done")
	}
	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	if requests[0] != "\x04\x01\x00\x50\x01\x02\x03\x04bob\x00" {
		t.Fatalf("request got %q", requests[0])
	}
}

func TestSOCKS4AHostname(t *testing.T) {
	neg := NewSOCKS4Negotiator(&Settings{
		RemoteHost: "example.com",
		RemotePort: 443,
	})
	defer neg.Close()

	requests, err := runHandshake(t, neg, "\x00\x5a\x00\x00\x00\x00\x00\x00")
	if err != nil {
		t.Fatalf("handshake failed: %v", err)
	}
	if requests[0] != "\x04\x01\x01\xbb\x00\x00\x00\x01\x00example.com\x00" {
		t.Fatalf("request got %q", requests[0])
	}
}

func TestSOCKS4Rejected(t *testing.T) {
	neg := NewSOCKS4Negotiator(&Settings{RemoteHost: "1.2.3.4", RemotePort: 80})
	defer neg.Close()

	_, err := runHandshake(t, neg, "\x00\x5b\x00\x00\x00\x00\x00\x00")
	if !errors.Is(err, ErrSOCKSRejected) {
		t.Fatalf("expected ErrSOCKSRejected, got %v", err)
	}
	if got := err.Error(); got != "SOCKS proxy refused connection: request rejected or failed" {
		t.Fatalf("error got %q", got)
	}
}
