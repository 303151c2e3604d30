// Copyright 2021 lesismal. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nbproxy

import (
	"testing"
)

func TestLexerTokens(t *testing.T) {
	lx := headerLexer{line: []byte("Proxy-Authenticate: Basic realm=\"x\"")}

	tok, ok := lx.nextToken()
	if !ok || string(tok) != "Proxy-Authenticate" {
		t.Fatalf("name token got %q ok=%v", tok, ok)
	}
	if !lx.nextSeparator(':') {
		t.Fatalf("colon not found")
	}
	tok, ok = lx.nextToken()
	if !ok || string(tok) != "Basic" {
		t.Fatalf("scheme token got %q ok=%v", tok, ok)
	}
	tok, ok = lx.nextToken()
	if !ok || string(tok) != "realm" {
		t.Fatalf("realm token got %q ok=%v", tok, ok)
	}
	// '=' is a separator, so the next token call fails without
	// consuming it.
	if _, ok = lx.nextToken(); ok {
		t.Fatalf("token call consumed a separator")
	}
	if !lx.nextSeparator('=') {
		t.Fatalf("'=' not found after failed token call")
	}
}

func TestLexerFoldedWhitespace(t *testing.T) {
	// Retained fold newlines count as whitespace between tokens.
	lx := headerLexer{line: []byte("Connection:\n close")}
	tok, ok := lx.nextToken()
	if !ok || string(tok) != "Connection" {
		t.Fatalf("name token got %q", tok)
	}
	if !lx.nextSeparator(':') {
		t.Fatalf("colon not found")
	}
	tok, ok = lx.nextToken()
	if !ok || string(tok) != "close" {
		t.Fatalf("value token got %q", tok)
	}
	if _, ok = lx.nextToken(); ok {
		t.Fatalf("token found past end of line")
	}
}

func TestLexerEmptyAndSeparators(t *testing.T) {
	lx := headerLexer{line: []byte("   ")}
	if _, ok := lx.nextToken(); ok {
		t.Fatalf("token found in all-whitespace line")
	}
	if lx.nextSeparator(':') {
		t.Fatalf("separator found in all-whitespace line")
	}

	lx = headerLexer{line: []byte("a;b")}
	tok, ok := lx.nextToken()
	if !ok || string(tok) != "a" {
		t.Fatalf("got %q", tok)
	}
	if lx.nextSeparator(':') {
		t.Fatalf("':' matched ';'")
	}
	if !lx.nextSeparator(';') {
		t.Fatalf("';' not matched")
	}
}

func TestMatchHeader(t *testing.T) {
	for _, c := range []struct {
		name string
		want int8
	}{
		{"Connection", hdrConnection},
		{"connection", hdrConnection},
		{"CONTENT-LENGTH", hdrContentLength},
		{"proxy-authenticate", hdrProxyAuthenticate},
		{"X-Whatever", hdrUnknown},
		{"Content-Lengthy", hdrUnknown},
	} {
		if got := matchHeader([]byte(c.name)); got != c.want {
			t.Fatalf("%q: got %d want %d", c.name, got, c.want)
		}
	}
}
