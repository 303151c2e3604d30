// Copyright 2021 lesismal. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nbproxy

import (
	"testing"
)

// feedLine writes data one byte at a time, calling readLine after every
// byte, and returns the completed line.
func feedLine(t *testing.T, data string, header bool) (string, *Bufchain) {
	t.Helper()
	bc := &Bufchain{}
	var line []byte
	for i := 0; i < len(data); i++ {
		if readLine(bc, &line, header) {
			return string(line), bc
		}
		bc.Write([]byte{data[i]})
	}
	if !readLine(bc, &line, header) {
		t.Fatalf("line %q did not complete", data)
	}
	return string(line), bc
}

func TestReadLinePlain(t *testing.T) {
	for _, c := range []struct{ in, want string }{
		{"hello\n", "hello"},
		{"hello\r\n", "hello"},
		{"\n", ""},
		{"\r\n", ""},
		{"a\rb\r\n", "a\rb"},
	} {
		got, bc := feedLine(t, c.in, false)
		if got != c.want {
			t.Fatalf("plain %q: got %q want %q", c.in, got, c.want)
		}
		bc.Release()
	}
}

func TestReadLinePlainIncomplete(t *testing.T) {
	bc := &Bufchain{}
	defer bc.Release()
	var line []byte
	bc.WriteString("no terminator yet")
	if readLine(bc, &line, false) {
		t.Fatalf("line completed without a newline")
	}
	bc.WriteString("\r\n")
	if !readLine(bc, &line, false) {
		t.Fatalf("line did not complete")
	}
	if string(line) != "no terminator yet" {
		t.Fatalf("got %q", line)
	}
}

func TestReadLineHeaderFolding(t *testing.T) {
	// The continuation line starting with whitespace belongs to the
	// same logical header; the 'X' lookahead terminates it and stays
	// unconsumed.
	got, bc := feedLine(t, "Proxy-Authenticate: Basic\r\n realm=\"x\"\r\nX", true)
	defer bc.Release()
	if got != "Proxy-Authenticate: Basic\n realm=\"x\"" {
		t.Fatalf("folded header got %q", got)
	}
	if bc.Len() != 1 || bc.byteAt(0) != 'X' {
		t.Fatalf("lookahead byte not preserved, %d pending", bc.Len())
	}
}

func TestReadLineHeaderBlank(t *testing.T) {
	// A blank line ends the header section immediately, with no
	// lookahead byte required.
	got, bc := feedLine(t, "\r\n", true)
	defer bc.Release()
	if got != "" {
		t.Fatalf("blank line got %q", got)
	}

	got2, bc2 := feedLine(t, "\n", true)
	defer bc2.Release()
	if got2 != "" {
		t.Fatalf("bare-LF blank line got %q", got2)
	}
}

func TestReadLineHeaderUnfolded(t *testing.T) {
	got, bc := feedLine(t, "Content-Length: 42\r\n\r", true)
	defer bc.Release()
	if got != "Content-Length: 42" {
		t.Fatalf("got %q", got)
	}
	if bc.Len() != 1 {
		t.Fatalf("lookahead byte consumed")
	}
}
