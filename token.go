// Copyright 2021 lesismal. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nbproxy

// headerLexer splits one already-unfolded header line into RFC 2616
// tokens and separators. Tokens alias the line; the cursor only advances
// past bytes that were actually matched.
type headerLexer struct {
	line []byte
	pos  int
}

//go:norace
func (lx *headerLexer) skipWhitespace() {
	for lx.pos < len(lx.line) && isWhitespace(lx.line[lx.pos]) {
		lx.pos++
	}
}

// nextToken returns the next token, or false at end of line or if the
// next character is a separator.
//
//go:norace
func (lx *headerLexer) nextToken() ([]byte, bool) {
	lx.skipWhitespace()
	if lx.pos == len(lx.line) {
		return nil, false
	}
	if isSeparator(lx.line[lx.pos]) {
		return nil, false
	}
	start := lx.pos
	for lx.pos < len(lx.line) && !isWhitespace(lx.line[lx.pos]) && !isSeparator(lx.line[lx.pos]) {
		lx.pos++
	}
	return lx.line[start:lx.pos], true
}

// nextSeparator consumes exactly one sep character, or returns false
// without consuming anything.
//
//go:norace
func (lx *headerLexer) nextSeparator(sep byte) bool {
	lx.skipWhitespace()
	if lx.pos == len(lx.line) {
		return false
	}
	if lx.line[lx.pos] != sep {
		return false
	}
	lx.pos++
	return true
}
