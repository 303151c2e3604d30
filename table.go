// Copyright 2021 lesismal. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nbproxy

var (
	// RFC 2616 LWS inside an unfolded header line. '\n' counts because
	// folded continuations keep their newline as an ordinary byte.
	whitespaceCharMap = [256]bool{
		' ':  true,
		'\t': true,
		'\n': true,
	}

	// RFC 2616 "separators".
	separatorCharMap = [256]bool{
		'(':  true,
		')':  true,
		'<':  true,
		'>':  true,
		'@':  true,
		',':  true,
		';':  true,
		':':  true,
		'\\': true,
		'"':  true,
		'/':  true,
		'[':  true,
		']':  true,
		'?':  true,
		'=':  true,
		'{':  true,
		'}':  true,
	}
)

//go:norace
func isWhitespace(c byte) bool {
	return whitespaceCharMap[c]
}

//go:norace
func isSeparator(c byte) bool {
	return separatorCharMap[c]
}
