// Copyright 2021 lesismal. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nbproxy

// memclr zeroes b. Credential buffers and encoding scratch go through
// here before they are dropped.
//
//go:norace
func memclr(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

//go:norace
func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// asciiEqualFold reports whether b equals s ignoring ASCII case, without
// allocating.
//
//go:norace
func asciiEqualFold(b []byte, s string) bool {
	if len(b) != len(s) {
		return false
	}
	for i := 0; i < len(b); i++ {
		if lowerASCII(b[i]) != lowerASCII(s[i]) {
			return false
		}
	}
	return true
}
