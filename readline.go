// Copyright 2021 lesismal. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nbproxy

// readLine incrementally moves one text line from bc into *line and
// reports whether the line is complete. It returns false when the
// terminator has not arrived yet; the caller keeps *line as is and
// retries after more bytes were appended to bc.
//
// A line is terminated by '\n'; a '\r' immediately before it is dropped.
// In header mode a '\n' only terminates the line if the byte after it is
// neither a space nor a tab: otherwise the '\n' and the whitespace stay
// inside the line as ordinary bytes, so one logical header may span
// several wire lines. An empty line always terminates immediately since
// it ends the header section and cannot be folded. The terminating '\n'
// is not part of the produced line, and the lookahead byte that ended a
// folded header is left unconsumed in bc.
//
//go:norace
func readLine(bc *Bufchain, line *[]byte, header bool) bool {
	for bc.Len() > 0 {
		c := bc.byteAt(0)
		if header {
			if n := len(*line); n > 0 && (*line)[n-1] == '\n' && c != ' ' && c != '\t' {
				*line = (*line)[:n-1]
				return true
			}
		}
		bc.discard(1)
		if c != '\n' {
			*line = append(*line, c)
			continue
		}
		if n := len(*line); n > 0 && (*line)[n-1] == '\r' {
			*line = (*line)[:n-1]
		}
		if !header || len(*line) == 0 {
			return true
		}
		*line = append(*line, '\n')
	}
	return false
}
