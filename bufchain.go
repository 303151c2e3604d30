// Copyright 2021 lesismal. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package nbproxy

import (
	"github.com/lesismal/nbio/mempool"
)

// Bufchain is an append-only byte accumulator shared between a Negotiator
// and the driver that owns its connection. The driver appends bytes
// received from the network to the input Bufchain and transmits whatever
// the negotiator appended to the output Bufchain; the negotiator only ever
// consumes bytes it has committed to a result, so a half-arrived line or
// record stays in the chain until the rest of it shows up.
type Bufchain struct {
	buf []byte
	off int
}

// Len returns the number of pending bytes.
//
//go:norace
func (bc *Bufchain) Len() int {
	return len(bc.buf) - bc.off
}

//go:norace
func (bc *Bufchain) grow(n int) int {
	if bc.off == len(bc.buf) {
		bc.buf = bc.buf[:0]
		bc.off = 0
	}
	pos := len(bc.buf)
	if bc.buf == nil {
		bc.buf = mempool.Malloc(n)
		return 0
	}
	bc.buf = mempool.Realloc(bc.buf, pos+n)
	return pos
}

// Write appends data to the chain.
//
//go:norace
func (bc *Bufchain) Write(data []byte) {
	if len(data) == 0 {
		return
	}
	pos := bc.grow(len(data))
	copy(bc.buf[pos:], data)
}

// WriteString appends s to the chain.
//
//go:norace
func (bc *Bufchain) WriteString(s string) {
	if len(s) == 0 {
		return
	}
	pos := bc.grow(len(s))
	copy(bc.buf[pos:], s)
}

//go:norace
func (bc *Bufchain) byteAt(i int) byte {
	return bc.buf[bc.off+i]
}

//go:norace
func (bc *Bufchain) discard(n int) {
	bc.off += n
	if bc.off == len(bc.buf) {
		bc.buf = bc.buf[:0]
		bc.off = 0
	}
}

// TryFetch copies exactly len(dst) pending bytes into dst and consumes
// them. It consumes nothing and returns false if fewer bytes are pending.
//
//go:norace
func (bc *Bufchain) TryFetch(dst []byte) bool {
	if bc.Len() < len(dst) {
		return false
	}
	copy(dst, bc.buf[bc.off:])
	bc.discard(len(dst))
	return true
}

// TryConsume discards exactly n pending bytes. It consumes nothing and
// returns false if fewer bytes are pending.
//
//go:norace
func (bc *Bufchain) TryConsume(n int) bool {
	if bc.Len() < n {
		return false
	}
	bc.discard(n)
	return true
}

// Pop returns all pending bytes and marks them consumed. The returned
// slice aliases the chain's storage and is valid until the next Write.
//
//go:norace
func (bc *Bufchain) Pop() []byte {
	if bc.off >= len(bc.buf) {
		return nil
	}
	b := bc.buf[bc.off:]
	bc.off = len(bc.buf)
	return b
}

// Release zeroes and frees the chain's storage.
//
//go:norace
func (bc *Bufchain) Release() {
	if bc.buf != nil {
		b := bc.buf[:cap(bc.buf)]
		memclr(b)
		mempool.Free(b)
		bc.buf = nil
	}
	bc.off = 0
}
