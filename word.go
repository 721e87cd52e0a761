// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpm

import (
	"encoding/binary"
	"math"
	"math/bits"
	"net/netip"

	"lukechampine.com/uint128"
)

// Word is the fixed-width unsigned integer holding the address bits
// of a [Key]. The trie algorithms are written once against this
// interface, [V4] and [V6] are the two instantiations.
//
// Bits are counted from the most significant bit, bit 0 is the
// first bit of the address in network byte order.
type Word[W any] interface {
	comparable

	// Width is the number of address bits, 32 or 128.
	Width() int

	// Bit returns the i-th bit, 0 or 1.
	// Bits beyond the width read as zero.
	Bit(i int) uint

	// Chunk returns n bits starting at offset as right aligned integer,
	// n is at most 8. Bits beyond the width read as zero.
	Chunk(offset, n int) uint

	// SetChunk returns the word with the n bits of c or'ed in at offset.
	SetChunk(offset, n int, c uint) W

	// Masked keeps the top n bits and zeroes the rest.
	Masked(n int) W

	// CommonPrefixLen returns the number of equal leading bits.
	CommonPrefixLen(o W) int

	// Addr converts the word to a netip address of the same family.
	Addr() netip.Addr
}

// V4 holds an IPv4 address as 32 bit word.
type V4 uint32

// V6 holds an IPv6 address as 128 bit word.
type V6 uint128.Uint128

// Word embeds comparable, it can only be checked by instantiation.
func assertWord[W Word[W]]() {}

var (
	_ = assertWord[V4]
	_ = assertWord[V6]
)

func (w V4) Width() int { return 32 }

func (w V4) Bit(i int) uint {
	if i < 0 || i >= 32 {
		return 0
	}
	return uint(w>>(31-i)) & 1
}

func (w V4) Chunk(offset, n int) uint {
	// shifts >= 32 are defined to be zero
	return uint(uint32(w) << offset >> (32 - n))
}

func (w V4) SetChunk(offset, n int, c uint) V4 {
	return w | V4(uint32(c)<<(32-offset-n))
}

func (w V4) Masked(n int) V4 {
	return w &^ V4(math.MaxUint32>>n)
}

func (w V4) CommonPrefixLen(o V4) int {
	return bits.LeadingZeros32(uint32(w ^ o))
}

func (w V4) Addr() netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(w))
	return netip.AddrFrom4(b)
}

func (w V6) u() uint128.Uint128 { return uint128.Uint128(w) }

func (w V6) Width() int { return 128 }

func (w V6) Bit(i int) uint {
	switch {
	case i < 0 || i >= 128:
		return 0
	case i < 64:
		return uint(w.Hi>>(63-i)) & 1
	}
	return uint(w.Lo>>(127-i)) & 1
}

func (w V6) Chunk(offset, n int) uint {
	if n == 0 || offset >= 128 {
		return 0
	}
	return uint(w.u().Lsh(uint(offset)).Rsh(uint(128 - n)).Lo)
}

func (w V6) SetChunk(offset, n int, c uint) V6 {
	if n == 0 {
		return w
	}
	return V6(w.u().Or(uint128.From64(uint64(c)).Lsh(uint(128 - offset - n))))
}

func (w V6) Masked(n int) V6 {
	return V6(w.u().And(uint128.Max.Lsh(uint(128 - n))))
}

func (w V6) CommonPrefixLen(o V6) int {
	x := w.u().Xor(o.u())
	if x.Hi != 0 {
		return bits.LeadingZeros64(x.Hi)
	}
	return 64 + bits.LeadingZeros64(x.Lo)
}

func (w V6) Addr() netip.Addr {
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], w.Hi)
	binary.BigEndian.PutUint64(b[8:], w.Lo)
	return netip.AddrFrom16(b)
}

// v4FromAddr, addr must be IPv4.
func v4FromAddr(addr netip.Addr) V4 {
	b := addr.As4()
	return V4(binary.BigEndian.Uint32(b[:]))
}

// v6FromAddr, addr must be IPv6.
func v6FromAddr(addr netip.Addr) V6 {
	b := addr.As16()
	return V6(uint128.New(binary.BigEndian.Uint64(b[8:]), binary.BigEndian.Uint64(b[:8])))
}
