// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package bitset implements a fixed size bitset for the
// stride nodes, a mapping between [0..255] and boolean values.
//
// The 256 bits cover the largest supported stride of 8 bits,
// smaller strides just use the lower part of the set.
package bitset

import (
	"fmt"
	"math/bits"
)

// BitSet256 represents a fixed size bitset from [0..255]
//
//	bit i lives in word i>>6 at position i&63
type BitSet256 [4]uint64

func (b *BitSet256) String() string {
	return fmt.Sprint(b.All())
}

// MustSet sets the bit, it panic's if bit is > 255 by intention!
func (b *BitSet256) MustSet(bit uint) {
	b[bit>>6] |= 1 << (bit & 63)
}

// MustClear clears the bit, it panic's if bit is > 255 by intention!
func (b *BitSet256) MustClear(bit uint) {
	b[bit>>6] &^= 1 << (bit & 63)
}

// Test if the bit is set, out of range bits are never set.
func (b *BitSet256) Test(bit uint) bool {
	if x := bit >> 6; x < 4 {
		return b[x&3]&(1<<(bit&63)) != 0
	}
	return false
}

// AsSlice returns all set bits as slice of uint without
// heap allocations.
//
// It panics if the capacity of buf is < b.Size()
func (b *BitSet256) AsSlice(buf []uint) []uint {
	buf = buf[:cap(buf)]

	size := 0
	for wIdx, word := range b {
		for ; word != 0; size++ {
			buf[size] = uint(wIdx<<6 + bits.TrailingZeros64(word))

			// clear the rightmost set bit
			word &= word - 1
		}
	}

	return buf[:size]
}

// All returns all set bits. This has a simpler API but is slower than AsSlice.
func (b *BitSet256) All() []uint {
	return b.AsSlice(make([]uint, 0, 256))
}

// IntersectionTop computes the intersection of base set with the compare set.
// If the result set isn't empty, it returns the top most set bit and true.
//
// This is the longest-prefix-match step inside one stride node.
func (b *BitSet256) IntersectionTop(c *BitSet256) (top uint, ok bool) {
	for wIdx := 3; wIdx >= 0; wIdx-- {
		if word := b[wIdx] & c[wIdx]; word != 0 {
			return uint(wIdx<<6+bits.Len64(word)) - 1, true
		}
	}
	return
}

// Rank0 returns the number of set bits up to and including idx, minus 1.
//
// The result is used as slice index into a popcount compressed array,
// hence the offset by one.
func (b *BitSet256) Rank0(idx uint) (rnk int) {
	idx++
	wIdx := min(4, int(idx>>6))

	for jIdx := range wIdx {
		rnk += bits.OnesCount64(b[jIdx])
	}

	// partial word, bits below idx&63
	if wIdx < 4 && idx&63 != 0 {
		rnk += bits.OnesCount64(b[wIdx&3] << (64 - idx&63))
	}

	return rnk - 1
}

// IsEmpty returns true if no bit is set.
func (b *BitSet256) IsEmpty() bool {
	return b[0]|b[1]|b[2]|b[3] == 0
}

// Size is the number of set bits (popcount).
func (b *BitSet256) Size() (cnt int) {
	for _, word := range b {
		cnt += bits.OnesCount64(word)
	}
	return
}
