// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package art summarizes the functions and inverse functions
// for mapping between a prefix inside one stride node and a baseIndex.
//
// All prefixes of a stride node with relative length 0..stride are
// arranged as a complete binary tree, the baseIndex is the position
// in this tree, see Knuth's ART algorithm:
//
//	stride 4, relative /0 ... /4
//
//	                         1                     /0
//	               2                   3           /1
//	          4         5         6         7      /2
//	        8   9    10  11    12  13    14  15    /3
//	      16 17 .. .. .. .. .. .. .. .. .. .. 31   /4 host indices
//
// Prefixes shorter than the stride use [1 .. 2^stride-1], the host
// indices [2^stride .. 2^(stride+1)-1] are never stored, they are
// only the starting point for the backtracking in a lookup.
package art

import "math/bits"

// MaxStride is the largest supported stride, it fits the 256 bit sets.
const MaxStride = 8

// ValidStride reports whether stride is supported.
// The stride must divide both address widths, 32 and 128,
// a power of two up to MaxStride.
func ValidStride(stride int) bool {
	return stride >= 1 && stride <= MaxStride && stride&(stride-1) == 0
}

// PfxToIdx maps the top pfxLen bits of chunk to the baseIndex.
// chunk is the full stride wide chunk, pfxLen is in [0..stride].
//
//	example: stride 8, chunk/pfxLen: 160/3 = 0b1010_0000/3 => 13
//
//	  0b1010_0000 => 0b0000_0101
//	    ^^^ >> (8-3)         ^^^
//
//	  0b0000_0001 => 0b0000_1000
//	            ^ << 3      ^
//	   + -----------------------
//	                 0b0000_1101 = 13
func PfxToIdx(chunk uint, pfxLen, stride int) uint {
	return chunk>>(stride-pfxLen) + 1<<pfxLen
}

// HostIdx is just PfxToIdx(chunk, stride, stride) but faster.
func HostIdx(chunk uint, stride int) uint {
	return chunk + 1<<stride
}

// IdxToPfx returns the stride wide chunk and relative prefix length of idx.
// It's the inverse to PfxToIdx.
//
// It panics on invalid input.
func IdxToPfx(idx uint, stride int) (chunk uint, pfxLen int) {
	if idx == 0 {
		panic("logic error, idx is 0")
	}

	pfxLen = bits.Len(idx) - 1
	chunk = (idx - 1<<pfxLen) << (stride - pfxLen)

	return
}
