// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package lpm provides the precalculated backtracking bitsets
// for the longest-prefix-match inside one stride node.
//
// The ancestors of a baseIndex in the complete binary tree are just
// idx>>1, idx>>2, ... 1, independent of the stride. The lookup
// becomes a single bitset intersection:
//
//	top, ok := node.prefixes.IntersectionTop(&lpm.LookupTbl[idx])
package lpm

import "github.com/gaissmai/lpm/internal/bitset"

// LookupTbl holds for every baseIndex the bitset of the
// index itself and all its ancestors up to the root index 1.
//
// For host indices (>= 2^stride) use LookupTbl[hostIdx>>1],
// the host index itself is never a stored prefix.
var LookupTbl = func() (tbl [256]bitset.BitSet256) {
	for idx := uint(1); idx < 256; idx++ {
		for i := idx; i > 0; i >>= 1 {
			tbl[idx].MustSet(i)
		}
	}
	return
}()
