// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpm

import (
	"cmp"
	"slices"

	"github.com/gaissmai/lpm/internal/art"
	"github.com/gaissmai/lpm/internal/lpm"
	"github.com/gaissmai/lpm/internal/sparse"
)

// strideNode is a level node of the multibit trie, it represents
// one stride wide slice of the key space.
//
// The prefixes ending inside this node, with relative lengths
// 0..stride-1, are stored with their baseIndex as popcount compressed
// sparse array. The children are stored with the full stride chunk
// as index, also popcount compressed.
//
// A prefix ending exactly at the stride border is stored in the
// child node below at baseIndex 1 (relative /0).
type strideNode[V any] struct {
	prefixes sparse.Array256[V]
	children sparse.Array256[*strideNode[V]]
}

// isEmpty returns true if node has neither prefixes nor children.
func (n *strideNode[V]) isEmpty() bool {
	return n.prefixes.IsEmpty() && n.children.IsEmpty()
}

// lpmIdx returns the longest matching baseIndex in this node
// for the backtracking index idx.
func (n *strideNode[V]) lpmIdx(idx uint) (top uint, ok bool) {
	// the host index is never stored, start with the parent
	if idx > 255 {
		idx >>= 1
	}
	return n.prefixes.IntersectionTop(&lpm.LookupTbl[idx])
}

// getOrCreateChild returns the child at chunk c, creating it if missing.
func (n *strideNode[V]) getOrCreateChild(c uint) *strideNode[V] {
	if kid, ok := n.children.Get(c); ok {
		return kid
	}
	kid := new(strideNode[V])
	n.children.InsertAt(c, kid)
	return kid
}

// cloneRec returns a deep copy of the subtree, values are
// copied with cloneFn if not nil.
func (n *strideNode[V]) cloneRec(cloneFn func(V) V) *strideNode[V] {
	c := new(strideNode[V])

	c.prefixes = *n.prefixes.Copy()
	if cloneFn != nil {
		for i, val := range c.prefixes.Items {
			c.prefixes.Items[i] = cloneFn(val)
		}
	}

	c.children = *n.children.Copy()
	for i, kid := range c.children.Items {
		c.children.Items[i] = kid.cloneRec(cloneFn)
	}

	return c
}

// statsRec sums up nodes and prefixes and records the max depth.
func (n *strideNode[V]) statsRec(depth int, s *Stats) {
	s.Nodes++
	s.Prefixes += n.prefixes.Len()
	s.MaxDepth = max(s.MaxDepth, depth)

	for _, kid := range n.children.Items {
		kid.statsRec(depth+1, s)
	}
}

// nodeEntry is a prefix or a child of a node, as sort item for the
// ordered traversal.
type nodeEntry struct {
	chunk  uint // first chunk covered
	pfxLen int  // relative prefix length, stride for a child
	idx    uint // baseIndex, or chunk for a child
}

// sortedEntries returns the prefixes and children of n in CIDR sort
// order, first by chunk then by relative length. A child sorts after
// all prefixes with the same first chunk.
func (n *strideNode[V]) sortedEntries(stride int) []nodeEntry {
	var buf [256]uint
	entries := make([]nodeEntry, 0, n.prefixes.Len()+n.children.Len())

	for _, idx := range n.prefixes.AsSlice(buf[:]) {
		chunk, pfxLen := art.IdxToPfx(idx, stride)
		entries = append(entries, nodeEntry{chunk: chunk, pfxLen: pfxLen, idx: idx})
	}

	for _, c := range n.children.AsSlice(buf[:]) {
		entries = append(entries, nodeEntry{chunk: c, pfxLen: stride, idx: c})
	}

	slices.SortFunc(entries, func(a, b nodeEntry) int {
		if c := cmp.Compare(a.chunk, b.chunk); c != 0 {
			return c
		}
		return cmp.Compare(a.pfxLen, b.pfxLen)
	})

	return entries
}

// strideAllRec yields the prefixes of the subtree at n in CIDR sort order.
// path holds the bits above this node, offset is depth*stride.
func strideAllRec[W Word[W], V any](n *strideNode[V], stride, offset int, path W, yield func(Key[W], V) bool) bool {
	for _, e := range n.sortedEntries(stride) {
		if e.pfxLen == stride {
			kid := n.children.MustGet(e.idx)
			if !strideAllRec(kid, stride, offset+stride, path.SetChunk(offset, stride, e.chunk), yield) {
				return false
			}
			continue
		}

		bits := path
		if e.pfxLen > 0 {
			bits = path.SetChunk(offset, stride, e.chunk)
		}

		if !yield(Key[W]{Bits: bits, Len: offset + e.pfxLen}, n.prefixes.MustGet(e.idx)) {
			return false
		}
	}
	return true
}
