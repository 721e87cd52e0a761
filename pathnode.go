// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpm

// pathNode is a node of the path-compressed binary trie.
//
// The node stores its absolute prefix, masked to plen. The skip string
// of the edge from the parent is the bit range [parent.plen, plen) of
// bits, the first bit of it selects the child slot in the parent.
//
// A node without value is a pure branch point, it has always two
// children, except the virtual root.
type pathNode[W Word[W], V any] struct {
	bits  W
	plen  int
	child [2]*pathNode[W, V]

	val    V
	hasVal bool
}

func newPathLeaf[W Word[W], V any](k Key[W], val V) *pathNode[W, V] {
	return &pathNode[W, V]{bits: k.Bits, plen: k.Len, val: val, hasVal: true}
}

// covers reports whether the prefix of n covers the masked key k.
func (n *pathNode[W, V]) covers(k Key[W]) bool {
	return n.plen <= k.Len && n.bits.CommonPrefixLen(k.Bits) >= n.plen
}

// key returns the prefix of n.
func (n *pathNode[W, V]) key() Key[W] {
	return Key[W]{Bits: n.bits, Len: n.plen}
}

// childCount returns the number of children.
func (n *pathNode[W, V]) childCount() (cnt int) {
	for _, kid := range n.child {
		if kid != nil {
			cnt++
		}
	}
	return
}

// onlyChild returns the child of a node with exactly one child.
func (n *pathNode[W, V]) onlyChild() *pathNode[W, V] {
	if n.child[0] != nil {
		return n.child[0]
	}
	return n.child[1]
}

// slot returns the child slot of n in its parent.
func (n *pathNode[W, V]) slot(parent *pathNode[W, V]) uint {
	return n.bits.Bit(parent.plen)
}

// cloneRec returns a deep copy of the subtree.
func (n *pathNode[W, V]) cloneRec(cloneFn func(V) V) *pathNode[W, V] {
	if n == nil {
		return nil
	}

	c := &pathNode[W, V]{bits: n.bits, plen: n.plen, val: n.val, hasVal: n.hasVal}
	if c.hasVal && cloneFn != nil {
		c.val = cloneFn(n.val)
	}

	c.child[0] = n.child[0].cloneRec(cloneFn)
	c.child[1] = n.child[1].cloneRec(cloneFn)

	return c
}

// statsRec sums up nodes and prefixes and records the max depth.
func (n *pathNode[W, V]) statsRec(depth int, s *Stats) {
	s.Nodes++
	if n.hasVal {
		s.Prefixes++
	}
	s.MaxDepth = max(s.MaxDepth, depth)

	for _, kid := range n.child {
		if kid != nil {
			kid.statsRec(depth+1, s)
		}
	}
}

// allRec yields the subtree in CIDR sort order: the node itself, then
// the left (0) and the right (1) subtree.
func (n *pathNode[W, V]) allRec(yield func(Key[W], V) bool) bool {
	if n.hasVal && !yield(n.key(), n.val) {
		return false
	}

	for _, kid := range n.child {
		if kid != nil && !kid.allRec(yield) {
			return false
		}
	}
	return true
}
