// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpm

import (
	"iter"
	"sync"
)

// PathTrie is a path-compressed binary trie. Chains of single child
// nodes are collapsed into one edge labeled with the skipped bits,
// the number of nodes is proportional to the number of prefixes,
// not to the number of prefix bits.
//
// A lookup walks at most width levels, in practice far less
// for sparse prefix sets.
//
// The zero value is ready to use. A PathTrie must not be copied by value.
type PathTrie[W Word[W], V any] struct {
	// used by -copylocks checker from `go vet`.
	_ [0]sync.Mutex

	// virtual root node, the empty prefix, holds the default route
	root pathNode[W, V]
	size int
}

var (
	_ Engine[V4, any] = (*PathTrie[V4, any])(nil)
	_ Engine[V6, any] = (*PathTrie[V6, any])(nil)
)

// Insert stores val for prefix k, see [Engine.Insert].
func (t *PathTrie[W, V]) Insert(k Key[W], val V) (old V, existed bool) {
	if !k.Valid() {
		return
	}
	k = k.Masked()

	n := &t.root
	for {
		// skip string fully matched and key consumed, store at node
		if n.plen == k.Len {
			old, existed = n.val, n.hasVal
			n.val, n.hasVal = val, true
			if !existed {
				t.size++
			}
			return old, existed
		}

		slot := k.Bits.Bit(n.plen)
		kid := n.child[slot]

		if kid == nil {
			n.child[slot] = newPathLeaf(k, val)
			t.size++
			return
		}

		// kid shares at least the slot bit with k
		cpl := min(kid.bits.CommonPrefixLen(k.Bits), kid.plen, k.Len)

		switch {
		case cpl == kid.plen:
			// skip string of kid fully matched, descend
			n = kid
			continue

		case cpl == k.Len:
			// k ends inside the skip string, insert above kid
			leaf := newPathLeaf(k, val)
			leaf.child[kid.bits.Bit(cpl)] = kid
			n.child[slot] = leaf

		default:
			// mismatch inside the skip string, split at the divergence
			branch := &pathNode[W, V]{bits: k.Bits.Masked(cpl), plen: cpl}
			branch.child[kid.bits.Bit(cpl)] = kid
			branch.child[k.Bits.Bit(cpl)] = newPathLeaf(k, val)
			n.child[slot] = branch
		}

		t.size++
		return
	}
}

// Lookup returns the value of the longest prefix covering k.
func (t *PathTrie[W, V]) Lookup(k Key[W]) (val V, ok bool) {
	if best := t.lookup(k); best != nil {
		return best.val, true
	}
	return
}

// LookupLPM returns the longest prefix covering k and its value.
func (t *PathTrie[W, V]) LookupLPM(k Key[W]) (lpm Key[W], val V, ok bool) {
	if best := t.lookup(k); best != nil {
		return best.key(), best.val, true
	}
	return
}

// lookup descends as long as the nodes cover k and returns the
// deepest node with a value, or nil.
func (t *PathTrie[W, V]) lookup(k Key[W]) (best *pathNode[W, V]) {
	if !k.Valid() {
		return
	}
	k = k.Masked()

	n := &t.root
	for {
		if n.hasVal {
			best = n
		}

		if n.plen == k.Len {
			return
		}

		kid := n.child[k.Bits.Bit(n.plen)]
		if kid == nil || !kid.covers(k) {
			return
		}
		n = kid
	}
}

// Get returns the value of the exact prefix k.
func (t *PathTrie[W, V]) Get(k Key[W]) (val V, ok bool) {
	if n := t.find(k, nil); n != nil && n.hasVal {
		return n.val, true
	}
	return
}

// find returns the node with exactly the prefix k or nil.
// If stack is not nil the path from the root is recorded,
// the found node excluded.
func (t *PathTrie[W, V]) find(k Key[W], stack *[]*pathNode[W, V]) *pathNode[W, V] {
	if !k.Valid() {
		return nil
	}
	k = k.Masked()

	n := &t.root
	for n.plen < k.Len {
		kid := n.child[k.Bits.Bit(n.plen)]
		if kid == nil || !kid.covers(k) {
			return nil
		}

		if stack != nil {
			*stack = append(*stack, n)
		}
		n = kid
	}
	return n
}

// Delete removes the exact prefix k. A node left without value is
// removed if it has no children, or spliced out if it has only one,
// this re-merges the compressible chains.
func (t *PathTrie[W, V]) Delete(k Key[W]) (old V, existed bool) {
	stack := make([]*pathNode[W, V], 0, 16)

	n := t.find(k, &stack)
	if n == nil || !n.hasVal {
		return
	}

	old = n.val
	var zero V
	n.val, n.hasVal = zero, false
	t.size--

	// the virtual root is never removed
	if n == &t.root {
		return old, true
	}

	parent := stack[len(stack)-1]

	switch n.childCount() {
	case 2:
		// n is now a branch point
	case 1:
		parent.child[n.slot(parent)] = n.onlyChild()
	case 0:
		parent.child[n.slot(parent)] = nil

		// parent may now be a value-less chain link, splice it out
		if parent != &t.root && !parent.hasVal {
			grandParent := stack[len(stack)-2]
			grandParent.child[parent.slot(grandParent)] = parent.onlyChild()
		}
	}

	return old, true
}

// Len returns the number of prefixes.
func (t *PathTrie[W, V]) Len() int {
	return t.size
}

// All iterates over all prefixes in CIDR sort order.
func (t *PathTrie[W, V]) All() iter.Seq2[Key[W], V] {
	return func(yield func(Key[W], V) bool) {
		t.root.allRec(yield)
	}
}

// Stats returns node and prefix counts.
func (t *PathTrie[W, V]) Stats() (s Stats) {
	t.root.statsRec(0, &s)
	return
}

// Clone returns a copy of the trie. The values are copied by assignment,
// or by Clone if V implements [Cloner].
func (t *PathTrie[W, V]) Clone() Engine[W, V] {
	return t.clone()
}

func (t *PathTrie[W, V]) clone() *PathTrie[W, V] {
	c := &PathTrie[W, V]{size: t.size}
	c.root = *t.root.cloneRec(cloneFnFactory[V]())
	return c
}
