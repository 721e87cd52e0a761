// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpm

import (
	"iter"
	"math/bits"
	"sync"

	"github.com/pkg/errors"

	"github.com/gaissmai/lpm/internal/art"
)

// StrideTrie is a multibit trie with a fixed stride of 1, 2, 4 or 8 bits
// per level. Each level node holds its populated children and the
// prefixes ending inside the node as popcount compressed sparse arrays,
// keyed by bitmaps.
//
// A lookup walks at most width/stride levels. In every node the
// longest prefix covering the current chunk is found with a single
// bitset intersection (Knuth's ART backtracking, precomputed), the
// deepest match wins.
//
// The zero value is ready to use with [DefaultStride].
// A StrideTrie must not be copied by value.
type StrideTrie[W Word[W], V any] struct {
	// used by -copylocks checker from `go vet`.
	_ [0]sync.Mutex

	stride int // 0 means DefaultStride
	root   strideNode[V]
	size   int
}

var (
	_ Engine[V4, any] = (*StrideTrie[V4, any])(nil)
	_ Engine[V6, any] = (*StrideTrie[V6, any])(nil)
)

// NewStrideTrie returns an empty stride trie, stride must be 1, 2, 4 or 8.
func NewStrideTrie[W Word[W], V any](stride int) (*StrideTrie[W, V], error) {
	if !art.ValidStride(stride) {
		return nil, errors.Wrapf(ErrInvalidStride, "stride %d, want one of 1, 2, 4, 8", stride)
	}
	return &StrideTrie[W, V]{stride: stride}, nil
}

// Stride returns the number of key bits per trie level.
func (t *StrideTrie[W, V]) Stride() int {
	if t.stride == 0 {
		return DefaultStride
	}
	return t.stride
}

// Insert stores val for prefix k, see [Engine.Insert].
func (t *StrideTrie[W, V]) Insert(k Key[W], val V) (old V, existed bool) {
	if !k.Valid() {
		return
	}
	k = k.Masked()
	stride := t.Stride()

	n := &t.root
	for offset := 0; ; offset += stride {
		chunk := k.Bits.Chunk(offset, stride)

		// prefix ends inside this node, store it here
		if rest := k.Len - offset; rest < stride {
			old, existed = n.prefixes.InsertAt(art.PfxToIdx(chunk, rest, stride), val)
			if !existed {
				t.size++
			}
			return old, existed
		}

		n = n.getOrCreateChild(chunk)
	}
}

// Lookup returns the value of the longest prefix covering k.
func (t *StrideTrie[W, V]) Lookup(k Key[W]) (val V, ok bool) {
	_, val, ok = t.lookup(k)
	return
}

// LookupLPM returns the longest prefix covering k and its value.
func (t *StrideTrie[W, V]) LookupLPM(k Key[W]) (lpm Key[W], val V, ok bool) {
	var lpmLen int
	if lpmLen, val, ok = t.lookup(k); !ok {
		return
	}
	return Key[W]{Bits: k.Bits.Masked(lpmLen), Len: lpmLen}, val, true
}

// lookup walks the chunk path of k and records the deepest match,
// a match at a deeper level is always longer.
func (t *StrideTrie[W, V]) lookup(k Key[W]) (lpmLen int, val V, ok bool) {
	if !k.Valid() {
		return
	}
	k = k.Masked()
	stride := t.Stride()

	n := &t.root
	for offset := 0; ; offset += stride {
		chunk := k.Bits.Chunk(offset, stride)
		rest := k.Len - offset

		var idx uint
		if rest < stride {
			idx = art.PfxToIdx(chunk, rest, stride)
		} else {
			idx = art.HostIdx(chunk, stride)
		}

		if top, found := n.lpmIdx(idx); found {
			lpmLen = offset + bits.Len(top) - 1
			val = n.prefixes.MustGet(top)
			ok = true
		}

		if rest < stride {
			return
		}

		kid, exists := n.children.Get(chunk)
		if !exists {
			return
		}
		n = kid
	}
}

// Get returns the value of the exact prefix k.
func (t *StrideTrie[W, V]) Get(k Key[W]) (val V, ok bool) {
	if !k.Valid() {
		return
	}
	k = k.Masked()
	stride := t.Stride()

	n := &t.root
	for offset := 0; ; offset += stride {
		chunk := k.Bits.Chunk(offset, stride)

		if rest := k.Len - offset; rest < stride {
			return n.prefixes.Get(art.PfxToIdx(chunk, rest, stride))
		}

		kid, exists := n.children.Get(chunk)
		if !exists {
			return
		}
		n = kid
	}
}

// Delete removes the exact prefix k, empty nodes on the path are purged.
func (t *StrideTrie[W, V]) Delete(k Key[W]) (old V, existed bool) {
	if !k.Valid() {
		return
	}
	k = k.Masked()
	stride := t.Stride()

	// record the path, the root is not purged
	type pathItem struct {
		parent *strideNode[V]
		chunk  uint
	}
	stack := make([]pathItem, 0, k.Bits.Width()/stride+1)

	n := &t.root
	for offset := 0; ; offset += stride {
		chunk := k.Bits.Chunk(offset, stride)

		if rest := k.Len - offset; rest < stride {
			if old, existed = n.prefixes.DeleteAt(art.PfxToIdx(chunk, rest, stride)); !existed {
				return
			}
			break
		}

		kid, exists := n.children.Get(chunk)
		if !exists {
			return
		}
		stack = append(stack, pathItem{parent: n, chunk: chunk})
		n = kid
	}

	t.size--

	// purge empty nodes bottom up
	for i := len(stack) - 1; i >= 0 && n.isEmpty(); i-- {
		stack[i].parent.children.DeleteAt(stack[i].chunk)
		n = stack[i].parent
	}

	return old, true
}

// Len returns the number of prefixes.
func (t *StrideTrie[W, V]) Len() int {
	return t.size
}

// All iterates over all prefixes in CIDR sort order.
func (t *StrideTrie[W, V]) All() iter.Seq2[Key[W], V] {
	return func(yield func(Key[W], V) bool) {
		var path W
		strideAllRec(&t.root, t.Stride(), 0, path, yield)
	}
}

// Stats returns node and prefix counts.
func (t *StrideTrie[W, V]) Stats() (s Stats) {
	t.root.statsRec(0, &s)
	return
}

// Clone returns a copy of the trie. The values are copied by assignment,
// or by Clone if V implements [Cloner].
func (t *StrideTrie[W, V]) Clone() Engine[W, V] {
	return t.clone()
}

func (t *StrideTrie[W, V]) clone() *StrideTrie[W, V] {
	c := &StrideTrie[W, V]{stride: t.stride, size: t.size}
	c.root = *t.root.cloneRec(cloneFnFactory[V]())
	return c
}
