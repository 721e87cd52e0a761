// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package golden implements a simple and slow prefix table as
// reference for the differential tests of the trie backends.
package golden

import (
	"cmp"
	"fmt"
	"net/netip"
	"slices"
)

// Table is a route table implemented as a slice of prefixes and values.
type Table[V any] []Item[V]

type Item[V any] struct {
	Pfx netip.Prefix
	Val V
}

func (g Item[V]) String() string {
	return fmt.Sprintf("(%s, %v)", g.Pfx, g.Val)
}

// Insert the canonicalized pfx, returns the previous value if pfx was present.
func (t *Table[V]) Insert(pfx netip.Prefix, val V) (old V, exists bool) {
	pfx = pfx.Masked()
	for i, item := range *t {
		if item.Pfx == pfx {
			(*t)[i].Val = val
			return item.Val, true
		}
	}
	*t = append(*t, Item[V]{pfx, val})
	return
}

func (t *Table[V]) Delete(pfx netip.Prefix) (old V, exists bool) {
	pfx = pfx.Masked()
	for i, item := range *t {
		if item.Pfx == pfx {
			*t = slices.Delete(*t, i, i+1)
			return item.Val, true
		}
	}
	return
}

func (t Table[V]) Len() int {
	return len(t)
}

func (t Table[V]) Get(pfx netip.Prefix) (val V, ok bool) {
	pfx = pfx.Masked()
	for _, item := range t {
		if item.Pfx == pfx {
			return item.Val, true
		}
	}
	return
}

// Lookup, longest-prefix-match for addr.
func (t Table[V]) Lookup(addr netip.Addr) (val V, ok bool) {
	bestLen := -1

	for _, item := range t {
		if item.Pfx.Contains(addr) && item.Pfx.Bits() > bestLen {
			val = item.Val
			ok = true
			bestLen = item.Pfx.Bits()
		}
	}
	return
}

// LookupPrefix, longest-prefix-match for pfx.
func (t Table[V]) LookupPrefix(pfx netip.Prefix) (val V, ok bool) {
	_, val, ok = t.LookupPrefixLPM(pfx)
	return
}

// LookupPrefixLPM, longest-prefix-match for pfx, returns also the matching prefix.
func (t Table[V]) LookupPrefixLPM(pfx netip.Prefix) (lpm netip.Prefix, val V, ok bool) {
	pfx = pfx.Masked()
	bestLen := -1

	for _, item := range t {
		if item.Pfx.Addr().BitLen() != pfx.Addr().BitLen() {
			continue
		}
		if item.Pfx.Bits() <= pfx.Bits() && item.Pfx.Contains(pfx.Addr()) && item.Pfx.Bits() > bestLen {
			lpm = item.Pfx
			val = item.Val
			ok = true
			bestLen = item.Pfx.Bits()
		}
	}
	return
}

// AllSorted returns all items in CIDR sort order.
func (t Table[V]) AllSorted() []Item[V] {
	result := slices.Clone(t)
	slices.SortFunc(result, func(a, b Item[V]) int {
		return CmpPrefix(a.Pfx, b.Pfx)
	})
	return result
}

// CmpPrefix, helper function, compare func for prefix sort,
// all IPv4 before IPv6, then by address, then by bits.
func CmpPrefix(a, b netip.Prefix) int {
	if cmpAddr := a.Addr().Compare(b.Addr()); cmpAddr != 0 {
		return cmpAddr
	}
	return cmp.Compare(a.Bits(), b.Bits())
}
