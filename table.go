// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpm

import (
	"iter"
	"net/netip"
	"sync"
)

// Table is an IPv4 and IPv6 routing table with payload V, keyed by
// netip.Prefix. It holds one engine per address family, both of
// the configured backend.
//
// The zero value is ready to use, with the stride backend and
// [DefaultStride].
//
// The Table is safe for concurrent reads, but concurrent reads and writes
// must be externally synchronized, see [SyncTable].
//
// A Table must not be copied by value; always pass by pointer.
//
// Performance note: IPv4-mapped IPv6 addresses (e.g., ::ffff:192.0.2.1)
// are treated as IPv6, there is no automatic unmapping.
type Table[V any] struct {
	// used by -copylocks checker from `go vet`.
	_ [0]sync.Mutex

	cfg Config

	// lazy initialized engines, see init
	once sync.Once
	four Engine[V4, V]
	six  Engine[V6, V]
}

// NewTable returns an empty table with the configured backend.
func NewTable[V any](opts ...Option) (*Table[V], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	t := &Table[V]{cfg: cfg}
	t.init()
	return t, nil
}

// init the engines, the zero value config is valid.
func (t *Table[V]) init() {
	t.once.Do(func() {
		t.four = newEngine[V4, V](t.cfg)
		t.six = newEngine[V6, V](t.cfg)
	})
}

// Config returns the table configuration.
func (t *Table[V]) Config() Config {
	return t.cfg
}

// Insert adds pfx to the table, with value val.
// If pfx is already present in the table, its value is set to val
// and the previous value is returned.
// An invalid prefix is a no-op.
func (t *Table[V]) Insert(pfx netip.Prefix, val V) (old V, existed bool) {
	t.init()

	if k, err := Key4(pfx); err == nil {
		return t.four.Insert(k, val)
	}
	if k, err := Key6(pfx); err == nil {
		return t.six.Insert(k, val)
	}
	return
}

// Delete removes pfx and returns its value.
func (t *Table[V]) Delete(pfx netip.Prefix) (old V, existed bool) {
	t.init()

	if k, err := Key4(pfx); err == nil {
		return t.four.Delete(k)
	}
	if k, err := Key6(pfx); err == nil {
		return t.six.Delete(k)
	}
	return
}

// Get returns the value of the exact prefix pfx.
func (t *Table[V]) Get(pfx netip.Prefix) (val V, ok bool) {
	t.init()

	if k, err := Key4(pfx); err == nil {
		return t.four.Get(k)
	}
	if k, err := Key6(pfx); err == nil {
		return t.six.Get(k)
	}
	return
}

// Contains reports whether any stored prefix covers ip.
func (t *Table[V]) Contains(ip netip.Addr) bool {
	_, ok := t.Lookup(ip)
	return ok
}

// Lookup does a route lookup (longest prefix match) for ip and
// returns the associated value and true, or false if no route matched.
func (t *Table[V]) Lookup(ip netip.Addr) (val V, ok bool) {
	t.init()

	if k, err := AddrKey4(ip); err == nil {
		return t.four.Lookup(k)
	}
	if k, err := AddrKey6(ip); err == nil {
		return t.six.Lookup(k)
	}
	return
}

// LookupPrefix does a route lookup (longest prefix match) for pfx and
// returns the associated value and true, or false if no route matched.
func (t *Table[V]) LookupPrefix(pfx netip.Prefix) (val V, ok bool) {
	_, val, ok = t.LookupPrefixLPM(pfx)
	return
}

// LookupPrefixLPM is similar to LookupPrefix,
// but it returns the lpm prefix in addition to value, ok.
func (t *Table[V]) LookupPrefixLPM(pfx netip.Prefix) (lpm netip.Prefix, val V, ok bool) {
	t.init()

	if k, err := Key4(pfx); err == nil {
		if lpmKey, val, ok := t.four.LookupLPM(k); ok {
			return lpmKey.Prefix(), val, true
		}
		return
	}
	if k, err := Key6(pfx); err == nil {
		if lpmKey, val, ok := t.six.LookupLPM(k); ok {
			return lpmKey.Prefix(), val, true
		}
	}
	return
}

// Len returns the total number of prefixes in the table.
func (t *Table[V]) Len() int {
	return t.Size4() + t.Size6()
}

// Size4 returns the number of IPv4 prefixes.
func (t *Table[V]) Size4() int {
	t.init()
	return t.four.Len()
}

// Size6 returns the number of IPv6 prefixes.
func (t *Table[V]) Size6() int {
	t.init()
	return t.six.Len()
}

// Stats4 returns the structural statistics of the IPv4 trie.
func (t *Table[V]) Stats4() Stats {
	t.init()
	return t.four.Stats()
}

// Stats6 returns the structural statistics of the IPv6 trie.
func (t *Table[V]) Stats6() Stats {
	t.init()
	return t.six.Stats()
}

// All iterates over all prefixes in CIDR sort order,
// first all IPv4 prefixes, then all IPv6 prefixes.
func (t *Table[V]) All() iter.Seq2[netip.Prefix, V] {
	t.init()

	return func(yield func(netip.Prefix, V) bool) {
		for k, val := range t.four.All() {
			if !yield(k.Prefix(), val) {
				return
			}
		}
		for k, val := range t.six.All() {
			if !yield(k.Prefix(), val) {
				return
			}
		}
	}
}

// Clone returns a copy of the table. The values are copied by assignment,
// or by Clone if V implements [Cloner].
func (t *Table[V]) Clone() *Table[V] {
	if t == nil {
		return nil
	}
	t.init()

	c := &Table[V]{cfg: t.cfg}
	c.once.Do(func() {
		c.four = t.four.Clone()
		c.six = t.six.Clone()
	})
	return c
}
