// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpm

import (
	"iter"
	"net/netip"
	"sync"
	"sync/atomic"
)

// SyncTable wraps a [Table] for concurrent readers and writers.
//
// Readers load the current table version via an atomic pointer and
// never block. Writers are serialized by a mutex, they clone the
// current version, apply the change and publish the new version
// atomically. Readers walking the old version are never disturbed
// by node splits in the new one.
//
// A single write clones the whole table, use Update to apply
// a batch of changes with one clone.
type SyncTable[V any] struct {
	// current table version, lock-free reads
	atomicPtr atomic.Pointer[Table[V]]

	// serializes the writers
	mutex sync.Mutex
}

// NewSyncTable returns an empty SyncTable with the configured backend.
func NewSyncTable[V any](opts ...Option) (*SyncTable[V], error) {
	tbl, err := NewTable[V](opts...)
	if err != nil {
		return nil, err
	}

	st := new(SyncTable[V])
	st.atomicPtr.Store(tbl)
	return st, nil
}

// Load returns the current table version. The returned table must
// be treated as read-only.
func (st *SyncTable[V]) Load() *Table[V] {
	if tbl := st.atomicPtr.Load(); tbl != nil {
		return tbl
	}

	// zero value SyncTable, publish an empty table once
	st.mutex.Lock()
	defer st.mutex.Unlock()

	if tbl := st.atomicPtr.Load(); tbl != nil {
		return tbl
	}
	tbl := new(Table[V])
	st.atomicPtr.Store(tbl)
	return tbl
}

// Update clones the current version, calls fn with the clone and
// publishes it. fn must not retain the table.
func (st *SyncTable[V]) Update(fn func(tbl *Table[V])) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	cur := st.atomicPtr.Load()
	if cur == nil {
		cur = new(Table[V])
	}

	next := cur.Clone()
	fn(next)

	st.atomicPtr.Store(next)
}

// Insert is a sync adapter for [Table.Insert].
func (st *SyncTable[V]) Insert(pfx netip.Prefix, val V) (old V, existed bool) {
	st.Update(func(tbl *Table[V]) {
		old, existed = tbl.Insert(pfx, val)
	})
	return
}

// Delete is a sync adapter for [Table.Delete].
func (st *SyncTable[V]) Delete(pfx netip.Prefix) (old V, existed bool) {
	st.Update(func(tbl *Table[V]) {
		old, existed = tbl.Delete(pfx)
	})
	return
}

// Get is a sync adapter for [Table.Get].
func (st *SyncTable[V]) Get(pfx netip.Prefix) (val V, ok bool) {
	return st.Load().Get(pfx)
}

// Lookup is a sync adapter for [Table.Lookup].
func (st *SyncTable[V]) Lookup(ip netip.Addr) (val V, ok bool) {
	return st.Load().Lookup(ip)
}

// LookupPrefix is a sync adapter for [Table.LookupPrefix].
func (st *SyncTable[V]) LookupPrefix(pfx netip.Prefix) (val V, ok bool) {
	return st.Load().LookupPrefix(pfx)
}

// LookupPrefixLPM is a sync adapter for [Table.LookupPrefixLPM].
func (st *SyncTable[V]) LookupPrefixLPM(pfx netip.Prefix) (lpm netip.Prefix, val V, ok bool) {
	return st.Load().LookupPrefixLPM(pfx)
}

// Len is a sync adapter for [Table.Len].
func (st *SyncTable[V]) Len() int {
	return st.Load().Len()
}

// All iterates over a consistent snapshot, see [Table.All].
func (st *SyncTable[V]) All() iter.Seq2[netip.Prefix, V] {
	return st.Load().All()
}

// Stats4 is a sync adapter for [Table.Stats4].
func (st *SyncTable[V]) Stats4() Stats {
	return st.Load().Stats4()
}

// Stats6 is a sync adapter for [Table.Stats6].
func (st *SyncTable[V]) Stats6() Stats {
	return st.Load().Stats6()
}
