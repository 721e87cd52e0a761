// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package lpm provides longest-prefix-match (LPM) engines
// for IPv4 and IPv6 prefixes.
//
// Two interchangeable trie backends implement the same [Engine] contract:
//
//   - [StrideTrie]: multibit trie with a fixed stride of 1, 2, 4 or 8 bits,
//     popcount compressed sparse arrays for children and prefixes,
//     the node-local longest match is a single bitset intersection.
//   - [PathTrie]: path-compressed binary trie, chains of single child
//     nodes collapse into one edge, node count proportional to the
//     number of prefixes.
//
// Both are generic over the address word, [V4] and [V6], the algorithms
// exist only once. A [Key] is the normalized prefix, bits beyond the
// prefix length are masked by every operation.
//
// [Table] is the dual-stack convenience layer keyed by netip.Prefix,
// [SyncTable] adds copy-on-write publishing for concurrent readers
// and writers.
//
//	tbl := new(lpm.Table[string])
//	tbl.Insert(netip.MustParsePrefix("192.168.12.0/24"), "lan")
//	tbl.Lookup(netip.MustParseAddr("192.168.12.100")) // "lan", true
package lpm
