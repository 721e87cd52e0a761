// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package random generates seeded random addresses and prefixes
// for the tests, benchmarks and the profiling driver.
package random

import (
	"math/rand/v2"
	"net/netip"
)

// IP4 returns a random IPv4 address.
func IP4(prng *rand.Rand) netip.Addr {
	var b [4]byte
	for i := range b {
		b[i] = byte(prng.Uint32() & 0xff)
	}
	return netip.AddrFrom4(b)
}

// IP6 returns a random IPv6 address.
func IP6(prng *rand.Rand) netip.Addr {
	var b [16]byte
	for i := range b {
		b[i] = byte(prng.Uint32() & 0xff)
	}
	return netip.AddrFrom16(b)
}

// IP returns a random IPv4 or IPv6 address.
func IP(prng *rand.Rand) netip.Addr {
	if prng.IntN(2) == 1 {
		return IP4(prng)
	}
	return IP6(prng)
}

// Prefix4 returns a random masked IPv4 prefix with bits in [0..32].
func Prefix4(prng *rand.Rand) netip.Prefix {
	pfx, err := IP4(prng).Prefix(prng.IntN(33))
	if err != nil {
		panic(err)
	}
	return pfx
}

// Prefix6 returns a random masked IPv6 prefix with bits in [0..128].
func Prefix6(prng *rand.Rand) netip.Prefix {
	pfx, err := IP6(prng).Prefix(prng.IntN(129))
	if err != nil {
		panic(err)
	}
	return pfx
}

// Prefix returns a random IPv4 or IPv6 prefix.
func Prefix(prng *rand.Rand) netip.Prefix {
	if prng.IntN(2) == 1 {
		return Prefix4(prng)
	}
	return Prefix6(prng)
}

// RealWorldPrefixes4 returns n distinct IPv4 prefixes with a length
// distribution like in the DFZ, /8 to /28, mostly /24.
func RealWorldPrefixes4(prng *rand.Rand, n int) []netip.Prefix {
	seen := make(map[netip.Prefix]bool, n)
	pfxs := make([]netip.Prefix, 0, n)

	for len(pfxs) < n {
		bits := 24
		if prng.IntN(3) != 0 {
			bits = prng.IntN(21) + 8
		}

		pfx, err := IP4(prng).Prefix(bits)
		if err != nil {
			panic(err)
		}

		// skip multicast, class E and duplicates
		if pfx.Addr().IsMulticast() || pfx.Overlaps(reserved4) || seen[pfx] {
			continue
		}

		seen[pfx] = true
		pfxs = append(pfxs, pfx)
	}
	return pfxs
}

// RealWorldPrefixes6 returns n distinct IPv6 prefixes from the
// global unicast range 2000::/3, /16 to /56, mostly /48.
func RealWorldPrefixes6(prng *rand.Rand, n int) []netip.Prefix {
	seen := make(map[netip.Prefix]bool, n)
	pfxs := make([]netip.Prefix, 0, n)

	for len(pfxs) < n {
		bits := 48
		if prng.IntN(3) != 0 {
			bits = prng.IntN(41) + 16
		}

		pfx, err := IP6(prng).Prefix(bits)
		if err != nil {
			panic(err)
		}

		if !pfx.Overlaps(globalUnicast6) || seen[pfx] {
			continue
		}

		seen[pfx] = true
		pfxs = append(pfxs, pfx)
	}
	return pfxs
}

// RealWorldPrefixes returns n distinct prefixes, mixed IPv4 and IPv6.
func RealWorldPrefixes(prng *rand.Rand, n int) []netip.Prefix {
	n4 := n / 2
	pfxs := RealWorldPrefixes4(prng, n4)
	pfxs = append(pfxs, RealWorldPrefixes6(prng, n-n4)...)

	prng.Shuffle(len(pfxs), func(i, j int) {
		pfxs[i], pfxs[j] = pfxs[j], pfxs[i]
	})
	return pfxs
}

var (
	reserved4      = netip.MustParsePrefix("240.0.0.0/4")
	globalUnicast6 = netip.MustParsePrefix("2000::/3")
)
