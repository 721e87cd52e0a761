// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpm

import (
	"fmt"
	"math/rand/v2"
	"net/netip"
	"testing"

	"github.com/go-faker/faker/v4"
)

// this file contains helpers for other test functions

// abbreviations
var (
	mpa = netip.MustParseAddr
	mpp = netip.MustParsePrefix
)

// workLoadN to adjust loops for tests with -short
func workLoadN() int {
	if testing.Short() {
		return 100
	}
	return 1_000
}

// seeded prng, every test gets its own
func newPRNG(t testing.TB) *rand.Rand {
	t.Helper()
	return rand.New(rand.NewPCG(42, 42))
}

// testConfigs returns all backend configurations under test.
func testConfigs() []Config {
	return []Config{
		{Backend: StrideBackend, Stride: 1},
		{Backend: StrideBackend, Stride: 2},
		{Backend: StrideBackend, Stride: 4},
		{Backend: StrideBackend, Stride: 8},
		{Backend: PathBackend},
	}
}

func (c Config) name() string {
	if c.Backend == PathBackend {
		return c.Backend.String()
	}
	return fmt.Sprintf("%s/%d", c.Backend, c.Stride)
}

func (c Config) options() []Option {
	return []Option{WithBackend(c.Backend), WithStride(c.Stride)}
}

// mustTable returns an empty table for cfg.
func mustTable[V any](t testing.TB, cfg Config) *Table[V] {
	t.Helper()
	tbl, err := NewTable[V](cfg.options()...)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

// fakeAddrs returns n probe addresses from faker, mixed IPv4 and IPv6.
func fakeAddrs(t testing.TB, n int) []netip.Addr {
	t.Helper()

	addrs := make([]netip.Addr, 0, 2*n)
	for range n {
		probe := struct {
			IP4 string `faker:"ipv4"`
			IP6 string `faker:"ipv6"`
		}{}
		if err := faker.FakeData(&probe); err != nil {
			t.Fatal(err)
		}
		addrs = append(addrs, mpa(probe.IP4), mpa(probe.IP6))
	}
	return addrs
}
