// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpm

import (
	"fmt"
	"net/netip"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidKey is returned for a prefix length outside [0, width].
	ErrInvalidKey = errors.New("invalid prefix key")

	// ErrAddressFamily is returned if a netip value of the wrong
	// address family is normalized into a key.
	ErrAddressFamily = errors.New("address family mismatch")
)

// Key is a normalized IP prefix: the address bits and the prefix length,
// independent of the address family.
//
// Bits beyond Len are don't care, every engine operation masks them.
type Key[W Word[W]] struct {
	Bits W
	Len  int
}

// NewKey returns the masked key for bits and prefix length n.
func NewKey[W Word[W]](bits W, n int) (Key[W], error) {
	k := Key[W]{Bits: bits, Len: n}
	if err := k.Validate(); err != nil {
		return Key[W]{}, err
	}
	return k.Masked(), nil
}

// Valid reports whether Len is in [0, width].
func (k Key[W]) Valid() bool {
	return k.Len >= 0 && k.Len <= k.Bits.Width()
}

// Validate returns an error wrapping [ErrInvalidKey] for an invalid key.
func (k Key[W]) Validate() error {
	if !k.Valid() {
		return errors.Wrapf(ErrInvalidKey, "prefix length %d out of range [0, %d]", k.Len, k.Bits.Width())
	}
	return nil
}

// Masked returns the key with all bits beyond Len zeroed.
func (k Key[W]) Masked() Key[W] {
	return Key[W]{Bits: k.Bits.Masked(k.Len), Len: k.Len}
}

// Equal reports whether both keys have the same length and the
// same top Len bits.
func (k Key[W]) Equal(o Key[W]) bool {
	return k.Len == o.Len && k.Bits.Masked(k.Len) == o.Bits.Masked(o.Len)
}

// Contains reports whether k covers o, as subnet or exact match.
func (k Key[W]) Contains(o Key[W]) bool {
	return k.Len <= o.Len && k.Bits.CommonPrefixLen(o.Bits) >= k.Len
}

// Prefix converts the key back to a masked netip.Prefix.
func (k Key[W]) Prefix() netip.Prefix {
	return netip.PrefixFrom(k.Bits.Masked(k.Len).Addr(), k.Len)
}

func (k Key[W]) String() string {
	if !k.Valid() {
		return fmt.Sprintf("invalid key /%d", k.Len)
	}
	return k.Prefix().String()
}

// Key4 normalizes an IPv4 prefix.
func Key4(pfx netip.Prefix) (Key[V4], error) {
	if !pfx.IsValid() {
		return Key[V4]{}, errors.Wrapf(ErrInvalidKey, "prefix %s", pfx)
	}
	if !pfx.Addr().Is4() {
		return Key[V4]{}, errors.Wrapf(ErrAddressFamily, "prefix %s is not IPv4", pfx)
	}
	return Key[V4]{Bits: v4FromAddr(pfx.Addr()), Len: pfx.Bits()}.Masked(), nil
}

// Key6 normalizes an IPv6 prefix, IPv4-mapped addresses stay IPv6.
func Key6(pfx netip.Prefix) (Key[V6], error) {
	if !pfx.IsValid() {
		return Key[V6]{}, errors.Wrapf(ErrInvalidKey, "prefix %s", pfx)
	}
	if !pfx.Addr().Is6() {
		return Key[V6]{}, errors.Wrapf(ErrAddressFamily, "prefix %s is not IPv6", pfx)
	}
	return Key[V6]{Bits: v6FromAddr(pfx.Addr()), Len: pfx.Bits()}.Masked(), nil
}

// AddrKey4 returns the /32 key for an IPv4 address.
func AddrKey4(addr netip.Addr) (Key[V4], error) {
	if !addr.Is4() {
		return Key[V4]{}, errors.Wrapf(ErrAddressFamily, "address %s is not IPv4", addr)
	}
	return Key[V4]{Bits: v4FromAddr(addr), Len: 32}, nil
}

// AddrKey6 returns the /128 key for an IPv6 address.
func AddrKey6(addr netip.Addr) (Key[V6], error) {
	if !addr.Is6() {
		return Key[V6]{}, errors.Wrapf(ErrAddressFamily, "address %s is not IPv6", addr)
	}
	return Key[V6]{Bits: v6FromAddr(addr), Len: 128}, nil
}

// MustKey4 is like Key4 but panics on error, for tests and
// static initialization.
func MustKey4(s string) Key[V4] {
	k, err := Key4(netip.MustParsePrefix(s))
	if err != nil {
		panic(err)
	}
	return k
}

// MustKey6 is like Key6 but panics on error.
func MustKey6(s string) Key[V6] {
	k, err := Key6(netip.MustParsePrefix(s))
	if err != nil {
		panic(err)
	}
	return k
}
