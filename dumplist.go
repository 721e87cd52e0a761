// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpm

import (
	"bytes"
	"fmt"
	"io"
	"net/netip"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// ListElement is a prefix with its value and the prefixes directly
// covered by it.
type ListElement[V any] struct {
	Cidr    netip.Prefix     `json:"cidr"`
	Value   V                `json:"value"`
	Subnets []ListElement[V] `json:"subnets,omitempty"`
}

// DumpList returns the IPv4 or IPv6 prefixes as a forest, every prefix
// is a subnet of its longest covering prefix. The roots and subnets
// are in CIDR sort order.
func (t *Table[V]) DumpList(is4 bool) []ListElement[V] {
	t.init()

	var flat []ListElement[V]
	if is4 {
		for k, val := range t.four.All() {
			flat = append(flat, ListElement[V]{Cidr: k.Prefix(), Value: val})
		}
	} else {
		for k, val := range t.six.All() {
			flat = append(flat, ListElement[V]{Cidr: k.Prefix(), Value: val})
		}
	}

	var i int
	return nestRec(flat, &i, netip.Prefix{})
}

// nestRec consumes the sorted flat list as long as the items are
// covered by parent. In CIDR sort order all subnets of a prefix
// follow it directly.
func nestRec[V any](flat []ListElement[V], i *int, parent netip.Prefix) (list []ListElement[V]) {
	for *i < len(flat) {
		item := flat[*i]

		if parent.IsValid() && !(parent.Bits() < item.Cidr.Bits() && parent.Contains(item.Cidr.Addr())) {
			return
		}
		*i++

		item.Subnets = nestRec(flat, i, item.Cidr)
		list = append(list, item)
	}
	return
}

// MarshalJSON dumps the table into two lists, for IPv4 and IPv6.
// The subnets are arrays, not maps, because the order matters.
func (t *Table[V]) MarshalJSON() ([]byte, error) {
	result := struct {
		Ipv4 []ListElement[V] `json:"ipv4,omitempty"`
		Ipv6 []ListElement[V] `json:"ipv6,omitempty"`
	}{
		Ipv4: t.DumpList(true),
		Ipv6: t.DumpList(false),
	}

	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(result)
}

// MarshalText implements the [encoding.TextMarshaler] interface,
// just a wrapper for [Table.Fprint].
func (t *Table[V]) MarshalText() ([]byte, error) {
	w := new(bytes.Buffer)
	if err := t.Fprint(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// String returns a hierarchical tree diagram of the ordered CIDRs.
// If Fprint returns an error, String panics.
func (t *Table[V]) String() string {
	w := new(strings.Builder)
	if err := t.Fprint(w); err != nil {
		panic(err)
	}
	return w.String()
}

// Fprint writes a hierarchical tree diagram of the ordered CIDRs
// with default formatted payload V to w. If w is nil, Fprint panics.
//
//	▼
//	├─ 10.0.0.0/8 (V)
//	│  ├─ 10.0.0.0/24 (V)
//	│  └─ 10.0.1.0/24 (V)
//	└─ 192.168.0.0/16 (V)
//	   └─ 192.168.1.0/24 (V)
//	▼
//	└─ ::/0 (V)
//	   └─ 2001:db8::/32 (V)
func (t *Table[V]) Fprint(w io.Writer) error {
	if w == nil {
		panic("nil writer")
	}

	for _, is4 := range []bool{true, false} {
		list := t.DumpList(is4)
		if len(list) == 0 {
			continue
		}

		if _, err := fmt.Fprint(w, "▼\n"); err != nil {
			return err
		}
		if err := fprintRec(w, list, ""); err != nil {
			return err
		}
	}
	return nil
}

func fprintRec[V any](w io.Writer, list []ListElement[V], pad string) error {
	glyphe := "├─ "
	spacer := "│  "

	for i, el := range list {
		// last one is special
		if i == len(list)-1 {
			glyphe = "└─ "
			spacer = "   "
		}

		if _, err := fmt.Fprintf(w, "%s%s (%v)\n", pad+glyphe, el.Cidr, el.Value); err != nil {
			return err
		}

		if err := fprintRec(w, el.Subnets, pad+spacer); err != nil {
			return err
		}
	}
	return nil
}
