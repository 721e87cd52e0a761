// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpm_test

import (
	"fmt"
	"net/netip"
	"sync"

	"github.com/gaissmai/lpm"
)

var (
	mpa = netip.MustParseAddr
	mpp = netip.MustParsePrefix
)

func ExampleTable_Lookup() {
	rtbl := new(lpm.Table[string])

	rtbl.Insert(mpp("192.168.12.0/24"), "lan")
	rtbl.Insert(mpp("192.168.12.230/32"), "printer")
	rtbl.Insert(mpp("1.1.0.0/16"), "upstream")

	for _, ip := range []string{"192.168.12.230", "192.168.12.100", "1.1.1.1", "1.2.1.1"} {
		val, ok := rtbl.Lookup(mpa(ip))
		fmt.Printf("%-15s %-8s %v\n", ip, val, ok)
	}

	// Output:
	// 192.168.12.230  printer  true
	// 192.168.12.100  lan      true
	// 1.1.1.1         upstream true
	// 1.2.1.1                  false
}

func ExampleTable_All() {
	rtbl, err := lpm.NewTable[int](lpm.WithBackend(lpm.PathBackend))
	if err != nil {
		panic(err)
	}

	for i, s := range []string{"fd00::/16", "10.0.0.0/8", "0.0.0.0/0", "10.0.0.0/16"} {
		rtbl.Insert(mpp(s), i)
	}

	for pfx, val := range rtbl.All() {
		fmt.Println(pfx, val)
	}

	// Output:
	// 0.0.0.0/0 2
	// 10.0.0.0/8 1
	// 10.0.0.0/16 3
	// fd00::/16 0
}

func ExampleNew() {
	e, err := lpm.New[lpm.V6, string](lpm.WithStride(4))
	if err != nil {
		panic(err)
	}

	e.Insert(lpm.MustKey6("fd00::/16"), "ula")
	e.Insert(lpm.MustKey6("642E:ABCE:5A25:B54D:49E3:9FD8::/64"), "net64")

	for _, s := range []string{
		"fd00:fd00::/128",
		"fd01:fd00::/128",
		"642E:ABCE:5A25:B54D:49E3:9FD8:70A2:6A20/128",
	} {
		lpmKey, val, ok := e.LookupLPM(lpm.MustKey6(s))
		fmt.Println(lpmKey, val, ok)
	}
	fmt.Println(e.Stats())

	// Output:
	// fd00::/16 ula true
	// ::/0  false
	// 642e:abce:5a25:b54d::/64 net64 true
	// prefixes: 2, nodes: 21, maxDepth: 16
}

func ExampleSyncTable() {
	st, err := lpm.NewSyncTable[string]()
	if err != nil {
		panic(err)
	}

	var wg sync.WaitGroup

	// concurrent readers never block
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 1_000 {
				st.Lookup(mpa("10.0.0.1"))
			}
		}()
	}

	// batch of changes, one clone
	st.Update(func(tbl *lpm.Table[string]) {
		tbl.Insert(mpp("10.0.0.0/8"), "private")
		tbl.Insert(mpp("0.0.0.0/0"), "default")
	})

	wg.Wait()

	fmt.Println(st.Lookup(mpa("10.0.0.1")))
	fmt.Println(st.Lookup(mpa("8.8.8.8")))

	// Output:
	// private true
	// default true
}
