// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package sparse

import (
	"math/rand/v2"
	"testing"
)

func TestNewArray(t *testing.T) {
	t.Parallel()
	a := new(Array256[int])

	if c := a.Len(); c != 0 {
		t.Errorf("Len, expected 0, got %d", c)
	}
}

func TestSparseArrayCount(t *testing.T) {
	t.Parallel()
	a := new(Array256[int])

	for i := range 255 {
		a.InsertAt(uint(i), i)
		a.InsertAt(uint(i), i)
	}
	if c := a.Len(); c != 255 {
		t.Errorf("Len, expected 255, got %d", c)
	}

	for i := range 128 {
		a.DeleteAt(uint(i))
		a.DeleteAt(uint(i))
	}
	if c := a.Len(); c != 127 {
		t.Errorf("Len, expected 127, got %d", c)
	}
}

func TestSparseArrayGet(t *testing.T) {
	t.Parallel()
	a := new(Array256[int])

	prng := rand.New(rand.NewPCG(42, 42))
	for _, i := range prng.Perm(256) {
		a.InsertAt(uint(i), i)
	}

	for i := range 256 {
		v, ok := a.Get(uint(i))
		if !ok {
			t.Fatalf("Get(%d), expected true, got %v", i, ok)
		}
		if v != i {
			t.Errorf("Get(%d), expected %d, got %d", i, i, v)
		}
		if v = a.MustGet(uint(i)); v != i {
			t.Errorf("MustGet(%d), expected %d, got %d", i, i, v)
		}
	}
}

func TestSparseArrayInsertAtReturnsOld(t *testing.T) {
	t.Parallel()
	a := new(Array256[string])

	if _, exists := a.InsertAt(7, "a"); exists {
		t.Fatal("InsertAt on empty slot, want exists=false")
	}

	old, exists := a.InsertAt(7, "b")
	if !exists || old != "a" {
		t.Errorf("InsertAt overwrite, want (a, true), got (%s, %v)", old, exists)
	}

	if v, _ := a.Get(7); v != "b" {
		t.Errorf("Get after overwrite, want b, got %s", v)
	}
}

func TestSparseArrayDeleteAt(t *testing.T) {
	t.Parallel()
	a := new(Array256[*int])

	one, two := 1, 2
	a.InsertAt(10, &one)
	a.InsertAt(20, &two)

	if _, exists := a.DeleteAt(30); exists {
		t.Error("DeleteAt on missing slot, want false")
	}

	v, exists := a.DeleteAt(10)
	if !exists || *v != 1 {
		t.Errorf("DeleteAt(10), want (1, true), got (%v, %v)", v, exists)
	}

	if a.Test(10) {
		t.Error("bit 10 still set after DeleteAt")
	}

	// the tail must be cleared, no dangling pointer in the backing array
	if tail := a.Items[:cap(a.Items)][1]; tail != nil {
		t.Errorf("tail item not cleared: %v", tail)
	}

	if got := a.MustGet(20); *got != 2 {
		t.Errorf("MustGet(20), want 2, got %d", *got)
	}
}

func TestSparseArrayCopy(t *testing.T) {
	t.Parallel()

	var nilArr *Array256[int]
	if nilArr.Copy() != nil {
		t.Error("Copy of nil array, want nil")
	}

	a := new(Array256[int])
	a.InsertAt(1, 1)
	a.InsertAt(2, 2)

	b := a.Copy()
	b.InsertAt(1, 100)
	b.InsertAt(3, 3)

	if v, _ := a.Get(1); v != 1 {
		t.Errorf("original changed by copy, want 1, got %d", v)
	}
	if a.Test(3) {
		t.Error("original bitset changed by copy")
	}
}

func TestSparseArrayForbidden(t *testing.T) {
	t.Parallel()

	for name, fn := range map[string]func(*Array256[int]){
		"MustSet":   func(a *Array256[int]) { a.MustSet(1) },
		"MustClear": func(a *Array256[int]) { a.MustClear(1) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("%s must panic", name)
				}
			}()
			fn(new(Array256[int]))
		})
	}
}
