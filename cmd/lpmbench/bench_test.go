// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package main

import (
	"compress/gzip"
	"context"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaissmai/lpm"
)

const prefixList = `
# default routes
0.0.0.0/0
::/0

10.1.2.3/8
2001:db8::/32
`

func TestParsePrefixes(t *testing.T) {
	t.Parallel()

	pfxs, err := parsePrefixes(strings.NewReader(prefixList))
	require.NoError(t, err)

	want := []netip.Prefix{
		netip.MustParsePrefix("0.0.0.0/0"),
		netip.MustParsePrefix("::/0"),
		netip.MustParsePrefix("10.0.0.0/8"), // masked
		netip.MustParsePrefix("2001:db8::/32"),
	}
	assert.Equal(t, want, pfxs)

	_, err = parsePrefixes(strings.NewReader("10.0.0.0/8\nfoo\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadPrefixFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	plain := filepath.Join(dir, "prefixes.txt")
	require.NoError(t, os.WriteFile(plain, []byte(prefixList), 0o644))

	zipped := filepath.Join(dir, "prefixes.txt.gz")
	f, err := os.Create(zipped)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(prefixList))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	got1, err := readPrefixFile(plain)
	require.NoError(t, err)
	got2, err := readPrefixFile(zipped)
	require.NoError(t, err)

	assert.Len(t, got1, 4)
	assert.Equal(t, got1, got2)

	_, err = readPrefixFile(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	o := defaultOptions()
	require.NoError(t, o.validate())

	o.Workers = 0
	require.Error(t, o.validate())

	o = defaultOptions()
	o.Lookups = -1
	require.Error(t, o.validate())
}

func TestBenchRunFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "prefixes.txt")
	require.NoError(t, os.WriteFile(file, []byte(prefixList), 0o644))

	for _, backend := range []string{"stride", "path"} {
		t.Run(backend, func(t *testing.T) {
			t.Parallel()

			o := defaultOptions()
			o.Backend = backend
			o.Prefixes = file
			o.Lookups = 10_000
			o.Workers = 3

			mock := clock.NewMock()
			res, err := newBench(o, mock).run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, 4, res.prefixes)
			assert.Equal(t, 2, res.stats4.Prefixes)
			assert.Equal(t, 2, res.stats6.Prefixes)

			// default routes for both families, every probe hits
			assert.Equal(t, int64(10_000), res.hits)

			// the mock clock never advances
			assert.Equal(t, time.Duration(0), res.insertTime)
			assert.Equal(t, time.Duration(0), res.lookupTime)

			mfs, err := res.reg.Gather()
			require.NoError(t, err)
			assert.Len(t, mfs, 3)

			res.log()
		})
	}
}

func TestBenchRunRandom(t *testing.T) {
	t.Parallel()

	o := defaultOptions()
	o.Backend = "path"
	o.Random = 1_000
	o.Lookups = 1_000
	o.Workers = 2

	res, err := newBench(o, clock.NewMock()).run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1_000, res.prefixes)
	assert.Equal(t, lpm.PathBackend, res.backend.Backend)

	// every second probe is inside a stored prefix
	assert.GreaterOrEqual(t, res.hits, int64(500))
}

func TestBenchRunErrors(t *testing.T) {
	t.Parallel()

	o := defaultOptions()
	o.Backend = "radix"
	_, err := newBench(o, clock.NewMock()).run(context.Background())
	require.ErrorIs(t, err, lpm.ErrInvalidBackend)

	o = defaultOptions()
	o.Stride = 3
	_, err = newBench(o, clock.NewMock()).run(context.Background())
	require.ErrorIs(t, err, lpm.ErrInvalidStride)

	o = defaultOptions()
	o.Random = 100
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newBench(o, clock.NewMock()).run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
