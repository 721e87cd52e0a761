// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"compress/gzip"
	"context"
	"io"
	"math/rand/v2"
	"net/netip"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gaissmai/lpm"
	"github.com/gaissmai/lpm/internal/tests/random"
	"github.com/gaissmai/lpm/metrics"
)

// number of probe addresses cycled by the lookup workers
const numProbes = 1 << 10

type options struct {
	Backend    string `json:"backend"`
	Stride     int    `json:"stride"`
	Prefixes   string `json:"prefixes"`
	Random     int    `json:"random"`
	Seed       uint64 `json:"seed"`
	Lookups    int    `json:"lookups"`
	Workers    int    `json:"workers"`
	CPUProfile string `json:"cpuprofile"`
	Namespace  string `json:"metricsNamespace"`
}

func defaultOptions() options {
	return options{
		Backend:   lpm.StrideBackend.String(),
		Stride:    lpm.DefaultStride,
		Random:    1_000_000,
		Seed:      42,
		Lookups:   10_000_000,
		Workers:   4,
		Namespace: "lpmbench",
	}
}

func (o options) validate() error {
	if o.Workers < 1 {
		return errors.Errorf("workers must be positive, got %d", o.Workers)
	}
	if o.Lookups < 0 {
		return errors.Errorf("lookups must not be negative, got %d", o.Lookups)
	}
	if o.Prefixes == "" && o.Random < 0 {
		return errors.Errorf("random must not be negative, got %d", o.Random)
	}
	return nil
}

type bench struct {
	opts  options
	clock clock.Clock
}

func newBench(o options, clk clock.Clock) *bench {
	return &bench{opts: o, clock: clk}
}

type result struct {
	backend    lpm.Config
	prefixes   int
	insertTime time.Duration
	lookups    int
	hits       int64
	lookupTime time.Duration
	stats4     lpm.Stats
	stats6     lpm.Stats
	reg        *prometheus.Registry
}

// run builds the table and starts the lookup workers.
func (b *bench) run(ctx context.Context) (*result, error) {
	if err := b.opts.validate(); err != nil {
		return nil, err
	}

	backend, err := lpm.ParseBackend(b.opts.Backend)
	if err != nil {
		return nil, err
	}

	st, err := lpm.NewSyncTable[int](lpm.WithBackend(backend), lpm.WithStride(b.opts.Stride))
	if err != nil {
		return nil, err
	}

	prng := rand.New(rand.NewPCG(b.opts.Seed, b.opts.Seed))

	var pfxs []netip.Prefix
	if b.opts.Prefixes != "" {
		if pfxs, err = readPrefixFile(b.opts.Prefixes); err != nil {
			return nil, err
		}
	} else {
		pfxs = random.RealWorldPrefixes(prng, b.opts.Random)
	}
	log.WithField("count", len(pfxs)).Info("prefixes loaded")

	res := &result{
		backend: st.Load().Config(),
		lookups: b.opts.Lookups,
		reg:     prometheus.NewRegistry(),
	}

	// one batch, one clone
	start := b.clock.Now()
	st.Update(func(tbl *lpm.Table[int]) {
		for i, pfx := range pfxs {
			tbl.Insert(pfx, i)
		}
	})
	res.insertTime = b.clock.Since(start)
	res.prefixes = st.Len()

	probes := makeProbes(prng, pfxs)

	start = b.clock.Now()
	if res.hits, err = lookupAll(ctx, st, probes, b.opts.Lookups, b.opts.Workers); err != nil {
		return nil, err
	}
	res.lookupTime = b.clock.Since(start)

	res.stats4, res.stats6 = st.Stats4(), st.Stats6()

	if err := res.reg.Register(metrics.NewCollector(b.opts.Namespace, st, nil)); err != nil {
		return nil, errors.Wrap(err, "register table metrics")
	}

	return res, nil
}

// makeProbes returns random addresses, every second one inside
// a stored prefix.
func makeProbes(prng *rand.Rand, pfxs []netip.Prefix) []netip.Addr {
	probes := make([]netip.Addr, 0, numProbes)
	for i := range numProbes {
		if i%2 == 0 && len(pfxs) > 0 {
			probes = append(probes, pfxs[prng.IntN(len(pfxs))].Addr())
			continue
		}
		probes = append(probes, random.IP(prng))
	}
	return probes
}

// lookupAll spreads n lookups over the workers and returns the number of hits.
func lookupAll(ctx context.Context, st *lpm.SyncTable[int], probes []netip.Addr, n, workers int) (int64, error) {
	var hits atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		count := n / workers
		if w == 0 {
			count += n % workers
		}

		g.Go(func() error {
			var local int64
			for i := range count {
				if i&0xffff == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				if _, ok := st.Lookup(probes[(i+w)%len(probes)]); ok {
					local++
				}
			}
			hits.Add(local)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, errors.Wrap(err, "lookup workers")
	}
	return hits.Load(), nil
}

func (r *result) log() {
	log.WithFields(log.Fields{
		"backend":  r.backend.Backend,
		"stride":   r.backend.Stride,
		"prefixes": r.prefixes,
		"duration": r.insertTime,
	}).Info("insert done")

	fields := log.Fields{
		"lookups":  r.lookups,
		"hits":     r.hits,
		"duration": r.lookupTime,
	}
	if r.lookups > 0 {
		fields["perLookup"] = r.lookupTime / time.Duration(r.lookups)
	}
	log.WithFields(fields).Info("lookups done")

	log.WithField("stats", r.stats4).Info("IPv4 trie")
	log.WithField("stats", r.stats6).Info("IPv6 trie")

	mfs, err := r.reg.Gather()
	if err != nil {
		log.WithError(err).Error("gather table metrics")
		return
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			entry := log.WithField("metric", mf.GetName())
			for _, lp := range m.GetLabel() {
				entry = entry.WithField(lp.GetName(), lp.GetValue())
			}
			entry.Debug(m.GetGauge().GetValue())
		}
	}
}

// readPrefixFile reads the prefixes from path, gzip compressed if
// the name ends with .gz.
func readPrefixFile(path string) ([]netip.Prefix, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		rgz, err := gzip.NewReader(file)
		if err != nil {
			return nil, errors.Wrapf(err, "gzip %s", path)
		}
		defer rgz.Close()
		r = rgz
	}

	pfxs, err := parsePrefixes(r)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return pfxs, nil
}

// parsePrefixes parses one CIDR per line, empty lines and
// lines starting with # are skipped.
func parsePrefixes(r io.Reader) (pfxs []netip.Prefix, err error) {
	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		pfx, err := netip.ParsePrefix(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		pfxs = append(pfxs, pfx.Masked())
	}

	if err = scanner.Err(); err != nil {
		return nil, err
	}
	return pfxs, nil
}
