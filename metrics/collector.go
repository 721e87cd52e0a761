// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package metrics exports the structural statistics of an lpm table
// as prometheus gauges, computed at scrape time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gaissmai/lpm"
)

const (
	labelFamily = "family"
	familyIPv4  = "ipv4"
	familyIPv6  = "ipv6"
)

// Source is implemented by [lpm.Table] and [lpm.SyncTable].
type Source interface {
	Stats4() lpm.Stats
	Stats6() lpm.Stats
}

// Collector is a prometheus.Collector for the stats of a Source.
type Collector struct {
	src Source

	prefixesDesc *prometheus.Desc
	nodesDesc    *prometheus.Desc
	depthDesc    *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a collector for src, the metric names are
// prefixed with namespace, e.g. "routes_prefixes{family="ipv4"}".
// constLabels may be nil.
func NewCollector(namespace string, src Source, constLabels prometheus.Labels) *Collector {
	return &Collector{
		src: src,

		prefixesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "prefixes"),
			"Number of prefixes stored in the table",
			[]string{labelFamily}, constLabels,
		),
		nodesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "nodes"),
			"Number of allocated trie nodes",
			[]string{labelFamily}, constLabels,
		),
		depthDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "max_depth"),
			"Deepest trie level",
			[]string{labelFamily}, constLabels,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.prefixesDesc
	ch <- c.nodesDesc
	ch <- c.depthDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.collectFamily(ch, familyIPv4, c.src.Stats4())
	c.collectFamily(ch, familyIPv6, c.src.Stats6())
}

func (c *Collector) collectFamily(ch chan<- prometheus.Metric, family string, s lpm.Stats) {
	ch <- prometheus.MustNewConstMetric(c.prefixesDesc, prometheus.GaugeValue, float64(s.Prefixes), family)
	ch <- prometheus.MustNewConstMetric(c.nodesDesc, prometheus.GaugeValue, float64(s.Nodes), family)
	ch <- prometheus.MustNewConstMetric(c.depthDesc, prometheus.GaugeValue, float64(s.MaxDepth), family)
}
