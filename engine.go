// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package lpm

import (
	"fmt"
	"iter"

	"github.com/pkg/errors"

	"github.com/gaissmai/lpm/internal/art"
)

// Engine is the contract of both trie backends, a map keyed by prefix
// with longest-prefix-match lookups.
//
// Engines are safe for concurrent readers, writers must be
// serialized externally, see [SyncTable].
type Engine[W Word[W], V any] interface {
	// Insert stores val for the prefix k and returns the previous value
	// and true if k was already present. An invalid key is a no-op.
	Insert(k Key[W], val V) (old V, existed bool)

	// Lookup returns the value of the longest registered prefix
	// covering k, as subnet or exact match.
	Lookup(k Key[W]) (val V, ok bool)

	// LookupLPM is like Lookup but returns also the matching prefix.
	LookupLPM(k Key[W]) (lpm Key[W], val V, ok bool)

	// Get returns the value for the exact prefix k.
	Get(k Key[W]) (val V, ok bool)

	// Delete removes the exact prefix k and returns its value.
	Delete(k Key[W]) (old V, existed bool)

	// Len returns the number of prefixes.
	Len() int

	// All iterates over all prefixes in CIDR sort order,
	// first by address, then by prefix length.
	All() iter.Seq2[Key[W], V]

	// Stats returns the structural statistics of the trie.
	Stats() Stats

	// Clone returns a copy of the engine, the values are copied by
	// assignment, or deep with Clone if V implements [Cloner].
	Clone() Engine[W, V]
}

// Stats of a trie.
type Stats struct {
	Prefixes int // number of stored prefixes
	Nodes    int // number of allocated trie nodes, the root included
	MaxDepth int // deepest level, in trie levels not in bits
}

func (s Stats) String() string {
	return fmt.Sprintf("prefixes: %d, nodes: %d, maxDepth: %d", s.Prefixes, s.Nodes, s.MaxDepth)
}

// Cloner is an interface, if implemented by payload of type V the values are deeply copied
// during [Engine.Clone].
type Cloner[V any] interface {
	Clone() V
}

// cloneFnFactory returns a func for deep cloning the payload V,
// or nil if V does not implement Cloner.
func cloneFnFactory[V any]() func(V) V {
	var zero V
	// you can't assert directly on a type parameter
	if _, ok := any(zero).(Cloner[V]); ok {
		return cloneVal[V]
	}
	return nil
}

// cloneVal, V must implement Cloner.
func cloneVal[V any](val V) V {
	c, ok := any(val).(Cloner[V])
	if !ok || c == nil {
		return val
	}
	return c.Clone()
}

// Backend selects the trie implementation.
type Backend int

const (
	// StrideBackend is the multibit trie with popcount compressed
	// bitmap nodes, see [StrideTrie].
	StrideBackend Backend = iota

	// PathBackend is the path-compressed binary trie, see [PathTrie].
	PathBackend
)

func (b Backend) String() string {
	switch b {
	case StrideBackend:
		return "stride"
	case PathBackend:
		return "path"
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

// ParseBackend parses the names "stride" and "path".
func ParseBackend(s string) (Backend, error) {
	switch s {
	case "stride":
		return StrideBackend, nil
	case "path":
		return PathBackend, nil
	}
	return 0, errors.Wrapf(ErrInvalidBackend, "%q", s)
}

// DefaultStride is the stride of the zero value [StrideTrie].
const DefaultStride = 8

var (
	// ErrInvalidStride is returned for strides other than 1, 2, 4 or 8.
	ErrInvalidStride = errors.New("invalid stride")

	// ErrInvalidBackend is returned for an unknown backend.
	ErrInvalidBackend = errors.New("invalid backend")
)

// Config for the construction of engines and tables.
// The zero value selects the stride backend with the default stride.
type Config struct {
	Backend Backend `json:"backend"`
	Stride  int     `json:"stride"` // stride backend only, 0 means DefaultStride
}

// Validate the config.
func (c Config) Validate() error {
	switch c.Backend {
	case StrideBackend:
		if c.Stride != 0 && !art.ValidStride(c.Stride) {
			return errors.Wrapf(ErrInvalidStride, "stride %d, want one of 1, 2, 4, 8", c.Stride)
		}
	case PathBackend:
	default:
		return errors.Wrapf(ErrInvalidBackend, "%d", int(c.Backend))
	}
	return nil
}

// Option configures engines and tables.
type Option func(*Config)

// WithBackend selects the trie backend.
func WithBackend(b Backend) Option {
	return func(c *Config) { c.Backend = b }
}

// WithStride sets the stride of the stride backend.
func WithStride(stride int) Option {
	return func(c *Config) { c.Stride = stride }
}

func newConfig(opts []Option) (Config, error) {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg, cfg.Validate()
}

// New returns an empty engine for the configured backend.
func New[W Word[W], V any](opts ...Option) (Engine[W, V], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return newEngine[W, V](cfg), nil
}

// newEngine, cfg must be validated.
func newEngine[W Word[W], V any](cfg Config) Engine[W, V] {
	switch cfg.Backend {
	case PathBackend:
		return new(PathTrie[W, V])
	default:
		return &StrideTrie[W, V]{stride: cfg.Stride}
	}
}
