// Package cache implements the two-namespace TTL key/value store used by the
// pipeline: one namespace for fetched pages, one for extraction results.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/apiscout/apiscout/internal/metrics"
	"github.com/apiscout/apiscout/internal/scout"
)

// Namespace separates independent cache key spaces.
type Namespace string

// The two namespaces the pipeline uses.
const (
	NamespacePages       Namespace = "pages"
	NamespaceExtractions Namespace = "extractions"
)

// Entry is one stored payload with its write time and lifetime. A read after
// CreatedAt+TTL is treated as a miss.
type Entry struct {
	Payload   []byte
	CreatedAt time.Time
	TTL       time.Duration
}

// Backend is the physical store behind the Store. A Set on an existing key
// overwrites (refresh semantics). Implementations must be safe for concurrent
// use; writes are atomic per key.
type Backend interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry) error
	Count(ctx context.Context, prefix string) (int, error)
	Close() error
}

// Options controls Store behavior.
type Options struct {
	TTL                time.Duration
	PagesEnabled       bool
	ExtractionsEnabled bool
	Clock              scout.Clock
}

// Store is the namespaced TTL cache handed to every stage that needs one.
// Constructed explicitly at pipeline start and closed by the caller; there is
// no ambient singleton. After the first backend failure the store degrades to
// disabled for the remainder of the run: reads miss, writes no-op.
type Store struct {
	backend  Backend
	opts     Options
	logger   *zap.Logger
	degraded atomic.Bool
}

// Stats reports per-namespace entry counts for the terminal summary.
type Stats struct {
	PageEntries       int  `json:"page_entries"`
	ExtractionEntries int  `json:"extraction_entries"`
	Degraded          bool `json:"degraded"`
}

// New builds a Store over the given backend.
func New(backend Backend, opts Options, logger *zap.Logger) *Store {
	if opts.Clock == nil {
		opts.Clock = scout.SystemClock{}
	}
	return &Store{
		backend: backend,
		opts:    opts,
		logger:  logger,
	}
}

// URLKey derives a page-cache key from a normalized URL.
func URLKey(normalizedURL string) string {
	sum := sha256.Sum256([]byte(normalizedURL))
	return hex.EncodeToString(sum[:])
}

// ContentKey derives an extraction-cache key from cleaned page text. Keys are
// content-based so mirrored pages with identical text share one entry.
func ContentKey(cleanedText string) string {
	sum := sha256.Sum256([]byte(cleanedText))
	return hex.EncodeToString(sum[:])
}

func (s *Store) enabled(ns Namespace) bool {
	if s == nil || s.backend == nil || s.degraded.Load() {
		return false
	}
	switch ns {
	case NamespacePages:
		return s.opts.PagesEnabled
	case NamespaceExtractions:
		return s.opts.ExtractionsEnabled
	default:
		return false
	}
}

func (s *Store) qualify(ns Namespace, key string) string {
	return string(ns) + ":" + key
}

func (s *Store) degrade(err error) {
	if s.degraded.CompareAndSwap(false, true) {
		s.logger.Warn("cache backend failed; disabling cache for this run", zap.Error(err))
	}
}

// Get returns the payload stored under key in the namespace, or a miss when
// the key is absent, expired, or the namespace is disabled.
func (s *Store) Get(ctx context.Context, ns Namespace, key string) ([]byte, bool) {
	if !s.enabled(ns) {
		return nil, false
	}
	entry, ok, err := s.backend.Get(ctx, s.qualify(ns, key))
	if err != nil {
		s.degrade(&scout.CacheError{Op: "get", Key: key, Err: err})
		return nil, false
	}
	if !ok {
		metrics.CacheMisses.WithLabelValues(string(ns)).Inc()
		return nil, false
	}
	if s.opts.Clock.Now().After(entry.CreatedAt.Add(entry.TTL)) {
		metrics.CacheMisses.WithLabelValues(string(ns)).Inc()
		return nil, false
	}
	metrics.CacheHits.WithLabelValues(string(ns)).Inc()
	return entry.Payload, true
}

// Set stores payload under key in the namespace, overwriting any previous
// entry for that key.
func (s *Store) Set(ctx context.Context, ns Namespace, key string, payload []byte) {
	if !s.enabled(ns) {
		return
	}
	entry := Entry{
		Payload:   payload,
		CreatedAt: s.opts.Clock.Now(),
		TTL:       s.opts.TTL,
	}
	if err := s.backend.Set(ctx, s.qualify(ns, key), entry); err != nil {
		s.degrade(&scout.CacheError{Op: "set", Key: key, Err: err})
	}
}

// Stats counts live entries per namespace.
func (s *Store) Stats(ctx context.Context) Stats {
	st := Stats{Degraded: s.degraded.Load()}
	if s.backend == nil || st.Degraded {
		return st
	}
	if n, err := s.backend.Count(ctx, string(NamespacePages)+":"); err == nil {
		st.PageEntries = n
	}
	if n, err := s.backend.Count(ctx, string(NamespaceExtractions)+":"); err == nil {
		st.ExtractionEntries = n
	}
	return st
}

// Close releases the backend.
func (s *Store) Close() error {
	if s == nil || s.backend == nil {
		return nil
	}
	return s.backend.Close()
}
