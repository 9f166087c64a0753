// internal/classify/memo.go
package classify

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Memo wraps a Classifier with a content-addressed cache: results are keyed
// by the xxhash digest of the exact range text, so identical content is
// classified once no matter which line or document it appears in. Cached
// spans are stored range-relative and rebased on every hit.
//
// The wrapped Classifier must derive spans from the range bytes alone.
// Backends that read surrounding document context (tree-sitter) would leak
// stale results through the digest key and must not be wrapped; NewBackend
// enforces this.
type Memo struct {
	inner Classifier

	mu      sync.RWMutex
	entries map[uint64][]Span
}

// NewMemo creates a memoizing wrapper around inner.
func NewMemo(inner Classifier) *Memo {
	return &Memo{
		inner:   inner,
		entries: make(map[uint64][]Span),
	}
}

// Spans returns the cached result for the range content, or classifies via
// the wrapped Classifier and caches.
func (m *Memo) Spans(ctx context.Context, text string, offset, length int) ([]Span, error) {
	if offset < 0 || length < 0 || offset+length > len(text) {
		return m.inner.Spans(ctx, text, offset, length)
	}
	digest := xxhash.Sum64String(text[offset : offset+length])

	m.mu.RLock()
	cached, ok := m.entries[digest]
	m.mu.RUnlock()
	if ok {
		return rebase(cached, offset), nil
	}

	spans, err := m.inner.Spans(ctx, text, offset, length)
	if err != nil {
		return nil, err
	}

	rel := make([]Span, len(spans))
	for i, sp := range spans {
		rel[i] = Span{Offset: sp.Offset - offset, Length: sp.Length, Category: sp.Category}
	}
	m.mu.Lock()
	m.entries[digest] = rel
	m.mu.Unlock()

	return spans, nil
}

// rebase copies relative spans back into absolute coordinates.
func rebase(rel []Span, offset int) []Span {
	out := make([]Span, len(rel))
	for i, sp := range rel {
		out[i] = Span{Offset: sp.Offset + offset, Length: sp.Length, Category: sp.Category}
	}
	return out
}

// Len returns the number of cached range results.
func (m *Memo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Export returns a copy of the cache contents (range-relative spans keyed
// by content digest), suitable for persisting.
func (m *Memo) Export() map[uint64][]Span {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[uint64][]Span, len(m.entries))
	for k, v := range m.entries {
		spans := make([]Span, len(v))
		copy(spans, v)
		out[k] = spans
	}
	return out
}

// Import merges previously exported entries into the cache. Existing keys
// are kept; imported duplicates are ignored.
func (m *Memo) Import(entries map[uint64][]Span) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		if _, exists := m.entries[k]; exists {
			continue
		}
		spans := make([]Span, len(v))
		copy(spans, v)
		m.entries[k] = spans
	}
}
