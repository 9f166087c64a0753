// Package highlight maintains a per-line cache of syntax highlight results
// that is recomputed asynchronously as the buffer changes. Reads are always
// synchronous and non-blocking: a stale line immediately returns its
// previous result clipped to the current line bounds while a cancellable
// background task races to replace it. Consumers learn about replacements
// through TypeLinesChanged events, fired only when the visible result
// actually changed.
package highlight

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/semaphore"

	"github.com/bethropolis/shade/internal/buffer"
	"github.com/bethropolis/shade/internal/classify"
	"github.com/bethropolis/shade/internal/event"
	"github.com/bethropolis/shade/internal/types"
)

// DefaultDebounce is the idle delay before a stale line is recomputed, so
// rapid typing doesn't flood the classifier. Purely a throttle; zero is
// also correct.
const DefaultDebounce = 65 * time.Millisecond

// Source is the narrow buffer contract the engine depends on.
type Source interface {
	Version() types.Version
	LineByNumber(n int) *buffer.Line
	Snapshot(ctx context.Context) (string, error)
}

// StyleResolver maps a classification category to a display style.
type StyleResolver interface {
	StyleFor(category string) tcell.Style
}

// Options tunes the engine.
type Options struct {
	// Debounce is the idle delay before a recomputation starts. Negative
	// disables the delay; zero means DefaultDebounce.
	Debounce time.Duration
	// Workers bounds concurrent classification tasks. <= 0 means NumCPU.
	Workers int64
}

type publishReq struct {
	entry    *Entry
	line     int
	sections []types.Section
}

// Cache is the versioned line cache. One slot per line number; each slot
// holds at most one Entry tagged with the buffer version it was computed
// against.
type Cache struct {
	src        Source
	classifier classify.Classifier
	styles     StyleResolver
	notifier   *Notifier
	debounce   time.Duration
	sem        *semaphore.Weighted

	mu       sync.Mutex
	slots    []*Entry
	epoch    uint64
	disposed bool

	publishCh chan publishReq
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewCache creates the engine and starts its publisher goroutine, the
// single consumer-facing worker that serializes every publish and
// notification across all lines.
func NewCache(src Source, classifier classify.Classifier, styles StyleResolver, events *event.Manager, opts Options) *Cache {
	debounce := opts.Debounce
	switch {
	case debounce == 0:
		debounce = DefaultDebounce
	case debounce < 0:
		debounce = 0
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = int64(runtime.NumCPU())
	}

	c := &Cache{
		src:        src,
		classifier: classifier,
		styles:     styles,
		notifier:   NewNotifier(events),
		debounce:   debounce,
		sem:        semaphore.NewWeighted(workers),
		publishCh:  make(chan publishReq, 16),
		done:       make(chan struct{}),
	}
	c.wg.Add(1)
	go c.publishLoop()

	// Published sections carry resolved styles, so a theme switch has to
	// retire every cached result, not just repaint.
	if events != nil {
		events.Subscribe(event.TypeThemeChanged, func(event.Event) bool {
			c.InvalidateAll()
			return false
		})
	}
	return c
}

// StylesForLine returns the current best-known highlight of line n,
// synchronously. A version-equivalent cached result is returned unchanged.
// Otherwise the slot's previous recomputation is cancelled, a new entry
// seeded from the previous result is installed and scheduled, and the seed
// is returned immediately.
//
// n must denote an addressable line in the current buffer; anything else is
// a caller bug and yields nil.
func (c *Cache) StylesForLine(n int) []types.Section {
	c.mu.Lock()
	if c.disposed || n < 0 {
		c.mu.Unlock()
		return nil
	}

	for len(c.slots) <= n {
		c.slots = append(c.slots, nil)
	}

	current := c.src.Version()
	if e := c.slots[n]; e != nil && e.epoch == c.epoch && e.version.Equivalent(current) {
		sections := e.sections
		c.mu.Unlock()
		return sections
	}

	line := c.src.LineByNumber(n)
	if line == nil {
		c.mu.Unlock()
		return nil
	}

	var seed []types.Section
	hasPrior := false
	if old := c.slots[n]; old != nil {
		old.cancel()
		seed = clipToLine(old.sections, line)
		hasPrior = true
	}

	e := newEntry(line, current, c.epoch, seed, hasPrior)
	c.slots[n] = e
	c.trimDeletedTailLocked()
	c.mu.Unlock()

	go c.recompute(e, n)
	return seed
}

// trimDeletedTailLocked drops trailing slots whose entries denote deleted
// lines, stopping at the first live or empty slot. Bounds the cache to the
// buffer's current line count plus in-flight entries. Caller holds c.mu.
func (c *Cache) trimDeletedTailLocked() {
	for len(c.slots) > 0 {
		e := c.slots[len(c.slots)-1]
		if e == nil || !e.line.Deleted() {
			break
		}
		e.cancel()
		c.slots = c.slots[:len(c.slots)-1]
	}
}

// InvalidateAll retires every cached result by advancing the cache
// generation. Entries stay in place, so the next request per line still
// returns the old sections as its seed while a recomputation re-resolves the
// styles; in-flight results from the previous generation are discarded at
// publish time.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.epoch++
}

// Len returns the current backing store length (slots, not live results).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}

// Dispose clears all slots and best-effort-cancels outstanding
// recomputations. The cache must not be used afterwards.
func (c *Cache) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	for _, e := range c.slots {
		if e != nil {
			e.cancel()
		}
	}
	c.slots = nil
	c.mu.Unlock()

	close(c.done)
	c.wg.Wait()
}
