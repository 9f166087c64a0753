// internal/highlight/pipeline.go
package highlight

import (
	"context"
	"errors"
	"time"

	"github.com/bethropolis/shade/internal/logger"
)

// recompute is the background body of one entry's lifecycle:
// debounce, acquire a worker, re-validate, classify, hand off to the
// publisher. Cancellation and staleness are expected outcomes and exit
// silently; the slot keeps showing the seed until a successor publishes.
func (c *Cache) recompute(e *Entry, n int) {
	if c.debounce > 0 {
		timer := time.NewTimer(c.debounce)
		select {
		case <-timer.C:
		case <-e.ctx.Done():
			timer.Stop()
			return
		case <-c.done:
			timer.Stop()
			return
		}
	}

	if err := c.sem.Acquire(e.ctx, 1); err != nil {
		return // cancelled while waiting for a worker
	}
	defer c.sem.Release(1)

	if e.ctx.Err() != nil {
		return
	}

	// The buffer may have moved on while we were queued. The slot then
	// already holds (or will hold) a newer entry running its own pipeline;
	// finishing this one would be redundant.
	if !e.version.Equivalent(c.src.Version()) {
		return
	}

	sections, err := c.classifyLine(e.ctx, e.line)
	if err != nil {
		if errors.Is(err, context.Canceled) || e.ctx.Err() != nil {
			return
		}
		// Collaborator failure: keep the last good result, a future edit
		// will retry naturally.
		logger.Warnf("Highlight: classification of line %d failed: %v", n, err)
		return
	}

	// A cancellation may have arrived during classification.
	if e.ctx.Err() != nil {
		return
	}

	select {
	case c.publishCh <- publishReq{entry: e, line: n, sections: sections}:
	case <-e.ctx.Done():
	case <-c.done:
	}
}

// publishLoop is the single consumer-facing goroutine. All mutation of
// published sections and all change notifications happen here, serializing
// publishes across lines even though classification runs concurrently.
func (c *Cache) publishLoop() {
	defer c.wg.Done()
	for {
		select {
		case req := <-c.publishCh:
			c.publish(req)
		case <-c.done:
			return
		}
	}
}

// publish installs a computed result into its entry, unless the entry was
// superseded while the request sat in the queue.
func (c *Cache) publish(req publishReq) {
	c.mu.Lock()
	if c.disposed || req.line >= len(c.slots) || c.slots[req.line] != req.entry {
		c.mu.Unlock()
		return
	}
	// An edit or a theme change may have landed after classification but
	// before the next request installed a successor. The result is already
	// stale; never let it overwrite the slot.
	if req.entry.epoch != c.epoch || !req.entry.version.Equivalent(c.src.Version()) {
		c.mu.Unlock()
		return
	}
	e := req.entry
	old, hadPrior := e.sections, e.hasPrior
	e.sections = req.sections
	e.hasPrior = true
	c.mu.Unlock()

	if hadPrior {
		c.notifier.NotifyIfChanged(req.line, old, req.sections)
	} else {
		c.notifier.NotifyChanged(req.line)
	}
}
