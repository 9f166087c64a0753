// internal/buffer/line.go
package buffer

import "sync"

// Line is a live descriptor for one buffer line: its current number,
// absolute byte offset and byte length. The owning buffer updates the
// descriptor in place as edits land; once the line it denoted is removed,
// the deleted flag is set and never cleared.
type Line struct {
	mu      sync.RWMutex
	number  int
	offset  int
	length  int
	deleted bool
}

// Number returns the line's current 0-based line number.
func (l *Line) Number() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.number
}

// Bounds returns the line's current absolute byte offset and byte length.
func (l *Line) Bounds() (offset, length int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.offset, l.length
}

// Deleted reports whether the buffer removed the line this descriptor
// denoted.
func (l *Line) Deleted() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.deleted
}

func (l *Line) update(number, offset, length int) {
	l.mu.Lock()
	l.number = number
	l.offset = offset
	l.length = length
	l.mu.Unlock()
}

func (l *Line) markDeleted() {
	l.mu.Lock()
	l.deleted = true
	l.mu.Unlock()
}
