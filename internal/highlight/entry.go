// internal/highlight/entry.go
package highlight

import (
	"context"

	"github.com/bethropolis/shade/internal/buffer"
	"github.com/bethropolis/shade/internal/types"
)

// Entry is the unit owned by one cache slot: the line descriptor it was
// installed for, the buffer version it targets, the sections currently on
// display, and the cancellation signal for its recomputation. Exactly one
// Entry occupies a slot at a time; installing a successor cancels the
// predecessor's context.
type Entry struct {
	line    *buffer.Line
	version types.Version
	// epoch is the cache generation the entry was installed under. Styles
	// are baked into sections at classification time, so a theme change
	// bumps the generation to retire every published result.
	epoch uint64

	// sections and hasPrior are guarded by the owning Cache's mutex.
	// sections starts as the seed (previous result clipped to the new line
	// bounds) and is replaced in place exactly once, by the publisher.
	sections []types.Section
	// hasPrior records whether the seed came from an existing result; a
	// fresh slot always notifies on first publish.
	hasPrior bool

	ctx    context.Context
	cancel context.CancelFunc
}

func newEntry(line *buffer.Line, version types.Version, epoch uint64, seed []types.Section, hasPrior bool) *Entry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Entry{
		line:     line,
		version:  version,
		epoch:    epoch,
		sections: seed,
		hasPrior: hasPrior,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// clipToLine copies the sections that still fit entirely within the line's
// current bounds. Copy-by-value: the seed never aliases the predecessor
// entry's slice.
func clipToLine(sections []types.Section, line *buffer.Line) []types.Section {
	offset, length := line.Bounds()
	out := make([]types.Section, 0, len(sections))
	for _, s := range sections {
		if s.Offset >= offset && s.End() <= offset+length {
			out = append(out, s)
		}
	}
	return out
}
