// internal/highlight/adapter.go
package highlight

import (
	"context"
	"sort"

	"github.com/bethropolis/shade/internal/buffer"
	"github.com/bethropolis/shade/internal/types"
)

// classifyLine fetches the current text snapshot, classifies exactly the
// line's byte range and resolves the surviving spans to styled sections.
func (c *Cache) classifyLine(ctx context.Context, line *buffer.Line) ([]types.Section, error) {
	text, err := c.src.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	offset, length := line.Bounds()
	// A concurrent edit can leave us holding a line ref whose claimed end
	// lies past the snapshot. Return empty instead of requesting an
	// out-of-bounds range; the newer entry will classify correctly.
	if offset < 0 || offset+length > len(text) {
		return []types.Section{}, nil
	}

	spans, err := c.classifier.Spans(ctx, text, offset, length)
	if err != nil {
		return nil, err
	}

	// Classifiers may return context that bleeds past the line (or overlap
	// captures); drop anything not fully contained, order the rest and keep
	// the first winner at each position.
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Offset != spans[j].Offset {
			return spans[i].Offset < spans[j].Offset
		}
		if spans[i].Length != spans[j].Length {
			return spans[i].Length > spans[j].Length
		}
		return spans[i].Category < spans[j].Category
	})

	sections := make([]types.Section, 0, len(spans))
	end := offset + length
	cursor := offset
	for _, sp := range spans {
		if sp.Length <= 0 || sp.Offset < offset || sp.Offset+sp.Length > end {
			continue
		}
		if sp.Offset < cursor {
			continue // overlaps a span already kept
		}
		sections = append(sections, types.Section{
			Offset: sp.Offset,
			Length: sp.Length,
			Style:  c.styles.StyleFor(sp.Category),
		})
		cursor = sp.Offset + sp.Length
	}
	return sections, nil
}
