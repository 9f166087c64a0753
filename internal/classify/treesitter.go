// internal/classify/treesitter.go
package classify

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	gosrc "github.com/smacker/go-tree-sitter/golang"
)

//go:embed queries/go/highlights.scm
var goHighlightsQuery []byte

// TreeSitter classifies text by parsing the whole snapshot and running a
// highlights query, then filtering captures down to the requested range.
// Parsing is whole-document; the per-range cost is only the capture walk.
type TreeSitter struct {
	mu     sync.Mutex // sitter parsers are single-threaded
	parser *sitter.Parser
	lang   *sitter.Language
	query  []byte
}

// NewTreeSitterGo creates a classifier backed by the Go grammar.
func NewTreeSitterGo() *TreeSitter {
	return &TreeSitter{
		parser: sitter.NewParser(),
		lang:   gosrc.GetLanguage(),
		query:  goHighlightsQuery,
	}
}

// Spans parses text and returns the captures fully contained in
// [offset, offset+length). Capture names map to categories by their base
// name (the part before the first dot).
func (ts *TreeSitter) Spans(ctx context.Context, text string, offset, length int) ([]Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.parser.SetLanguage(ts.lang)
	tree, err := ts.parser.ParseCtx(ctx, nil, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("parsing failed: %w", err)
	}
	defer tree.Close()

	query, err := sitter.NewQuery(ts.query, ts.lang)
	if err != nil {
		return nil, fmt.Errorf("query parse failed: %w", err)
	}
	defer query.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	end := offset + length
	var spans []Span
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		match, exists := qc.NextMatch()
		if !exists {
			break
		}
		for _, capture := range match.Captures {
			node := capture.Node
			start := int(node.StartByte())
			stop := int(node.EndByte())
			if start < offset || stop > end || stop <= start {
				continue
			}
			name := query.CaptureNameForId(capture.Index)
			spans = append(spans, Span{
				Offset:   start,
				Length:   stop - start,
				Category: captureCategory(name),
			})
		}
	}
	return spans, nil
}

// captureCategory maps a capture name like "function.builtin" to its base
// category "function".
func captureCategory(name string) string {
	name = strings.TrimPrefix(name, "@")
	if dot := strings.Index(name, "."); dot != -1 {
		return name[:dot]
	}
	return name
}
