// internal/classify/chroma.go
package classify

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// Chroma classifies text ranges with a chroma lexer picked by filename.
// Tokenization is per-range: only the requested slice is fed to the lexer,
// which keeps cost proportional to the line, not the document.
type Chroma struct {
	mu    sync.Mutex // chroma lexers are not safe for concurrent Tokenise
	lexer chroma.Lexer
}

// NewChroma creates a classifier for the given filename. Falls back to the
// plaintext lexer when no language matches, so it never returns nil.
func NewChroma(filename string) *Chroma {
	lexer := lexers.Match(filename)
	if lexer == nil {
		if ext := filepath.Ext(filename); ext != "" {
			lexer = lexers.Get(ext)
		}
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return &Chroma{lexer: chroma.Coalesce(lexer)}
}

// Spans tokenizes text[offset:offset+length] and maps token types to
// categories. Tokens with no interesting category (plain text, whitespace)
// produce no span.
func (c *Chroma) Spans(ctx context.Context, text string, offset, length int) ([]Span, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 || length < 0 || offset+length > len(text) {
		return nil, fmt.Errorf("range [%d,%d) out of text bounds %d", offset, offset+length, len(text))
	}

	c.mu.Lock()
	iterator, err := c.lexer.Tokenise(nil, text[offset:offset+length])
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("tokenise failed: %w", err)
	}
	tokens := iterator.Tokens()
	c.mu.Unlock()

	var spans []Span
	pos := offset
	for _, tok := range tokens {
		n := len(tok.Value)
		if cat := categoryForToken(tok.Type); cat != "" && n > 0 {
			spans = append(spans, Span{Offset: pos, Length: n, Category: cat})
		}
		pos += n
	}
	return spans, nil
}

// categoryForToken maps a chroma token type to one of our category names,
// or "" for tokens that should stay unstyled.
func categoryForToken(t chroma.TokenType) string {
	switch {
	case t == chroma.KeywordType:
		return CategoryType
	case t.InCategory(chroma.Keyword):
		return CategoryKeyword
	case t.InSubCategory(chroma.LiteralString):
		return CategoryString
	case t.InSubCategory(chroma.LiteralNumber):
		return CategoryNumber
	case t.InCategory(chroma.Comment):
		return CategoryComment
	case t == chroma.NameFunction:
		return CategoryFunction
	case t == chroma.NameClass, t == chroma.NameBuiltin:
		return CategoryType
	case t == chroma.NameConstant:
		return CategoryConstant
	case t == chroma.NameAttribute, t == chroma.NameProperty:
		return CategoryProperty
	case t == chroma.NameNamespace:
		return CategoryNamespace
	case t.InCategory(chroma.Name):
		return CategoryIdentifier
	case t.InCategory(chroma.Operator):
		return CategoryOperator
	case t.InCategory(chroma.Punctuation):
		return CategoryPunctuation
	default:
		return ""
	}
}
