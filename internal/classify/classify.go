// Package classify turns text ranges into categorized spans. Implementations
// wrap concrete lexers/parsers; the highlight engine consumes them through
// the Classifier interface and never depends on a specific backend.
package classify

import "context"

// Span is one categorized sub-range of the classified text. Offset and
// Length are byte positions in the same coordinate space as the requested
// range (absolute document offsets).
type Span struct {
	Offset   int    `msgpack:"o"`
	Length   int    `msgpack:"l"`
	Category string `msgpack:"c"`
}

// Categories produced by the built-in classifiers. Themes map these to
// styles; unknown categories fall back to the theme default.
const (
	CategoryKeyword     = "keyword"
	CategoryIdentifier  = "variable"
	CategoryFunction    = "function"
	CategoryType        = "type"
	CategoryString      = "string"
	CategoryNumber      = "number"
	CategoryComment     = "comment"
	CategoryOperator    = "operator"
	CategoryPunctuation = "punctuation"
	CategoryConstant    = "constant"
	CategoryProperty    = "property"
	CategoryNamespace   = "namespace"
)

// Classifier computes categorized spans for the byte range
// [offset, offset+length) of text. Implementations must honor ctx at every
// blocking step and may return spans in any order; callers are responsible
// for clipping spans that leak outside the requested range.
type Classifier interface {
	Spans(ctx context.Context, text string, offset, length int) ([]Span, error)
}

// Func adapts a plain function to the Classifier interface.
type Func func(ctx context.Context, text string, offset, length int) ([]Span, error)

// Spans implements Classifier.
func (f Func) Spans(ctx context.Context, text string, offset, length int) ([]Span, error) {
	return f(ctx, text, offset, length)
}
