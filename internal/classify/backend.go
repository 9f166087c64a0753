// internal/classify/backend.go
package classify

import "path/filepath"

// NewBackend builds the classifier for a backend name ("treesitter" or
// "chroma") and filename, returning the effective backend name, the
// classifier to use, and the memo when memoization applies. The tree-sitter
// grammar only covers Go, so other files fall back to chroma.
//
// Only chroma is wrapped in a Memo. Chroma tokenizes the range from its bytes
// alone, so content-addressed reuse is sound. Tree-sitter parses the whole
// document: a block comment or raw string opened above a line changes the
// line's spans without changing its bytes, so serving its results by range
// digest would keep stale spans alive after such an edit.
func NewBackend(backend, filename string) (string, Classifier, *Memo) {
	if backend == "treesitter" && filepath.Ext(filename) != ".go" {
		backend = "chroma"
	}

	if backend == "treesitter" {
		return backend, NewTreeSitterGo(), nil
	}
	memo := NewMemo(NewChroma(filename))
	return "chroma", memo, memo
}
