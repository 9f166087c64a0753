// internal/buffer/buffer.go
package buffer

import (
	"context"

	"github.com/bethropolis/shade/internal/types"
)

// Buffer defines the interface for versioned text buffer operations.
// Every successful mutation produces a new Version; Load starts a new
// lineage so versions across reloads are never equivalent.
type Buffer interface {
	Load(filePath string) error
	Line(index int) ([]byte, error)
	Lines() [][]byte
	LineCount() int
	Insert(pos types.Position, text []byte) error
	Delete(start, end types.Position) error
	Bytes() []byte
	FilePath() string
	IsModified() bool

	// Version returns the token identifying the current buffer state.
	Version() types.Version
	// LineByNumber returns the live descriptor for line n, or nil if n is
	// not an addressable line.
	LineByNumber(n int) *Line
	// Snapshot returns the full buffer text. It may suspend; the returned
	// string is immutable once obtained.
	Snapshot(ctx context.Context) (string, error)
}
