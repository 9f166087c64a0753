// internal/types/position.go
package types

// Position addresses a point in the buffer for edits.
// Line is the 0-based line index, Col the 0-based byte offset within it.
type Position struct {
	Line int
	Col  int
}
