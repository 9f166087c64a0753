// internal/types/section.go
package types

import "github.com/gdamore/tcell/v2"

// Section is one contiguous highlighted sub-range of a line. Offset and
// Length are byte positions within the whole document; a Section never
// crosses the bounds of the line it belongs to. The tcell.Style acts as an
// opaque, comparable color token resolved by the theme.
type Section struct {
	Offset int
	Length int
	Style  tcell.Style
}

// End returns the exclusive end offset of the section.
func (s Section) End() int {
	return s.Offset + s.Length
}

// LineRange is a closed range of line numbers carried by change
// notifications. A single-line change has First == Last.
type LineRange struct {
	First int
	Last  int
}
