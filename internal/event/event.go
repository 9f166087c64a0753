// internal/event/event.go
package event

import (
	"github.com/bethropolis/shade/internal/types"
)

// Type identifies the kind of event.
type Type int

// Define specific event types.
const (
	TypeUnknown Type = iota

	// Highlight engine events
	TypeLinesChanged // Fired when the published highlight of a line range changed

	// Buffer events
	TypeBufferModified // Fired when buffer content changes (insert/delete)
	TypeBufferLoaded   // Fired after a buffer is successfully loaded

	// Theme events
	TypeThemeChanged // Fired when the active theme is replaced (e.g. hot reload)

	// Application lifecycle events
	TypeAppQuit // Fired just before application termination begins
)

// Event is the structure passed through the event bus.
type Event struct {
	Type Type        // The kind of event
	Data interface{} // Payload carrying event-specific data
}

// LinesChangedData carries the affected line range so consumers can redraw
// just those lines.
type LinesChangedData struct {
	Range types.LineRange
}

// BufferModifiedData carries the buffer version after the edit.
type BufferModifiedData struct {
	Version types.Version
}

// BufferLoadedData contains info about the loaded buffer.
type BufferLoadedData struct {
	FilePath string
}

// ThemeChangedData names the theme now in effect.
type ThemeChangedData struct {
	Name string
}
