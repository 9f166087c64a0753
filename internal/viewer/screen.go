// internal/viewer/screen.go
package viewer

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// Screen wraps the tcell screen behind the small surface the viewer needs.
type Screen struct {
	screen tcell.Screen
}

// NewScreen creates and initializes the terminal screen.
func NewScreen(defStyle tcell.Style) (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create tcell screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize tcell screen: %w", err)
	}
	s.SetStyle(defStyle)
	s.HideCursor()
	return &Screen{screen: s}, nil
}

// Close finalizes the tcell screen.
func (s *Screen) Close() {
	if s.screen != nil {
		s.screen.Fini()
	}
}

// PollEvent retrieves the next terminal event.
func (s *Screen) PollEvent() tcell.Event {
	return s.screen.PollEvent()
}

// Clear clears the entire screen.
func (s *Screen) Clear() {
	s.screen.Clear()
}

// Show makes pending changes visible.
func (s *Screen) Show() {
	s.screen.Show()
}

// Size returns the terminal dimensions.
func (s *Screen) Size() (int, int) {
	return s.screen.Size()
}

// GetScreen provides direct access for drawing.
func (s *Screen) GetScreen() tcell.Screen {
	return s.screen
}
