// Package viewer is a read-mostly terminal file viewer that drives the
// highlight cache: it draws whatever StylesForLine returns right now and
// redraws single lines as recomputed results are published.
package viewer

import (
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"

	"github.com/bethropolis/shade/internal/buffer"
	"github.com/bethropolis/shade/internal/config"
	"github.com/bethropolis/shade/internal/event"
	"github.com/bethropolis/shade/internal/highlight"
	"github.com/bethropolis/shade/internal/logger"
	"github.com/bethropolis/shade/internal/theme"
	"github.com/bethropolis/shade/internal/types"
)

// Viewer owns the terminal screen and the main loop.
type Viewer struct {
	screen *Screen
	buf    *buffer.SliceBuffer
	cache  *highlight.Cache
	themes *theme.Manager
	events *event.Manager
	cfg    config.ViewerConfig

	// mu guards topLine and statusMessage; scrolling happens on the input
	// goroutine while change notifications arrive from the publisher.
	mu            sync.Mutex
	topLine       int // first visible buffer line
	statusMessage string

	quit          chan struct{}
	redrawRequest chan struct{}
}

// New creates a viewer over an already-loaded buffer.
func New(buf *buffer.SliceBuffer, cache *highlight.Cache, themes *theme.Manager, events *event.Manager, cfg config.ViewerConfig) (*Viewer, error) {
	screen, err := NewScreen(themes.StyleFor("Default"))
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		screen:        screen,
		buf:           buf,
		cache:         cache,
		themes:        themes,
		events:        events,
		cfg:           cfg,
		quit:          make(chan struct{}),
		redrawRequest: make(chan struct{}, 1),
	}

	events.Subscribe(event.TypeLinesChanged, v.handleLinesChanged)
	events.Subscribe(event.TypeThemeChanged, v.handleThemeChanged)

	return v, nil
}

// Run starts the event and drawing loops and blocks until quit.
func (v *Viewer) Run() error {
	defer v.screen.Close()

	go v.eventLoop()
	v.requestRedraw()

	for {
		select {
		case <-v.quit:
			v.events.Dispatch(event.TypeAppQuit, nil)
			return nil
		case <-v.redrawRequest:
			v.draw()
		}
	}
}

// eventLoop handles terminal events until the screen is finalized.
func (v *Viewer) eventLoop() {
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return
		}

		needsRedraw := false

		switch eventData := ev.(type) {
		case *tcell.EventResize:
			v.screen.GetScreen().Sync()
			needsRedraw = true
		case *tcell.EventKey:
			needsRedraw = v.handleKey(eventData)
		}

		if needsRedraw {
			v.requestRedraw()
		}
	}
}

func (v *Viewer) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		close(v.quit)
		return false
	case tcell.KeyUp:
		return v.scrollBy(-1)
	case tcell.KeyDown:
		return v.scrollBy(1)
	case tcell.KeyPgUp:
		_, h := v.screen.Size()
		return v.scrollBy(-(h - 1))
	case tcell.KeyPgDn:
		_, h := v.screen.Size()
		return v.scrollBy(h - 1)
	case tcell.KeyHome:
		return v.scrollTo(0)
	case tcell.KeyEnd:
		return v.scrollTo(v.buf.LineCount())
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			close(v.quit)
			return false
		case 'k':
			return v.scrollBy(-1)
		case 'j':
			return v.scrollBy(1)
		case 'g':
			return v.scrollTo(0)
		case 'G':
			return v.scrollTo(v.buf.LineCount())
		case 'y':
			v.copyTopLine()
			return true
		case 'e':
			v.simulateEdit()
			return true
		}
	}
	return false
}

func (v *Viewer) scrollBy(delta int) bool {
	return v.scrollTo(v.top() + delta)
}

func (v *Viewer) scrollTo(line int) bool {
	_, height := v.screen.Size()
	viewHeight := height - 1
	maxTop := v.buf.LineCount() - viewHeight + v.cfg.ScrollOff
	if maxTop < 0 {
		maxTop = 0
	}
	if line > maxTop {
		line = maxTop
	}
	if line < 0 {
		line = 0
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if line == v.topLine {
		return false
	}
	v.topLine = line
	return true
}

func (v *Viewer) top() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.topLine
}

func (v *Viewer) setStatus(format string, args ...interface{}) {
	v.mu.Lock()
	v.statusMessage = fmt.Sprintf(format, args...)
	v.mu.Unlock()
}

// copyTopLine puts the first visible line's text on the clipboard.
func (v *Viewer) copyTopLine() {
	top := v.top()
	lineBytes, err := v.buf.Line(top)
	if err != nil {
		return
	}
	if !v.cfg.SystemClipboard {
		v.setStatus("system clipboard disabled")
		return
	}
	if err := clipboard.WriteAll(string(lineBytes)); err != nil {
		logger.Warnf("Viewer: clipboard write failed: %v", err)
		v.setStatus("clipboard write failed")
		return
	}
	v.setStatus("copied line %d", top+1)
}

// simulateEdit appends a marker to the first visible line, exercising the
// edit-invalidate-recompute path live.
func (v *Viewer) simulateEdit() {
	top := v.top()
	lineBytes, err := v.buf.Line(top)
	if err != nil {
		return
	}
	pos := types.Position{Line: top, Col: len(lineBytes)}
	if err := v.buf.Insert(pos, []byte(" // edited")); err != nil {
		logger.Warnf("Viewer: edit failed: %v", err)
		return
	}
	v.events.Dispatch(event.TypeBufferModified, event.BufferModifiedData{Version: v.buf.Version()})
	v.setStatus("edited line %d", top+1)
}

func (v *Viewer) handleLinesChanged(e event.Event) bool {
	data, ok := e.Data.(event.LinesChangedData)
	if !ok {
		return false
	}
	_, height := v.screen.Size()
	viewHeight := height - 1
	top := v.top()
	// Only published changes inside the viewport warrant a redraw.
	if data.Range.Last < top || data.Range.First >= top+viewHeight {
		return false
	}
	v.requestRedraw()
	return false
}

func (v *Viewer) handleThemeChanged(e event.Event) bool {
	if data, ok := e.Data.(event.ThemeChangedData); ok {
		v.setStatus("theme: %s", data.Name)
	}
	v.requestRedraw()
	return false
}

// requestRedraw sends a redraw signal non-blockingly.
func (v *Viewer) requestRedraw() {
	select {
	case v.redrawRequest <- struct{}{}:
	default: // a redraw is already pending
	}
}
