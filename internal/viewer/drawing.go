// internal/viewer/drawing.go
package viewer

import (
	"fmt"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// draw repaints the whole viewport from the current cache state. Stale
// lines come back as their clipped previous result; the publisher's change
// events trigger another draw once fresh results land.
func (v *Viewer) draw() {
	screen := v.screen.GetScreen()
	width, height := v.screen.Size()
	viewHeight := height - 1
	if viewHeight <= 0 || width <= 0 {
		return
	}

	defaultStyle := v.themes.StyleFor("Default")
	gutterStyle := v.themes.StyleFor("LineNumber")

	v.mu.Lock()
	top := v.topLine
	status := v.statusMessage
	v.mu.Unlock()

	v.screen.Clear()

	lineCount := v.buf.LineCount()
	gutterWidth := 0
	maxDigits := 0
	if v.cfg.LineNumbers {
		maxDigits = len(strconv.Itoa(lineCount))
		gutterWidth = maxDigits + 1
		if gutterWidth >= width {
			gutterWidth = 0
		}
	}

	for screenY := 0; screenY < viewHeight; screenY++ {
		idx := top + screenY
		if idx >= lineCount {
			break
		}

		if gutterWidth > 0 {
			num := fmt.Sprintf("%*d", maxDigits, idx+1)
			for i, r := range num {
				screen.SetContent(i, screenY, r, nil, gutterStyle)
			}
		}

		v.drawLine(screen, screenY, idx, width, gutterWidth, defaultStyle)
	}

	v.drawStatusLine(screen, width, height, top, lineCount, status)
	v.screen.Show()
}

// drawLine renders one buffer line, resolving each grapheme cluster's style
// from the cache's current sections for that line.
func (v *Viewer) drawLine(screen tcell.Screen, screenY, idx, width, gutterWidth int, defaultStyle tcell.Style) {
	lineBytes, err := v.buf.Line(idx)
	if err != nil {
		return
	}

	lineOffset := 0
	if meta := v.buf.LineByNumber(idx); meta != nil {
		lineOffset, _ = meta.Bounds()
	}
	sections := v.cache.StylesForLine(idx)

	gr := uniseg.NewGraphemes(string(lineBytes))
	screenX := gutterWidth
	byteIdx := lineOffset
	secIdx := 0

	for gr.Next() && screenX < width {
		cluster := gr.Str()
		clusterWidth := gr.Width()
		runes := gr.Runes()

		// Advance past sections that end before this cluster; sections are
		// ordered and non-overlapping.
		for secIdx < len(sections) && sections[secIdx].End() <= byteIdx {
			secIdx++
		}
		style := defaultStyle
		if secIdx < len(sections) && byteIdx >= sections[secIdx].Offset {
			style = sections[secIdx].Style
		}

		if runes[0] == '\t' {
			spaces := v.cfg.TabWidth - ((screenX - gutterWidth) % v.cfg.TabWidth)
			for i := 0; i < spaces && screenX < width; i++ {
				screen.SetContent(screenX, screenY, ' ', nil, style)
				screenX++
			}
		} else {
			screen.SetContent(screenX, screenY, runes[0], runes[1:], style)
			for cw := 1; cw < clusterWidth && screenX+cw < width; cw++ {
				screen.SetContent(screenX+cw, screenY, ' ', nil, style)
			}
			screenX += clusterWidth
		}

		byteIdx += len(cluster)
	}
}

// drawStatusLine paints the bottom bar: file info on the left, position and
// theme on the right.
func (v *Viewer) drawStatusLine(screen tcell.Screen, width, height, top, lineCount int, status string) {
	barStyle := v.themes.StyleFor("StatusBar")
	y := height - 1

	for x := 0; x < width; x++ {
		screen.SetContent(x, y, ' ', nil, barStyle)
	}

	left := v.buf.FilePath()
	if left == "" {
		left = "[no file]"
	}
	if v.buf.IsModified() {
		left += " [+]"
	}
	if status != "" {
		left += "  " + status
	}

	right := fmt.Sprintf("%d/%d  %s", top+1, lineCount, v.themes.Current().Name)

	// Truncate the left text so the right side always fits.
	avail := width - runewidth.StringWidth(right) - 1
	if avail < 0 {
		avail = 0
	}
	left = runewidth.Truncate(left, avail, "…")

	x := 0
	for _, r := range left {
		screen.SetContent(x, y, r, nil, barStyle)
		x += runewidth.RuneWidth(r)
	}
	x = width - runewidth.StringWidth(right)
	for _, r := range right {
		if x >= 0 {
			screen.SetContent(x, y, r, nil, barStyle)
		}
		x += runewidth.RuneWidth(r)
	}
}
