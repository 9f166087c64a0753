// internal/theme/theme.go
package theme

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/bethropolis/shade/internal/logger"
)

// Theme maps classification categories (and a few UI element names) to
// terminal styles.
type Theme struct {
	Name   string
	IsDark bool
	Styles map[string]tcell.Style
}

// GetStyle resolves a style name with fallback: exact match, then the base
// name before the first dot, then "Default", then the terminal default.
func (t *Theme) GetStyle(name string) tcell.Style {
	if style, ok := t.Styles[name]; ok {
		return style
	}

	if dotIndex := strings.Index(name, "."); dotIndex != -1 {
		baseName := name[:dotIndex]
		if style, ok := t.Styles[baseName]; ok {
			logger.Debugf("Theme '%s': style '%s' not found, using base '%s'", t.Name, name, baseName)
			return style
		}
	}

	if defStyle, ok := t.Styles["Default"]; ok {
		if name != "Default" {
			logger.Debugf("Theme '%s': style '%s' not found, falling back to 'Default'", t.Name, name)
		}
		return defStyle
	}

	logger.Warnf("Theme '%s': style '%s' and 'Default' both missing, using tcell default", t.Name, name)
	return tcell.StyleDefault
}

// ShadeDark is the built-in theme, always available even when no theme
// files can be loaded.
var ShadeDark Theme

func init() {
	background := tcell.NewHexColor(0x2a2f38)
	foreground := tcell.NewHexColor(0xc5cdd9)
	muted := tcell.NewHexColor(0x5c6370)
	orange := tcell.NewHexColor(0xd19a66)
	yellow := tcell.NewHexColor(0xe5c07b)
	green := tcell.NewHexColor(0x98c379)
	cyan := tcell.NewHexColor(0x56b6c2)
	blue := tcell.NewHexColor(0x61afef)
	magenta := tcell.NewHexColor(0xc678dd)

	base := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(foreground)

	ShadeDark = Theme{
		Name:   "Shade Dark",
		IsDark: true,
		Styles: map[string]tcell.Style{
			// UI elements
			"Default":    base,
			"Selection":  base.Reverse(true),
			"StatusBar":  tcell.StyleDefault.Background(background).Foreground(foreground),
			"LineNumber": base.Foreground(muted),

			// Classification categories
			"keyword":     base.Foreground(blue).Bold(true),
			"string":      base.Foreground(green),
			"comment":     base.Foreground(muted).Italic(true),
			"number":      base.Foreground(orange),
			"type":        base.Foreground(cyan),
			"function":    base.Foreground(yellow),
			"constant":    base.Foreground(orange),
			"variable":    base.Foreground(foreground),
			"operator":    base.Foreground(foreground),
			"namespace":   base.Foreground(cyan),
			"property":    base.Foreground(magenta),
			"punctuation": base.Foreground(muted),

			// Common subtypes produced by query captures
			"string.escape":    base.Foreground(magenta),
			"type.builtin":     base.Foreground(cyan).Bold(true),
			"function.builtin": base.Foreground(cyan).Italic(true),
		},
	}
}
