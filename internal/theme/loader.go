// internal/theme/loader.go
package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gdamore/tcell/v2"

	"github.com/bethropolis/shade/internal/logger"
)

// tomlStyleDef is one style definition in a theme file. Pointers so that
// unset attributes inherit instead of overriding.
type tomlStyleDef struct {
	Fg        *string `toml:"fg"`
	Bg        *string `toml:"bg"`
	Bold      *bool   `toml:"bold"`
	Italic    *bool   `toml:"italic"`
	Underline *bool   `toml:"underline"`
	Reverse   *bool   `toml:"reverse"`
}

type tomlTheme struct {
	Name   string                  `toml:"name"`
	IsDark bool                    `toml:"is_dark"`
	Styles map[string]tomlStyleDef `toml:"styles"`
}

// LoadThemeFromFile parses a TOML theme file. Non-"Default" styles inherit
// unset attributes from the file's Default style.
func LoadThemeFromFile(filePath string) (*Theme, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file '%s': %w", filePath, err)
	}

	var parsed tomlTheme
	metadata, err := toml.Decode(string(data), &parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse theme file '%s': %w", filePath, err)
	}
	if len(metadata.Undecoded()) > 0 {
		logger.Warnf("Theme '%s': unrecognized keys in '%s': %v", parsed.Name, filePath, metadata.Undecoded())
	}

	if parsed.Name == "" {
		parsed.Name = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
		logger.Debugf("Theme file '%s' missing 'name', using filename '%s'", filePath, parsed.Name)
	}

	t := &Theme{
		Name:   parsed.Name,
		IsDark: parsed.IsDark,
		Styles: make(map[string]tcell.Style),
	}

	base := tcell.StyleDefault
	if def, ok := parsed.Styles["Default"]; ok {
		var parseErr error
		base, parseErr = convertTomlStyle(def, tcell.StyleDefault)
		if parseErr != nil {
			logger.Warnf("Theme '%s': bad 'Default' style, using tcell default as base: %v", t.Name, parseErr)
			base = tcell.StyleDefault
		}
	}
	t.Styles["Default"] = base

	for name, def := range parsed.Styles {
		if name == "Default" {
			continue
		}
		style, err := convertTomlStyle(def, base)
		if err != nil {
			logger.Warnf("Theme '%s': bad style '%s', skipping: %v", t.Name, name, err)
			continue
		}
		t.Styles[name] = style
	}

	logger.Debugf("Loaded theme '%s' from '%s'", t.Name, filePath)
	return t, nil
}

func convertTomlStyle(def tomlStyleDef, base tcell.Style) (tcell.Style, error) {
	style := base

	if def.Fg != nil {
		color, err := parseColorString(*def.Fg)
		if err != nil {
			return style, fmt.Errorf("invalid foreground color '%s': %w", *def.Fg, err)
		}
		style = style.Foreground(color)
	}
	if def.Bg != nil {
		color, err := parseColorString(*def.Bg)
		if err != nil {
			return style, fmt.Errorf("invalid background color '%s': %w", *def.Bg, err)
		}
		style = style.Background(color)
	}
	if def.Bold != nil {
		style = style.Bold(*def.Bold)
	}
	if def.Italic != nil {
		style = style.Italic(*def.Italic)
	}
	if def.Underline != nil {
		style = style.Underline(*def.Underline)
	}
	if def.Reverse != nil {
		style = style.Reverse(*def.Reverse)
	}

	return style, nil
}

// parseColorString accepts #RRGGBB hex codes plus the keywords "reset" and
// "default".
func parseColorString(s string) (tcell.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "#") {
		if len(s) != 7 {
			return tcell.ColorDefault, fmt.Errorf("invalid hex color '%s', must be #RRGGBB", s)
		}
		val, err := strconv.ParseInt(s[1:], 16, 32)
		if err != nil {
			return tcell.ColorDefault, fmt.Errorf("invalid hex value '%s': %w", s, err)
		}
		return tcell.NewHexColor(int32(val)), nil
	}
	if s == "reset" {
		return tcell.ColorReset, nil
	}
	if s == "default" {
		return tcell.ColorDefault, nil
	}
	return tcell.ColorDefault, fmt.Errorf("unknown color format or name '%s'", s)
}
