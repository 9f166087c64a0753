// internal/theme/manager.go
package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/bethropolis/shade/internal/event"
	"github.com/bethropolis/shade/internal/logger"
)

// Manager holds the loaded themes and the active one. Its StyleFor method
// satisfies the highlight engine's StyleResolver. Published highlight
// results bake resolved styles in, so swapping the active theme dispatches
// TypeThemeChanged and the engine invalidates its cache from that event.
type Manager struct {
	mu        sync.RWMutex
	themes    map[string]*Theme // lowercase name -> theme
	active    *Theme
	themesDir string
	events    *event.Manager
}

// NewManager creates a manager with the built-in theme plus any .toml
// themes found in dir (empty means the default user config location).
// events may be nil when nobody listens for theme changes.
func NewManager(dir string, events *event.Manager) *Manager {
	m := &Manager{
		themes: make(map[string]*Theme),
		events: events,
	}

	if dir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			logger.Warnf("Could not find user config dir, custom themes disabled: %v", err)
		} else {
			dir = filepath.Join(configDir, "shade", "themes")
		}
	}
	m.themesDir = dir

	m.themes[strings.ToLower(ShadeDark.Name)] = &ShadeDark
	m.active = &ShadeDark

	if m.themesDir != "" {
		if err := m.LoadThemesFromDir(); err != nil {
			logger.Errorf("Error loading themes from '%s': %v", m.themesDir, err)
		}
	}

	return m
}

// Dir returns the directory custom themes are loaded from.
func (m *Manager) Dir() string {
	return m.themesDir
}

// LoadThemesFromDir scans the themes directory and (re)loads every .toml
// file in it. Files that fail to parse are skipped.
func (m *Manager) LoadThemesFromDir() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.themesDir == "" {
		return errors.New("theme directory path is not set")
	}

	if _, err := os.Stat(m.themesDir); os.IsNotExist(err) {
		if err := os.MkdirAll(m.themesDir, 0o755); err != nil {
			return fmt.Errorf("failed to create theme dir: %w", err)
		}
		return nil
	}

	files, err := os.ReadDir(m.themesDir)
	if err != nil {
		return fmt.Errorf("failed to read theme directory '%s': %w", m.themesDir, err)
	}

	loaded := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(strings.ToLower(file.Name()), ".toml") {
			continue
		}
		path := filepath.Join(m.themesDir, file.Name())
		t, err := LoadThemeFromFile(path)
		if err != nil {
			logger.Warnf("Failed to load theme from '%s': %v", path, err)
			continue
		}
		m.themes[strings.ToLower(t.Name)] = t
		loaded++
	}
	logger.Debugf("Loaded %d custom themes from '%s'", loaded, m.themesDir)
	return nil
}

// reloadFile re-reads one theme file; if it backs the active theme the new
// definition takes effect immediately. Used by the watcher.
func (m *Manager) reloadFile(path string) {
	t, err := LoadThemeFromFile(path)
	if err != nil {
		logger.Warnf("Theme reload of '%s' failed: %v", path, err)
		return
	}

	m.mu.Lock()
	key := strings.ToLower(t.Name)
	wasActive := m.active != nil && strings.ToLower(m.active.Name) == key
	m.themes[key] = t
	if wasActive {
		m.active = t
	}
	m.mu.Unlock()

	if wasActive {
		logger.Infof("Active theme '%s' reloaded", t.Name)
		m.dispatchChanged(t.Name)
	}
}

// Current returns the active theme, never nil.
func (m *Manager) Current() *Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// StyleFor resolves a classification category against the active theme.
func (m *Manager) StyleFor(category string) tcell.Style {
	return m.Current().GetStyle(category)
}

// SetTheme activates a theme by name (case-insensitive).
func (m *Manager) SetTheme(name string) error {
	m.mu.Lock()
	t, ok := m.themes[strings.ToLower(name)]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("theme '%s' not found", name)
	}
	changed := m.active != t
	if changed {
		m.active = t
	}
	m.mu.Unlock()

	if changed {
		logger.Infof("Active theme set to: %s", t.Name)
		m.dispatchChanged(t.Name)
	}
	return nil
}

// ListThemes returns the loaded theme names, sorted.
func (m *Manager) ListThemes() []string {
	m.mu.RLock()
	names := make([]string, 0, len(m.themes))
	for _, t := range m.themes {
		names = append(names, t.Name)
	}
	m.mu.RUnlock()
	sort.Strings(names)
	return names
}

// GetTheme looks a theme up by name (case-insensitive).
func (m *Manager) GetTheme(name string) (*Theme, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.themes[strings.ToLower(name)]
	return t, ok
}

func (m *Manager) dispatchChanged(name string) {
	if m.events == nil {
		return
	}
	m.events.Dispatch(event.TypeThemeChanged, event.ThemeChangedData{Name: name})
}
