// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/bethropolis/shade/internal/logger"
)

// Config holds the application's combined configuration.
type Config struct {
	Logger    logger.Config   `toml:"logger"`
	Highlight HighlightConfig `toml:"highlight"`
	Viewer    ViewerConfig    `toml:"viewer"`
	Theme     ThemeConfig     `toml:"theme"`
}

// HighlightConfig tunes the highlight engine.
type HighlightConfig struct {
	// DebounceMs delays recomputation after an edit. 0 uses the default,
	// negative disables the delay entirely.
	DebounceMs int `toml:"debounce_ms"`
	// Workers bounds concurrent classification tasks, 0 means one per CPU.
	Workers int `toml:"workers"`
	// Backend selects the classifier: "chroma" or "treesitter".
	Backend string `toml:"backend"`
	// PersistCache writes the classification memo to disk on exit and
	// reloads it on startup.
	PersistCache bool `toml:"persist_cache"`
}

// ViewerConfig holds display settings for the demo viewer.
type ViewerConfig struct {
	TabWidth        int  `toml:"tab_width"`
	ScrollOff       int  `toml:"scroll_off"`
	SystemClipboard bool `toml:"system_clipboard"`
	LineNumbers     bool `toml:"line_numbers"`
}

// ThemeConfig selects the color theme.
type ThemeConfig struct {
	// Name of the theme to activate; empty keeps the built-in.
	Name string `toml:"name"`
	// Dir overrides the default theme directory.
	Dir string `toml:"dir"`
	// Watch hot-reloads theme files on change.
	Watch bool `toml:"watch"`
}

var (
	loadedConfig *Config
	loadOnce     sync.Once
	loadErr      error
)

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.NewConfig(),
		Highlight: HighlightConfig{
			DebounceMs:   DefaultDebounceMs,
			Workers:      DefaultWorkers,
			Backend:      "treesitter",
			PersistCache: true,
		},
		Viewer: ViewerConfig{
			TabWidth:        DefaultTabWidth,
			ScrollOff:       DefaultScrollOff,
			SystemClipboard: SystemClipboard,
			LineNumbers:     true,
		},
		Theme: ThemeConfig{
			Watch: true,
		},
	}
}

// loadFromFile loads configuration from a TOML file. A missing file is not
// an error; the metadata records which keys the file actually defined.
func loadFromFile(filePath string) (*Config, *toml.MetaData, error) {
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("error checking config file '%s': %w", filePath, err)
	}

	cfg := &Config{}
	metadata, err := toml.DecodeFile(filePath, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	if len(metadata.Undecoded()) > 0 {
		logger.Warnf("Config file '%s': unrecognized keys: %v", filePath, metadata.Undecoded())
	}
	return cfg, &metadata, nil
}

// merge copies onto the defaults exactly the keys the file defined. The
// decode metadata distinguishes an unset key from an explicit zero or false,
// so an absent key can never clobber a default.
func (c *Config) merge(file *Config, md *toml.MetaData) {
	if md.IsDefined("logger", "log_level") {
		c.Logger.LogLevel = file.Logger.LogLevel
	}
	if md.IsDefined("logger", "log_file") {
		c.Logger.LogFilePath = file.Logger.LogFilePath
	}
	if md.IsDefined("logger", "enabled_packages") {
		c.Logger.EnabledPackages = file.Logger.EnabledPackages
	}
	if md.IsDefined("logger", "disabled_packages") {
		c.Logger.DisabledPackages = file.Logger.DisabledPackages
	}

	if md.IsDefined("highlight", "debounce_ms") {
		c.Highlight.DebounceMs = file.Highlight.DebounceMs
	}
	if md.IsDefined("highlight", "workers") {
		c.Highlight.Workers = file.Highlight.Workers
	}
	if md.IsDefined("highlight", "backend") {
		c.Highlight.Backend = file.Highlight.Backend
	}
	if md.IsDefined("highlight", "persist_cache") {
		c.Highlight.PersistCache = file.Highlight.PersistCache
	}

	if md.IsDefined("viewer", "tab_width") {
		c.Viewer.TabWidth = file.Viewer.TabWidth
	}
	if md.IsDefined("viewer", "scroll_off") {
		c.Viewer.ScrollOff = file.Viewer.ScrollOff
	}
	if md.IsDefined("viewer", "system_clipboard") {
		c.Viewer.SystemClipboard = file.Viewer.SystemClipboard
	}
	if md.IsDefined("viewer", "line_numbers") {
		c.Viewer.LineNumbers = file.Viewer.LineNumbers
	}

	if md.IsDefined("theme", "name") {
		c.Theme.Name = file.Theme.Name
	}
	if md.IsDefined("theme", "dir") {
		c.Theme.Dir = file.Theme.Dir
	}
	if md.IsDefined("theme", "watch") {
		c.Theme.Watch = file.Theme.Watch
	}
}

// validate checks config values and resets invalid ones to defaults.
func (c *Config) validate() {
	defaults := NewDefaultConfig()

	if c.Viewer.TabWidth <= 0 {
		c.Viewer.TabWidth = defaults.Viewer.TabWidth
	}
	if c.Viewer.ScrollOff < 0 {
		c.Viewer.ScrollOff = defaults.Viewer.ScrollOff
	}
	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}
	if c.Highlight.Workers < 0 {
		c.Highlight.Workers = defaults.Highlight.Workers
	}
	switch c.Highlight.Backend {
	case "chroma", "treesitter":
	default:
		logger.Warnf("Config: unknown highlight backend '%s', using '%s'", c.Highlight.Backend, defaults.Highlight.Backend)
		c.Highlight.Backend = defaults.Highlight.Backend
	}
}

// LoadConfig orchestrates loading defaults, file, applying flags, and
// validation. Called once, from main.
func LoadConfig(configFilePath string, flags *Flags) (*Config, error) {
	loadOnce.Do(func() {
		cfg := NewDefaultConfig()

		effectivePath := configFilePath
		if effectivePath == "" {
			configDir, err := os.UserConfigDir()
			if err == nil {
				effectivePath = filepath.Join(configDir, ConfigDirName, DefaultConfigFileName)
			}
		}

		if effectivePath != "" {
			fileCfg, md, err := loadFromFile(effectivePath)
			if err != nil {
				loadErr = err
			} else if fileCfg != nil {
				cfg.merge(fileCfg, md)
			}
		}

		if flags != nil {
			flags.ApplyOverrides(cfg)
		}

		cfg.validate()
		loadedConfig = cfg
	})

	return loadedConfig, loadErr
}

// Get returns the loaded application configuration. Panics if LoadConfig
// wasn't called.
func Get() *Config {
	if loadedConfig == nil {
		panic("config.Get() called before config.LoadConfig()")
	}
	return loadedConfig
}
