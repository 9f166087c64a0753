// internal/config/flags.go
package config

import (
	"flag"
	"fmt"
	"strings"
)

// Flags holds values parsed from command-line flags. Pointers distinguish
// unset flags from zero-value flags.
type Flags struct {
	ConfigFilePath *string
	Version        *bool
	LogLevel       *string
	LogFilePath    *string
	Backend        *string
	DebounceMs     *int
	Workers        *int
	TabWidth       *int
	ScrollOff      *int
	ThemeName      *string
	ThemeDir       *string
	NoThemeWatch   *bool
	NoPersistCache *bool
	EnablePkgs     *string
	DisablePkgs    *string
}

// DefineFlags sets up the command-line flags.
func (f *Flags) DefineFlags() {
	f.ConfigFilePath = flag.String("config", "", fmt.Sprintf("Path to TOML configuration file (default ~/.config/%s/%s)", AppName, DefaultConfigFileName))
	f.Version = flag.Bool("version", false, "Show version information and exit")
	f.LogLevel = flag.String("loglevel", "", "Log level (debug, info, warn, error) - Overrides config file")
	f.LogFilePath = flag.String("logfile", "", "Path to write log file (use '-' for stderr) - Overrides config file")
	f.Backend = flag.String("backend", "", "Classifier backend: treesitter or chroma - Overrides config file")
	f.DebounceMs = flag.Int("debounce", 0, "Recompute debounce in milliseconds, negative disables - Overrides config file")
	f.Workers = flag.Int("workers", 0, "Max concurrent classification tasks, 0 means one per CPU - Overrides config file")
	f.TabWidth = flag.Int("tabwidth", 0, "Number of spaces per tab - Overrides config file")
	f.ScrollOff = flag.Int("scrolloff", -1, "Lines of context above/below cursor - Overrides config file")
	f.ThemeName = flag.String("theme", "", "Theme to activate - Overrides config file")
	f.ThemeDir = flag.String("theme-dir", "", "Directory to load themes from - Overrides config file")
	f.NoThemeWatch = flag.Bool("no-theme-watch", false, "Disable theme file hot reload")
	f.NoPersistCache = flag.Bool("no-cache", false, "Disable the on-disk classification cache")
	f.EnablePkgs = flag.String("log-packages", "", "Comma-separated list of packages to enable - Overrides config file")
	f.DisablePkgs = flag.String("log-disable-packages", "", "Comma-separated list of packages to disable - Overrides config file")
}

// ParseFlags parses the command line. Returns the remaining non-flag
// arguments (the file path to view).
func (f *Flags) ParseFlags() []string {
	f.DefineFlags()
	flag.Parse()
	return flag.Args()
}

// ApplyOverrides updates the Config with values from flags that were
// actually set on the command line.
func (f *Flags) ApplyOverrides(cfg *Config) {
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "loglevel":
			if *f.LogLevel != "" {
				cfg.Logger.LogLevel = *f.LogLevel
			}
		case "logfile":
			cfg.Logger.LogFilePath = *f.LogFilePath
		case "backend":
			if *f.Backend != "" {
				cfg.Highlight.Backend = *f.Backend
			}
		case "debounce":
			cfg.Highlight.DebounceMs = *f.DebounceMs
		case "workers":
			if *f.Workers > 0 {
				cfg.Highlight.Workers = *f.Workers
			}
		case "tabwidth":
			if *f.TabWidth > 0 {
				cfg.Viewer.TabWidth = *f.TabWidth
			}
		case "scrolloff":
			if *f.ScrollOff >= 0 {
				cfg.Viewer.ScrollOff = *f.ScrollOff
			}
		case "theme":
			cfg.Theme.Name = *f.ThemeName
		case "theme-dir":
			cfg.Theme.Dir = *f.ThemeDir
		case "no-theme-watch":
			cfg.Theme.Watch = !*f.NoThemeWatch
		case "no-cache":
			cfg.Highlight.PersistCache = !*f.NoPersistCache
		case "log-packages":
			cfg.Logger.EnabledPackages = splitCommaList(*f.EnablePkgs)
		case "log-disable-packages":
			cfg.Logger.DisabledPackages = splitCommaList(*f.DisablePkgs)
		}
	})
}

func splitCommaList(list string) []string {
	if list == "" {
		return nil
	}
	items := strings.Split(list, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
