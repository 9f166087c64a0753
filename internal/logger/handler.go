package logger

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

// filteringHandler wraps a base slog.Handler and drops records from packages
// excluded by the config.
type filteringHandler struct {
	baseHandler slog.Handler
	cfg         *Config
}

func newFilteringHandler(base slog.Handler, cfg *Config) *filteringHandler {
	return &filteringHandler{baseHandler: base, cfg: cfg}
}

func (h *filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.baseHandler.Enabled(ctx, level)
}

// Handle applies package filtering before passing the record on.
func (h *filteringHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg == nil || (h.cfg.enabledPackagesSet == nil && h.cfg.disabledPackagesSet == nil) {
		return h.baseHandler.Handle(ctx, r)
	}

	pkg := packageForRecord(r)
	if pkg != "" {
		if _, found := h.cfg.disabledPackagesSet[pkg]; found {
			return nil
		}
		if h.cfg.enabledPackagesSet != nil {
			if _, found := h.cfg.enabledPackagesSet[pkg]; !found {
				return nil
			}
		}
	}

	return h.baseHandler.Handle(ctx, r)
}

// packageForRecord derives the immediate directory name of the record's
// source file, lowercased, or "" when no source info is available.
func packageForRecord(r slog.Record) string {
	if r.PC == 0 {
		return ""
	}
	frames := runtime.CallersFrames([]uintptr{r.PC})
	frame, _ := frames.Next()
	if frame.File == "" {
		return ""
	}
	return strings.ToLower(filepath.Base(filepath.Dir(frame.File)))
}

func (h *filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &filteringHandler{baseHandler: h.baseHandler.WithAttrs(attrs), cfg: h.cfg}
}

func (h *filteringHandler) WithGroup(name string) slog.Handler {
	return &filteringHandler{baseHandler: h.baseHandler.WithGroup(name), cfg: h.cfg}
}
