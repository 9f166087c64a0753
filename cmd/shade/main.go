// cmd/shade/main.go
package main

import (
	"fmt"
	"io"
	stlog "log"
	"os"
	"path/filepath"
	"time"

	"github.com/bethropolis/shade/internal/buffer"
	"github.com/bethropolis/shade/internal/classify"
	"github.com/bethropolis/shade/internal/config"
	"github.com/bethropolis/shade/internal/diskcache"
	"github.com/bethropolis/shade/internal/event"
	"github.com/bethropolis/shade/internal/highlight"
	"github.com/bethropolis/shade/internal/logger"
	"github.com/bethropolis/shade/internal/theme"
	"github.com/bethropolis/shade/internal/viewer"
)

var version = "dev"

func main() {
	flags := &config.Flags{}
	args := flags.ParseFlags()

	if *flags.Version {
		fmt.Printf("shade %s\n", version)
		return
	}

	cfg, err := config.LoadConfig(*flags.ConfigFilePath, flags)
	if err != nil {
		stlog.Printf("Warning: configuration error: %v", err)
	}

	logOutput, logFile := openLogOutput(cfg.Logger.LogFilePath)
	if logFile != nil {
		defer logFile.Close()
	}
	logger.Init(cfg.Logger, logOutput)
	logger.Infof("Starting shade %s", version)

	filePath := ""
	if len(args) > 0 {
		filePath = args[0]
	}

	events := event.NewManager()

	buf := buffer.NewSliceBuffer()
	if filePath != "" {
		if err := buf.Load(filePath); err != nil {
			logger.Fatalf("Failed to load '%s': %v", filePath, err)
		}
		events.Dispatch(event.TypeBufferLoaded, event.BufferLoadedData{FilePath: filePath})
	}

	backend, cls, memo := classify.NewBackend(cfg.Highlight.Backend, filePath)
	if backend != cfg.Highlight.Backend {
		logger.Debugf("Classifier: backend '%s' not applicable to '%s', using '%s'", cfg.Highlight.Backend, filePath, backend)
	}

	var store *diskcache.Store
	if cfg.Highlight.PersistCache && memo != nil {
		store, err = diskcache.Open(config.AppName)
		if err != nil {
			logger.Warnf("Disk cache unavailable: %v", err)
		} else if ok, err := store.Load(backend, memo); err != nil {
			logger.Warnf("Disk cache load failed: %v", err)
		} else if ok {
			logger.Debugf("Disk cache: restored %d entries for '%s'", memo.Len(), backend)
		}
	}

	themes := theme.NewManager(cfg.Theme.Dir, events)
	if cfg.Theme.Name != "" {
		if err := themes.SetTheme(cfg.Theme.Name); err != nil {
			logger.Warnf("Theme selection failed: %v", err)
		}
	}
	if cfg.Theme.Watch {
		watcher, err := theme.NewWatcher(themes)
		if err != nil {
			logger.Warnf("Theme watcher unavailable: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	cache := highlight.NewCache(buf, cls, themes, events, highlight.Options{
		Debounce: time.Duration(cfg.Highlight.DebounceMs) * time.Millisecond,
		Workers:  int64(cfg.Highlight.Workers),
	})

	view, err := viewer.New(buf, cache, themes, events, cfg.Viewer)
	if err != nil {
		logger.Fatalf("Viewer initialization failed: %v", err)
	}

	runErr := view.Run()
	cache.Dispose()

	if store != nil {
		if err := store.Save(backend, memo); err != nil {
			logger.Warnf("Disk cache save failed: %v", err)
		} else {
			logger.Debugf("Disk cache: saved %d entries for '%s'", memo.Len(), backend)
		}
	}

	if runErr != nil {
		logger.Errorf("Viewer exited with error: %v", runErr)
		os.Exit(1)
	}
	logger.Infof("shade finished")
}

// openLogOutput resolves the log destination: "-" means stderr, empty means
// the default log file next to the cache.
func openLogOutput(path string) (io.Writer, *os.File) {
	if path == "-" {
		return os.Stderr, nil
	}
	if path == "" {
		if cacheDir, err := os.UserCacheDir(); err == nil {
			dir := filepath.Join(cacheDir, config.AppName)
			if err := os.MkdirAll(dir, 0o755); err == nil {
				path = filepath.Join(dir, config.DefaultLogFileName)
			}
		}
		if path == "" {
			path = config.DefaultLogFileName
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		stlog.Printf("Warning: failed to open log file '%s': %v", path, err)
		return io.Discard, nil
	}
	return f, f
}
