package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/koskimas/fondant/internal/config"
)

const watchDelay = 200 * time.Millisecond

// Watch runs `Run` once and again whenever the config file or one of the
// component specs changes, until `ctx` is cancelled. Compilation errors are
// logged and don't stop the watch.
func Watch(ctx context.Context, s Settings) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	outDir := ""
	rerun := func() {
		if err := Run(s); err != nil {
			s.Logger.Error().Err(err).Msg("compilation failed")
		}

		// The spec list may have changed.
		dirs, out, err := watchedDirs(s)
		if err != nil {
			s.Logger.Error().Err(err).Msg("failed to resolve watched directories")
			return
		}

		outDir = out
		for _, dir := range dirs {
			if err := watcher.Add(dir); err != nil {
				s.Logger.Warn().Err(err).Str("dir", dir).Msg("failed to watch directory")
			}
		}
	}

	if err := watcher.Add(s.WorkingDir); err != nil {
		return fmt.Errorf(`failed to watch "%s": %w`, s.WorkingDir, err)
	}

	rerun()
	s.Logger.Info().Str("dir", s.WorkingDir).Msg("watching for changes")

	var timer <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isSource(event.Name, outDir) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				s.Logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("source changed")

				timer = time.After(watchDelay)
			}

		case <-timer:
			timer = nil
			rerun()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			s.Logger.Error().Err(err).Msg("file watcher error")
		}
	}
}

// watchedDirs returns the directories of the component specs and the output
// directory of the config.
func watchedDirs(s Settings) ([]string, string, error) {
	cfg, err := config.Read(filepath.Join(s.WorkingDir, config.FileName))
	if err != nil {
		return nil, "", err
	}

	seen := make(map[string]bool)
	dirs := make([]string, 0, len(cfg.Components))

	for _, c := range cfg.Components {
		dir := filepath.Dir(filepath.Join(s.WorkingDir, c.Spec))

		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	return dirs, filepath.Join(s.WorkingDir, cfg.Output.Path), nil
}

// isSource tells if a changed file is an input of the compilation. Files
// under `outDir` and generated Go files are skipped to avoid compiling in a
// loop.
func isSource(fileName string, outDir string) bool {
	if outDir != "" && strings.HasPrefix(fileName, outDir+string(filepath.Separator)) {
		return false
	}

	switch filepath.Ext(fileName) {
	case ".yaml", ".yml":
		return true
	}

	return false
}
