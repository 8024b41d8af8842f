// Package vaultwatch watches the vault directory tree and reports Markdown
// document changes to the update trigger.
package vaultwatch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/ansuz/internal/storage"
)

// ChangeFunc is called with the vault-relative path and new content of every
// Markdown file that was created or written.
type ChangeFunc func(path string, content []byte)

// Watch starts an fsnotify watcher on the vault root and processes file
// change events until ctx is cancelled. Each create or write of a .md file
// is read back through the store and handed to onChange.
//
// New directories created at runtime are automatically added to the watch
// list.
func Watch(ctx context.Context, store storage.Provider, vaultRoot string, logger *slog.Logger, onChange ChangeFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories join the watch list immediately, then their
			// existing .md files are reported as changes.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					reportDir(store, vaultRoot, absPath, logger, onChange)
					continue
				}
			}

			if !strings.HasSuffix(absPath, ".md") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			rel, relErr := filepath.Rel(vaultRoot, absPath)
			if relErr != nil {
				continue
			}

			data, readErr := store.Read(rel)
			if readErr != nil {
				logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
				continue
			}
			logger.Debug("watcher: changed", slog.String("path", rel))
			if onChange != nil {
				onChange(rel, data)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reportDir reports any .md files found in a newly created directory.
func reportDir(store storage.Provider, vaultRoot, dirPath string, logger *slog.Logger, onChange ChangeFunc) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(vaultRoot, path)
		if relErr != nil {
			return nil
		}
		data, readErr := store.Read(rel)
		if readErr != nil {
			return nil
		}
		logger.Debug("watcher: changed from new dir", slog.String("path", rel))
		if onChange != nil {
			onChange(rel, data)
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
