// Package filegroup implements shared storage as a directory of files that
// every process in the same group can read. Each key is one file under
// <dir>/<group>/ and is always replaced atomically.
package filegroup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/natefinch/atomic"

	"github.com/EcMscS/Footnote/internal/domain"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// Group is the shared storage for one named group.
type Group struct {
	name   string
	dir    string
	logger *slog.Logger
}

// Open prepares <baseDir>/<name> for use, creating it when missing.
func Open(baseDir, name string, logger *slog.Logger) (*Group, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, errors.New("shared storage dir is required")
	}

	if err := validName("group", name); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Join(baseDir, name)
	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return nil, fmt.Errorf("create group dir: %w", err)
	}

	return &Group{
		name:   name,
		dir:    dir,
		logger: logger.With(slog.String("component", "filegroup"), slog.String("group", name)),
	}, nil
}

// Group returns the group name.
func (g *Group) Group() string { return g.name }

// Dir returns the directory backing the group.
func (g *Group) Dir() string { return g.dir }

// Name implements ports.HealthChecker.
func (g *Group) Name() string { return "shared-storage" }

// Check implements ports.HealthChecker.
func (g *Group) Check(_ context.Context) error {
	info, err := os.Stat(g.dir)
	if err != nil {
		return domain.NewUnavailableError("shared storage", err.Error())
	}

	if !info.IsDir() {
		return domain.NewUnavailableError("shared storage", g.dir+" is not a directory")
	}

	return nil
}

// Get reads the value stored under key.
func (g *Group) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := g.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NewNotFoundError("shared value", key)
	}

	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	return data, nil
}

// Set replaces the value stored under key. Readers see either the old or the
// new value, never a partial write.
func (g *Group) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := g.path(key)
	if err != nil {
		return err
	}

	if err := atomic.WriteFile(path, bytes.NewReader(value)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	// atomic.WriteFile leaves temp file permissions on new files.
	if err := os.Chmod(path, filePerms); err != nil {
		return fmt.Errorf("chmod %s: %w", key, err)
	}

	g.logger.Debug("shared value replaced", slog.String("key", key), slog.Int("bytes", len(value)))

	return nil
}

// Watch reports every replacement of key until ctx is done. The watch is in
// place when Watch returns; the channel is closed once watching stops.
func (g *Group) Watch(ctx context.Context, key string) (<-chan []byte, error) {
	path, err := g.path(key)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// The file is replaced by rename, so the directory is watched.
	if err := watcher.Add(g.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", g.dir, err)
	}

	out := make(chan []byte)

	go g.watch(ctx, watcher, path, out)

	return out, nil
}

func (g *Group) watch(ctx context.Context, watcher *fsnotify.Watcher, path string, out chan<- []byte) {
	defer close(out)
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != path || !(event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write)) {
				continue
			}

			data, err := os.ReadFile(path)
			if err != nil {
				g.logger.Warn("read after change failed", slog.String("path", path), slog.Any("error", err))
				continue
			}

			select {
			case out <- data:
			case <-ctx.Done():
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}

			g.logger.Warn("watcher error", slog.Any("error", err))
		}
	}
}

func (g *Group) path(key string) (string, error) {
	if err := validName("key", key); err != nil {
		return "", err
	}

	return filepath.Join(g.dir, key), nil
}

func validName(field, name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return domain.NewValidationError(field, "must not be empty")
	case name == "." || name == "..", strings.ContainsAny(name, `/\`):
		return domain.NewValidationError(field, fmt.Sprintf("%q must be a plain name", name))
	}

	return nil
}
