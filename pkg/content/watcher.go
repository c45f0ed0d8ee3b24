package content

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher re-ingests markdown files as they change on disk. Because
// chunk embeddings are cached by content fingerprint, a save that does
// not change the text costs no provider calls.
type Watcher struct {
	loader  *Loader
	watcher *fsnotify.Watcher
	logger  *zap.Logger
}

// NewWatcher creates a watcher over the loader's content directory.
func NewWatcher(loader *Loader, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating content watcher: %w", err)
	}

	if err := fsw.Add(loader.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching content dir %q: %w", loader.dir, err)
	}

	return &Watcher{
		loader:  loader,
		watcher: fsw,
		logger:  logger,
	}, nil
}

// Run processes filesystem events until the context is cancelled or the
// watcher fails. It blocks; run it in its own goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("content watcher: %w", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if !strings.EqualFold(filepath.Ext(event.Name), ".md") {
		return
	}

	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		if _, err := w.loader.LoadFile(ctx, event.Name); err != nil {
			w.logger.Warn("changed content file not re-ingested",
				zap.String("path", event.Name),
				zap.Error(err),
			)
		}

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.loader.RemoveFile(event.Name)
	}
}
