// Package watcher reloads the catalog when snapshot files change and
// signals the alert sweeper afterwards.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/kosarica/price-comparator/internal/catalog"
	"github.com/kosarica/price-comparator/internal/ingestion"
)

// Loader builds a snapshot from a data directory.
type Loader interface {
	LoadDir(ctx context.Context, dir string) (*catalog.Snapshot, ingestion.LoadStats, error)
}

// Notifier is signalled after every successful reload.
type Notifier interface {
	Trigger()
}

// Watcher watches a data directory. Bursts of file events within the
// debounce window cause a single reload.
type Watcher struct {
	dir      string
	loader   Loader
	catalog  *catalog.Catalog
	notify   Notifier
	debounce time.Duration
	logger   *zerolog.Logger

	fsw  *fsnotify.Watcher
	done chan struct{}
	stop sync.Once
}

// New creates a watcher. notify may be nil.
func New(dir string, loader Loader, cat *catalog.Catalog, notify Notifier, debounce time.Duration, logger *zerolog.Logger) *Watcher {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		dir:      dir,
		loader:   loader,
		catalog:  cat,
		notify:   notify,
		debounce: debounce,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins watching. The directory watch is registered before Start
// returns; events are handled in a background goroutine until ctx is
// cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.fsw = fsw

	w.logger.Info().
		Str("dir", w.dir).
		Dur("debounce", w.debounce).
		Msg("Watching data directory")

	go w.loop(ctx)
	return nil
}

// Stop stops watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.stop.Do(func() {
		if w.fsw != nil {
			w.fsw.Close()
			<-w.done
		}
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.fsw.Close()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug().
				Str("file", event.Name).
				Str("op", event.Op.String()).
				Msg("Snapshot file changed")
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("File watcher error")
		case <-timer.C:
			if err := w.Reload(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error().Err(err).Msg("Failed to reload snapshot, keeping previous data")
			}
		}
	}
}

// Reload loads the directory, publishes the new snapshot and signals the
// notifier. On failure, or when the records did not change, the current
// snapshot stays in place and no signal is sent.
func (w *Watcher) Reload(ctx context.Context) error {
	snap, stats, err := w.loader.LoadDir(ctx, w.dir)
	if err != nil {
		return err
	}
	if snap.Fingerprint() == w.catalog.Snapshot().Fingerprint() {
		w.logger.Debug().Int("files", stats.Files).Msg("Snapshot files unchanged, keeping current catalog")
		return nil
	}
	w.catalog.Replace(snap)

	w.logger.Info().
		Int("files", stats.Files).
		Int("prices", stats.Prices).
		Int("discounts", stats.Discounts).
		Msg("Catalog reloaded")

	if w.notify != nil {
		w.notify.Trigger()
	}
	return nil
}

// relevant reports whether an event touches a snapshot file.
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	_, err := ingestion.ParseFileName(event.Name)
	return err == nil
}
