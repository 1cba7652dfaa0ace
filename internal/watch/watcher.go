// Package watch reports changed dashboard descriptor files
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"dashgen/internal/logger"
	"dashgen/internal/models"
)

// DefaultDebounce is the quiet period before pending changes are reported
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches a directory, or a single file, for descriptor changes
type Watcher struct {
	target   string
	file     string // set when watching a single file
	onChange func(paths []string)
	debounce time.Duration
	watcher  *fsnotify.Watcher
	log      *logger.Logger
}

// Option customizes a Watcher
type Option func(*Watcher)

// WithDebounce sets the quiet period
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New starts watching target. onChange receives the de-duplicated, sorted
// paths that changed during each quiet period.
func New(target string, onChange func(paths []string), options ...Option) (*Watcher, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("failed to stat watch target: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		target:   target,
		onChange: onChange,
		debounce: DefaultDebounce,
		watcher:  fw,
		log:      logger.Component("watch"),
	}
	for _, opt := range options {
		opt(w)
	}

	dir := target
	if !info.IsDir() {
		// editors often replace files, so watch the parent and filter
		dir = filepath.Dir(target)
		w.file = filepath.Clean(target)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return w, nil
}

// Run delivers change batches until ctx is cancelled, then closes the watcher
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	debounce := time.NewTimer(0)
	<-debounce.C

	pending := make(map[string]bool)

	w.log.Info("watching for descriptor changes", logger.Fields{"target": w.target})
	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			pending[filepath.Clean(event.Name)] = true
			resetTimer(debounce, w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", err)

		case <-debounce.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]bool)

			w.log.Debug("descriptor changes", logger.Fields{"paths": paths})
			w.onChange(paths)
		}
	}
}

// resetTimer restarts t, discarding a tick that fired but was never read
func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	if w.file != "" {
		return filepath.Clean(event.Name) == w.file
	}
	return models.IsDescriptorFile(event.Name)
}
