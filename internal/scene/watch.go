package scene

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses bursts of write events from editors saving a file.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a scene file when it changes on disk.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	log      *zap.Logger
	debounce time.Duration
	onChange func(*File)
	onError  func(error)
}

// NewWatcher watches path. onChange receives each successfully parsed
// version of the file; onError, when set, receives load failures.
func NewWatcher(path string, log *zap.Logger, onChange func(*File), onError func(error)) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	// Watch the directory too so atomic saves (rename over the file) are seen.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch scene directory: %w", err)
	}
	return &Watcher{
		path:     path,
		watcher:  fw,
		log:      log,
		debounce: DefaultDebounce,
		onChange: onChange,
		onError:  onError,
	}, nil
}

// SetDebounce overrides the debounce interval.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// Run processes file events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != filepath.Base(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("scene watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	f, err := Load(w.path)
	if err != nil {
		w.log.Warn("scene reload failed", zap.String("path", w.path), zap.Error(err))
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	w.log.Info("scene reloaded", zap.String("path", w.path), zap.Int("nodes", len(f.Nodes)))
	if w.onChange != nil {
		w.onChange(f)
	}
}

// Close stops watching.
func (w *Watcher) Close() error { return w.watcher.Close() }
