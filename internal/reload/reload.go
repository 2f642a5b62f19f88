// Package reload detects changes to asset files and runs the reload boundary
// around a Deformer: tear down before the host reloads, set up again after.
package reload

import (
	"errors"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-tension/internal/tension"
)

// Watcher reports changes to a single file. Events arrive on a background
// goroutine and are coalesced, so the render loop can poll without blocking.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	changed chan struct{}
	done    chan struct{}
	log     *zap.Logger
}

// Watch starts watching path. The parent directory is watched so that
// editors which replace files by rename are still noticed.
func Watch(path string, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    abs,
		watcher: fw,
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
		log:     log,
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug("asset changed", zap.String("path", w.path), zap.Stringer("op", event.Op))
			select {
			case w.changed <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// Changed reports whether the file changed since the last call.
func (w *Watcher) Changed() bool {
	select {
	case <-w.changed:
		return true
	default:
		return false
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

// Apply runs load between d.BeginReload and d.EndReload. The deformer is
// brought back even when load fails, in which case it keeps its previous
// mesh.
func Apply(d *tension.Deformer, load func() error) error {
	d.BeginReload()
	loadErr := load()
	return errors.Join(loadErr, d.EndReload())
}
