package shader

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/scenedemo/internal/logger"
)

// Watcher reports changes to shader source files. Directories are watched
// rather than files so editors that save by rename are still seen.
type Watcher struct {
	fs    *fsnotify.Watcher
	files map[string]bool
	dirs  map[string]bool
	log   *zap.Logger

	mu      sync.Mutex
	changed map[string]bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher starts a watcher with no files.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:      fw,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
		log:     logger.Named("shader-watch"),
		changed: make(map[string]bool),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Add watches path. Must not be called concurrently with Poll.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if !w.dirs[dir] {
		if err := w.fs.Add(dir); err != nil {
			return err
		}
		w.dirs[dir] = true
	}
	w.mu.Lock()
	w.files[abs] = true
	w.mu.Unlock()
	return nil
}

// AddProgram watches the source files of a file-backed program.
func (w *Watcher) AddProgram(p *Program) error {
	vert, frag, ok := p.Paths()
	if !ok {
		return nil
	}
	if err := w.Add(vert); err != nil {
		return err
	}
	return w.Add(frag)
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			w.mu.Lock()
			if w.files[abs] {
				w.changed[abs] = true
			}
			w.mu.Unlock()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// Poll returns the files changed since the last call and never blocks.
func (w *Watcher) Poll() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.changed) == 0 {
		return nil
	}
	out := make([]string, 0, len(w.changed))
	for f := range w.changed {
		out = append(out, f)
	}
	clear(w.changed)
	return out
}

// Stale reports whether any source of p appears in changed.
func Stale(p *Program, changed []string) bool {
	vert, frag, ok := p.Paths()
	if !ok {
		return false
	}
	for _, c := range changed {
		if same(c, vert) || same(c, frag) {
			return true
		}
	}
	return false
}

func same(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}
