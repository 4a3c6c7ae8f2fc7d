// Package watch re-runs a handler when watched files change.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/logger"
)

// DefaultDebounce coalesces bursts of events such as an editor save.
const DefaultDebounce = 300 * time.Millisecond

// Handler is called with the changed paths, sorted, after the debounce period.
type Handler func(ctx context.Context, changed []string) error

// Watcher watches files and directories and calls a Handler on change
type Watcher struct {
	fs       *fsnotify.Watcher
	handler  Handler
	debounce time.Duration
	logger   *zap.SugaredLogger
	match    func(path string) bool
	ignore   []string

	// files restricts events in a watched parent directory to these paths.
	files map[string]bool
	// dirs are watched for every matching file.
	dirs map[string]bool

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]bool

	// runMu serializes handler calls.
	runMu sync.Mutex
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce period. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithMatch limits events in watched directories to paths for which match
// returns true. Explicitly watched files always match.
func WithMatch(match func(path string) bool) Option {
	return func(w *Watcher) { w.match = match }
}

// WithIgnore drops events under the given directories, typically the output
// root when it lives inside a watched tree.
func WithIgnore(dirs ...string) Option {
	return func(w *Watcher) {
		for _, d := range dirs {
			if abs, err := filepath.Abs(d); err == nil {
				w.ignore = append(w.ignore, abs)
			}
		}
	}
}

// New watches paths. A directory is watched for matching files; a file is
// watched through its parent directory so editors that save by rename are
// still seen.
func New(paths []string, handler Handler, opts ...Option) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("nothing to watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		fs:       fsw,
		handler:  handler,
		debounce: DefaultDebounce,
		match:    func(string) bool { return true },
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		pending:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logger.OrNop(w.logger)

	added := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, errors.Wrapf(err, "resolve %s", p)
		}
		info, err := os.Stat(abs)
		if err != nil {
			fsw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", p)
		}

		dir := abs
		if info.IsDir() {
			w.dirs[abs] = true
		} else {
			w.files[abs] = true
			dir = filepath.Dir(abs)
		}
		if added[dir] {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
		added[dir] = true
	}

	return w, nil
}

// Run delivers events until ctx is cancelled or the watcher is stopped.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Infow("Watching for changes",
		logger.FieldCount, len(w.files)+len(w.dirs),
		"debounce_ms", w.debounce.Milliseconds())

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debugw("Watcher detected change",
				logger.FieldFile, event.Name,
				"op", event.Op.String())
			w.schedule(ctx, event.Name)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

// Stop stops watching. A pending handler call is dropped.
func (w *Watcher) Stop() error {
	w.cancelPending()
	return w.fs.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(event.Name)
	if IsBackupFile(name) || w.ignored(name) {
		return false
	}
	if w.files[name] {
		return true
	}
	return w.dirs[filepath.Dir(name)] && w.match(name)
}

func (w *Watcher) ignored(name string) bool {
	for _, dir := range w.ignore {
		if name == dir || strings.HasPrefix(name, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// schedule debounces rapid file changes and triggers the handler
func (w *Watcher) schedule(ctx context.Context, name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[name] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.fire(ctx) })
}

func (w *Watcher) fire(ctx context.Context) {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	w.mu.Lock()
	changed := make([]string, 0, len(w.pending))
	for name := range w.pending {
		changed = append(changed, name)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	if len(changed) == 0 || ctx.Err() != nil {
		return
	}
	sort.Strings(changed)

	start := time.Now()
	if err := w.handler(ctx, changed); err != nil {
		// Keep watching; the next save may fix it
		w.logger.Errorw("Change handler failed",
			logger.FieldError, err,
			logger.FieldCount, len(changed))
		return
	}
	w.logger.Debugw("Change handled",
		logger.FieldCount, len(changed),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = make(map[string]bool)
}

// IsBackupFile reports whether path looks like an editor or config backup:
// foo~, .foo.swp, #foo#, .#foo, foo.tmp or foo.back1 through foo.back3.
func IsBackupFile(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasSuffix(base, ".tmp"),
		strings.HasPrefix(base, ".#"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	}
	for _, suffix := range []string{".back1", ".back2", ".back3"} {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}
