package sink

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/namedargs/emit"
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/logger"
	"github.com/teranos/namedargs/render"
)

// Files renders each unit through its generators and writes one file per
// generator under root. See render.Path for the layout.
type Files struct {
	root       string
	generators []render.Generator
	clean      bool
	logger     *zap.SugaredLogger

	mu        sync.Mutex
	cleanOnce sync.Once
	cleanErr  error
	written   map[string]string // relative path -> origin
}

// FilesOption configures a Files sink.
type FilesOption func(*Files)

// WithClean removes the language directories under root before the first
// write, so files of declarations that no longer exist do not linger.
func WithClean(clean bool) FilesOption {
	return func(f *Files) { f.clean = clean }
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) FilesOption {
	return func(f *Files) { f.logger = l }
}

// NewFiles creates a file sink rooted at root.
func NewFiles(root string, generators []render.Generator, opts ...FilesOption) *Files {
	f := &Files{
		root:       root,
		generators: generators,
		written:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logger.OrNop(f.logger)
	return f
}

// Root returns the output root.
func (f *Files) Root() string {
	return f.root
}

// Write renders unit with every generator and writes the files. Every
// generator renders before any file is written.
func (f *Files) Write(ctx context.Context, unit *emit.Unit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if unit == nil {
		return errors.AssertionFailedf("sink: nil unit")
	}
	if len(f.generators) == 0 {
		return errors.New("file sink has no generators")
	}

	if err := f.Prepare(); err != nil {
		return err
	}

	type file struct {
		rel     string
		content string
	}
	files := make([]file, 0, len(f.generators))
	for _, g := range f.generators {
		content, err := g.GenerateFile(unit)
		if err != nil {
			return errors.Wrapf(err, "render %s as %s", unit.Key, g.Language())
		}
		files = append(files, file{rel: render.Path(g, unit.Key), content: content})
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, fl := range files {
		if origin, ok := f.written[fl.rel]; ok {
			return collision(unit, origin)
		}
	}

	for _, fl := range files {
		path := filepath.Join(f.root, filepath.FromSlash(fl.rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return errors.Wrapf(err, "create directory for %s", fl.rel)
		}
		if err := os.WriteFile(path, []byte(fl.content), 0644); err != nil {
			return errors.Wrapf(err, "write %s", fl.rel)
		}
		f.written[fl.rel] = unit.Origin
		f.logger.Debugw("Wrote generated file",
			logger.FieldFile, fl.rel,
			logger.FieldCarrier, unit.Key.Name,
			logger.FieldPackage, unit.Key.Package)
	}
	return nil
}

// Prepare cleans the output when WithClean is set. It runs once; Write calls
// it implicitly.
func (f *Files) Prepare() error {
	f.cleanOnce.Do(func() { f.cleanErr = f.removeOutput() })
	return f.cleanErr
}

// Written returns the relative paths written so far, sorted.
func (f *Files) Written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	paths := make([]string, 0, len(f.written))
	for p := range f.written {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (f *Files) removeOutput() error {
	if !f.clean {
		return nil
	}
	for _, g := range f.generators {
		dir := filepath.Join(f.root, g.Language())
		if err := os.RemoveAll(dir); err != nil {
			return errors.Wrapf(err, "clean %s", dir)
		}
		f.logger.Debugw("Cleaned output directory", logger.FieldPath, dir)
	}
	return nil
}
