// Package render turns emitted units into source files.
//
// # Architecture
//
// The emitter produces language-agnostic units (emit.Unit). Each target language
// implements Generator in its own package (kotlin/, typescript/, golang/) and
// formats one unit per file. The sink decides where the file goes; Path gives
// the default placement.
//
// # Implementing a New Generator
//
//  1. Create package: render/<language>/generator.go
//  2. Implement the Generator interface
//  3. Register it in generators below
//  4. Add golden-output tests next to the generator
package render

import (
	"path"
	"sort"
	"strings"

	"github.com/teranos/namedargs/emit"
	"github.com/teranos/namedargs/errors"
	"github.com/teranos/namedargs/render/golang"
	"github.com/teranos/namedargs/render/kotlin"
	"github.com/teranos/namedargs/render/typescript"
)

// Generator defines the interface for language-specific unit renderers.
type Generator interface {
	// GenerateFile renders a complete source file for one unit
	GenerateFile(unit *emit.Unit) (string, error)

	// FileExtension returns the file extension for this language (e.g., "kt", "d.ts")
	FileExtension() string

	// Language returns the language name (e.g., "kotlin", "typescript")
	Language() string
}

// Placer is implemented by generators whose target language lays files out
// differently from dotted-package directories.
type Placer interface {
	// RelPath returns the slash-separated path of the unit's file relative to
	// the language output directory.
	RelPath(key emit.Key) string
}

var generators = map[string]func() Generator{
	"kotlin":     func() Generator { return kotlin.NewGenerator() },
	"typescript": func() Generator { return typescript.NewGenerator() },
	"go":         func() Generator { return golang.NewGenerator() },
}

var aliases = map[string]string{
	"kt":     "kotlin",
	"ts":     "typescript",
	"golang": "go",
}

// ForLanguage returns the generator registered for name.
func ForLanguage(name string) (Generator, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	ctor, ok := generators[key]
	if !ok {
		return nil, errors.WithHintf(
			errors.Newf("unknown language %q", name),
			"supported languages: %s", strings.Join(Languages(), ", "))
	}
	return ctor(), nil
}

// ForLanguages resolves several language names, in order, without duplicates.
func ForLanguages(names []string) ([]Generator, error) {
	seen := make(map[string]bool, len(names))
	var out []Generator
	for _, name := range names {
		g, err := ForLanguage(name)
		if err != nil {
			return nil, err
		}
		if seen[g.Language()] {
			continue
		}
		seen[g.Language()] = true
		out = append(out, g)
	}
	return out, nil
}

// Languages returns the registered language names, sorted.
func Languages() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Path returns the slash-separated location of the unit's file relative to the
// output root: <language>/<package path>/<Carrier>.<ext>.
func Path(g Generator, key emit.Key) string {
	if p, ok := g.(Placer); ok {
		return path.Join(g.Language(), p.RelPath(key))
	}
	pkgDir := strings.ReplaceAll(key.Package, ".", "/")
	return path.Join(g.Language(), pkgDir, key.Name+"."+g.FileExtension())
}
