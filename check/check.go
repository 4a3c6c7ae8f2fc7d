// Package check reports whether generated artifacts on disk are up to date.
package check

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/teranos/namedargs/errors"
)

// Status classifies a difference between expected and actual output.
type Status string

const (
	// StatusMissing is a file that would be generated but does not exist.
	StatusMissing Status = "missing"
	// StatusStale is a file whose content differs from what would be generated.
	StatusStale Status = "stale"
	// StatusExtra is a file in a checked directory that would not be generated.
	StatusExtra Status = "extra"
)

// Difference is one out-of-date file.
type Difference struct {
	// Path is slash-separated and relative to the output root.
	Path   string `json:"path" yaml:"path"`
	Status Status `json:"status" yaml:"status"`
	// Diff is a unified diff from the file on disk to the expected content,
	// set for stale files.
	Diff string `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// Report is the outcome of a check.
type Report struct {
	// Checked counts the expected files.
	Checked     int          `json:"checked" yaml:"checked"`
	Differences []Difference `json:"differences" yaml:"differences"`
}

// UpToDate reports whether nothing differs.
func (r *Report) UpToDate() bool {
	return len(r.Differences) == 0
}

// Count returns the number of differences with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, d := range r.Differences {
		if d.Status == s {
			n++
		}
	}
	return n
}

// Generate writes a complete set of artifacts under root.
type Generate func(ctx context.Context, root string) error

// Run generates into a temporary directory and compares the result with
// output. Extra files are only reported under scopes, relative directories of
// output such as "kotlin"; with no scopes the whole output tree is checked.
func Run(ctx context.Context, output string, generate Generate, scopes ...string) (*Report, error) {
	tmp, err := os.MkdirTemp("", "namedargs-check-*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temp dir")
	}
	defer os.RemoveAll(tmp)

	if err := generate(ctx, tmp); err != nil {
		return nil, errors.Wrap(err, "generate expected output")
	}
	return Compare(tmp, output, scopes...)
}

// Compare compares the tree at expected with the tree at actual.
func Compare(expected, actual string, scopes ...string) (*Report, error) {
	want, err := readTree(expected)
	if err != nil {
		return nil, errors.Wrapf(err, "read expected tree %s", expected)
	}

	report := &Report{Checked: len(want)}
	for _, rel := range sortedKeys(want) {
		got, err := os.ReadFile(filepath.Join(actual, filepath.FromSlash(rel)))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			report.Differences = append(report.Differences, Difference{Path: rel, Status: StatusMissing})
		case err != nil:
			return nil, errors.Wrapf(err, "read %s", rel)
		case string(got) != want[rel]:
			report.Differences = append(report.Differences, Difference{
				Path:   rel,
				Status: StatusStale,
				Diff:   Unified(rel, string(got), want[rel]),
			})
		}
	}

	if len(scopes) == 0 {
		scopes = []string{"."}
	}
	for _, scope := range scopes {
		extra, err := readTree(filepath.Join(actual, filepath.FromSlash(scope)))
		if err != nil {
			return nil, errors.Wrapf(err, "read output tree %s", actual)
		}
		for _, rel := range sortedKeys(extra) {
			full := pathJoin(scope, rel)
			if _, ok := want[full]; !ok {
				report.Differences = append(report.Differences, Difference{Path: full, Status: StatusExtra})
			}
		}
	}

	sort.SliceStable(report.Differences, func(i, j int) bool {
		return report.Differences[i].Path < report.Differences[j].Path
	})
	return report, nil
}

// Unified returns a unified diff turning before into after, labelled with
// path.
func Unified(path, before, after string) string {
	edits := myers.ComputeEdits(span.URIFromPath(path), before, after)
	return fmt.Sprint(gotextdiff.ToUnified("a/"+path, "b/"+path, before, edits))
}

// readTree reads every regular file under root, keyed by slash-separated
// relative path. A missing root is an empty tree.
func readTree(root string) (map[string]string, error) {
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func pathJoin(scope, rel string) string {
	scope = strings.Trim(filepath.ToSlash(scope), "/")
	if scope == "" || scope == "." {
		return rel
	}
	return scope + "/" + rel
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
