// Package files expands file groups into concrete source paths.
package files

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/maruel/natural"
	"github.com/spf13/afero"
)

// Group is a set of source patterns sharing destination.
type Group struct {
	Src    []string // glob patterns ("**" crosses directories), "!" prefix excludes matches
	Dest   string   // empty for in-place
	Nonull bool     // report patterns matching nothing
}

// Source is a single file selected by a group.
type Source struct {
	Path string
	Dest string // destination of the group
}

// SourceNotFoundError reports configured source which does not exist.
type SourceNotFoundError struct {
	Path string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source file %q not found", e.Path)
}

// WalkFunc is called for every source selected by group in natural order of
// paths. When source does not exist err is *SourceNotFoundError and returning
// nil continues the walk. Any other returned error stops processing.
type WalkFunc func(src Source, err error) error

// Walk expands patterns of the group on fs calling walkFn for each selected
// file. Literal paths (no glob meta characters) which do not exist are
// always reported, patterns matching nothing only when group is Nonull.
// Directories are never selected.
func Walk(fs afero.Fs, group Group, walkFn WalkFunc) error {
	var (
		selected []string
		seen     = make(map[string]bool)
		missing  []string
	)

	for _, pattern := range group.Src {
		if pattern == "" {
			continue
		}
		if exclude, ok := strings.CutPrefix(pattern, "!"); ok {
			selected = excluded(selected, exclude, seen)
			continue
		}

		matches, err := expand(fs, pattern)
		if err != nil {
			return fmt.Errorf("unable to expand %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			if group.Nonull || !hasMeta(pattern) {
				missing = append(missing, pattern)
			}
			continue
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				selected = append(selected, m)
			}
		}
	}

	for _, path := range missing {
		if err := walkFn(Source{Path: path, Dest: group.Dest}, &SourceNotFoundError{Path: path}); err != nil {
			return err
		}
	}
	for _, path := range selected {
		if err := walkFn(Source{Path: path, Dest: group.Dest}, nil); err != nil {
			return err
		}
	}
	return nil
}

// Expand walks all groups and returns selected sources. Missing sources are
// returned separately so that caller could warn about them.
func Expand(fs afero.Fs, groups []Group) ([]Source, []error, error) {
	var (
		sources []Source
		missing []error
	)
	for _, g := range groups {
		err := Walk(fs, g, func(src Source, err error) error {
			if err != nil {
				missing = append(missing, err)
				return nil
			}
			sources = append(sources, src)
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	}
	return sources, missing, nil
}

// expand returns regular files matching pattern in natural order.
func expand(fs afero.Fs, pattern string) ([]string, error) {
	var candidates []string
	if hasMeta(pattern) {
		matches, err := glob(fs, pattern)
		if err != nil {
			return nil, err
		}
		candidates = matches
	} else {
		candidates = []string{pattern}
	}

	var files []string
	for _, c := range candidates {
		fi, err := fs.Stat(c)
		if err != nil || fi.IsDir() {
			continue
		}
		files = append(files, c)
	}
	sort.Sort(natural.StringSlice(files))
	return files, nil
}

// glob matches pattern below its static base directory, so "**" does not
// have to start walking at the root of fs.
func glob(fs afero.Fs, pattern string) ([]string, error) {
	base, rel := doublestar.SplitPattern(filepath.ToSlash(pattern))
	root := fs
	if base != "." {
		root = afero.NewBasePathFs(fs, filepath.FromSlash(base))
	}
	if !doublestar.ValidatePattern(rel) {
		return nil, doublestar.ErrBadPattern
	}
	matches, err := doublestar.Glob(afero.NewIOFS(root), rel, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	for i, m := range matches {
		matches[i] = filepath.Join(filepath.FromSlash(base), filepath.FromSlash(m))
	}
	return matches, nil
}

// excluded drops paths matching pattern from selection.
func excluded(selected []string, pattern string, seen map[string]bool) []string {
	kept := selected[:0]
	for _, path := range selected {
		if ok, _ := doublestar.Match(filepath.ToSlash(filepath.Clean(pattern)), filepath.ToSlash(filepath.Clean(path))); ok {
			delete(seen, path)
			continue
		}
		kept = append(kept, path)
	}
	return kept
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, `*?[{`)
}
