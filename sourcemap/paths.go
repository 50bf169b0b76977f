package sourcemap

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	errEmptyPath   = errors.New("path is empty")
	errNulInPath   = errors.New("path contains NUL character")
	errNotRelative = errors.New("paths cannot be made relative to each other")
)

// Relativize returns target expressed relative to the directory containing
// basePath. Relative inputs are resolved against the current directory, which
// is only read.
func Relativize(basePath, target string) (string, error) {
	base, err := absPath(basePath)
	if err != nil {
		return "", err
	}
	tgt, err := absPath(target)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(filepath.Dir(base), tgt)
	if err != nil {
		return "", &InvalidPathError{Path: target, Err: errors.Join(errNotRelative, err)}
	}
	return rel, nil
}

// RebaseMapFile points map "file" field to the base name of the new output.
func RebaseMapFile(m *SourceMap, newOutputPath string) {
	m.File = filepath.Base(newOutputPath)
}

// RebaseSources re-expresses every source relative to the directory of
// newMapOwner (the file map will be written next to). Relative entries are
// interpreted as relative to directory base. Entries with URL scheme are left
// alone. Result has the same length and order as sources: mappings index
// into it by position.
func RebaseSources(sources []string, base, newMapOwner string) ([]string, error) {
	out := make([]string, len(sources))
	for i, src := range sources {
		if hasScheme(src) {
			out[i] = src
			continue
		}
		p := filepath.FromSlash(src)
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		rel, err := Relativize(newMapOwner, p)
		if err != nil {
			return nil, err
		}
		out[i] = rel
	}
	return out, nil
}

// rebaseMapSources rebases sources of m taking sourceRoot into account. When
// sources were rebased returned root is empty since rebased paths are already
// complete.
func rebaseMapSources(m *SourceMap, base, newMapOwner string) ([]string, string, error) {
	if root := m.SourceRoot; root != "" {
		if hasScheme(root) {
			return m.Sources, root, nil
		}
		root = filepath.FromSlash(root)
		if filepath.IsAbs(root) {
			base = root
		} else {
			base = filepath.Join(base, root)
		}
	}
	sources, err := RebaseSources(m.Sources, base, newMapOwner)
	if err != nil {
		return nil, "", err
	}
	return sources, "", nil
}

func absPath(p string) (string, error) {
	switch {
	case p == "":
		return "", &InvalidPathError{Path: p, Err: errEmptyPath}
	case strings.ContainsRune(p, 0):
		return "", &InvalidPathError{Path: p, Err: errNulInPath}
	}
	a, err := filepath.Abs(p)
	if err != nil {
		return "", &InvalidPathError{Path: p, Err: err}
	}
	return a, nil
}

// hasScheme reports whether source reference is URL rather than a path:
// "webpack://app/a.css", "data:text/css;base64,...".
func hasScheme(s string) bool {
	if strings.HasPrefix(s, "data:") {
		return true
	}
	i := strings.Index(s, "://")
	if i <= 0 {
		return false
	}
	for _, r := range s[:i] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}
