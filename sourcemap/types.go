// Package sourcemap reconciles source maps with the final location of the
// files they describe.
//
// Transformation engines produce maps with paths relative to the original
// file. Once output is written elsewhere (or a map already existed for the
// input) the embedded paths have to be recomputed. Everything here is pure
// path algebra: the process working directory is never changed, so files can
// be handled concurrently.
package sourcemap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	gosourcemap "github.com/go-sourcemap/sourcemap"
)

// SourceMap is revision 3 source map document. Mappings are opaque and never
// touched here.
type SourceMap struct {
	Version        int       `json:"version"`
	File           string    `json:"file"`
	SourceRoot     string    `json:"sourceRoot,omitempty"`
	Sources        []string  `json:"sources"`
	SourcesContent []*string `json:"sourcesContent,omitempty"`
	Names          []string  `json:"names"`
	Mappings       string    `json:"mappings"`
}

// PathPair is original file path and path the transformed file is written to.
type PathPair struct {
	From string
	To   string
}

// InvalidPathError is returned when path cannot be relativized.
type InvalidPathError struct {
	Path string
	Err  error
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %q: %v", e.Path, e.Err)
}

func (e *InvalidPathError) Unwrap() error {
	return e.Err
}

// MapParseError is returned when existing source map cannot be parsed. There
// is no fallback to the freshly generated map.
type MapParseError struct {
	Path string
	Err  error
}

func (e *MapParseError) Error() string {
	return fmt.Sprintf("unable to parse source map %q: %v", e.Path, e.Err)
}

func (e *MapParseError) Unwrap() error {
	return e.Err
}

var errIndexedMap = errors.New("indexed source maps (sections) are not supported")

// Parse decodes source map document. Besides being valid JSON the document
// must be accepted by a source map consumer, so maps with broken mappings are
// rejected here rather than producing garbage later.
func Parse(data []byte) (*SourceMap, error) {
	var probe struct {
		Sections json.RawMessage `json:"sections"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if len(probe.Sections) > 0 {
		return nil, errIndexedMap
	}
	if _, err := gosourcemap.Parse("", data); err != nil {
		return nil, err
	}

	m := &SourceMap{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Bytes serializes the map into compact JSON.
func (m *SourceMap) Bytes() ([]byte, error) {
	out := *m
	if out.Sources == nil {
		out.Sources = []string{}
	}
	if out.Names == nil {
		out.Names = []string{}
	}

	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(&out); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
