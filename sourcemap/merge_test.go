package sourcemap

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	gosourcemap "github.com/go-sourcemap/sourcemap"
	"github.com/spf13/afero"
	"go.uber.org/zap/zaptest"
)

func rawMap(sources ...string) *SourceMap {
	return &SourceMap{
		Version:  3,
		File:     "a.css",
		Sources:  sources,
		Names:    []string{},
		Mappings: "AAAA;AACA",
	}
}

func decode(t *testing.T, data []byte) *SourceMap {
	t.Helper()
	m := &SourceMap{}
	if err := json.Unmarshal(data, m); err != nil {
		t.Fatalf("unable to decode result map: %v\n%s", err, data)
	}
	return m
}

func TestMerge_NoPriorMap(t *testing.T) {
	in := MergeInput{
		Paths:     PathPair{From: "/proj/src/a.css", To: "/proj/dist/a.css"},
		MapTarget: "/proj/dist/a.css.map",
		Raw:       rawMap("a.css"),
	}

	res, err := Merge(in)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if res.Annotation != "/*# sourceMappingURL=a.css.map */" {
		t.Errorf("Annotation = %q", res.Annotation)
	}

	m := decode(t, res.Map)
	if want := filepath.FromSlash("../src/a.css"); len(m.Sources) != 1 || m.Sources[0] != want {
		t.Errorf("Sources = %v, want [%s]", m.Sources, want)
	}
	if m.File != "a.css" {
		t.Errorf("File = %q, want a.css", m.File)
	}
	if m.Mappings != "AAAA;AACA" {
		t.Errorf("Mappings changed: %q", m.Mappings)
	}
}

func TestMerge_PriorMapWins(t *testing.T) {
	prior := `{"version":3,"file":"a.css","sources":["../src/./x.css"],"names":[],"mappings":"AAAA"}`
	in := MergeInput{
		Paths:     PathPair{From: "/proj/src/a.css", To: "/proj/dist/a.css"},
		MapTarget: "/proj/dist/a.css.map",
		Raw:       rawMap("y.css"),
		Prior:     []byte(prior),
	}

	res, err := Merge(in)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if res.Annotation != "" {
		t.Errorf("expected no annotation with prior map, got %q", res.Annotation)
	}

	m := decode(t, res.Map)
	if want := filepath.FromSlash("../src/x.css"); len(m.Sources) != 1 || m.Sources[0] != want {
		t.Errorf("Sources = %v, want [%s]", m.Sources, want)
	}
	for _, s := range m.Sources {
		if strings.Contains(s, "y.css") {
			t.Errorf("fresh source leaked into merged map: %v", m.Sources)
		}
	}
	// mappings always come from the fresh transformation
	if m.Mappings != "AAAA;AACA" {
		t.Errorf("Mappings = %q", m.Mappings)
	}
}

func TestMerge_PriorSourcesContent(t *testing.T) {
	prior := `{"version":3,"file":"a.css","sources":["x.scss"],"sourcesContent":["$a: 1;"],"names":[],"mappings":"AAAA"}`
	raw := rawMap("a.css")
	content := "a {}"
	raw.SourcesContent = []*string{&content}

	res, err := Merge(MergeInput{
		Paths:     PathPair{From: "/p/a.css", To: "/p/a.css"},
		MapTarget: "/p/a.css.map",
		Raw:       raw,
		Prior:     []byte(prior),
	})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	m := decode(t, res.Map)
	if len(m.SourcesContent) != 1 || m.SourcesContent[0] == nil || *m.SourcesContent[0] != "$a: 1;" {
		t.Errorf("SourcesContent must follow prior sources, got %v", m.SourcesContent)
	}
}

func TestMerge_FileFieldIsBaseName(t *testing.T) {
	outputs := []string{
		"/proj/dist/a.css",
		"/proj/dist/deep/er/site.min.css",
		"relative/out.css",
		"plain.css",
	}
	for _, to := range outputs {
		t.Run(to, func(t *testing.T) {
			res, err := Merge(MergeInput{
				Paths:     PathPair{From: "/proj/src/a.css", To: to},
				MapTarget: to + ".map",
				Raw:       rawMap("a.css"),
			})
			if err != nil {
				t.Fatalf("Merge() error = %v", err)
			}
			m := decode(t, res.Map)
			if m.File != filepath.Base(to) {
				t.Errorf("File = %q, want %q", m.File, filepath.Base(to))
			}
			if strings.ContainsAny(m.File, `/\`) {
				t.Errorf("File contains directory: %q", m.File)
			}
		})
	}
}

func TestMerge_MalformedPrior(t *testing.T) {
	tests := []struct {
		name  string
		prior string
	}{
		{"not json", "this is not a map"},
		{"empty", ""},
		{"wrong version", `{"version":2,"sources":[],"names":[],"mappings":""}`},
		{"sections", `{"version":3,"sections":[{"offset":{"line":0,"column":0},"map":{"version":3,"sources":[],"names":[],"mappings":""}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Merge(MergeInput{
				Paths:     PathPair{From: "/p/a.css", To: "/p/a.css"},
				MapTarget: "/p/a.css.map",
				Raw:       rawMap("a.css"),
				Prior:     []byte(tt.prior),
			})
			var mpe *MapParseError
			if !errors.As(err, &mpe) {
				t.Fatalf("expected MapParseError, got %v", err)
			}
			if mpe.Path != "/p/a.css.map" {
				t.Errorf("MapParseError.Path = %q", mpe.Path)
			}
		})
	}
}

func TestMerge_MapTargetInOtherDirectory(t *testing.T) {
	res, err := Merge(MergeInput{
		Paths:     PathPair{From: "/proj/src/a.css", To: "/proj/dist/a.css"},
		MapTarget: "/proj/maps/a.css.map",
		Raw:       rawMap("a.css"),
	})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if res.Annotation != "/*# sourceMappingURL=../maps/a.css.map */" {
		t.Errorf("Annotation = %q", res.Annotation)
	}
	m := decode(t, res.Map)
	// sources are relative to the map itself
	if want := filepath.FromSlash("../src/a.css"); m.Sources[0] != want {
		t.Errorf("Sources = %v, want [%s]", m.Sources, want)
	}
}

func TestMerge_PriorSourcesRelativeToMap(t *testing.T) {
	tests := []struct {
		name      string
		from      string
		to        string
		mapTarget string
		prior     string
		want      string
	}{
		{"next to output", "/proj/src/css/a.css", "/proj/dist/a.css", "/proj/dist/a.css.map", "../src/css/a.css", "../src/css/a.css"},
		{"in place", "/proj/src/a.css", "/proj/src/a.css", "/proj/src/a.css.map", "a.css", "a.css"},
		{"map directory", "/proj/src/a.css", "/proj/dist/a.css", "/proj/maps/deep/a.css.map", "../../src/a.css", "../../src/a.css"},
		{"absolute", "/proj/src/a.css", "/proj/dist/a.css", "/proj/dist/a.css.map", "/proj/styles/a.scss", "../styles/a.scss"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Merge(MergeInput{
				Paths:     PathPair{From: tt.from, To: tt.to},
				MapTarget: tt.mapTarget,
				Raw:       rawMap("a.css"),
				Prior:     []byte(`{"version":3,"sources":["` + tt.prior + `"],"names":[],"mappings":"AAAA"}`),
			})
			if err != nil {
				t.Fatalf("Merge() error = %v", err)
			}
			m := decode(t, res.Map)
			if want := filepath.FromSlash(tt.want); len(m.Sources) != 1 || m.Sources[0] != want {
				t.Errorf("Sources = %v, want [%s]", m.Sources, want)
			}
		})
	}
}

func TestMerge_SourceRoot(t *testing.T) {
	raw := rawMap("a.scss")
	raw.SourceRoot = "styles/"

	res, err := Merge(MergeInput{
		Paths:     PathPair{From: "/proj/a.css", To: "/proj/dist/a.css"},
		MapTarget: "/proj/dist/a.css.map",
		Raw:       raw,
	})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	m := decode(t, res.Map)
	if m.SourceRoot != "" {
		t.Errorf("SourceRoot = %q, expected it folded into sources", m.SourceRoot)
	}
	if want := filepath.FromSlash("../styles/a.scss"); m.Sources[0] != want {
		t.Errorf("Sources = %v, want [%s]", m.Sources, want)
	}

	raw = rawMap("a.scss")
	raw.SourceRoot = "https://example.com/src/"
	res, err = Merge(MergeInput{
		Paths:     PathPair{From: "/proj/a.css", To: "/proj/dist/a.css"},
		MapTarget: "/proj/dist/a.css.map",
		Raw:       raw,
	})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	m = decode(t, res.Map)
	if m.SourceRoot != "https://example.com/src/" || m.Sources[0] != "a.scss" {
		t.Errorf("URL source root must be left alone, got root %q sources %v", m.SourceRoot, m.Sources)
	}
}

func TestMerge_NoRawMap(t *testing.T) {
	if _, err := Merge(MergeInput{Paths: PathPair{From: "a.css", To: "a.css"}, MapTarget: "a.css.map"}); err == nil {
		t.Error("expected error without raw map")
	}
}

func TestMerge_ResultIsConsumable(t *testing.T) {
	res, err := Merge(MergeInput{
		Paths:     PathPair{From: "/proj/src/a.css", To: "/proj/dist/a.css"},
		MapTarget: "/proj/dist/a.css.map",
		Raw:       rawMap("a.css"),
	})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	smap, err := gosourcemap.Parse("", res.Map)
	if err != nil {
		t.Fatalf("result is not a valid source map: %v", err)
	}
	if smap.File() != "a.css" {
		t.Errorf("consumer File() = %q", smap.File())
	}
	source, _, line, col, ok := smap.Source(2, 0)
	if !ok {
		t.Fatal("expected mapping for line 2")
	}
	if !strings.HasSuffix(filepath.ToSlash(source), "src/a.css") || line != 2 || col != 0 {
		t.Errorf("Source(2, 0) = %q %d:%d", source, line, col)
	}
}

func TestAnnotate(t *testing.T) {
	if got := Annotate("a {}", ""); got != "a {}" {
		t.Errorf("Annotate() with empty annotation = %q", got)
	}
	got := Annotate("a {}", AnnotationFor("a.css.map"))
	if !strings.HasSuffix(got, "\n/*# sourceMappingURL=a.css.map */") {
		t.Errorf("Annotate() = %q", got)
	}
	if strings.Count(got, "sourceMappingURL") != 1 {
		t.Errorf("Annotate() = %q", got)
	}
}

func TestMerger_LooksForPriorMap(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := NewMerger(fs, zaptest.NewLogger(t))
	paths := PathPair{From: "/proj/src/a.css", To: "/proj/dist/a.css"}

	res, err := m.Merge(paths, "/proj/dist/a.css.map", rawMap("a.css"))
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if res.Annotation == "" {
		t.Error("expected annotation without prior map")
	}

	prior := `{"version":3,"file":"a.css","sources":["../src/x.css"],"names":[],"mappings":"AAAA"}`
	if err := afero.WriteFile(fs, "/proj/dist/a.css.map", []byte(prior), 0644); err != nil {
		t.Fatal(err)
	}
	res, err = m.Merge(paths, "/proj/dist/a.css.map", rawMap("y.css"))
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if res.Annotation != "" {
		t.Errorf("expected no annotation with prior map, got %q", res.Annotation)
	}
	if got := decode(t, res.Map).Sources[0]; got != filepath.FromSlash("../src/x.css") {
		t.Errorf("Sources[0] = %q", got)
	}
}

func TestMerger_EmptyPriorFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/p/a.css.map", nil, 0644); err != nil {
		t.Fatal(err)
	}
	_, err := NewMerger(fs, nil).Merge(PathPair{From: "/p/a.css", To: "/p/a.css"}, "/p/a.css.map", rawMap("a.css"))
	var mpe *MapParseError
	if !errors.As(err, &mpe) {
		t.Fatalf("expected MapParseError for empty prior map, got %v", err)
	}
}
