package task

import (
	"archive/zip"
	"context"
	"io"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"autoprefix/config"
	"autoprefix/files"
)

func TestCompile_StoresArtifactsInReport(t *testing.T) {
	conf := config.ReporterConfig{Destination: filepath.Join(t.TempDir(), "report.zip")}
	rpt, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	fs := newTestFs(t, map[string]string{"/proj/a.css": "a {}"})
	c := NewCompiler(fs, &fakeEngine{}, fakeDiffer{}, Options{Map: config.MapOption{Enabled: true}}, rpt, zaptest.NewLogger(t))
	if err := c.Compile(context.Background(), files.Source{Path: "/proj/a.css"}); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	zr, err := zip.OpenReader(rpt.Name())
	if err != nil {
		t.Fatalf("failed to open report: %v", err)
	}
	defer zr.Close()

	entries := make(map[string]string)
	for _, f := range zr.File {
		r, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			t.Fatalf("failed to read %s: %v", f.Name, err)
		}
		entries[f.Name] = string(data)
	}

	// input is overwritten in place, report keeps the original
	if got := entries["input/001-a.css"]; got != "a {}" {
		t.Errorf("input/001-a.css = %q", got)
	}
	if got := readFile(t, fs, "/proj/a.css"); entries["output/002-css-a.css"] != got {
		t.Errorf("output/002-css-a.css = %q, want %q", entries["output/002-css-a.css"], got)
	}
	if _, ok := entries["output/003-map-a.css.map"]; !ok {
		t.Error("map is missing from report")
	}
}
