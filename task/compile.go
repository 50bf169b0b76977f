// Package task runs vendor prefixing over configured style sheets: for every
// source it invokes transformation engine, reconciles source map with the
// final location of the output and writes results.
package task

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"autoprefix/config"
	"autoprefix/files"
	"autoprefix/sourcemap"
)

// Options for all files of a single run.
type Options struct {
	Browsers []string
	Map      config.MapOption
	Diff     config.DiffOption
	Jobs     int // files processed in parallel, <= 1 sequentially
}

// Compiler processes style sheets one by one.
type Compiler struct {
	fs     afero.Fs
	engine Transformer
	differ Differ
	merger *sourcemap.Merger
	opts   Options
	rpt    *config.Report
	log    *zap.Logger

	seq atomic.Int64 // report entries numbering
}

// NewCompiler creates compiler. Report may be nil.
func NewCompiler(fs afero.Fs, engine Transformer, differ Differ, opts Options, rpt *config.Report, log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{
		fs:     fs,
		engine: engine,
		differ: differ,
		merger: sourcemap.NewMerger(fs, log),
		opts:   opts,
		rpt:    rpt,
		log:    log.Named("task"),
	}
}

// artifact is a single file to be written.
type artifact struct {
	kind string
	path string
	data []byte
}

// Compile processes single source. All outputs are prepared before anything
// is written, then written in order: text, map, diff.
func (c *Compiler) Compile(ctx context.Context, src files.Source) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	input := src.Path
	output := buildOutputPath(c.fs, src)

	data, err := afero.ReadFile(c.fs, input)
	if err != nil {
		return &IOError{Op: "read", Path: input, Err: err}
	}
	original := string(data)
	// input is likely to be overwritten in place, keep it for debugging
	c.store("input", config.CleanFileName(filepath.Base(input)), data)

	res, err := c.engine.Transform(ctx, original, TransformOptions{
		Browsers: c.opts.Browsers,
		From:     input,
		To:       output,
		Map:      c.opts.Map.Enabled,
	})
	if err != nil {
		return &TransformError{Path: input, Err: err}
	}

	text := res.Text
	var outputs []artifact
	if c.opts.Map.Enabled {
		mapPath := buildMapPath(input, output, c.opts.Map)
		merged, err := c.merger.Merge(sourcemap.PathPair{From: input, To: output}, mapPath, res.Map)
		if err != nil {
			var pe *fs.PathError
			if errors.As(err, &pe) {
				return &IOError{Op: "read", Path: mapPath, Err: err}
			}
			return fmt.Errorf("unable to prepare source map for %s: %w", output, err)
		}
		text = sourcemap.Annotate(text, merged.Annotation)
		outputs = append(outputs, artifact{kind: "map", path: mapPath, data: merged.Map})
	}
	outputs = append([]artifact{{kind: "css", path: output, data: []byte(text)}}, outputs...)

	if c.opts.Diff.Enabled {
		patch := c.differ.Diff(filepath.ToSlash(output), original, text)
		outputs = append(outputs, artifact{kind: "diff", path: buildDiffPath(output, c.opts.Diff), data: []byte(patch)})
	}

	for _, a := range outputs {
		if err := c.write(a); err != nil {
			return err
		}
	}

	c.log.Info("File prefixed", zap.String("file", output))
	return nil
}

func (c *Compiler) write(a artifact) error {
	if dir := filepath.Dir(a.path); dir != "." {
		if err := c.fs.MkdirAll(dir, 0755); err != nil {
			return &IOError{Op: "mkdir", Path: dir, Err: err}
		}
	}
	if err := afero.WriteFile(c.fs, a.path, a.data, 0644); err != nil {
		return &IOError{Op: "write", Path: a.path, Err: err}
	}
	c.log.Debug("Written", zap.String("kind", a.kind), zap.String("path", a.path), zap.Int("bytes", len(a.data)))

	c.store("output", a.kind+"-"+config.CleanFileName(filepath.Base(a.path)), a.data)
	return nil
}

// store puts data into debug report numbering entries to keep names unique.
func (c *Compiler) store(dir, name string, data []byte) {
	if c.rpt == nil {
		return
	}
	c.rpt.StoreData(fmt.Sprintf("%s/%03d-%s", dir, c.seq.Add(1), name), data)
}

// CompileAll processes all sources. Failure of a single file is logged and
// does not stop the batch, all failures are returned together. Batch stops
// between files when context is canceled.
func (c *Compiler) CompileAll(ctx context.Context, sources []files.Source) error {
	c.log.Info("Processing starting", zap.Int("files", len(sources)), zap.Int("jobs", max(c.opts.Jobs, 1)))
	defer func(start time.Time) {
		c.log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	if c.opts.Jobs <= 1 {
		return c.sequential(ctx, sources)
	}
	return c.parallel(ctx, sources)
}
