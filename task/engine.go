package task

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"

	"autoprefix/config"
	"autoprefix/css"
	"autoprefix/sourcemap"
)

// TransformOptions are passed to the engine for every file.
type TransformOptions struct {
	Browsers []string
	From     string // original file
	To       string // output file
	Map      bool   // raw source map requested
}

// TransformResult is the engine output. Sources of the map are relative to
// directory of the original file.
type TransformResult struct {
	Text string
	Map  *sourcemap.SourceMap
}

// Transformer is a transformation engine.
type Transformer interface {
	Transform(ctx context.Context, text string, opts TransformOptions) (*TransformResult, error)
}

// Differ produces textual diff of two versions of a file.
type Differ interface {
	Diff(label, before, after string) string
}

// PrefixEngine adapts css.Prefixer to Transformer.
type PrefixEngine struct {
	prefixer *css.Prefixer
	rpt      *config.Report
	log      *zap.Logger

	seq atomic.Int64
}

// NewPrefixEngine returns default engine which adds vendor prefixes. When
// report is not nil dumps of parsed style sheets are stored there.
func NewPrefixEngine(log *zap.Logger, rpt *config.Report) *PrefixEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &PrefixEngine{prefixer: css.NewPrefixer(log), rpt: rpt, log: log}
}

func (e *PrefixEngine) Transform(ctx context.Context, text string, opts TransformOptions) (*TransformResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := e.prefixer.Process([]byte(text), css.Options{
		Browsers: opts.Browsers,
		From:     opts.From,
		To:       opts.To,
		Map:      opts.Map,
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug("Prefixed declarations", zap.String("file", opts.From), zap.Int("added", res.Added))
	if e.rpt != nil {
		n := e.seq.Add(1)
		e.rpt.StoreData(fmt.Sprintf("debug/%03d-%s.txt", n, config.CleanFileName(filepath.Base(opts.From))), []byte(res.Sheet.Dump()))
	}
	return &TransformResult{Text: res.CSS, Map: res.Map}, nil
}
