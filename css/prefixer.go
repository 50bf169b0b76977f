// Package css implements the default transformation engine: it adds vendor
// prefixed copies of declarations older browsers need and produces raw source
// map for the result.
package css

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"autoprefix/sourcemap"
)

// Options for single Process call.
type Options struct {
	Browsers []string // browser queries, see ResolveBrowsers
	From     string   // path of the original file, names the source in the map
	To       string   // path of the output file
	Map      bool     // produce source map
}

// Result of processing.
type Result struct {
	CSS   string
	Map   *sourcemap.SourceMap // sources relative to directory of Options.From
	Added int                  // number of prefixed declarations inserted
	Sheet *Stylesheet          // parsed original
}

// Prefixer adds vendor prefixes to style sheets.
type Prefixer struct {
	parser *Parser
	log    *zap.Logger
}

// NewPrefixer creates prefixer.
func NewPrefixer(log *zap.Logger) *Prefixer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Prefixer{parser: NewParser(log), log: log.Named("prefixer")}
}

// Process returns data with prefixed declarations inserted before original
// ones. Everything else is copied verbatim.
func (p *Prefixer) Process(data []byte, opts Options) (*Result, error) {
	sheet, err := p.parser.Parse(data, opts.From)
	if err != nil {
		return nil, err
	}

	enabled := ResolveBrowsers(opts.Browsers)
	p.log.Debug("Prefixing", zap.String("from", opts.From), zap.Strings("browsers", opts.Browsers), zap.Stringer("prefixes", enabled))

	g := &generator{sheet: sheet}
	res := &Result{Sheet: sheet}

	last := 0
	for _, d := range sheet.Declarations {
		prefixes := p.missingPrefixes(sheet, d, enabled)
		if len(prefixes) == 0 {
			continue
		}
		g.copy(last, d.Start)
		text := declarationText(data[d.Start:d.End], d.Semicolon)
		for _, pf := range prefixes {
			g.insert(string(pf)+text+d.Indent, d.Line, d.Column)
			res.Added++
		}
		last = d.Start
	}
	g.copy(last, len(data))

	res.CSS = g.out.String()
	if opts.Map {
		res.Map = &sourcemap.SourceMap{
			Version:  3,
			File:     outputName(opts),
			Sources:  []string{sourceName(opts)},
			Names:    []string{},
			Mappings: encodeMappings(g.segments),
		}
	}
	return res, nil
}

// missingPrefixes returns prefixes for d which are enabled and not already
// declared in the same block.
func (p *Prefixer) missingPrefixes(sheet *Stylesheet, d Declaration, enabled PrefixSet) []Prefix {
	if strings.HasPrefix(d.Property, "-") {
		return nil
	}
	var out []Prefix
	for _, pf := range PrefixesFor(d.Property, enabled) {
		if sheet.Declared(d.Block, string(pf)+d.Property) {
			continue
		}
		out = append(out, pf)
	}
	return out
}

// declarationText makes sure copied declaration is terminated.
func declarationText(decl []byte, semicolon bool) string {
	if semicolon {
		return string(decl)
	}
	return strings.TrimRight(string(decl), " \t\r\n\f") + ";"
}

func sourceName(opts Options) string {
	if opts.From == "" {
		return "<input css>"
	}
	return filepath.ToSlash(filepath.Base(opts.From))
}

func outputName(opts Options) string {
	if opts.To == "" {
		return sourceName(opts)
	}
	return filepath.Base(opts.To)
}

// generator accumulates output text and mapping segments.
type generator struct {
	sheet    *Stylesheet
	out      strings.Builder
	pos      position
	segments []segment
}

// copy copies original source in [from, to) mapping every significant token.
func (g *generator) copy(from, to int) {
	for _, t := range g.sheet.tokensIn(from, to) {
		if t.significant() {
			g.mark(t.line, t.col)
		}
		g.write(t.text)
	}
}

// insert writes generated text mapped to the original position.
func (g *generator) insert(text string, line, col int) {
	g.mark(line, col)
	g.write(text)
}

func (g *generator) mark(line, col int) {
	if n := len(g.segments); n > 0 {
		prev := g.segments[n-1]
		if prev.genLine == g.pos.line && prev.genCol == g.pos.col {
			return
		}
	}
	g.segments = append(g.segments, segment{genLine: g.pos.line, genCol: g.pos.col, srcLine: line, srcCol: col})
}

func (g *generator) write(s string) {
	g.out.WriteString(s)
	g.pos.advance(s)
}
