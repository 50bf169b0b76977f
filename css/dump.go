package css

import "autoprefix/utils/debug"

// Dump renders located declarations grouped by block.
func (s *Stylesheet) Dump() string {
	tw := debug.NewTreeWriter("  ")
	tw.Line(0, "stylesheet: %d bytes, %d tokens, %d declarations", len(s.Source), len(s.tokens), len(s.Declarations))

	block := -1
	for _, d := range s.Declarations {
		if d.Block != block {
			block = d.Block
			tw.Line(1, "block %d", block)
		}
		tw.Line(2, "%s at %d:%d [%d:%d] semicolon=%t", d.Property, d.Line+1, d.Column+1, d.Start, d.End, d.Semicolon)
		tw.Text(3, "text", string(s.Source[d.Start:d.End]))
		tw.Text(3, "indent", d.Indent)
	}
	return tw.String()
}
