package css

import "strings"

// segment maps generated position to position in the single source.
type segment struct {
	genLine, genCol int
	srcLine, srcCol int
}

const vlqAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// encodeMappings produces "mappings" field of version 3 source map. Segments
// must be ordered by generated position.
func encodeMappings(segments []segment) string {
	var (
		sb              strings.Builder
		line, col       int
		srcLine, srcCol int
	)
	first := true
	for _, s := range segments {
		for line < s.genLine {
			sb.WriteByte(';')
			line++
			col = 0
			first = true
		}
		if !first {
			sb.WriteByte(',')
		}
		first = false

		writeVLQ(&sb, s.genCol-col)
		writeVLQ(&sb, 0) // source index, always the only source
		writeVLQ(&sb, s.srcLine-srcLine)
		writeVLQ(&sb, s.srcCol-srcCol)
		col, srcLine, srcCol = s.genCol, s.srcLine, s.srcCol
	}
	return sb.String()
}

// writeVLQ writes base64 VLQ: sign in the lowest bit, 5 bits per digit,
// continuation in the 6th.
func writeVLQ(sb *strings.Builder, v int) {
	u := v << 1
	if v < 0 {
		u = (-v << 1) | 1
	}
	for {
		digit := u & 0x1f
		u >>= 5
		if u > 0 {
			digit |= 0x20
		}
		sb.WriteByte(vlqAlphabet[digit])
		if u == 0 {
			return
		}
	}
}
