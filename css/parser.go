package css

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf16"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// token is a lexer token together with its location in the source.
type token struct {
	tt     css.TokenType
	text   string
	offset int
	line   int
	col    int
}

// significant tokens get their own mapping segment.
func (t token) significant() bool {
	return t.tt != css.WhitespaceToken && t.tt != css.CommentToken
}

// Stylesheet is tokenized source with declarations located. Tokens cover the
// source completely, so concatenating them gives the original text back.
type Stylesheet struct {
	Source       []byte
	Declarations []Declaration

	tokens   []token
	declared map[int]map[string]bool
}

// Declared reports whether property (case-insensitive) is declared directly
// in the block.
func (s *Stylesheet) Declared(block int, property string) bool {
	return s.declared[block][strings.ToLower(property)]
}

// tokensIn returns tokens starting in [from, to) byte range.
func (s *Stylesheet) tokensIn(from, to int) []token {
	lo := sort.Search(len(s.tokens), func(i int) bool { return s.tokens[i].offset >= from })
	hi := sort.Search(len(s.tokens), func(i int) bool { return s.tokens[i].offset >= to })
	return s.tokens[lo:hi]
}

// Parser tokenizes style sheets and finds property declarations. It does not
// try to understand selectors or values.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse tokenizes data and collects declarations in source order.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) (*Stylesheet, error) {
	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	tokens, err := tokenize(data)
	if err != nil {
		return nil, err
	}

	sheet := &Stylesheet{
		Source:   data,
		tokens:   tokens,
		declared: make(map[int]map[string]bool),
	}

	var (
		blocks    []int // stack of open block ordinals
		ordinal   int
		stmtStart bool
	)
	for i := 0; i < len(tokens); i++ {
		switch tokens[i].tt {
		case css.LeftBraceToken:
			ordinal++
			blocks = append(blocks, ordinal)
			stmtStart = true
			continue
		case css.RightBraceToken:
			if len(blocks) > 0 {
				blocks = blocks[:len(blocks)-1]
			}
			stmtStart = len(blocks) > 0
			continue
		case css.SemicolonToken:
			stmtStart = len(blocks) > 0
			continue
		case css.WhitespaceToken, css.CommentToken:
			continue
		case css.IdentToken:
			if stmtStart && len(blocks) > 0 {
				if d, last, ok := declarationAt(tokens, i, len(data)); ok {
					d.Block = blocks[len(blocks)-1]
					sheet.add(d)
					i = last
					stmtStart = d.Semicolon
					continue
				}
			}
		}
		stmtStart = false
	}

	p.log.Debug("Parsed CSS", zap.Int("tokens", len(tokens)), zap.Int("declarations", len(sheet.Declarations)), zap.Int("blocks", ordinal))
	return sheet, nil
}

func (s *Stylesheet) add(d Declaration) {
	s.Declarations = append(s.Declarations, d)
	names, ok := s.declared[d.Block]
	if !ok {
		names = make(map[string]bool)
		s.declared[d.Block] = names
	}
	names[strings.ToLower(d.Property)] = true
}

// declarationAt checks whether identifier at i starts a declaration and
// returns it with index of its last token. Nested rules ("a:hover { ... }")
// are not declarations.
func declarationAt(tokens []token, i, size int) (Declaration, int, bool) {
	j := i + 1
	for j < len(tokens) && (tokens[j].tt == css.WhitespaceToken || tokens[j].tt == css.CommentToken) {
		j++
	}
	if j >= len(tokens) || tokens[j].tt != css.ColonToken {
		return Declaration{}, 0, false
	}

	d := Declaration{
		Property: tokens[i].text,
		Start:    tokens[i].offset,
		End:      size,
		Line:     tokens[i].line,
		Column:   tokens[i].col,
		Indent:   indentBefore(tokens, i),
	}
	last := len(tokens) - 1

	depth := 0
scan:
	for k := j + 1; k < len(tokens); k++ {
		switch tokens[k].tt {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			if depth > 0 {
				depth--
			}
		case css.LeftBraceToken:
			if depth == 0 {
				return Declaration{}, 0, false
			}
		case css.RightBraceToken:
			if depth == 0 {
				d.End, last = tokens[k].offset, k-1
				break scan
			}
		case css.SemicolonToken:
			if depth == 0 {
				d.End, last, d.Semicolon = tokens[k].offset+len(tokens[k].text), k, true
				break scan
			}
		}
	}
	return d, last, true
}

// indentBefore returns separator to put between copies of declaration at i:
// line break with indentation when declaration starts a line, single space
// when it follows other text on the same line.
func indentBefore(tokens []token, i int) string {
	if i == 0 || tokens[i-1].tt != css.WhitespaceToken {
		return ""
	}
	ws := tokens[i-1].text
	n := strings.LastIndex(ws, "\n")
	if n < 0 {
		return " "
	}
	if n > 0 && ws[n-1] == '\r' {
		n--
	}
	return ws[n:]
}

func tokenize(data []byte) ([]token, error) {
	lexer := css.NewLexer(parse.NewInput(bytes.NewReader(data)))

	var (
		tokens []token
		pos    position
		offset int
	)
	for {
		tt, text := lexer.Next()
		if tt == css.ErrorToken {
			if err := lexer.Err(); err != nil && err != io.EOF {
				return nil, fmt.Errorf("unable to tokenize style sheet at %d:%d: %w", pos.line+1, pos.col+1, err)
			}
			break
		}
		tokens = append(tokens, token{tt: tt, text: string(text), offset: offset, line: pos.line, col: pos.col})
		offset += len(text)
		pos.advance(string(text))
	}
	if offset != len(data) {
		return nil, fmt.Errorf("unable to tokenize style sheet at %d:%d: unexpected character", pos.line+1, pos.col+1)
	}
	return tokens, nil
}

// position is 0-based line and UTF-16 column, as source maps count them.
type position struct {
	line, col int
}

func (p *position) advance(s string) {
	for _, r := range s {
		if r == '\n' {
			p.line++
			p.col = 0
			continue
		}
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		p.col += n
	}
}
