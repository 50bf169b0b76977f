package css

import (
	"slices"
	"strings"
)

// Prefix is a vendor prefix including both dashes.
type Prefix string

const (
	PrefixWebkit Prefix = "-webkit-"
	PrefixMoz    Prefix = "-moz-"
	PrefixMs     Prefix = "-ms-"
	PrefixO      Prefix = "-o-"
)

// allPrefixes is also the order prefixed copies are emitted in.
var allPrefixes = []Prefix{PrefixWebkit, PrefixMoz, PrefixMs, PrefixO}

// PrefixSet is a set of prefixes enabled by browser targets.
type PrefixSet uint8

func prefixBit(p Prefix) PrefixSet {
	i := slices.Index(allPrefixes, p)
	if i < 0 {
		return 0
	}
	return PrefixSet(1) << i
}

// Has reports whether p is enabled.
func (s PrefixSet) Has(p Prefix) bool {
	return s&prefixBit(p) != 0
}

// Prefixes returns enabled prefixes in emission order.
func (s PrefixSet) Prefixes() []Prefix {
	var out []Prefix
	for _, p := range allPrefixes {
		if s.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// String returns space separated list of enabled prefixes.
func (s PrefixSet) String() string {
	ps := s.Prefixes()
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = string(p)
	}
	return strings.Join(parts, " ")
}

func setOf(ps ...Prefix) PrefixSet {
	var s PrefixSet
	for _, p := range ps {
		s |= prefixBit(p)
	}
	return s
}

// AllPrefixes enables every known prefix.
var AllPrefixes = setOf(allPrefixes...)

// browserFamilies maps browser names used in queries to prefixes their older
// versions need.
var browserFamilies = map[string]PrefixSet{
	"chrome":     setOf(PrefixWebkit),
	"and_chr":    setOf(PrefixWebkit),
	"safari":     setOf(PrefixWebkit),
	"ios":        setOf(PrefixWebkit),
	"ios_saf":    setOf(PrefixWebkit),
	"android":    setOf(PrefixWebkit),
	"samsung":    setOf(PrefixWebkit),
	"bb":         setOf(PrefixWebkit),
	"blackberry": setOf(PrefixWebkit),
	"kaios":      setOf(PrefixWebkit, PrefixMoz),
	"firefox":    setOf(PrefixMoz),
	"ff":         setOf(PrefixMoz),
	"and_ff":     setOf(PrefixMoz),
	"ie":         setOf(PrefixMs),
	"explorer":   setOf(PrefixMs),
	"ie_mob":     setOf(PrefixMs),
	"edge":       setOf(PrefixMs),
	"opera":      setOf(PrefixWebkit, PrefixO),
	"op_mini":    setOf(PrefixWebkit, PrefixO),
	"op_mob":     setOf(PrefixWebkit, PrefixO),
}

// ResolveBrowsers turns browser queries into set of prefixes. Queries naming
// known browser families enable prefixes of those families, generic queries
// ("last 2 versions", "> 1%", "defaults") and empty list enable everything.
// Negated queries ("not ie 11") are ignored.
func ResolveBrowsers(queries []string) PrefixSet {
	if len(queries) == 0 {
		return AllPrefixes
	}

	var set PrefixSet
	for _, q := range queries {
		q = strings.ToLower(strings.TrimSpace(q))
		if q == "" || strings.HasPrefix(q, "not ") {
			continue
		}
		var named PrefixSet
		found := false
		for _, word := range strings.FieldsFunc(q, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' }) {
			if ps, ok := browserFamilies[word]; ok {
				named |= ps
				found = true
			}
		}
		if !found {
			return AllPrefixes
		}
		set |= named
	}
	return set
}

// properties lists standard properties older browsers only understood with
// vendor prefix, and which prefixes ever existed for them.
var properties = map[string]PrefixSet{
	"align-content":              setOf(PrefixWebkit),
	"align-items":                setOf(PrefixWebkit),
	"align-self":                 setOf(PrefixWebkit),
	"animation":                  setOf(PrefixWebkit, PrefixMoz, PrefixO),
	"animation-delay":            setOf(PrefixWebkit, PrefixMoz, PrefixO),
	"animation-direction":        setOf(PrefixWebkit, PrefixMoz, PrefixO),
	"animation-duration":         setOf(PrefixWebkit, PrefixMoz, PrefixO),
	"animation-fill-mode":        setOf(PrefixWebkit, PrefixMoz, PrefixO),
	"animation-iteration-count":  setOf(PrefixWebkit, PrefixMoz, PrefixO),
	"animation-name":             setOf(PrefixWebkit, PrefixMoz, PrefixO),
	"animation-play-state":       setOf(PrefixWebkit, PrefixMoz, PrefixO),
	"animation-timing-function":  setOf(PrefixWebkit, PrefixMoz, PrefixO),
	"appearance":                 setOf(PrefixWebkit, PrefixMoz),
	"backdrop-filter":            setOf(PrefixWebkit),
	"backface-visibility":        setOf(PrefixWebkit, PrefixMoz),
	"border-radius":              setOf(PrefixWebkit, PrefixMoz),
	"box-shadow":                 setOf(PrefixWebkit),
	"box-sizing":                 setOf(PrefixWebkit, PrefixMoz),
	"clip-path":                  setOf(PrefixWebkit),
	"column-count":               setOf(PrefixWebkit, PrefixMoz),
	"column-gap":                 setOf(PrefixWebkit, PrefixMoz),
	"column-rule":                setOf(PrefixWebkit, PrefixMoz),
	"column-width":               setOf(PrefixWebkit, PrefixMoz),
	"columns":                    setOf(PrefixWebkit, PrefixMoz),
	"filter":                     setOf(PrefixWebkit),
	"flex":                       setOf(PrefixWebkit, PrefixMs),
	"flex-basis":                 setOf(PrefixWebkit),
	"flex-direction":             setOf(PrefixWebkit),
	"flex-flow":                  setOf(PrefixWebkit),
	"flex-grow":                  setOf(PrefixWebkit),
	"flex-shrink":                setOf(PrefixWebkit),
	"flex-wrap":                  setOf(PrefixWebkit),
	"font-feature-settings":      setOf(PrefixWebkit, PrefixMoz),
	"hyphens":                    setOf(PrefixWebkit, PrefixMoz, PrefixMs),
	"justify-content":            setOf(PrefixWebkit),
	"mask":                       setOf(PrefixWebkit),
	"mask-image":                 setOf(PrefixWebkit),
	"order":                      setOf(PrefixWebkit),
	"perspective":                setOf(PrefixWebkit, PrefixMoz),
	"perspective-origin":         setOf(PrefixWebkit, PrefixMoz),
	"tab-size":                   setOf(PrefixMoz, PrefixO),
	"text-size-adjust":           setOf(PrefixWebkit, PrefixMoz, PrefixMs),
	"transform":                  setOf(PrefixWebkit, PrefixMoz, PrefixMs, PrefixO),
	"transform-origin":           setOf(PrefixWebkit, PrefixMoz, PrefixMs, PrefixO),
	"transform-style":            setOf(PrefixWebkit, PrefixMoz),
	"transition":                 setOf(PrefixWebkit, PrefixMoz, PrefixO),
	"transition-delay":           setOf(PrefixWebkit, PrefixMoz, PrefixO),
	"transition-duration":        setOf(PrefixWebkit, PrefixMoz, PrefixO),
	"transition-property":        setOf(PrefixWebkit, PrefixMoz, PrefixO),
	"transition-timing-function": setOf(PrefixWebkit, PrefixMoz, PrefixO),
	"user-select":                setOf(PrefixWebkit, PrefixMoz, PrefixMs),
	"writing-mode":               setOf(PrefixWebkit, PrefixMs),
}

// PrefixesFor returns prefixes property needs given enabled set. Unknown and
// already prefixed properties need none.
func PrefixesFor(property string, enabled PrefixSet) []Prefix {
	return (properties[strings.ToLower(property)] & enabled).Prefixes()
}

// Declaration is a property declaration found in the style sheet.
type Declaration struct {
	Property  string
	Start     int  // byte offset of property name
	End       int  // byte offset right after declaration (after semicolon if any)
	Semicolon bool // declaration is terminated by semicolon
	Block     int  // ordinal of enclosing block
	Indent    string
	Line      int // 0-based line of property name
	Column    int // 0-based UTF-16 column of property name
}
