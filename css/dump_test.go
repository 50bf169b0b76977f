package css

import (
	"strings"
	"testing"
)

func TestStylesheet_Dump(t *testing.T) {
	sheet, err := NewParser(nil).Parse([]byte("a {\n  order: 1;\n}\nb { flex: 1 }"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	dump := sheet.Dump()
	for _, want := range []string{
		"stylesheet: 31 bytes",
		"2 declarations",
		"  block 1\n    order at 2:3 [6:15] semicolon=true\n      text: \"order: 1;\"\n      indent: \"\\n  \"\n",
		"  block 2\n    flex at 4:5 [22:30] semicolon=false\n",
	} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump does not contain %q:\n%s", want, dump)
		}
	}
}
