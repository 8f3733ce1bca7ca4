package sexy

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "hello"},
		{"test_var", "test_var"},
		{"array-var", "array-var"},
		{"_tmp", "_tmp"},
		{"x", "x"},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeSymbol)
		be.Equal(t, result.Text, test.expected)
		be.Equal(t, result.String(), test.expected)
	}
}

func TestParseString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		output   string
	}{
		{`"hello"`, "hello", `"hello"`},
		{`"+"`, "+", `"+"`},
		{`""`, "", `""`},
		{`"test\"quote"`, `test"quote`, `"test\"quote"`},
		{`"test\\backslash"`, `test\backslash`, `"test\\backslash"`},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeString)
		be.Equal(t, result.Text, test.expected)
		be.Equal(t, result.String(), test.output)
	}
}

func TestParseInteger(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"42", 42},
		{"0", 0},
		{"-123", -123},
		{"+456", 456},
	}

	for _, test := range tests {
		result, err := Parse(test.input)
		be.Err(t, err, nil)

		be.Equal(t, result.Type, NodeInteger)
		be.Equal(t, result.String(), test.input)
		got, err := result.Int()
		be.Err(t, err, nil)
		be.Equal(t, got, test.expected)
	}
}

func TestParseCollections(t *testing.T) {
	tests := []struct {
		input    string
		typ      NodeType
		expected string
	}{
		{"()", NodeList, "()"},
		{"(1 2 3)", NodeList, "(1 2 3)"},
		{`(op "+" 1 2)`, NodeList, `(op "+" 1 2)`},
		{"(nested (list here))", NodeList, "(nested (list here))"},
		{"[]", NodeArray, "[]"},
		{"[[nested] array]", NodeArray, "[[nested] array]"},
		{"{}", NodeMap, "{}"},
		{"{a: 1, b: 2}", NodeMap, "{a: 1, b: 2}"},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			result, err := Parse(test.input)
			be.Err(t, err, nil)
			be.Equal(t, result.Type, test.typ)
			be.Equal(t, result.String(), test.expected)
		})
	}
}

func TestParseMeta(t *testing.T) {
	result, err := Parse(`(var ^{line: 3} "x" int)`)
	be.Err(t, err, nil)

	be.Equal(t, result.Head(), "var")
	be.Equal(t, len(result.Items), 3)
	line, err := result.Meta("line").Int()
	be.Err(t, err, nil)
	be.Equal(t, line, int64(3))
	be.True(t, result.Meta("type") == nil)
	be.Equal(t, result.String(), `(^{line: 3} var "x" int)`)
}

func TestParseMetaMerging(t *testing.T) {
	result, err := Parse(`(id ^{line: 1, type: int} "x" ^{line: 2})`)
	be.Err(t, err, nil)

	be.Equal(t, result.MetaKeys, []string{"line", "type"})
	be.Equal(t, result.Meta("line").String(), "2")
	be.Equal(t, result.Meta("type").String(), "int")
}

func TestParseTracksLines(t *testing.T) {
	input := "(program\n  (var \"x\" int)\n\n  (func \"main\" void []\n    (compound [] [])))"
	result, err := Parse(input)
	be.Err(t, err, nil)

	be.Equal(t, result.Line, 1)
	be.Equal(t, result.Items[1].Line, 2)
	be.Equal(t, result.Items[2].Line, 4)
	be.Equal(t, result.Items[2].Items[4].Line, 5)
}

func TestParseComments(t *testing.T) {
	result, err := Parse("; leading comment\n(a ; trailing\n b)")
	be.Err(t, err, nil)
	be.Equal(t, result.String(), "(a b)")
}

func TestRoundTripParsing(t *testing.T) {
	inputs := []string{
		`(program (var ^{line: 1} "x" int))`,
		`(call "output" (op "*" (id "x" (const 2)) 3))`,
		`[{k: "v"} (a) -7]`,
	}
	for _, input := range inputs {
		first, err := Parse(input)
		be.Err(t, err, nil)
		second, err := Parse(first.String())
		be.Err(t, err, nil)
		be.Equal(t, second.String(), first.String())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"(a b", "expected ')'"},
		{"[1 2", "expected ']'"},
		{"{a 1}", "expected ':'"},
		{"{1: 2}", "expected symbol for map key"},
		{"(a) b", "expected EOF"},
		{`"open`, "unterminated string"},
		{`"bad\n"`, "invalid escape sequence"},
		{"(a . b)", "unexpected character '.'"},
		{"(x ^[1])", "expected '{' after '^'"},
		{")", "unexpected token"},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			_, err := Parse(test.input)
			be.Err(t, err, test.message)
		})
	}
}

func TestParseErrorReportsLine(t *testing.T) {
	_, err := Parse("(a\n b\n @)")
	be.Err(t, err, "line 3: unexpected character '@'")
}

func TestIntRejectsNonInteger(t *testing.T) {
	_, err := NewSymbol("x").Int()
	be.True(t, err != nil)
}
