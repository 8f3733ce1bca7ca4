package sexy

import (
	"testing"

	"github.com/nalgeon/be"
)

const fence = "```"

func TestExtractTestCases_BasicTest(t *testing.T) {
	markdown := `# Declarations

## Test: global variable
` + fence + `cminus-ast
(program (var "x" int))
` + fence + `
` + fence + `diagnostics
` + fence + `

## Test: void variable
` + fence + `cminus-ast
(program (var ^{line: 2} "x" void))
` + fence + `
` + fence + `diagnostics
2 void-declaration
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 2)

	tc1 := testCases[0]
	be.Equal(t, tc1.Name, "global variable")
	be.Equal(t, tc1.Input, `(program (var "x" int))`)
	be.Equal(t, tc1.InputType, InputTypeSExpr)
	be.Equal(t, len(tc1.Assertions), 1)
	be.Equal(t, tc1.Assertions[0].Type, AssertionTypeDiagnostics)
	be.Equal(t, tc1.Assertions[0].Content, "")

	tc2 := testCases[1]
	be.Equal(t, tc2.Name, "void variable")
	be.Equal(t, tc2.Line, 10)
	be.Equal(t, tc2.Assertions[0].Content, "2 void-declaration")
	be.True(t, tc2.Assertions[0].ParsedSexy == nil)
}

func TestExtractTestCases_MultipleAssertions(t *testing.T) {
	markdown := `## Test: multiple assertions
` + fence + `cminus-yaml
kind: program
` + fence + `
` + fence + `symbols
global x variable int 1
` + fence + `
` + fence + `types
(program (var "x" int))
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)

	tc := testCases[0]
	be.Equal(t, tc.InputType, InputTypeYAML)
	be.Equal(t, tc.Input, "kind: program")
	be.Equal(t, len(tc.Assertions), 2)
	be.Equal(t, tc.Assertions[0].Type, AssertionTypeSymbols)
	be.Equal(t, tc.Assertions[1].Type, AssertionTypeTypes)
	be.Equal(t, tc.Assertions[1].ParsedSexy.Head(), "program")
	be.Equal(t, tc.Assertions[1].ParsedSexy.String(), `(program (var "x" int))`)
}

func TestExtractTestCases_NoTestCases(t *testing.T) {
	testCases, err := ExtractTestCases("")
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)

	testCases, err = ExtractTestCases("# Title\n\nSome prose.\n\n" + fence + "\nplain block\n" + fence + "\n")
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}

func TestExtractTestCases_Errors(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		message  string
	}{
		{
			name:     "fence outside test",
			markdown: "# Title\nLine 2\n\n" + fence + "cminus-ast\n(program)\n" + fence,
			message:  "line 5: cminus-ast fence found outside of test case",
		},
		{
			name:     "unknown fence language",
			markdown: "## Test: t\n" + fence + "cminus-ast\n(program)\n" + fence + "\n" + fence + "python\nx\n" + fence,
			message:  "unknown fence language 'python'",
		},
		{
			name:     "missing input",
			markdown: "## Test: no input\n" + fence + "diagnostics\n" + fence,
			message:  "test 'no input' has no input fence",
		},
		{
			name:     "missing assertion",
			markdown: "## Test: no assertion\n" + fence + "cminus-ast\n(program)\n" + fence,
			message:  "test 'no assertion' has no assertion fences",
		},
		{
			name: "multiple inputs",
			markdown: "## Test: twice\n" + fence + "cminus-ast\n(program)\n" + fence + "\n" +
				fence + "cminus-ast\n(program)\n" + fence,
			message: "multiple input fences found in test 'twice'",
		},
		{
			name:     "invalid types assertion",
			markdown: "## Test: bad\n" + fence + "cminus-ast\n(program)\n" + fence + "\n" + fence + "types\n(program\n" + fence,
			message:  "failed to parse types assertion in test 'bad'",
		},
		{
			name: "error in second test",
			markdown: "## Test: first\n" + fence + "cminus-ast\n(program)\n" + fence + "\n" + fence + "diagnostics\n" + fence + "\n\n" +
				"## Test: second\n" + fence + "diagnostics\n" + fence,
			message: "test 'second' has no input fence",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ExtractTestCases(test.markdown)
			be.Err(t, err, test.message)
		})
	}
}

func TestExtractTestCases_OtherHeadingsDoNotSplit(t *testing.T) {
	markdown := `## Test: calls
### Notes
Text under a sub-heading.
` + fence + `cminus-ast
(program)
` + fence + `
` + fence + `diagnostics
` + fence

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)
	be.Equal(t, testCases[0].Name, "calls")
}
