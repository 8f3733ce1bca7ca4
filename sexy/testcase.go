package sexy

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputType is the language tag of a test's input fence.
type InputType string

const (
	InputTypeSExpr InputType = "cminus-ast"
	InputTypeYAML  InputType = "cminus-yaml"
)

// AssertionType is the language tag of an assertion fence.
type AssertionType string

const (
	// One "<line> <kind>" pair per line. An empty fence asserts a clean analysis.
	AssertionTypeDiagnostics AssertionType = "diagnostics"
	// One "<scope> <name> <kind> <type> <lines...>" row per line.
	AssertionTypeSymbols AssertionType = "symbols"
	// The type-annotated program as an S-expression.
	AssertionTypeTypes AssertionType = "types"
)

// Assertion represents a single assertion in a test case
type Assertion struct {
	Type       AssertionType
	Content    string
	ParsedSexy *Node // set for AssertionTypeTypes only
}

// TestCase represents a complete test case extracted from Markdown
type TestCase struct {
	Name       string // heading text after "Test: "
	Input      string
	InputType  InputType
	Line       int // line of the heading in the Markdown file
	Assertions []Assertion
}

// ExtractTestCases parses a Markdown document and extracts all test cases.
// A test case starts at a "Test: name" heading and owns every fenced code
// block up to the next such heading.
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	source := []byte(markdownContent)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var testCases []TestCase
	var current *TestCase

	flush := func() error {
		if current == nil {
			return nil
		}
		if err := validateTestCase(current); err != nil {
			return err
		}
		testCases = append(testCases, *current)
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			headingText := extractTextFromNode(n, source)
			if !strings.HasPrefix(headingText, "Test: ") {
				return ast.WalkContinue, nil
			}
			if err := flush(); err != nil {
				return ast.WalkStop, err
			}
			current = &TestCase{
				Name: strings.TrimPrefix(headingText, "Test: "),
				Line: getLineNumber(n, source),
			}

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			content := strings.TrimRight(extractCodeBlockContent(n, source), "\n")
			lineNum := getLineNumber(n, source)

			if language == "" {
				return ast.WalkContinue, nil
			}
			if !isInputFence(language) && !isAssertionFence(language) {
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s'", lineNum, language)
			}
			if current == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of test case", lineNum, language)
			}

			if isInputFence(language) {
				if current.Input != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple input fences found in test '%s'", lineNum, current.Name)
				}
				current.Input = content
				current.InputType = InputType(language)
				return ast.WalkContinue, nil
			}

			assertion := Assertion{Type: AssertionType(language), Content: content}
			if assertion.Type == AssertionTypeTypes {
				parsed, err := Parse(content)
				if err != nil {
					return ast.WalkStop, fmt.Errorf("line %d: failed to parse types assertion in test '%s': %w", lineNum, current.Name, err)
				}
				assertion.ParsedSexy = parsed
			}
			current.Assertions = append(current.Assertions, assertion)
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown AST: %w", err)
	}

	if err := flush(); err != nil {
		return nil, err
	}
	return testCases, nil
}

// extractTextFromNode extracts plain text content from a markdown node
func extractTextFromNode(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func extractCodeBlockContent(codeBlock *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < codeBlock.Lines().Len(); i++ {
		line := codeBlock.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

func isInputFence(language string) bool {
	switch InputType(language) {
	case InputTypeSExpr, InputTypeYAML:
		return true
	}
	return false
}

func isAssertionFence(language string) bool {
	switch AssertionType(language) {
	case AssertionTypeDiagnostics, AssertionTypeSymbols, AssertionTypeTypes:
		return true
	}
	return false
}

func validateTestCase(testCase *TestCase) error {
	if testCase.Input == "" {
		return fmt.Errorf("test '%s' has no input fence", testCase.Name)
	}
	if len(testCase.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", testCase.Name)
	}
	return nil
}

// getLineNumber calculates the line number of a given AST node
func getLineNumber(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	startPos := node.Lines().At(0).Start
	return bytes.Count(source[:min(startPos, len(source))], []byte("\n")) + 1
}
