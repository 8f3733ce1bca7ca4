package semantic

import (
	"fmt"
	"strings"
)

// Kind classifies a diagnostic.
type Kind int

const (
	Redeclared Kind = iota + 1
	UndeclaredName
	VoidTypedDeclaration
	ReturnTypeMismatch
	ConditionTypeError
	AssignmentTypeMismatch
	OperatorTypeMismatch
	CallMismatch
	IndexTypeMismatch
)

var kindNames = map[Kind]string{
	Redeclared:             "redeclared",
	UndeclaredName:         "undeclared-name",
	VoidTypedDeclaration:   "void-declaration",
	ReturnTypeMismatch:     "return-type-mismatch",
	ConditionTypeError:     "condition-type-error",
	AssignmentTypeMismatch: "assignment-type-mismatch",
	OperatorTypeMismatch:   "operator-type-mismatch",
	CallMismatch:           "call-mismatch",
	IndexTypeMismatch:      "index-type-mismatch",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown diagnostic kind %q", s)
}

// Diagnostic is one semantic error. None of them stop the analysis.
type Diagnostic struct {
	Kind    Kind
	Line    int
	Name    string // offending name, if any
	Message string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s at line %d", d.Message, d.Line)
}

// Diagnostics is a collection of diagnostics in the order they were raised.
type Diagnostics []Diagnostic

func (ds Diagnostics) HasErrors() bool {
	return len(ds) > 0
}

// Count returns how many diagnostics have the given kind.
func (ds Diagnostics) Count(kind Kind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

func (ds Diagnostics) String() string {
	var b strings.Builder
	for i, d := range ds {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.Error())
	}
	return b.String()
}

// Reporter receives diagnostics as they are raised.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) {
	f(d)
}
