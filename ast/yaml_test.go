package ast

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/nalgeon/be"
)

const sampleYAML = `
kind: program
children:
  - kind: var
    line: 1
    name: n
    type: int
  - kind: func
    line: 2
    name: main
    type: void
    body:
      kind: compound
      children:
        - kind: assign
          line: 3
          children:
            - {kind: id, name: n}
            - kind: call
              name: input
        - kind: call
          line: 4
          name: output
          children:
            - kind: op
              op: "*"
              children:
                - {kind: id, name: n}
                - {kind: const, value: 2}
`

func TestDecodeYAML(t *testing.T) {
	got, err := DecodeYAML(strings.NewReader(sampleYAML))
	be.Err(t, err, nil)

	want := NewProgram(
		NewVar(1, "n", Integer),
		NewFunc(2, "main", Void, nil,
			NewCompound(2, nil,
				NewAssign(3, NewId(3, "n"), NewCall(3, "input")),
				NewCall(4, "output", NewOp(4, "*", NewId(4, "n"), NewConst(4, 2))),
			),
		),
	)
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	program := sampleProgram()
	data, err := ToYAML(program)
	be.Err(t, err, nil)

	got, err := DecodeYAML(strings.NewReader(string(data)))
	be.Err(t, err, nil)
	if diff := deep.Equal(got, program); diff != nil {
		t.Error(diff)
	}
}

func TestYAMLRoundTripKeepsLineZero(t *testing.T) {
	program := NewProgram(
		NewFunc(4, "main", Void, nil,
			NewCompound(4, []*Node{NewVar(0, "x", Integer)},
				NewAssign(5, NewId(0, "x"), NewConst(5, 1)),
			),
		),
	)
	data, err := ToYAML(program)
	be.Err(t, err, nil)

	got, err := DecodeYAML(strings.NewReader(string(data)))
	be.Err(t, err, nil)
	if diff := deep.Equal(got, program); diff != nil {
		t.Error(diff)
	}
}

func TestDecodeYAMLErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"empty", "", "empty document"},
		{"unknown field", "kind: program\ncolor: red\n", "field color not found"},
		{"not a program", "kind: var\nname: x\ntype: int\n", `root must be a program, got "var"`},
		{"missing type", "kind: program\nchildren:\n  - {kind: var, line: 2, name: x}\n", `line 2: var "x" has no type`},
		{"bad type", "kind: program\nchildren:\n  - {kind: var, name: x, type: char}\n", `unknown type "char"`},
		{"bad kind", "kind: program\nchildren:\n  - {kind: goto}\n", `unknown node kind "goto"`},
		{
			"param as if branch",
			"kind: program\nchildren:\n  - kind: func\n    name: main\n    type: void\n    body:\n      kind: compound\n      children:\n        - kind: if\n          line: 3\n          children:\n            - {kind: const, value: 1}\n            - {kind: param, line: 3, name: p, type: int}\n",
			"line 3: param is not allowed as a statement",
		},
		{
			"param as call argument",
			"kind: program\nchildren:\n  - kind: func\n    name: main\n    type: void\n    body:\n      kind: compound\n      children:\n        - kind: call\n          name: output\n          children:\n            - {kind: param, line: 4, name: p, type: int}\n",
			"line 4: param is not an expression",
		},
		{
			"params on a call",
			"kind: program\nchildren:\n  - kind: func\n    name: main\n    type: void\n    body:\n      kind: compound\n      children:\n        - kind: call\n          line: 5\n          name: output\n          params:\n            - {kind: param, name: p, type: int}\n",
			"line 5: only a function has params or a body, not call",
		},
		{
			"body on a while",
			"kind: program\nchildren:\n  - kind: func\n    name: main\n    type: void\n    body:\n      kind: compound\n      children:\n        - kind: while\n          line: 6\n          children:\n            - {kind: const, value: 1}\n            - {kind: compound}\n          body: {kind: compound}\n",
			"line 6: only a function has params or a body, not while",
		},
		{
			"children on a func",
			"kind: program\nchildren:\n  - kind: func\n    line: 7\n    name: main\n    type: void\n    body: {kind: compound}\n    children:\n      - {kind: const, value: 1}\n",
			`line 7: function "main" takes params and a body, not children`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := DecodeYAML(strings.NewReader(test.input))
			be.Err(t, err, test.message)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	sexpPath := filepath.Join(dir, "prog.sexp")
	yamlPath := filepath.Join(dir, "prog.yml")
	be.Err(t, os.WriteFile(sexpPath, []byte(sampleSource), 0o644), nil)
	be.Err(t, os.WriteFile(yamlPath, []byte(sampleYAML), 0o644), nil)

	program, err := Load(sexpPath, "")
	be.Err(t, err, nil)
	be.Equal(t, len(program.Children), 3)

	program, err = Load(yamlPath, "")
	be.Err(t, err, nil)
	be.Equal(t, len(program.Children), 2)

	_, err = Load(yamlPath, FormatSExpr)
	be.Err(t, err, "ast: decode")

	_, err = Load(sexpPath, "json")
	be.Err(t, err, `unknown input format "json"`)

	_, err = Load(filepath.Join(dir, "missing.sexp"), "")
	be.Err(t, err, os.ErrNotExist)
}

func TestLoadRejectsNonProgramRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expr.sexp")
	be.Err(t, os.WriteFile(path, []byte(`(const 1)`), 0o644), nil)
	_, err := Load(path, "")
	be.Err(t, err, "root must be a program")
}

func TestFormatForPath(t *testing.T) {
	be.Equal(t, FormatForPath("a.yaml"), FormatYAML)
	be.Equal(t, FormatForPath("a.YML"), FormatYAML)
	be.Equal(t, FormatForPath("a.sexp"), FormatSExpr)
	be.Equal(t, FormatForPath("a"), FormatSExpr)
}
