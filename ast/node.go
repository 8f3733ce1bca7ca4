// Package ast defines the C-minus syntax tree handed over by the parser and
// the annotations semantic analysis writes back into it.
package ast

import (
	"fmt"
	"slices"
)

// Type is a base type of the language.
type Type int

const (
	Void Type = iota
	Integer
)

func (t Type) String() string {
	switch t {
	case Void:
		return "void"
	case Integer:
		return "int"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType converts a type name ("int" or "void") to a Type.
func ParseType(name string) (Type, error) {
	switch name {
	case "int":
		return Integer, nil
	case "void":
		return Void, nil
	}
	return Void, fmt.Errorf("unknown type %q", name)
}

// TypeName spells a type together with its array-ness, e.g. "int-array".
func TypeName(t Type, isArray bool) string {
	if isArray {
		return t.String() + "-array"
	}
	return t.String()
}

// ParamClass is what a call site has to match for one parameter.
type ParamClass int

const (
	ClassScalar ParamClass = iota
	ClassArray
)

func (c ParamClass) String() string {
	switch c {
	case ClassScalar:
		return "int"
	case ClassArray:
		return "int-array"
	default:
		return fmt.Sprintf("ParamClass(%d)", int(c))
	}
}

// ClassOf returns the parameter class of a value. Only array-ness counts:
// a void value passed as an argument is a scalar.
func ClassOf(isArray bool) ParamClass {
	if isArray {
		return ClassArray
	}
	return ClassScalar
}

// NodeKind represents different types of AST nodes. The values double as the
// list heads of the S-expression form.
type NodeKind string

const (
	NodeProgram    NodeKind = "program"
	NodeVar        NodeKind = "var"
	NodeArrayVar   NodeKind = "array-var"
	NodeParam      NodeKind = "param"
	NodeArrayParam NodeKind = "array-param"
	NodeFunc       NodeKind = "func"
	NodeCompound   NodeKind = "compound"
	NodeIf         NodeKind = "if"
	NodeWhile      NodeKind = "while"
	NodeReturn     NodeKind = "return"
	NodeAssign     NodeKind = "assign"
	NodeCall       NodeKind = "call"
	NodeOp         NodeKind = "op"
	NodeConst      NodeKind = "const"
	NodeId         NodeKind = "id"
)

// Operators accepted in NodeOp.
var Operators = []string{"+", "-", "*", "/", "<", "<=", ">", ">=", "==", "!="}

// Node represents a node in the Abstract Syntax Tree
type Node struct {
	Kind NodeKind
	Line int

	// NodeVar, NodeArrayVar, NodeParam, NodeArrayParam, NodeFunc, NodeCall, NodeId:
	Name string
	// Declared type of a variable or parameter; return type of a NodeFunc.
	Decl Type
	// NodeConst: literal value. NodeArrayVar: element count.
	Value int64
	// NodeOp:
	Op string

	// NodeFunc:
	Params []*Node
	Body   *Node

	// Every other kind:
	//   NodeProgram   top-level declarations
	//   NodeCompound  local declarations, then statements
	//   NodeIf        condition, then-branch, optional else-branch
	//   NodeWhile     condition, body
	//   NodeReturn    optional expression
	//   NodeAssign    target, value
	//   NodeCall      arguments
	//   NodeOp        left, right
	//   NodeId        optional subscript
	Children []*Node

	// IsArgument marks a direct argument of a NodeCall.
	IsArgument bool

	// Filled in by semantic analysis.
	Type    Type
	IsArray bool
	Callee  *Callee
}

// Callee is the callee signature captured on a call node when its name
// resolves to a function.
type Callee struct {
	Return Type
	Params []ParamClass
}

// Kids returns the nodes a traversal visits below n, in order.
func (n *Node) Kids() []*Node {
	if n.Kind != NodeFunc {
		return n.Children
	}
	kids := make([]*Node, 0, len(n.Params)+1)
	kids = append(kids, n.Params...)
	if n.Body != nil {
		kids = append(kids, n.Body)
	}
	return kids
}

// IsDecl reports whether n declares a variable.
func (n *Node) IsDecl() bool {
	return n.Kind == NodeVar || n.Kind == NodeArrayVar
}

// Subscript returns the index expression of a NodeId, or nil.
func (n *Node) Subscript() *Node {
	if n.Kind != NodeId || len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

func NewProgram(decls ...*Node) *Node {
	return &Node{Kind: NodeProgram, Children: decls}
}

func NewVar(line int, name string, typ Type) *Node {
	return &Node{Kind: NodeVar, Line: line, Name: name, Decl: typ}
}

func NewArrayVar(line int, name string, typ Type, size int64) *Node {
	return &Node{Kind: NodeArrayVar, Line: line, Name: name, Decl: typ, Value: size}
}

func NewParam(line int, name string, typ Type) *Node {
	return &Node{Kind: NodeParam, Line: line, Name: name, Decl: typ}
}

func NewArrayParam(line int, name string, typ Type) *Node {
	return &Node{Kind: NodeArrayParam, Line: line, Name: name, Decl: typ}
}

func NewFunc(line int, name string, ret Type, params []*Node, body *Node) *Node {
	return &Node{Kind: NodeFunc, Line: line, Name: name, Decl: ret, Params: params, Body: body}
}

// NewCompound builds a block. decls must be NodeVar or NodeArrayVar nodes.
func NewCompound(line int, decls []*Node, stmts ...*Node) *Node {
	children := make([]*Node, 0, len(decls)+len(stmts))
	children = append(children, decls...)
	children = append(children, stmts...)
	return &Node{Kind: NodeCompound, Line: line, Children: children}
}

// NewIf builds a conditional; els may be nil.
func NewIf(line int, cond, then, els *Node) *Node {
	n := &Node{Kind: NodeIf, Line: line, Children: []*Node{cond, then}}
	if els != nil {
		n.Children = append(n.Children, els)
	}
	return n
}

func NewWhile(line int, cond, body *Node) *Node {
	return &Node{Kind: NodeWhile, Line: line, Children: []*Node{cond, body}}
}

// NewReturn builds a return statement; expr may be nil.
func NewReturn(line int, expr *Node) *Node {
	n := &Node{Kind: NodeReturn, Line: line}
	if expr != nil {
		n.Children = []*Node{expr}
	}
	return n
}

func NewAssign(line int, target, value *Node) *Node {
	return &Node{Kind: NodeAssign, Line: line, Children: []*Node{target, value}}
}

// NewCall builds a call and flags each argument as such.
func NewCall(line int, name string, args ...*Node) *Node {
	for _, arg := range args {
		arg.IsArgument = true
	}
	return &Node{Kind: NodeCall, Line: line, Name: name, Children: args}
}

func NewOp(line int, op string, left, right *Node) *Node {
	return &Node{Kind: NodeOp, Line: line, Op: op, Children: []*Node{left, right}}
}

func NewConst(line int, value int64) *Node {
	return &Node{Kind: NodeConst, Line: line, Value: value}
}

func NewId(line int, name string) *Node {
	return &Node{Kind: NodeId, Line: line, Name: name}
}

// NewIndex builds a subscripted use name[index].
func NewIndex(line int, name string, index *Node) *Node {
	return &Node{Kind: NodeId, Line: line, Name: name, Children: []*Node{index}}
}

// checkShape validates the layout of a single decoded node: how many
// children it has and what category of node fills each slot.
func (n *Node) checkShape() error {
	count := func(lo, hi int) error {
		if len(n.Children) < lo || len(n.Children) > hi {
			if lo == hi {
				return fmt.Errorf("line %d: %s takes %d operands, got %d", n.Line, n.Kind, lo, len(n.Children))
			}
			return fmt.Errorf("line %d: %s takes %d to %d operands, got %d", n.Line, n.Kind, lo, hi, len(n.Children))
		}
		return nil
	}
	expr := func(children ...*Node) error {
		for _, child := range children {
			if !isExpr(child.Kind) {
				return fmt.Errorf("line %d: %s is not an expression", child.Line, child.Kind)
			}
		}
		return nil
	}
	stmt := func(children ...*Node) error {
		for _, child := range children {
			if !isStmt(child.Kind) {
				return fmt.Errorf("line %d: %s is not allowed as a statement", child.Line, child.Kind)
			}
		}
		return nil
	}

	if n.Kind == NodeFunc {
		if len(n.Children) > 0 {
			return fmt.Errorf("line %d: function %q takes params and a body, not children", n.Line, n.Name)
		}
	} else if len(n.Params) > 0 || n.Body != nil {
		return fmt.Errorf("line %d: only a function has params or a body, not %s", n.Line, n.Kind)
	}

	switch n.Kind {
	case NodeVar, NodeArrayVar, NodeParam, NodeArrayParam, NodeConst:
		return count(0, 0)
	case NodeProgram:
		for _, child := range n.Children {
			if !child.IsDecl() && child.Kind != NodeFunc {
				return fmt.Errorf("line %d: %s is not allowed at top level", child.Line, child.Kind)
			}
		}
	case NodeFunc:
		if n.Body == nil || n.Body.Kind != NodeCompound {
			return fmt.Errorf("line %d: function %q needs a compound body", n.Line, n.Name)
		}
		for _, p := range n.Params {
			if p.Kind != NodeParam && p.Kind != NodeArrayParam {
				return fmt.Errorf("line %d: %s is not a parameter", p.Line, p.Kind)
			}
		}
	case NodeCompound:
		inDecls := true
		for _, child := range n.Children {
			if child.IsDecl() {
				if !inDecls {
					return fmt.Errorf("line %d: declaration of %q after a statement", child.Line, child.Name)
				}
				continue
			}
			if err := stmt(child); err != nil {
				return err
			}
			inDecls = false
		}
	case NodeIf:
		if err := count(2, 3); err != nil {
			return err
		}
		if err := expr(n.Children[0]); err != nil {
			return err
		}
		return stmt(n.Children[1:]...)
	case NodeWhile:
		if err := count(2, 2); err != nil {
			return err
		}
		if err := expr(n.Children[0]); err != nil {
			return err
		}
		return stmt(n.Children[1])
	case NodeAssign:
		if err := count(2, 2); err != nil {
			return err
		}
		if n.Children[0].Kind != NodeId {
			return fmt.Errorf("line %d: cannot assign to %s", n.Line, n.Children[0].Kind)
		}
		return expr(n.Children[1])
	case NodeOp:
		if err := count(2, 2); err != nil {
			return err
		}
		if !slices.Contains(Operators, n.Op) {
			return fmt.Errorf("line %d: unknown operator %q", n.Line, n.Op)
		}
		return expr(n.Children...)
	case NodeReturn, NodeId:
		if err := count(0, 1); err != nil {
			return err
		}
		return expr(n.Children...)
	case NodeCall:
		return expr(n.Children...)
	default:
		return fmt.Errorf("line %d: unknown node kind %q", n.Line, n.Kind)
	}
	return nil
}
