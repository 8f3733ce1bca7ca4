package semantic

import (
	"strings"

	"github.com/strager/cminus/ast"
)

// checker is the type-checking pass. It only acts on Exit, so every node is
// typed after its kids.
type checker struct {
	a *Analyzer
}

func (checker) Enter(*ast.Node) {}

func (c checker) Exit(n *ast.Node) {
	a := c.a
	switch n.Kind {
	case ast.NodeIf, ast.NodeWhile:
		if cond := n.Children[0]; cond.Type == ast.Void {
			a.report(ConditionTypeError, n.Line, "", "error: %s condition has type void", n.Kind)
		}

	case ast.NodeReturn:
		a.returnType, a.returnIsArray = ast.Void, false
		if len(n.Children) > 0 {
			a.returnType, a.returnIsArray = n.Children[0].Type, n.Children[0].IsArray
		}

	case ast.NodeFunc:
		if a.returnType != n.Decl || a.returnIsArray {
			a.report(ReturnTypeMismatch, n.Line, n.Name, "error: function '%s' returns %s but is declared %s",
				n.Name, ast.TypeName(a.returnType, a.returnIsArray), n.Decl)
		}
		a.returnType, a.returnIsArray = ast.Void, false

	case ast.NodeAssign:
		target, value := n.Children[0], n.Children[1]
		if target.Type != value.Type || target.IsArray != value.IsArray {
			a.report(AssignmentTypeMismatch, n.Line, target.Name, "error: cannot assign %s to '%s' of type %s",
				ast.TypeName(value.Type, value.IsArray), target.Name, ast.TypeName(target.Type, target.IsArray))
		}
		n.Type, n.IsArray = target.Type, target.IsArray

	case ast.NodeOp:
		left, right := n.Children[0], n.Children[1]
		if left.IsArray || right.IsArray || left.Type != right.Type {
			a.report(OperatorTypeMismatch, n.Line, "", "error: operator '%s' applied to %s and %s",
				n.Op, ast.TypeName(left.Type, left.IsArray), ast.TypeName(right.Type, right.IsArray))
		}
		n.Type, n.IsArray = ast.Integer, false

	case ast.NodeConst:
		n.Type, n.IsArray = ast.Integer, false

	case ast.NodeId:
		if index := n.Subscript(); index != nil && a.checkIndexing {
			a.checkIndex(n, index)
		}

	case ast.NodeCall:
		a.checkCall(n)
	}

	if n.IsArgument {
		a.argStack = append(a.argStack, ast.ClassOf(n.IsArray))
	}
}

func (a *Analyzer) checkIndex(n, index *ast.Node) {
	sym := a.uses[n]
	if sym == nil {
		return
	}
	if !sym.IsArray {
		a.report(IndexTypeMismatch, n.Line, n.Name, "error: '%s' is not an array", n.Name)
	} else if index.Type != ast.Integer || index.IsArray {
		a.report(IndexTypeMismatch, n.Line, n.Name, "error: index of '%s' has type %s",
			n.Name, ast.TypeName(index.Type, index.IsArray))
	}
}

// checkCall matches the classes its arguments pushed against the callee's
// parameters. Arguments that are calls themselves have already consumed
// their own arguments, so exactly len(n.Children) entries belong to n.
func (a *Analyzer) checkCall(n *ast.Node) {
	base := len(a.argStack) - len(n.Children)
	if base < 0 {
		panic("semantic: argument stack underflow")
	}
	got := a.argStack[base:]
	a.argStack = a.argStack[:base]
	n.IsArray = false

	if n.Callee == nil {
		n.Type = ast.Void
		return
	}
	n.Type = n.Callee.Return

	want := n.Callee.Params
	mismatch := len(got) != len(want)
	for i := len(want) - 1; !mismatch && i >= 0; i-- {
		mismatch = got[i] != want[i]
	}
	if mismatch {
		a.report(CallMismatch, n.Line, n.Name, "error: call to '%s' passes (%s) but expects (%s)",
			n.Name, joinClasses(got), joinClasses(want))
	}
}

func joinClasses(classes []ast.ParamClass) string {
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}
