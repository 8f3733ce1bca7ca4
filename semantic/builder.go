package semantic

import (
	"errors"

	"github.com/strager/cminus/ast"
)

// builder is the symbol-building pass.
type builder struct {
	a *Analyzer
}

func (b builder) Enter(n *ast.Node) {
	a := b.a
	switch n.Kind {
	case ast.NodeVar, ast.NodeArrayVar:
		a.declareVariable(n)
	case ast.NodeParam, ast.NodeArrayParam:
		a.declareParam(n)
	case ast.NodeFunc:
		a.declareFunc(n)
	case ast.NodeCompound:
		if a.suppressBlockScope {
			a.suppressBlockScope = false
			return
		}
		a.enterScope(a.table.Current().Name, BlockScope)
	case ast.NodeCall:
		a.resolveCall(n)
	case ast.NodeId:
		a.resolveId(n)
	}
}

func (b builder) Exit(n *ast.Node) {
	a := b.a
	switch n.Kind {
	case ast.NodeCompound:
		a.leaveScope()
	case ast.NodeFunc:
		// A function without a body still has its scope open.
		if a.suppressBlockScope {
			a.suppressBlockScope = false
			a.leaveScope()
		}
	}
}

func (a *Analyzer) declareVariable(n *ast.Node) {
	if n.Decl == ast.Void {
		a.report(VoidTypedDeclaration, n.Line, n.Name, "error: variable '%s' declared void", n.Name)
		return
	}
	_, err := a.table.DeclareLocal(n.Name, n.Decl, n.Kind == ast.NodeArrayVar, VariableSymbol, n.Line)
	if errors.Is(err, ErrRedeclared) {
		a.report(Redeclared, n.Line, n.Name, "error: variable '%s' already declared", n.Name)
	}
}

func (a *Analyzer) declareParam(n *ast.Node) {
	if n.Decl == ast.Void {
		a.report(VoidTypedDeclaration, n.Line, n.Name, "error: parameter '%s' declared void", n.Name)
		return
	}
	isArray := n.Kind == ast.NodeArrayParam
	_, err := a.table.DeclareVisible(n.Name, n.Decl, isArray, ParameterSymbol, n.Line)
	if errors.Is(err, ErrRedeclared) {
		a.report(Redeclared, n.Line, n.Name, "error: parameter '%s' already declared", n.Name)
		return
	}
	a.table.Current().AddParam(ast.ClassOf(isArray))
}

func (a *Analyzer) declareFunc(n *ast.Node) {
	_, err := a.table.DeclareVisible(n.Name, n.Decl, false, FunctionSymbol, n.Line)
	if errors.Is(err, ErrRedeclared) {
		a.report(Redeclared, n.Line, n.Name, "error: function '%s' already declared", n.Name)
	}
	// The duplicate still gets a scope of its own so its body is analyzed
	// without touching the first declaration's.
	a.enterScope(n.Name, FunctionScope)
	a.suppressBlockScope = true
}

func (a *Analyzer) resolveCall(n *ast.Node) {
	sym := a.table.Resolve(n.Name)
	var scope *Scope
	// A variable hiding a function makes the function uncallable here.
	if sym != nil && sym.Kind == FunctionSymbol {
		scope = a.table.FindFunctionScope(n.Name)
	}
	if scope == nil {
		a.report(UndeclaredName, n.Line, n.Name, "error: call to undeclared function '%s'", n.Name)
		return
	}
	a.table.RecordReference(sym, n.Line)
	n.Callee = &ast.Callee{Return: sym.Type, Params: scope.Params()}
}

func (a *Analyzer) resolveId(n *ast.Node) {
	sym := a.table.Resolve(n.Name)
	if sym == nil {
		a.report(UndeclaredName, n.Line, n.Name, "error: '%s' used before declaration", n.Name)
		return
	}
	a.uses[n] = sym
	a.table.RecordReference(sym, n.Line)
	n.Type = sym.Type
	n.IsArray = sym.IsArray && n.Subscript() == nil
}
