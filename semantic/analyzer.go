// Package semantic builds the scoped symbol table of a C-minus program and
// type-checks it.
//
// Analysis runs in two passes over a tree from package ast. BuildSymbols
// opens scopes, declares every name and resolves every use. CheckTypes then
// types every expression bottom-up and validates calls. Errors are collected
// as Diagnostics; neither pass stops early.
package semantic

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/strager/cminus/ast"
)

// Options configures an Analyzer.
type Options struct {
	// Logger receives scope and diagnostic traces at debug level. Nil
	// discards them.
	Logger *slog.Logger
	// Reporter, if set, is told about each diagnostic as it is raised.
	Reporter Reporter
	// CheckIndexing reports IndexTypeMismatch for a subscripted scalar or a
	// non-integer index. Off, subscripts are accepted as written.
	CheckIndexing bool
}

// Analyzer holds all state of the analysis of one program. It is not reused
// across programs.
type Analyzer struct {
	table    *ScopeTable
	logger   *slog.Logger
	reporter Reporter
	diags    Diagnostics

	checkIndexing bool

	// uses maps every resolved NodeId to its symbol.
	uses map[*ast.Node]*Symbol

	// Set by a function declaration so its body block shares the
	// function's scope instead of opening another.
	suppressBlockScope bool

	// Classes of call arguments typed but not yet matched by their call.
	argStack []ast.ParamClass

	// The most recent return statement's type.
	returnType    ast.Type
	returnIsArray bool

	built   bool
	checked bool
}

func New(opts Options) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Analyzer{
		table:    NewScopeTable(),
		logger:   logger,
		reporter: opts.Reporter,
		uses:     map[*ast.Node]*Symbol{},

		checkIndexing: opts.CheckIndexing,
	}
}

// Analyze runs both passes over program.
func Analyze(program *ast.Node, opts Options) *Result {
	a := New(opts)
	a.BuildSymbols(program)
	a.CheckTypes(program)
	return a.Result()
}

// BuildSymbols runs the symbol-building pass.
func (a *Analyzer) BuildSymbols(program *ast.Node) {
	if a.built {
		panic("semantic: BuildSymbols called twice")
	}
	a.built = true
	a.declareBuiltins()
	ast.Walk(program, builder{a})
	a.logger.Debug("symbols built", "scopes", len(a.table.registry), "errors", len(a.diags))
}

// CheckTypes runs the type-checking pass. BuildSymbols must have run.
func (a *Analyzer) CheckTypes(program *ast.Node) {
	if !a.built {
		panic("semantic: CheckTypes called before BuildSymbols")
	}
	if a.checked {
		panic("semantic: CheckTypes called twice")
	}
	a.checked = true
	ast.Walk(program, checker{a})
	a.logger.Debug("types checked", "errors", len(a.diags))
}

// Failed reports whether any diagnostic has been raised so far.
func (a *Analyzer) Failed() bool {
	return a.diags.HasErrors()
}

func (a *Analyzer) Diagnostics() Diagnostics {
	return append(Diagnostics(nil), a.diags...)
}

func (a *Analyzer) Table() *ScopeTable {
	return a.table
}

func (a *Analyzer) Result() *Result {
	return &Result{Table: a.table, Diagnostics: a.Diagnostics(), uses: a.uses}
}

func (a *Analyzer) report(kind Kind, line int, name, format string, args ...any) {
	d := Diagnostic{Kind: kind, Line: line, Name: name, Message: fmt.Sprintf(format, args...)}
	a.diags = append(a.diags, d)
	a.logger.Debug("diagnostic", "kind", kind, "line", line, "name", name)
	if a.reporter != nil {
		a.reporter.Report(d)
	}
}

func (a *Analyzer) enterScope(name string, kind ScopeKind) *Scope {
	s := a.table.Enter(name, kind)
	a.logger.Debug("enter scope", "name", s.Name, "kind", s.Kind, "level", s.Level)
	return s
}

func (a *Analyzer) leaveScope() {
	s := a.table.Leave()
	a.logger.Debug("leave scope", "name", s.Name, "kind", s.Kind, "symbols", len(s.order))
}

// Builtin functions, declared ahead of user code on line 0.
const (
	BuiltinInput  = "input"
	BuiltinOutput = "output"
)

func (a *Analyzer) declareBuiltins() {
	a.table.DeclareVisible(BuiltinInput, ast.Integer, false, FunctionSymbol, 0)
	a.enterScope(BuiltinInput, FunctionScope).Builtin = true
	a.leaveScope()

	a.table.DeclareVisible(BuiltinOutput, ast.Void, false, FunctionSymbol, 0)
	out := a.enterScope(BuiltinOutput, FunctionScope)
	out.Builtin = true
	a.table.DeclareLocal("arg", ast.Integer, false, ParameterSymbol, 0)
	out.AddParam(ast.ClassScalar)
	a.leaveScope()
}

// Result is the outcome of an analysis.
type Result struct {
	Table       *ScopeTable
	Diagnostics Diagnostics

	uses map[*ast.Node]*Symbol
}

func (r *Result) Failed() bool {
	return r.Diagnostics.HasErrors()
}

// FunctionInfo describes a declared function.
type FunctionInfo struct {
	Symbol *Symbol
	Scope  *Scope
	Return ast.Type
	Params []ast.ParamClass
}

// Function looks up a function declared at top level, builtins included.
func (r *Result) Function(name string) (FunctionInfo, bool) {
	sym := r.Table.Global().Lookup(name)
	if sym == nil || sym.Kind != FunctionSymbol {
		return FunctionInfo{}, false
	}
	scope := r.Table.FindFunctionScope(name)
	if scope == nil {
		return FunctionInfo{}, false
	}
	return FunctionInfo{Symbol: sym, Scope: scope, Return: sym.Type, Params: scope.Params()}, true
}

// Lookup finds name in the first scope owned by scopeName that declares it.
func (r *Result) Lookup(scopeName, name string) *Symbol {
	for _, s := range r.Table.registry {
		if s.Name != scopeName {
			continue
		}
		if sym := s.Lookup(name); sym != nil {
			return sym
		}
	}
	return nil
}

// SymbolOf returns the symbol a NodeId resolved to, or nil.
func (r *Result) SymbolOf(n *ast.Node) *Symbol {
	return r.uses[n]
}
