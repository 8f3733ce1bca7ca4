package semantic

import (
	"errors"
	"fmt"

	"github.com/strager/cminus/ast"
)

// SymbolKind records which declaration introduced a symbol.
type SymbolKind int

const (
	VariableSymbol SymbolKind = iota
	ParameterSymbol
	FunctionSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case VariableSymbol:
		return "variable"
	case ParameterSymbol:
		return "parameter"
	case FunctionSymbol:
		return "function"
	default:
		return fmt.Sprintf("SymbolKind(%d)", int(k))
	}
}

// Symbol is the table entry for one declared name.
type Symbol struct {
	Name    string
	Type    ast.Type // return type for functions
	IsArray bool
	Kind    SymbolKind
	// Slot is the storage index within the owning function, or within the
	// globals for global variables and functions.
	Slot int
	// Lines lists the declaration line followed by every referencing line,
	// with adjacent repeats collapsed.
	Lines []int
}

// ScopeKind tells the global scope, function scopes and nested blocks apart.
type ScopeKind int

const (
	GlobalScope ScopeKind = iota
	FunctionScope
	BlockScope
)

func (k ScopeKind) String() string {
	switch k {
	case GlobalScope:
		return "global"
	case FunctionScope:
		return "function"
	case BlockScope:
		return "block"
	default:
		return fmt.Sprintf("ScopeKind(%d)", int(k))
	}
}

// GlobalScopeName is the owner name of the outermost scope.
const GlobalScopeName = "global"

// Scope is a namespace for the program, one function, or one nested block.
type Scope struct {
	// Name is the enclosing function's name, or GlobalScopeName.
	Name string
	Kind ScopeKind
	// Level counts function boundaries: 0 for the global scope, 1 inside a
	// function including its nested blocks.
	Level  int
	Parent *Scope
	// Builtin marks the scopes of the predeclared functions.
	Builtin bool

	symbols map[string]*Symbol
	order   []*Symbol
	params  []ast.ParamClass
	sealed  bool

	// frame is the scope whose slot counter this scope draws from.
	frame    *Scope
	nextSlot int
}

// Lookup finds name in this scope only.
func (s *Scope) Lookup(name string) *Symbol {
	return s.symbols[name]
}

// Symbols returns the scope's symbols in declaration order.
func (s *Scope) Symbols() []*Symbol {
	return append([]*Symbol(nil), s.order...)
}

// Params returns a copy of a function scope's parameter classes.
func (s *Scope) Params() []ast.ParamClass {
	return append([]ast.ParamClass(nil), s.params...)
}

// AddParam appends a parameter class to a function scope. The list is fixed
// once the scope has left the active stack.
func (s *Scope) AddParam(class ast.ParamClass) {
	if s.Kind != FunctionScope {
		panic(fmt.Sprintf("semantic: parameter added to %s scope %q", s.Kind, s.Name))
	}
	if s.sealed {
		panic(fmt.Sprintf("semantic: parameter added to finished function %q", s.Name))
	}
	s.params = append(s.params, class)
}

// Sealed reports whether the scope has been left.
func (s *Scope) Sealed() bool {
	return s.sealed
}

func (s *Scope) insert(name string, typ ast.Type, isArray bool, kind SymbolKind, line int) *Symbol {
	sym := &Symbol{
		Name:    name,
		Type:    typ,
		IsArray: isArray,
		Kind:    kind,
		Slot:    s.frame.nextSlot,
		Lines:   []int{line},
	}
	s.frame.nextSlot++
	s.symbols[name] = sym
	s.order = append(s.order, sym)
	return sym
}

// ErrRedeclared is matched by every *RedeclaredError.
var ErrRedeclared = errors.New("already declared")

// RedeclaredError is returned when a declaration collides with an existing
// symbol. The existing symbol is left untouched.
type RedeclaredError struct {
	Name     string
	Previous *Symbol
}

func (e *RedeclaredError) Error() string {
	return fmt.Sprintf("error: '%s' already declared at line %d", e.Name, e.Previous.Lines[0])
}

func (e *RedeclaredError) Unwrap() error {
	return ErrRedeclared
}

// ScopeTable holds every scope created during one analysis and the stack of
// scopes that are currently open.
type ScopeTable struct {
	registry []*Scope
	active   []*Scope
}

// NewScopeTable returns a table with the global scope open.
func NewScopeTable() *ScopeTable {
	t := &ScopeTable{}
	global := &Scope{Name: GlobalScopeName, Kind: GlobalScope, symbols: map[string]*Symbol{}}
	global.frame = global
	t.registry = append(t.registry, global)
	t.active = append(t.active, global)
	return t
}

// Enter opens a function or block scope inside the current one.
func (t *ScopeTable) Enter(name string, kind ScopeKind) *Scope {
	parent := t.Current()
	s := &Scope{Name: name, Kind: kind, Parent: parent, symbols: map[string]*Symbol{}}
	switch kind {
	case FunctionScope:
		s.Level = parent.Level + 1
		s.frame = s
	case BlockScope:
		s.Level = parent.Level
		s.frame = parent.frame
	default:
		panic(fmt.Sprintf("semantic: cannot enter a %s scope", kind))
	}
	t.registry = append(t.registry, s)
	t.active = append(t.active, s)
	return s
}

// Leave closes the current scope. It stays in the registry.
func (t *ScopeTable) Leave() *Scope {
	if len(t.active) <= 1 {
		panic("semantic: Leave without matching Enter")
	}
	s := t.active[len(t.active)-1]
	t.active = t.active[:len(t.active)-1]
	if s.Kind == FunctionScope {
		s.sealed = true
	}
	return s
}

func (t *ScopeTable) Current() *Scope {
	return t.active[len(t.active)-1]
}

func (t *ScopeTable) Global() *Scope {
	return t.registry[0]
}

// Depth is the number of open scopes, the global scope included.
func (t *ScopeTable) Depth() int {
	return len(t.active)
}

// Scopes returns every scope in creation order.
func (t *ScopeTable) Scopes() []*Scope {
	return append([]*Scope(nil), t.registry...)
}

// DeclareLocal inserts a symbol unless the current scope already has one by
// that name. Outer scopes may hold the same name.
func (t *ScopeTable) DeclareLocal(name string, typ ast.Type, isArray bool, kind SymbolKind, line int) (*Symbol, error) {
	if prev := t.ResolveLocal(name); prev != nil {
		return nil, &RedeclaredError{Name: name, Previous: prev}
	}
	return t.Current().insert(name, typ, isArray, kind, line), nil
}

// DeclareVisible inserts a symbol unless the name is visible anywhere along
// the open scope chain.
func (t *ScopeTable) DeclareVisible(name string, typ ast.Type, isArray bool, kind SymbolKind, line int) (*Symbol, error) {
	if prev := t.Resolve(name); prev != nil {
		return nil, &RedeclaredError{Name: name, Previous: prev}
	}
	return t.Current().insert(name, typ, isArray, kind, line), nil
}

// Resolve searches the open scopes from innermost to outermost.
func (t *ScopeTable) Resolve(name string) *Symbol {
	for i := len(t.active) - 1; i >= 0; i-- {
		if sym := t.active[i].Lookup(name); sym != nil {
			return sym
		}
	}
	return nil
}

func (t *ScopeTable) ResolveLocal(name string) *Symbol {
	return t.Current().Lookup(name)
}

// FindFunctionScope returns the first function scope registered for name,
// whether or not it is still open.
func (t *ScopeTable) FindFunctionScope(name string) *Scope {
	for _, s := range t.registry {
		if s.Kind == FunctionScope && s.Level == 1 && s.Name == name {
			return s
		}
	}
	return nil
}

// RecordReference notes that sym is used on line.
func (t *ScopeTable) RecordReference(sym *Symbol, line int) {
	if n := len(sym.Lines); n > 0 && sym.Lines[n-1] == line {
		return
	}
	sym.Lines = append(sym.Lines, line)
}
