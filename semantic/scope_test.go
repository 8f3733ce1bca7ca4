package semantic

import (
	"testing"

	"github.com/nalgeon/be"
	"github.com/strager/cminus/ast"
)

func TestNewScopeTable(t *testing.T) {
	st := NewScopeTable()
	be.Equal(t, 1, st.Depth())
	be.Equal(t, GlobalScopeName, st.Current().Name)
	be.Equal(t, GlobalScope, st.Current().Kind)
	be.Equal(t, 0, st.Current().Level)
	be.True(t, st.Global() == st.Current())
}

func TestDeclareLocal(t *testing.T) {
	st := NewScopeTable()

	sym, err := st.DeclareLocal("x", ast.Integer, false, VariableSymbol, 3)
	be.Err(t, err, nil)
	be.Equal(t, "x", sym.Name)
	be.Equal(t, ast.Integer, sym.Type)
	be.Equal(t, []int{3}, sym.Lines)
	be.True(t, st.ResolveLocal("x") == sym)
}

func TestDeclareLocalDuplicate(t *testing.T) {
	st := NewScopeTable()
	first, err := st.DeclareLocal("x", ast.Integer, false, VariableSymbol, 1)
	be.Err(t, err, nil)

	_, err = st.DeclareLocal("x", ast.Integer, true, VariableSymbol, 2)
	be.Err(t, err, ErrRedeclared)
	be.Equal(t, "error: 'x' already declared at line 1", err.Error())

	// The first declaration wins.
	be.True(t, st.Resolve("x") == first)
	be.True(t, !first.IsArray)
}

func TestDeclareLocalAllowsShadowing(t *testing.T) {
	st := NewScopeTable()
	outer, _ := st.DeclareLocal("x", ast.Integer, false, VariableSymbol, 1)
	st.Enter("main", FunctionScope)
	inner, err := st.DeclareLocal("x", ast.Integer, true, VariableSymbol, 2)
	be.Err(t, err, nil)

	be.True(t, st.Resolve("x") == inner)
	st.Leave()
	be.True(t, st.Resolve("x") == outer)
}

func TestDeclareVisibleChecksWholeChain(t *testing.T) {
	st := NewScopeTable()
	st.DeclareLocal("n", ast.Integer, false, VariableSymbol, 1)
	st.Enter("f", FunctionScope)

	_, err := st.DeclareVisible("n", ast.Integer, false, ParameterSymbol, 2)
	be.Err(t, err, ErrRedeclared)
	_, err = st.DeclareVisible("m", ast.Integer, false, ParameterSymbol, 2)
	be.Err(t, err, nil)
}

func TestEnterLevels(t *testing.T) {
	st := NewScopeTable()
	fn := st.Enter("f", FunctionScope)
	block := st.Enter("f", BlockScope)
	inner := st.Enter("f", BlockScope)

	be.Equal(t, 1, fn.Level)
	be.Equal(t, 1, block.Level)
	be.Equal(t, 1, inner.Level)
	be.True(t, inner.Parent == block)
	be.True(t, block.Parent == fn)
	be.True(t, fn.Parent == st.Global())
	be.Equal(t, 4, st.Depth())
}

func TestLeaveKeepsScopeInRegistry(t *testing.T) {
	st := NewScopeTable()
	fn := st.Enter("f", FunctionScope)
	st.DeclareLocal("a", ast.Integer, false, ParameterSymbol, 1)
	st.Leave()

	be.Equal(t, 1, st.Depth())
	be.True(t, st.Resolve("a") == nil)
	scopes := st.Scopes()
	be.Equal(t, 2, len(scopes))
	be.True(t, scopes[1] == fn)
	be.True(t, fn.Lookup("a") != nil)
}

func TestLeaveWithoutEnterPanics(t *testing.T) {
	st := NewScopeTable()
	defer func() {
		r := recover()
		be.Equal(t, "semantic: Leave without matching Enter", r.(string))
	}()
	st.Leave()
}

func TestEnterGlobalPanics(t *testing.T) {
	st := NewScopeTable()
	defer func() {
		be.True(t, recover() != nil)
	}()
	st.Enter("again", GlobalScope)
}

func TestFindFunctionScope(t *testing.T) {
	st := NewScopeTable()
	first := st.Enter("f", FunctionScope)
	st.Enter("f", BlockScope)
	st.Leave()
	st.Leave()
	st.Enter("f", FunctionScope)
	st.Leave()

	be.True(t, st.FindFunctionScope("f") == first)
	be.True(t, st.FindFunctionScope("g") == nil)
	be.True(t, st.FindFunctionScope(GlobalScopeName) == nil)
}

func TestParamsSealedOnLeave(t *testing.T) {
	st := NewScopeTable()
	fn := st.Enter("f", FunctionScope)
	fn.AddParam(ast.ClassScalar)
	fn.AddParam(ast.ClassArray)

	params := fn.Params()
	params[0] = ast.ClassArray
	be.Equal(t, []ast.ParamClass{ast.ClassScalar, ast.ClassArray}, fn.Params())

	st.Leave()
	be.True(t, fn.Sealed())
	defer func() {
		be.True(t, recover() != nil)
	}()
	fn.AddParam(ast.ClassScalar)
}

func TestAddParamToBlockPanics(t *testing.T) {
	st := NewScopeTable()
	st.Enter("f", FunctionScope)
	block := st.Enter("f", BlockScope)
	defer func() {
		be.True(t, recover() != nil)
	}()
	block.AddParam(ast.ClassScalar)
}

func TestRecordReferenceCollapsesAdjacentRepeats(t *testing.T) {
	st := NewScopeTable()
	sym, _ := st.DeclareLocal("x", ast.Integer, false, VariableSymbol, 1)
	for _, line := range []int{1, 4, 4, 5, 4, 4} {
		st.RecordReference(sym, line)
	}
	be.Equal(t, []int{1, 4, 5, 4}, sym.Lines)
}

func TestSlots(t *testing.T) {
	st := NewScopeTable()
	g0, _ := st.DeclareLocal("a", ast.Integer, false, VariableSymbol, 1)
	g1, _ := st.DeclareLocal("f", ast.Void, false, FunctionSymbol, 2)

	st.Enter("f", FunctionScope)
	p0, _ := st.DeclareVisible("p", ast.Integer, false, ParameterSymbol, 2)
	st.Enter("f", BlockScope)
	b1, _ := st.DeclareLocal("x", ast.Integer, false, VariableSymbol, 3)
	st.Leave()
	st.Enter("f", BlockScope)
	b2, _ := st.DeclareLocal("y", ast.Integer, false, VariableSymbol, 5)
	st.Leave()
	st.Leave()

	g2, _ := st.DeclareLocal("b", ast.Integer, false, VariableSymbol, 8)

	be.Equal(t, 0, g0.Slot)
	be.Equal(t, 1, g1.Slot)
	be.Equal(t, 2, g2.Slot)
	be.Equal(t, 0, p0.Slot)
	be.Equal(t, 1, b1.Slot)
	be.Equal(t, 2, b2.Slot)
}

func TestSymbolsInDeclarationOrder(t *testing.T) {
	st := NewScopeTable()
	for _, name := range []string{"z", "a", "m"} {
		st.DeclareLocal(name, ast.Integer, false, VariableSymbol, 1)
	}
	var names []string
	for _, sym := range st.Global().Symbols() {
		names = append(names, sym.Name)
	}
	be.Equal(t, []string{"z", "a", "m"}, names)
}
