// Package listing prints analysis results for people: the symbol table
// listing and diagnostics.
package listing

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/strager/cminus/ast"
	"github.com/strager/cminus/semantic"
)

// WriteSymbolTable prints the three sections of the symbol table listing:
// global names, function signatures, and the contents of every function and
// block scope. Builtin function bodies are not listed.
func WriteSymbolTable(w io.Writer, table *semantic.ScopeTable) error {
	ew := &errWriter{w: w}
	global := table.Global()

	ew.printf("<FUNCTIONS AND GLOBAL VARIABLES>\n")
	t := newTable(ew, "ID Name", "ID Type", "Data Type")
	for _, sym := range global.Symbols() {
		t.Append([]string{sym.Name, idType(sym), dataType(sym.Type, sym.IsArray)})
	}
	t.Render()

	ew.printf("\n<FUNCTION DECLARATIONS>\n")
	for _, sym := range global.Symbols() {
		if sym.Kind != semantic.FunctionSymbol {
			continue
		}
		scope := table.FindFunctionScope(sym.Name)
		if scope == nil {
			continue
		}
		t := newTable(ew, "Function Name", "Data Type")
		t.Append([]string{sym.Name, dataType(sym.Type, false)})
		t.Render()

		t = newTable(ew, "Function Parameters", "Data Type")
		params := 0
		for _, p := range scope.Symbols() {
			if p.Kind == semantic.ParameterSymbol {
				t.Append([]string{p.Name, dataType(p.Type, p.IsArray)})
				params++
			}
		}
		if params == 0 {
			t.Append([]string{"void", dataType(ast.Void, false)})
		}
		t.Render()
		ew.printf("\n")
	}

	ew.printf("<FUNCTIONS PARAMETERS AND LOCAL VARIABLES>\n")
	for _, scope := range table.Scopes() {
		if scope.Kind == semantic.GlobalScope || scope.Builtin {
			continue
		}
		ew.printf("function name: %s (nested level: %d)\n", scope.Name, scope.Level)
		t := newTable(ew, "ID Name", "ID Type", "Data Type", "Line No")
		for _, sym := range scope.Symbols() {
			t.Append([]string{sym.Name, idType(sym), dataType(sym.Type, sym.IsArray), lineList(sym.Lines)})
		}
		t.Render()
		ew.printf("\n")
	}
	return ew.err
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetBorder(false)
	t.SetHeaderLine(true)
	t.SetCenterSeparator(" ")
	t.SetColumnSeparator(" ")
	t.SetRowSeparator("-")
	return t
}

func idType(sym *semantic.Symbol) string {
	switch sym.Kind {
	case semantic.FunctionSymbol:
		return "Function"
	case semantic.ParameterSymbol:
		return "Parameter"
	default:
		return "Variable"
	}
}

func dataType(t ast.Type, isArray bool) string {
	switch {
	case t == ast.Void:
		return "Void"
	case isArray:
		return "IntegerArray"
	default:
		return "Integer"
	}
}

func lineList(lines []int) string {
	parts := make([]string, len(lines))
	for i, line := range lines {
		parts[i] = strconv.Itoa(line)
	}
	return strings.Join(parts, " ")
}

// errWriter remembers the first write error so callers can check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}

func (ew *errWriter) printf(format string, args ...any) {
	fmt.Fprintf(ew, format, args...)
}
