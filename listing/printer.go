package listing

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/strager/cminus/semantic"
)

// ColorMode selects when diagnostics are coloured.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

func ParseColorMode(s string) (ColorMode, error) {
	switch mode := ColorMode(s); mode {
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	}
	return "", fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
}

// UseColor resolves mode for output going to f.
func UseColor(f *os.File, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Printer writes one line per diagnostic. It implements semantic.Reporter.
type Printer struct {
	w      io.Writer
	prefix string

	errorTag *color.Color
	kindTag  *color.Color
	count    int
}

// NewPrinter returns a Printer for a terminal or file. Escape sequences go
// through go-colorable so they also work on Windows consoles.
func NewPrinter(f *os.File, mode ColorMode) *Printer {
	if UseColor(f, mode) {
		return NewWriterPrinter(colorable.NewColorable(f), true)
	}
	return NewWriterPrinter(f, false)
}

func NewWriterPrinter(w io.Writer, useColor bool) *Printer {
	p := &Printer{
		w:        w,
		errorTag: color.New(color.FgRed, color.Bold),
		kindTag:  color.New(color.FgYellow),
	}
	if useColor {
		p.errorTag.EnableColor()
		p.kindTag.EnableColor()
	} else {
		p.errorTag.DisableColor()
		p.kindTag.DisableColor()
	}
	return p
}

// SetPrefix sets text printed before every diagnostic, usually "file: ".
func (p *Printer) SetPrefix(prefix string) {
	p.prefix = prefix
}

func (p *Printer) Report(d semantic.Diagnostic) {
	p.count++
	msg := strings.TrimPrefix(d.Message, "error: ")
	fmt.Fprintf(p.w, "%s%s %s at line %d %s\n",
		p.prefix, p.errorTag.Sprint("error:"), msg, d.Line, p.kindTag.Sprintf("[%s]", d.Kind))
}

// Count is the number of diagnostics reported so far.
func (p *Printer) Count() int {
	return p.count
}
