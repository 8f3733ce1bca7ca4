package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/strager/cminus/ast"
	"github.com/strager/cminus/listing"
	"github.com/strager/cminus/semantic"
	"gopkg.in/urfave/cli.v1"
)

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	colorFlag = cli.StringFlag{
		Name:  "color",
		Usage: "Colorize diagnostics: auto, always or never",
	}
	verbosityFlag = cli.StringFlag{
		Name:  "verbosity",
		Usage: "Log level: debug, info, warn or error",
	}
	traceFlag = cli.BoolFlag{
		Name:  "trace",
		Usage: "Print the symbol table when symbol building succeeds",
	}
	checkIndexingFlag = cli.BoolFlag{
		Name:  "check-indexing",
		Usage: "Report subscripts of scalars and non-integer indexes",
	}
	formatFlag = cli.StringFlag{
		Name:  "format",
		Usage: "Input format: sexp or yaml (default: by file extension)",
	}
	toFlag = cli.StringFlag{
		Name:  "to",
		Value: ast.FormatYAML,
		Usage: "Output format: sexp or yaml",
	}
)

var (
	checkCommand = cli.Command{
		Action:    check,
		Name:      "check",
		Usage:     "Check a syntax tree and report semantic errors",
		ArgsUsage: "FILE",
		Flags:     []cli.Flag{formatFlag},
	}
	symtabCommand = cli.Command{
		Action:    symtab,
		Name:      "symtab",
		Usage:     "Print the symbol table listing",
		ArgsUsage: "FILE",
		Flags:     []cli.Flag{formatFlag},
	}
	typesCommand = cli.Command{
		Action:    types,
		Name:      "types",
		Usage:     "Print the tree with the type of every expression",
		ArgsUsage: "FILE",
		Flags:     []cli.Flag{formatFlag},
	}
	dumpCommand = cli.Command{
		Action:    dump,
		Name:      "dump",
		Usage:     "Dump the analyzed tree as Go values",
		ArgsUsage: "FILE",
		Flags:     []cli.Flag{formatFlag},
		Category:  "DEBUGGING COMMANDS",
	}
	convertCommand = cli.Command{
		Action:      convert,
		Name:        "convert",
		Usage:       "Convert a syntax tree between formats",
		ArgsUsage:   "FILE",
		Flags:       []cli.Flag{formatFlag, toFlag},
		Category:    "MISCELLANEOUS COMMANDS",
		Description: `The convert command rewrites a tree without analyzing it.`,
	}
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "[OUTFILE]",
		Category:    "MISCELLANEOUS COMMANDS",
		Description: `The dumpconfig command shows configuration values.`,
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "cminus"
	app.Usage = "semantic analyzer for C-minus syntax trees"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{configFileFlag, colorFlag, verbosityFlag, traceFlag, checkIndexingFlag}
	app.Commands = []cli.Command{
		checkCommand,
		symtabCommand,
		typesCommand,
		dumpCommand,
		convertCommand,
		dumpConfigCommand,
	}
	return app
}

// session is what every command needs after flags and config are applied.
type session struct {
	cfg    cminusConfig
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func newSession(ctx *cli.Context) (*session, error) {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return nil, err
	}
	stderr := ctx.App.ErrWriter
	if stderr == nil {
		stderr = os.Stderr
	}
	logger, err := newLogger(stderr, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, stdout: ctx.App.Writer, stderr: stderr}, nil
}

// load reads the single FILE argument.
func (s *session) load(ctx *cli.Context) (*ast.Node, string, error) {
	if ctx.NArg() != 1 {
		return nil, "", fmt.Errorf("%s: expected exactly one file argument", ctx.Command.Name)
	}
	path := ctx.Args().First()
	format := s.cfg.Input.Format
	if ctx.IsSet(formatFlag.Name) {
		format = ctx.String(formatFlag.Name)
	}
	start := time.Now()
	program, err := ast.Load(path, format)
	if err != nil {
		return nil, path, err
	}
	s.logger.Info("loaded program", "path", path, "decls", len(program.Children), "elapsed", time.Since(start))
	return program, path, nil
}

func (s *session) printer(path string) *listing.Printer {
	mode := listing.ColorMode(s.cfg.Output.Color)
	var p *listing.Printer
	if f, ok := s.stderr.(*os.File); ok {
		p = listing.NewPrinter(f, mode)
	} else {
		p = listing.NewWriterPrinter(s.stderr, mode == listing.ColorAlways)
	}
	p.SetPrefix(path + ": ")
	return p
}

func (s *session) newAnalyzer(path string) *semantic.Analyzer {
	return semantic.New(semantic.Options{
		Logger:   s.logger.With("path", path),
		Reporter: s.printer(path),

		CheckIndexing: s.cfg.Analysis.CheckIndexing,
	})
}

// buildSymbols runs the first pass and prints the listing if tracing.
func (s *session) buildSymbols(a *semantic.Analyzer, program *ast.Node, path string) error {
	start := time.Now()
	a.BuildSymbols(program)
	s.logger.Debug("built symbols", "path", path, "elapsed", time.Since(start))
	if s.cfg.Output.Trace && !a.Failed() {
		return listing.WriteSymbolTable(s.stdout, a.Table())
	}
	return nil
}

// analyze runs both passes over the file named on the command line.
func (s *session) analyze(ctx *cli.Context) (*semantic.Analyzer, *ast.Node, string, error) {
	program, path, err := s.load(ctx)
	if err != nil {
		return nil, nil, path, err
	}
	a := s.newAnalyzer(path)
	if err := s.buildSymbols(a, program, path); err != nil {
		return nil, nil, path, err
	}
	start := time.Now()
	a.CheckTypes(program)
	s.logger.Debug("checked types", "path", path, "elapsed", time.Since(start))
	return a, program, path, nil
}

// fail logs the outcome of a failed analysis and maps it to exit status 1.
// The diagnostics themselves were already printed as they were reported.
func (s *session) fail(a *semantic.Analyzer, path string) error {
	s.logger.Info("analysis failed", "path", path, "errors", len(a.Diagnostics()))
	return cli.NewExitError("", 1)
}

func check(ctx *cli.Context) error {
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	a, _, path, err := s.analyze(ctx)
	if err != nil {
		return err
	}
	if a.Failed() {
		return s.fail(a, path)
	}
	fmt.Fprintf(s.stdout, "%s: no errors found\n", path)
	return nil
}

func symtab(ctx *cli.Context) error {
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	program, path, err := s.load(ctx)
	if err != nil {
		return err
	}
	a := s.newAnalyzer(path)
	// Tracing already printed the listing.
	s.cfg.Output.Trace = false
	if err := s.buildSymbols(a, program, path); err != nil {
		return err
	}
	if a.Failed() {
		return s.fail(a, path)
	}
	return listing.WriteSymbolTable(s.stdout, a.Table())
}

func types(ctx *cli.Context) error {
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	a, program, path, err := s.analyze(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.stdout, ast.ToTypedSExpr(program))
	if a.Failed() {
		return s.fail(a, path)
	}
	return nil
}

func dump(ctx *cli.Context) error {
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	a, program, path, err := s.analyze(ctx)
	if err != nil {
		return err
	}
	config := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
	config.Fdump(s.stdout, program)
	if a.Failed() {
		return s.fail(a, path)
	}
	return nil
}

func convert(ctx *cli.Context) error {
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	program, _, err := s.load(ctx)
	if err != nil {
		return err
	}
	switch to := ctx.String(toFlag.Name); to {
	case ast.FormatYAML:
		out, err := ast.ToYAML(program)
		if err != nil {
			return err
		}
		_, err = s.stdout.Write(out)
		return err
	case ast.FormatSExpr:
		_, err := fmt.Fprintln(s.stdout, ast.ToSExprWithLines(program))
		return err
	default:
		return fmt.Errorf("convert: unknown output format %q", to)
	}
}
