package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"

	"github.com/naoina/toml"
	"github.com/strager/cminus/ast"
	"github.com/strager/cminus/listing"
	"gopkg.in/urfave/cli.v1"
)

// tomlSettings spells cminus.toml sections and keys exactly like the
// cminusConfig fields, e.g. [Output] Color. A misspelled key is an error
// rather than a silently ignored setting.
var tomlSettings = toml.Config{
	NormFieldName: func(_ reflect.Type, key string) string { return key },
	FieldToKey:    func(_ reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

type inputConfig struct {
	Format string // "", "sexp" or "yaml"
}

type outputConfig struct {
	Color string
	Trace bool
}

type analysisConfig struct {
	CheckIndexing bool
}

type logConfig struct {
	Level string
}

type cminusConfig struct {
	Input    inputConfig
	Analysis analysisConfig
	Output   outputConfig
	Log      logConfig
}

func defaultConfig() cminusConfig {
	return cminusConfig{
		Output: outputConfig{Color: string(listing.ColorAuto)},
		Log:    logConfig{Level: "warn"},
	}
}

// loadConfig overlays the settings in file onto cfg.
func loadConfig(file string, cfg *cminusConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	var lineErr *toml.LineError
	if errors.As(err, &lineErr) {
		// "cminus.toml, line 3: ..." points at the offending key.
		return fmt.Errorf("%s, %w", file, lineErr)
	}
	return err
}

// makeConfig applies defaults, then the config file, then flags.
func makeConfig(ctx *cli.Context) (cminusConfig, error) {
	cfg := defaultConfig()

	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}

	if ctx.GlobalIsSet(colorFlag.Name) {
		cfg.Output.Color = ctx.GlobalString(colorFlag.Name)
	}
	if ctx.GlobalIsSet(traceFlag.Name) {
		cfg.Output.Trace = ctx.GlobalBool(traceFlag.Name)
	}
	if ctx.GlobalIsSet(checkIndexingFlag.Name) {
		cfg.Analysis.CheckIndexing = ctx.GlobalBool(checkIndexingFlag.Name)
	}
	if ctx.GlobalIsSet(verbosityFlag.Name) {
		cfg.Log.Level = ctx.GlobalString(verbosityFlag.Name)
	}
	return cfg, cfg.validate()
}

func (cfg *cminusConfig) validate() error {
	switch cfg.Input.Format {
	case "", ast.FormatSExpr, ast.FormatYAML:
	default:
		return fmt.Errorf("invalid input format %q", cfg.Input.Format)
	}
	if _, err := listing.ParseColorMode(cfg.Output.Color); err != nil {
		return err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("invalid log level %q", cfg.Log.Level)
	}
	return nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	var dump io.Writer = ctx.App.Writer
	if ctx.NArg() > 0 {
		f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		dump = f
	}
	_, err = dump.Write(out)
	return err
}
