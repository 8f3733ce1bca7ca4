package ast

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Input formats accepted by Load.
const (
	FormatSExpr = "sexp"
	FormatYAML  = "yaml"
)

// FormatForPath guesses the input format from a file extension.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatSExpr
	}
}

// Load reads a program from disk. An empty format is picked by extension.
func Load(path, format string) (*Node, error) {
	if format == "" {
		format = FormatForPath(path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ast: open %s: %w", path, err)
	}
	defer file.Close()

	var program *Node
	switch format {
	case FormatYAML:
		program, err = DecodeYAML(file)
	case FormatSExpr:
		var data []byte
		data, err = io.ReadAll(file)
		if err == nil {
			program, err = ParseSExpr(string(data))
		}
	default:
		return nil, fmt.Errorf("ast: unknown input format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("ast: decode %s: %w", path, err)
	}
	if program.Kind != NodeProgram {
		return nil, fmt.Errorf("ast: decode %s: root must be a program, got %s", path, program.Kind)
	}
	return program, nil
}
