// Command cminus checks C-minus syntax trees produced by an external parser.
//
// Usage:
//
//	cminus check prog.sexp
//	cminus --trace symtab prog.yaml
//	cminus --config cminus.toml types prog.sexp
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
