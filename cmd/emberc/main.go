// Command emberc is the command-line front end for the Ember compiler
// pipeline (lex, parse, check, compile).
package main

import (
	"os"

	"github.com/emberscript/emberc/cmd/emberc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
