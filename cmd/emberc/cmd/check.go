package cmd

import (
	"fmt"

	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/check"
	"github.com/emberscript/emberc/internal/compiler"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/parser"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Run semantic checking on an Ember source file without emitting bytecode",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	input, filename, err := readInput(args)
	if err != nil {
		return err
	}

	arena := ast.NewArena()
	bag := &diag.Bag{}
	p := parser.New(arena, bag, 0, filename, input)
	file := p.ParseFile(filename)
	prog := &ast.Program{Files: []*ast.File{file}}

	ctx := compiler.New(nil)
	check.CompileProgram(ctx, bag, prog)

	for _, d := range bag.All() {
		fmt.Println(d.Error())
	}
	if bag.HasErrors() {
		return fmt.Errorf("checking produced %d diagnostic(s)", len(bag.All()))
	}
	fmt.Println("OK")
	return nil
}
