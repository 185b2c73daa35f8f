package cmd

import (
	"fmt"
	"os"

	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/bytecode"
	"github.com/emberscript/emberc/internal/check"
	"github.com/emberscript/emberc/internal/compiler"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/parser"
	"github.com/spf13/cobra"
)

var (
	disassemble bool
	outputPath  string
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile an Ember source file to bytecode",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().BoolVar(&disassemble, "disassemble", false, "print disassembled bytecode for every compiled chunk")
	compileCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the compiled bytecode bundle to an .ebc file")
}

func runCompile(cmd *cobra.Command, args []string) error {
	input, filename, err := readInput(args)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}

	arena := ast.NewArena()
	bag := &diag.Bag{}
	p := parser.New(arena, bag, 0, filename, input)
	file := p.ParseFile(filename)
	prog := &ast.Program{Files: []*ast.File{file}}

	ctx := compiler.New(nil)
	mod := check.CompileProgram(ctx, bag, prog)

	if bag.HasErrors() {
		for _, d := range bag.All() {
			fmt.Fprintln(os.Stderr, d.Error())
		}
		return fmt.Errorf("compilation produced %d diagnostic(s)", len(bag.All()))
	}

	if disassemble {
		for _, chunk := range mod.Chunks {
			printDisassembly(chunk)
		}
		for _, chunk := range mod.GlobalInits {
			printDisassembly(chunk)
		}
	} else {
		fmt.Printf("compiled %d function(s), %d global initializer(s)\n", len(mod.Chunks), len(mod.GlobalInits))
	}

	if outputPath != "" {
		all := append(append([]*bytecode.BytecodeChunk(nil), mod.Chunks...), mod.GlobalInits...)
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outputPath, err)
		}
		defer f.Close()
		if err := bytecode.WriteModule(f, all); err != nil {
			return fmt.Errorf("writing %s: %w", outputPath, err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "wrote %s\n", outputPath)
		}
	}
	return nil
}

func printDisassembly(chunk *bytecode.BytecodeChunk) {
	d := bytecode.NewDisassembler(chunk, os.Stdout)
	d.Disassemble()
}
