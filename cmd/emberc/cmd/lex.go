package cmd

import (
	"fmt"

	"github.com/emberscript/emberc/internal/lexer"
	"github.com/spf13/cobra"
)

var showPos bool

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize an Ember source file and print the resulting tokens",
	Args:  cobra.ExactArgs(1),
	RunE:  runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
}

func runLex(cmd *cobra.Command, args []string) error {
	input, filename, err := readInput(args)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("Tokenizing: %s (%d bytes)\n---\n", filename, len(input))
	}

	lx := lexer.New(input)
	toks := lx.Tokenize()
	for _, tok := range toks {
		if showPos {
			fmt.Printf("[%-16s] %q @%s\n", tok.Kind, tok.Literal, tok.Span)
		} else {
			fmt.Printf("[%-16s] %q\n", tok.Kind, tok.Literal)
		}
	}

	if errs := lx.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Printf("error: %s: %s\n", e.Span, e.Message)
		}
		return fmt.Errorf("lexing produced %d error(s)", len(errs))
	}
	return nil
}
