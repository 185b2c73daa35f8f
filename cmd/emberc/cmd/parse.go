package cmd

import (
	"fmt"
	"strings"

	"github.com/emberscript/emberc/internal/ast"
	"github.com/emberscript/emberc/internal/diag"
	"github.com/emberscript/emberc/internal/parser"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse an Ember source file and list its top-level declarations",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	input, filename, err := readInput(args)
	if err != nil {
		return err
	}

	arena := ast.NewArena()
	bag := &diag.Bag{}
	p := parser.New(arena, bag, 0, filename, input)
	file := p.ParseFile(filename)

	for _, d := range file.Decls {
		fmt.Println(describeDecl(d))
	}

	if bag.HasErrors() {
		for _, d := range bag.All() {
			fmt.Println(d.Error())
		}
		return fmt.Errorf("parsing produced %d diagnostic(s)", len(bag.All()))
	}
	return nil
}

func describeDecl(d ast.Decl) string {
	switch x := d.(type) {
	case *ast.FuncDecl:
		return fmt.Sprintf("func %s (%d params) @%s", x.Name, len(x.Params), x.Span)
	case *ast.ClassDecl:
		return fmt.Sprintf("class %s @%s", x.Name, x.Span)
	case *ast.InterfaceDecl:
		return fmt.Sprintf("interface %s @%s", x.Name, x.Span)
	case *ast.EnumDecl:
		return fmt.Sprintf("enum %s @%s", x.Name, x.Span)
	case *ast.NamespaceDecl:
		return fmt.Sprintf("namespace %s (%d decls) @%s", joinPath(x.Path), len(x.Decls), x.Span)
	case *ast.TypedefDecl:
		return fmt.Sprintf("typedef %s @%s", x.Name, x.Span)
	case *ast.FuncdefDecl:
		return fmt.Sprintf("funcdef %s @%s", x.Name, x.Span)
	case *ast.GlobalVarDecl:
		return fmt.Sprintf("global @%s", x.Span)
	case *ast.ImportDecl:
		return fmt.Sprintf("import @%s", x.Span)
	case *ast.MixinDecl:
		return fmt.Sprintf("mixin %s @%s", x.Name, x.Span)
	default:
		return fmt.Sprintf("%T @%s", d, d.Pos())
	}
}

func joinPath(path []string) string {
	return strings.Join(path, "::")
}
