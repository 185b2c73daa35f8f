package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "emberc",
	Short: "Ember language compiler front end",
	Long: `emberc is the compiler front end for Ember, a C++-like embeddable
scripting language: lexer, parser, two-pass semantic checker, and bytecode
emitter, exposed here as lex/parse/check/compile subcommands for
inspecting each stage in isolation.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}

func readInput(args []string) (text, name string, err error) {
	if len(args) == 0 {
		return "", "", fmt.Errorf("a source file is required")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	return string(data), args[0], nil
}
