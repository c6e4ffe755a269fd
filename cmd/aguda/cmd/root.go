// Package cmd wires AGUDA's single flat CLI command, grounded in the
// teacher's cobra-based cmd/dwscript/cmd/root.go (persistent flags +
// exitWithError helper), specialized to spec §6's flat flag set — AGUDA
// has no subcommands, unlike the teacher's compile/run/parse/lex split.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agu-lang/aguda-go/internal/diagnostics"
	"github.com/agu-lang/aguda-go/internal/driver"
)

var opts driver.Options

var rootCmd = &cobra.Command{
	Use:   "aguda",
	Short: "Compile and optionally run an AGUDA program",
	RunE:  run,
	// run prints its own "Error:" line and diagnostics.
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&opts.Path, "file", "f", "main.agu", "path to the AGUDA source file")
	flags.IntVar(&opts.MaxErrors, "max-errors", 5, "maximum number of errors to report")
	flags.IntVar(&opts.MaxWarnings, "max-warnings", 5, "maximum number of warnings to report")
	flags.BoolVar(&opts.SuppressErrors, "suppress-errors", false, "suppress error output")
	flags.BoolVar(&opts.SuppressWarnings, "suppress-warnings", false, "suppress warning output")
	flags.BoolVar(&opts.SuppressHints, "suppress-hints", false, "suppress diagnostic hints")
	flags.BoolVar(&opts.PrintAST, "ast", false, "print the AST text form and skip execution")
	flags.IntVarP(&opts.OptLevel, "opt", "o", 0, "optimization level passed to `opt` (0-3)")
}

// Execute runs the root command; exit-code translation happens in main().
func Execute() error {
	return rootCmd.Execute()
}

func run(c *cobra.Command, _ []string) error {
	opts.Color = diagnostics.UseColor(os.Stderr)

	result, diags, file, err := driver.Compile(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}

	if len(diags) > 0 {
		out := diagnostics.FormatAll(opts.Path, file, diags, opts.MaxErrors, opts.SuppressErrors, opts.SuppressHints, opts.Color)
		fmt.Fprint(os.Stderr, out)
		return fmt.Errorf("compilation failed with %d error(s)", len(diags))
	}

	if opts.PrintAST {
		fmt.Println(result.AST.String())
		return nil
	}

	if len(result.Warnings) > 0 {
		warnDiags := make([]diagnostics.Diagnostic, len(result.Warnings))
		for i, w := range result.Warnings {
			warnDiags[i] = driver.WarningDiagnostic(w)
		}
		out := diagnostics.FormatAll(opts.Path, file, warnDiags, opts.MaxWarnings, opts.SuppressWarnings, opts.SuppressHints, opts.Color)
		fmt.Fprint(os.Stderr, out)
	}

	output, runErr := driver.Run(result.LLPath)
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "Error:", runErr)
		return runErr
	}
	fmt.Print(output)
	return nil
}
