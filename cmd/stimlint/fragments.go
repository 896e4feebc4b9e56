package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"stimlint/internal/erb"
)

var fragmentsCmd = &cobra.Command{
	Use:   "fragments <template.html.erb>",
	Short: "Dump a template's extracted and merged fragments",
	Long:  `Debugging aid: show every embedded Ruby fragment the analyzer sees, with kind, line, and merge status.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runFragments,
}

func runFragments(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	src := string(raw)

	merged := erb.Merge(erb.Extract(src))
	for _, f := range merged {
		mark := " "
		if f.Merged {
			mark = "M"
		}
		code := f.Code
		if i := strings.IndexByte(code, '\n'); i >= 0 {
			code = code[:i] + " …"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%4d %s %-9s %s\n", f.Line(src), mark, f.Kind, code)
	}
	return nil
}
