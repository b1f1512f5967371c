package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coregx/sqlbuild/internal/config"
	"github.com/coregx/sqlbuild/internal/stmtdoc"
)

func newRenderCommand(a *app) *cobra.Command {
	var opts stmtdoc.Options

	cmd := &cobra.Command{
		Use:   "render FILE...",
		Short: "Render statement documents to SQL",
		Long: `Render every statement of the given YAML documents.

Each statement is printed with its named parameters. With --positional the
dialect's positional form ("?", "$1", "@p1", ":1") and ordered arguments
are added.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			results, err := stmtdoc.RenderFiles(cmd.Context(), a.fs, args, a.builders(cmd.ErrOrStderr()), opts)
			if err != nil {
				return err
			}
			return writeResults(cmd.OutOrStdout(), a.cfg.Output, results)
		},
	}

	cmd.Flags().BoolVarP(&opts.Positional, "positional", "p", false, "add positional SQL and ordered arguments")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "files rendered at once (default GOMAXPROCS)")

	return cmd
}

func writeResults(w io.Writer, format string, results []stmtdoc.Result) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeText(w, results)
	}
}

func writeText(w io.Writer, results []stmtdoc.Result) error {
	header := color.New(color.FgCyan, color.Bold)
	comment := color.New(color.FgHiBlack)

	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		name := r.Name
		if name == "" {
			name = r.Operation
		}
		if _, err := header.Fprintf(w, "-- %s: %s [%s]\n", r.File, name, r.Dialect); err != nil {
			return err
		}
		fmt.Fprintln(w, r.SQL)
		for _, p := range r.Params {
			comment.Fprintf(w, "--   %s = %v\n", p.Name, p.Value)
		}
		if r.Positional != "" {
			comment.Fprintf(w, "-- positional: %s\n", r.Positional)
			comment.Fprintf(w, "-- args: %v\n", r.Args)
		}
	}
	return nil
}
