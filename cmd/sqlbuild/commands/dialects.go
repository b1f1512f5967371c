package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coregx/sqlbuild/internal/config"
	"github.com/coregx/sqlbuild/internal/dialects"
)

// dialectInfo is the printable form of a dialect policy.
type dialectInfo struct {
	Name             string `json:"name" yaml:"name"`
	Limit            string `json:"limit" yaml:"limit"`
	InsertIgnore     string `json:"insert_ignore" yaml:"insert_ignore"`
	Returning        string `json:"returning" yaml:"returning"`
	DeleteOrderLimit bool   `json:"delete_order_limit" yaml:"delete_order_limit"`
	Placeholder      string `json:"placeholder" yaml:"placeholder"`
}

func newDialectsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List supported dialects and their rendering policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(); err != nil {
				return err
			}
			infos := make([]dialectInfo, 0, len(dialects.All()))
			for _, p := range dialects.All() {
				infos = append(infos, dialectInfo{
					Name:             p.Name,
					Limit:            p.Limit.String(),
					InsertIgnore:     p.InsertIgnore.String(),
					Returning:        p.Returning.String(),
					DeleteOrderLimit: p.DeleteOrderLimit,
					Placeholder:      p.Placeholder(1),
				})
			}
			return writeDialects(cmd.OutOrStdout(), a.cfg.Output, infos)
		},
	}
}

func writeDialects(w io.Writer, format string, infos []dialectInfo) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	case config.OutputYAML:
		return yaml.NewEncoder(w).Encode(infos)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLIMIT\tINSERT IGNORE\tRETURNING\tDELETE ORDER/LIMIT\tPLACEHOLDER")
	for _, d := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n",
			d.Name, d.Limit, d.InsertIgnore, d.Returning, d.DeleteOrderLimit, d.Placeholder)
	}
	return tw.Flush()
}
