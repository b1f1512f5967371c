package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coregx/sqlbuild/internal/dialects"
)

func newDetectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect DSN",
		Short: "Print the dialect of a data source name",
		Example: `  sqlbuild detect "postgres://app@localhost/app?sslmode=disable"
  sqlbuild detect "app:secret@tcp(localhost:3306)/app"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := dialects.FromDSN(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}
