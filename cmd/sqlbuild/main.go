// Command sqlbuild renders YAML statement documents into dialect-specific SQL.
package main

import (
	"fmt"
	"os"

	"github.com/coregx/sqlbuild/cmd/sqlbuild/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
