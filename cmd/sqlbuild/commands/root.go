// Package commands implements the sqlbuild CLI commands.
package commands

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/coregx/sqlbuild/internal/config"
	"github.com/coregx/sqlbuild/internal/core"
	"github.com/coregx/sqlbuild/internal/dialects"
	"github.com/coregx/sqlbuild/internal/stmtdoc"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	fs      afero.Fs
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

// Execute runs the CLI against the OS filesystem.
func Execute() error {
	return NewRootCommand(afero.NewOsFs()).Execute()
}

// NewRootCommand creates the sqlbuild root command. fs backs document and
// config file access.
func NewRootCommand(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs, v: config.New(fs)}

	cmd := &cobra.Command{
		Use:           "sqlbuild",
		Short:         "Render SQL statements from YAML statement documents",
		Long:          "sqlbuild renders statement documents into SQL with named placeholders for any supported dialect.",
		Version:       fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default ./sqlbuild.yaml, then ~/.config/sqlbuild/sqlbuild.yaml)")
	flags.StringP("dialect", "d", "", "SQL dialect or driver name (mysql, postgres, sqlite, sqlserver, oracle12c, ...)")
	flags.Bool("strict", false, "reject unsafe identifiers and values")
	flags.String("log-level", "", "build log level (debug, info, warn, error)")
	flags.StringP("output", "o", "", "output format (text, json, yaml)")
	flags.String("audit", "", "audit trail of built statements (none, writes, reads, all)")

	_ = a.v.BindPFlag("dialect", flags.Lookup("dialect"))
	_ = a.v.BindPFlag("strict", flags.Lookup("strict"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("output", flags.Lookup("output"))
	_ = a.v.BindPFlag("audit", flags.Lookup("audit"))

	cmd.AddCommand(newRenderCommand(a))
	cmd.AddCommand(newDialectsCommand(a))
	cmd.AddCommand(newDetectCommand(a))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

func (a *app) load() error {
	cfg, err := config.Load(a.v, a.fs, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// builders returns the stmtdoc builder factory. A document dialect overrides
// the configured one. Build logs go to logOut.
func (a *app) builders(logOut io.Writer) stmtdoc.BuilderFunc {
	return func(name string) (*core.Builder, error) {
		id, err := a.cfg.DialectID()
		if err != nil {
			return nil, err
		}
		if name != "" {
			parsed, ok := dialects.Parse(name)
			if !ok {
				return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedDialect, name)
			}
			id = parsed
		}
		return core.New(id, a.cfg.BuilderOptions(logOut)...), nil
	}
}
