package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/bawdo/typesql/internal/cli"
)

// app is the state shared by subcommands, set during PersistentPreRunE.
type app struct {
	out        io.Writer
	cfgFile    string
	cfg        *cli.Config
	configPath string
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:   "tablegen",
		Short: "Generate typed table proxies for typesql",
		Long: `tablegen - typed table proxies for typesql

Reads a YAML description of tables and columns and writes Go source declaring
a zero-size table type plus proxy structs whose fields are typed column
handles. Queries built from these proxies are checked by the Go compiler.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			var err error
			a.cfg, a.configPath, err = cli.LoadConfig(a.cfgFile)
			if err != nil {
				return cli.ConfigError("loading configuration", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: auto-discover tablegen.yaml)")
	root.AddCommand(newGenerateCmd(a))
	return root
}

// resolveString returns the first non-empty value, implementing
// flag > config precedence.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
