package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bawdo/typesql/internal/cli"
	"github.com/bawdo/typesql/internal/tablegen"
)

func newGenerateCmd(a *app) *cobra.Command {
	var schemaFlag, outputFlag, packageFlag string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Go proxies from a table schema",
		Example: `  # Use tablegen.yaml or defaults
  tablegen generate

  # Explicit paths
  tablegen generate --schema db/tables.yaml --output internal/db/tables_gen.go --package db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaPath := resolveString(schemaFlag, a.cfg.Schema)
			outputPath := resolveString(outputFlag, a.cfg.Output)
			pkg := resolveString(packageFlag, a.cfg.Package)

			data, err := os.ReadFile(schemaPath)
			if err != nil {
				return cli.GeneralError("reading schema", err)
			}
			s, err := tablegen.Parse(data)
			if err != nil {
				return cli.SchemaParseError(fmt.Sprintf("parsing %s", schemaPath), err)
			}
			if pkg == "" && s.Package == "" {
				pkg = filepath.Base(filepath.Dir(absOrSelf(outputPath)))
			}

			src, err := tablegen.Generate(s, pkg)
			if err != nil {
				return cli.SchemaParseError("generating code", err)
			}

			if dir := filepath.Dir(outputPath); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return cli.GeneralError("creating output directory", err)
				}
			}
			if err := os.WriteFile(outputPath, src, 0o644); err != nil {
				return cli.GeneralError("writing output", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Generated %s from %s (%d tables)\n", outputPath, schemaPath, len(s.Tables))
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaFlag, "schema", "", "path to tables YAML (default tables.yaml)")
	cmd.Flags().StringVar(&outputFlag, "output", "", "output Go file (default tables_gen.go)")
	cmd.Flags().StringVar(&packageFlag, "package", "", "package name (default from schema, else output directory)")
	return cmd
}

func absOrSelf(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
