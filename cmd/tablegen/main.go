// Command tablegen generates typed table proxies for typesql from a YAML
// table description.
//
// Usage:
//
//	tablegen generate --schema tables.yaml --output tables_gen.go [--package p]
//
// Settings may also come from tablegen.yaml (auto-discovered up to the
// repository root) or TABLEGEN_* environment variables. Flags win over the
// environment, which wins over the file.
package main

import (
	"os"

	"github.com/bawdo/typesql/internal/cli"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		cli.ExitWithError(err)
	}
}
