package plugins

import "github.com/bawdo/typesql/nodes"

// CollectTables returns the names of every table in the statement's FROM
// tree, in FROM then JOIN order.
func CollectTables(stmt *nodes.SelectStatement) []string {
	return nodes.TableNames(stmt.From)
}
