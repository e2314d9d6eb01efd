package managers

import (
	"fmt"

	"github.com/bawdo/typesql/nodes"
	"github.com/bawdo/typesql/plugins"
)

// applyTransformers runs the transformer pipeline over a clone of stmt so
// the original statement is never modified.
func applyTransformers(stmt *nodes.SelectStatement, ts []plugins.Transformer) (*nodes.SelectStatement, error) {
	out := stmt.Clone()
	for i, t := range ts {
		var err error
		out, err = t.TransformSelect(out)
		if err != nil {
			return nil, fmt.Errorf("transformer %d: %w", i, err)
		}
		if out == nil {
			return nil, fmt.Errorf("transformer %d returned no statement", i)
		}
	}
	return out, nil
}

// toSQLParams resets a parameterizer (if present), renders n with v, and
// returns the SQL along with the placeholder order.
func toSQLParams(v nodes.Visitor, n nodes.Node) (string, []int) {
	p, _ := v.(nodes.Parameterizer)
	if p != nil {
		p.Reset()
	}

	sql := n.Accept(v)

	if p != nil {
		return sql, p.Params()
	}
	return sql, nil
}
