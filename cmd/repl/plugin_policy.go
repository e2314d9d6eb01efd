package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bawdo/typesql/dynamic"
	"github.com/bawdo/typesql/nodes"
	"github.com/bawdo/typesql/plugins"
	"github.com/bawdo/typesql/plugins/policy"
)

// policyRule is one rule of the REPL's policy plugin: either a table that
// may not be read, or a condition added whenever a table is read.
type policyRule struct {
	table string
	deny  bool
	cond  nodes.Node
	text  string
}

func (r policyRule) fn() policy.Func {
	if r.deny {
		return policy.Deny(r.table)
	}
	return func(name string) ([]nodes.Node, error) {
		if name != r.table {
			return nil, nil
		}
		return []nodes.Node{r.cond}, nil
	}
}

func (r policyRule) String() string {
	if r.deny {
		return "deny " + r.table
	}
	return r.table + ": " + r.text
}

// configurePolicy handles:
//
//	plugin policy deny <table> [table ...]
//	plugin policy <table> <condition>
//
// Rules accumulate until the plugin is turned off. Conditions are checked
// against the table's catalog definition like a WHERE clause.
func configurePolicy(s *Session, args string) error {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return errors.New("usage: plugin policy deny <table> [table ...] | plugin policy <table> <condition>")
	}

	var added []policyRule
	if strings.EqualFold(fields[0], "deny") {
		for _, t := range fields[1:] {
			added = append(added, policyRule{table: t, deny: true})
		}
	} else {
		table := fields[0]
		text := strings.TrimSpace(strings.TrimSpace(args)[len(table):])
		var cond dynamic.Expr
		b, err := dynamic.New(s.catalog).From(table)
		if err == nil {
			_, err = b.Where(func(sc *dynamic.Scope) (dynamic.Expr, error) {
				e, perr := dynamic.ParseExpr(sc, text)
				cond = e
				return e, perr
			})
		}
		if err != nil {
			return fmt.Errorf("policy: %w", err)
		}
		added = append(added, policyRule{table: table, cond: cond.Node, text: text})
	}
	s.policy = append(s.policy, added...)

	rules := append([]policyRule(nil), s.policy...)
	s.plugins.register(pluginEntry{
		name: "policy",
		factory: func() plugins.Transformer {
			fns := make([]policy.Func, len(rules))
			for i, r := range rules {
				fns[i] = r.fn()
			}
			return policy.New(policy.Chain(fns...))
		},
		status: func() string {
			parts := make([]string, len(rules))
			for i, r := range rules {
				parts[i] = r.String()
			}
			return strings.Join(parts, "; ")
		},
		color: "#9B59B6",
	})
	for _, r := range added {
		_, _ = fmt.Fprintf(s.out, "  Policy rule added (%s)\n", r)
	}
	return nil
}
