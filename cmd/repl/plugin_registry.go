package main

import (
	"fmt"

	"github.com/bawdo/typesql/nodes"
	"github.com/bawdo/typesql/plugins"
)

// pluginEntry represents an enabled plugin in the registry.
type pluginEntry struct {
	name    string                     // "softdelete", "policy"
	factory func() plugins.Transformer // creates a fresh instance per render
	status  func() string              // human-readable status for display
	color   string                     // DOT provenance color
}

// pluginRegistry holds the currently enabled plugins.
type pluginRegistry struct {
	entries []pluginEntry // plugins apply in registration order
}

// register adds or replaces a plugin by name.
func (r *pluginRegistry) register(entry pluginEntry) {
	for i, e := range r.entries {
		if e.name == entry.name {
			r.entries[i] = entry
			return
		}
	}
	r.entries = append(r.entries, entry)
}

// deregister removes a plugin by name. Returns false if not found.
func (r *pluginRegistry) deregister(name string) bool {
	for i, e := range r.entries {
		if e.name == name {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// deregisterAll removes all plugins.
func (r *pluginRegistry) deregisterAll() {
	r.entries = nil
}

// get looks up a plugin by name.
func (r *pluginRegistry) get(name string) (pluginEntry, bool) {
	for _, e := range r.entries {
		if e.name == name {
			return e, true
		}
	}
	return pluginEntry{}, false
}

// names returns the names of all enabled plugins.
func (r *pluginRegistry) names() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.name
	}
	return out
}

// apply runs every enabled plugin over stmt. When observe is non-nil it is
// told which WHERE conjuncts, as [from, to), each plugin contributed.
func (r *pluginRegistry) apply(stmt *nodes.SelectStatement, observe func(e pluginEntry, from, to int)) (*nodes.SelectStatement, error) {
	for _, entry := range r.entries {
		before := conjunctCount(stmt.Where)
		next, err := entry.factory().TransformSelect(stmt)
		if err != nil {
			return nil, fmt.Errorf("plugin %s: %w", entry.name, err)
		}
		stmt = next
		if observe != nil {
			observe(entry, before, conjunctCount(stmt.Where))
		}
	}
	return stmt, nil
}

// conjunctCount counts the terms of a left-deep AND chain.
func conjunctCount(n nodes.Node) int {
	if n == nil {
		return 0
	}
	if b, ok := n.(*nodes.BinaryNode); ok && b.Op == nodes.OpAnd {
		return conjunctCount(b.Left) + 1
	}
	return 1
}

// pluginConfigurer defines a known plugin that can be enabled via the plugin command.
type pluginConfigurer struct {
	name      string
	configure func(s *Session, args string) error
}
