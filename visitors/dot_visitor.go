package visitors

import (
	"fmt"
	"strings"

	"github.com/bawdo/typesql/nodes"
)

// Color constants for DOT node categories.
const (
	colorTable      = "#6CA6CD" // tables, statements
	colorAttribute  = "#B0D4E8" // column references
	colorComparison = "#FFB347" // comparisons, null tests
	colorLogical    = "#FFEB80" // AND, OR, NOT
	colorLiteral    = "#D3D3D3" // literals, bind params
	colorJoin       = "#77DD77" // joins
)

// dotNode represents a single node in the DOT graph.
type dotNode struct {
	id    string
	label string
	color string
}

// dotEdge represents a directed edge between two nodes in the DOT graph.
type dotEdge struct {
	from  string
	to    string
	label string
}

// pluginCluster groups nodes added by a plugin into a DOT subgraph cluster.
type pluginCluster struct {
	name    string
	color   string
	nodeIDs []string
}

// PluginProvenance records which WHERE conjuncts were contributed by a
// plugin. Conjuncts are numbered left to right across the top-level AND
// chain of the statement's WHERE clause.
type PluginProvenance struct {
	entries []provenanceEntry
}

type provenanceEntry struct {
	plugin string
	color  string
	index  int
}

// NewPluginProvenance creates a new PluginProvenance tracker.
func NewPluginProvenance() *PluginProvenance {
	return &PluginProvenance{}
}

// AddWhere marks a WHERE conjunct index as belonging to a plugin.
func (pp *PluginProvenance) AddWhere(plugin, color string, index int) {
	pp.entries = append(pp.entries, provenanceEntry{plugin: plugin, color: color, index: index})
}

func (pp *PluginProvenance) pluginForWhere(index int) (string, string, bool) {
	for _, e := range pp.entries {
		if e.index == index {
			return e.plugin, e.color, true
		}
	}
	return "", "", false
}

// DotVisitor walks the AST and produces Graphviz DOT output.
// It implements nodes.Visitor.
type DotVisitor struct {
	nextID     int
	nodes      []dotNode
	edges      []dotEdge
	clusters   []pluginCluster
	parentID   string
	edgeLabel  string
	provenance *PluginProvenance
}

var _ nodes.Visitor = (*DotVisitor)(nil)

// NewDotVisitor creates a new DotVisitor ready to walk an AST.
func NewDotVisitor() *DotVisitor {
	return &DotVisitor{}
}

// SetProvenance configures plugin provenance tracking for WHERE conjuncts.
func (dv *DotVisitor) SetProvenance(p *PluginProvenance) {
	dv.provenance = p
}

// addNode creates a new DOT node with the given label and color, returning its ID.
func (dv *DotVisitor) addNode(label, color string) string {
	id := fmt.Sprintf("n%d", dv.nextID)
	dv.nextID++
	dv.nodes = append(dv.nodes, dotNode{id: id, label: label, color: color})
	return id
}

func (dv *DotVisitor) addEdge(from, to, label string) {
	dv.edges = append(dv.edges, dotEdge{from: from, to: to, label: label})
}

// visitChild saves and restores the parent context, sets the edge label,
// and calls child.Accept to recursively visit the child node.
func (dv *DotVisitor) visitChild(parentID, label string, child nodes.Node) string {
	savedParent := dv.parentID
	savedLabel := dv.edgeLabel
	dv.parentID = parentID
	dv.edgeLabel = label
	result := child.Accept(dv)
	dv.parentID = savedParent
	dv.edgeLabel = savedLabel
	return result
}

// connectToParent adds an edge from the current parentID to nodeID if a parent exists.
func (dv *DotVisitor) connectToParent(nodeID string) {
	if dv.parentID != "" {
		dv.addEdge(dv.parentID, nodeID, dv.edgeLabel)
	}
}

// AddPluginCluster registers a plugin cluster for grouped rendering in the DOT output.
func (dv *DotVisitor) AddPluginCluster(name, color string, nodeIDs []string) {
	if len(nodeIDs) > 0 {
		dv.clusters = append(dv.clusters, pluginCluster{name: name, color: color, nodeIDs: nodeIDs})
	}
}

// NodeCount returns the number of nodes accumulated so far.
func (dv *DotVisitor) NodeCount() int {
	return len(dv.nodes)
}

// NodeIDsSince returns the IDs of nodes added since (and including) the given index.
func (dv *DotVisitor) NodeIDsSince(start int) []string {
	if start >= len(dv.nodes) {
		return nil
	}
	ids := make([]string, len(dv.nodes)-start)
	for i := start; i < len(dv.nodes); i++ {
		ids[i-start] = dv.nodes[i].id
	}
	return ids
}

// ToDot returns the accumulated graph as a Graphviz DOT document.
func (dv *DotVisitor) ToDot() string {
	var sb strings.Builder

	sb.WriteString("digraph AST {\n")
	sb.WriteString("  rankdir=TB;\n")
	sb.WriteString("  node [shape=box, style=filled, fontname=\"Helvetica\"];\n")
	sb.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")

	clustered := make(map[string]bool)
	for _, c := range dv.clusters {
		for _, id := range c.nodeIDs {
			clustered[id] = true
		}
	}

	for _, n := range dv.nodes {
		if !clustered[n.id] {
			fmt.Fprintf(&sb, "  %s [label=\"%s\", fillcolor=\"%s\"];\n",
				n.id, escapeLabel(n.label), n.color)
		}
	}

	for i, c := range dv.clusters {
		fmt.Fprintf(&sb, "  subgraph cluster_%d_%s {\n", i, c.name)
		fmt.Fprintf(&sb, "    label=\"%s\";\n", c.name)
		sb.WriteString("    style=dashed;\n")
		fmt.Fprintf(&sb, "    color=\"%s\";\n", c.color)
		sb.WriteString("    fontname=\"Helvetica\";\n")
		for _, id := range c.nodeIDs {
			for _, n := range dv.nodes {
				if n.id == id {
					fmt.Fprintf(&sb, "    %s [label=\"%s\", fillcolor=\"%s\"];\n",
						n.id, escapeLabel(n.label), n.color)
					break
				}
			}
		}
		sb.WriteString("  }\n")
	}

	for _, e := range dv.edges {
		if e.label != "" {
			fmt.Fprintf(&sb, "  %s -> %s [label=\"%s\"];\n", e.from, e.to, e.label)
		} else {
			fmt.Fprintf(&sb, "  %s -> %s;\n", e.from, e.to)
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// escapeLabel escapes double quotes in DOT labels.
// Backslash sequences like \n are intentional DOT line breaks and are preserved.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}

func (dv *DotVisitor) VisitTable(n *nodes.Table) string {
	id := dv.addNode("Table\\n"+n.Name, colorTable)
	dv.connectToParent(id)
	return id
}

func (dv *DotVisitor) VisitJoin(n *nodes.JoinNode) string {
	id := dv.addNode("Join\\n"+n.Type.String(), colorJoin)
	dv.connectToParent(id)
	dv.visitChild(id, "LEFT", n.Left)
	dv.visitChild(id, "RIGHT", n.Right)
	dv.visitChild(id, "ON", n.On)
	return id
}

func (dv *DotVisitor) VisitAttribute(n *nodes.Attribute) string {
	id := dv.addNode("Attribute\\n"+n.Table+"."+n.Name, colorAttribute)
	dv.connectToParent(id)
	return id
}

func (dv *DotVisitor) VisitBindParam(n *nodes.BindParamNode) string {
	id := dv.addNode(fmt.Sprintf("BindParam\\n$%d", n.Index+1), colorLiteral)
	dv.connectToParent(id)
	return id
}

func (dv *DotVisitor) VisitLiteral(n *nodes.LiteralNode) string {
	label := fmt.Sprintf("Literal\\n%v", n.Value)
	if s, ok := n.Value.(string); ok {
		label = "Literal\\n'" + s + "'"
	}
	id := dv.addNode(label, colorLiteral)
	dv.connectToParent(id)
	return id
}

func (dv *DotVisitor) VisitBinary(n *nodes.BinaryNode) string {
	var id string
	switch n.Op {
	case nodes.OpAnd, nodes.OpOr:
		id = dv.addNode(n.Op, colorLogical)
	default:
		id = dv.addNode("Comparison\\n"+n.Op, colorComparison)
	}
	dv.connectToParent(id)
	dv.visitChild(id, "LEFT", n.Left)
	dv.visitChild(id, "RIGHT", n.Right)
	return id
}

func (dv *DotVisitor) VisitUnary(n *nodes.UnaryNode) string {
	var id string
	if n.Op == nodes.OpNot {
		id = dv.addNode("NOT", colorLogical)
	} else {
		id = dv.addNode("Unary\\n"+n.Op.String(), colorComparison)
	}
	dv.connectToParent(id)
	dv.visitChild(id, "EXPR", n.Expr)
	return id
}

func (dv *DotVisitor) VisitSelectStatement(n *nodes.SelectStatement) string {
	id := dv.addNode("SelectStatement", colorTable)
	dv.connectToParent(id)

	if n.From != nil {
		dv.visitChild(id, "FROM", n.From)
	}
	for i, p := range n.Projections {
		dv.visitChild(id, fmt.Sprintf("SELECT[%d]", i), p)
	}
	if n.Where != nil {
		dv.visitWheres(id, splitAnd(n.Where))
	}
	return id
}

// visitWheres visits WHERE conjuncts, grouping plugin-contributed ones into
// clusters when provenance is configured.
func (dv *DotVisitor) visitWheres(parentID string, conjuncts []nodes.Node) {
	type acc struct {
		color string
		ids   []string
	}
	clusters := map[string]*acc{}
	var order []string
	for i, w := range conjuncts {
		snapshot := dv.NodeCount()
		dv.visitChild(parentID, fmt.Sprintf("WHERE[%d]", i), w)
		if dv.provenance == nil {
			continue
		}
		if plugin, color, ok := dv.provenance.pluginForWhere(i); ok {
			c, exists := clusters[plugin]
			if !exists {
				c = &acc{color: color}
				clusters[plugin] = c
				order = append(order, plugin)
			}
			c.ids = append(c.ids, dv.NodeIDsSince(snapshot)...)
		}
	}
	for _, name := range order {
		dv.AddPluginCluster(name, clusters[name].color, clusters[name].ids)
	}
}
