package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/bawdo/typesql/dynamic"
	"github.com/bawdo/typesql/nodes"
	"github.com/bawdo/typesql/txn"
	"github.com/bawdo/typesql/visitors"
	"github.com/ergochat/readline"
)

var errNoQuery = errors.New("no query defined (use 'from <table>' first)")

// Session holds the REPL state: the table catalog, the query being built,
// the active engine and any enabled plugins.
type Session struct {
	catalog     *dynamic.Catalog
	query       *dynamic.Builder
	engine      txn.Engine
	visitor     nodes.Visitor
	plugins     pluginRegistry     // enabled plugins
	configurers []pluginConfigurer // all known plugins
	policy      []policyRule       // rules behind the policy plugin
	commands    []commandEntry     // command registry (sorted by prefix length desc)
	conn        *dbConn            // nil when disconnected
	lastDSN     string             // remembers the previous DSN for reconnect
	logger      *slog.Logger
	rl          *readline.Instance
	out         io.Writer // destination for REPL output (default os.Stdout)
}

// NewSession creates a session rendering for the given engine.
func NewSession(engine txn.Engine, rl *readline.Instance) *Session {
	s := &Session{
		catalog: dynamic.NewCatalog(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		rl:      rl,
		out:     os.Stdout,
	}
	s.configurers = []pluginConfigurer{
		{name: "softdelete", configure: configureSoftdelete},
		{name: "policy", configure: configurePolicy},
	}
	s.setEngine(engine)
	s.initCommands()
	return s
}

// pluginNames returns the names of all known plugins (for tab completion).
func (s *Session) pluginNames() []string {
	names := make([]string, len(s.configurers))
	for i, c := range s.configurers {
		names[i] = c.name
	}
	return names
}

func (s *Session) setEngine(engine txn.Engine) {
	v, err := txn.NewVisitor(engine)
	if err != nil {
		engine = txn.Postgres
		v = visitors.NewPostgresVisitor()
	}
	s.engine = engine
	s.visitor = v
}

// Execute runs a single REPL command line.
func (s *Session) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	lower := strings.ToLower(line)

	for _, cmd := range s.commands {
		if strings.HasSuffix(cmd.prefix, " ") {
			if strings.HasPrefix(lower, cmd.prefix) {
				return cmd.handler(line[len(cmd.prefix):])
			}
		} else {
			if lower == cmd.prefix {
				return cmd.handler("")
			}
		}
	}

	word := strings.Fields(line)[0]
	return fmt.Errorf("unknown command: %s (type 'help' for commands)", word)
}

// GenerateSQL renders the current query, plugins applied, in the session's
// dialect.
func (s *Session) GenerateSQL() (string, []int, error) {
	stmt, err := s.statement()
	if err != nil {
		return "", nil, err
	}
	return render(s.visitor, stmt), params(s.visitor), nil
}

// statement returns the current query's AST with every enabled plugin
// applied.
func (s *Session) statement() (*nodes.SelectStatement, error) {
	if s.query == nil {
		return nil, errNoQuery
	}
	stmt, err := s.query.Statement()
	if err != nil {
		return nil, err
	}
	return s.plugins.apply(stmt, nil)
}

func render(v nodes.Visitor, n nodes.Node) string {
	if p, ok := v.(nodes.Parameterizer); ok {
		p.Reset()
	}
	return n.Accept(v)
}

func params(v nodes.Visitor) []int {
	if p, ok := v.(nodes.Parameterizer); ok {
		return p.Params()
	}
	return nil
}

// --- Command handlers ---

// cmdTable registers a table: table <name> <col>:<type>[?] ...
// A trailing ? marks the column nullable.
func (s *Session) cmdTable(args string) error {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return errors.New("usage: table <name> <col>:<type>[?] ...")
	}
	def := dynamic.TableDef{Name: fields[0]}
	for _, f := range fields[1:] {
		col, err := parseColumnDef(f)
		if err != nil {
			return err
		}
		def.Columns = append(def.Columns, col)
	}
	if err := s.catalog.Add(def); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(s.out, "  Table %q registered (%d columns)\n", def.Name, len(def.Columns))
	return nil
}

func parseColumnDef(spec string) (dynamic.ColumnDef, error) {
	name, typ, ok := strings.Cut(spec, ":")
	if !ok || name == "" || typ == "" {
		return dynamic.ColumnDef{}, fmt.Errorf("invalid column %q (want name:type)", spec)
	}
	nullable := strings.HasSuffix(typ, "?")
	t, err := dynamic.ParseType(strings.TrimSuffix(typ, "?"))
	if err != nil {
		return dynamic.ColumnDef{}, fmt.Errorf("column %s: %w", name, err)
	}
	return dynamic.ColumnDef{Name: name, Type: t, Nullable: nullable}, nil
}

func (s *Session) cmdTables() error {
	defs := s.catalog.Tables()
	if len(defs) == 0 {
		_, _ = fmt.Fprintln(s.out, "  No tables registered")
		return nil
	}
	for _, def := range defs {
		cols := make([]string, len(def.Columns))
		for i, c := range def.Columns {
			cols[i] = c.Name + ":" + c.Type.String()
			if c.Nullable {
				cols[i] += "?"
			}
		}
		_, _ = fmt.Fprintf(s.out, "  %s(%s)\n", def.Name, strings.Join(cols, ", "))
	}
	return nil
}

// cmdLoad imports tables from the connected database. Their columns have
// unknown type and are treated as nullable.
func (s *Session) cmdLoad(args string) error {
	if s.conn == nil {
		return errors.New("not connected (use 'connect <dsn>' first)")
	}
	ctx := context.Background()
	names := strings.Fields(args)
	if len(names) == 0 {
		var err error
		if names, err = s.conn.conn.Tables(ctx); err != nil {
			return fmt.Errorf("load: %w", err)
		}
	}
	for _, name := range names {
		cols, err := s.conn.columns(ctx, name)
		if err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		if len(cols) == 0 {
			return fmt.Errorf("load: %w: %s", dynamic.ErrUnknownTable, name)
		}
		def := dynamic.TableDef{Name: name}
		for _, c := range cols {
			def.Columns = append(def.Columns, dynamic.ColumnDef{Name: c, Type: dynamic.Unknown, Nullable: true})
		}
		if err := s.catalog.Add(def); err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintf(s.out, "  Loaded %d table(s) from database\n", len(names))
	return nil
}

func (s *Session) cmdFrom(args string) error {
	name := strings.TrimSpace(args)
	if name == "" {
		return errors.New("usage: from <table>")
	}
	q, err := dynamic.New(s.catalog).From(name)
	if err != nil {
		return err
	}
	s.query = q
	_, _ = fmt.Fprintf(s.out, "  Query FROM %q\n", name)
	return nil
}

// cmdJoin handles: <table> on <condition>
func (s *Session) cmdJoin(args string, kind nodes.JoinType) error {
	if s.query == nil {
		return errNoQuery
	}
	idx := strings.Index(strings.ToLower(args), " on ")
	if idx < 0 {
		return errors.New("expected: <table> on <condition>")
	}
	table := strings.TrimSpace(args[:idx])
	cond := strings.TrimSpace(args[idx+4:])
	if table == "" || cond == "" {
		return errors.New("expected: <table> on <condition>")
	}
	q, err := s.query.Join(kind, table, func(sc *dynamic.Scope) (dynamic.Expr, error) {
		return dynamic.ParseExpr(sc, cond)
	})
	if err != nil {
		return fmt.Errorf("join condition: %w", err)
	}
	s.query = q
	_, _ = fmt.Fprintf(s.out, "  %s JOIN %q added\n", kind, table)
	return nil
}

func (s *Session) cmdWhere(args string) error {
	if s.query == nil {
		return errNoQuery
	}
	q, err := s.query.Where(func(sc *dynamic.Scope) (dynamic.Expr, error) {
		return dynamic.ParseExpr(sc, args)
	})
	if err != nil {
		return fmt.Errorf("where: %w", err)
	}
	s.query = q
	_, _ = fmt.Fprintln(s.out, "  WHERE condition added")
	return nil
}

func (s *Session) cmdSelect(args string) error {
	if s.query == nil {
		return errNoQuery
	}
	text := strings.TrimSpace(args)
	q, err := s.query.Select(func(sc *dynamic.Scope) ([]dynamic.Expr, error) {
		if text == "*" {
			return nil, nil
		}
		return dynamic.ParseList(sc, text)
	})
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}
	s.query = q
	if n := len(q.Projections()); n > 0 {
		_, _ = fmt.Fprintf(s.out, "  Projections set (%d)\n", n)
	} else {
		_, _ = fmt.Fprintln(s.out, "  Projections set (*)")
	}
	return nil
}

// cmdExpr type-checks a standalone expression against the current query's
// scope and prints its SQL and type.
func (s *Session) cmdExpr(args string) error {
	if s.query == nil {
		return errNoQuery
	}
	e, err := dynamic.ParseExpr(s.query.Scope(), args)
	if err != nil {
		return fmt.Errorf("expr: %w", err)
	}
	_, _ = fmt.Fprintf(s.out, "  %s  -- %s\n", render(s.visitor, e.Node), e)
	return nil
}

func (s *Session) cmdSQL() error {
	sql, ps, err := s.GenerateSQL()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(s.out, "  %s;\n", sql)
	if len(ps) > 0 {
		_, _ = fmt.Fprintf(s.out, "  Params: %v\n", ps)
	}
	return nil
}

func (s *Session) cmdFormat() error {
	stmt, err := s.statement()
	if err != nil {
		return err
	}
	fv := visitors.NewFormattingVisitor(s.visitor)
	for _, line := range strings.Split(render(fv, stmt), "\n") {
		_, _ = fmt.Fprintf(s.out, "  %s\n", line)
	}
	return nil
}

// cmdDot exports the current query AST as a Graphviz DOT file. WHERE
// conditions contributed by plugins are grouped into coloured clusters.
func (s *Session) cmdDot(args string) error {
	fpath := strings.TrimSpace(args)
	if fpath == "" {
		return errors.New("usage: dot <filepath>")
	}
	if s.query == nil {
		return errNoQuery
	}
	stmt, err := s.query.Statement()
	if err != nil {
		return err
	}

	prov := visitors.NewPluginProvenance()
	stmt, err = s.plugins.apply(stmt, func(e pluginEntry, from, to int) {
		for i := from; i < to; i++ {
			prov.AddWhere(e.name, e.color, i)
		}
	})
	if err != nil {
		return err
	}

	dv := visitors.NewDotVisitor()
	dv.SetProvenance(prov)
	stmt.Accept(dv)

	if err := os.WriteFile(fpath, []byte(dv.ToDot()), 0o600); err != nil {
		return fmt.Errorf("failed to write DOT file: %w", err)
	}
	_, _ = fmt.Fprintf(s.out, "  Wrote DOT to %s\n", fpath)
	return nil
}

func (s *Session) cmdEngine(args string) error {
	engine, err := txn.ParseEngine(args)
	if err != nil {
		return fmt.Errorf("%w (choose: postgres, mysql, sqlite)", err)
	}
	s.setEngine(engine)
	_, _ = fmt.Fprintf(s.out, "  Engine set to %s\n", s.engine)
	return nil
}

// cmdPlugin routes plugin sub-commands: enables a plugin by name, or
// dispatches to cmdPluginOff for disabling.
func (s *Session) cmdPlugin(args string) error {
	parts := strings.Fields(strings.TrimSpace(args))
	if len(parts) == 0 {
		return errors.New("usage: plugin <name> [args] | plugin off [name]")
	}
	name := strings.ToLower(parts[0])
	if name == "off" {
		return s.cmdPluginOff(parts[1:])
	}
	for _, c := range s.configurers {
		if c.name == name {
			rest := strings.TrimSpace(args)
			return c.configure(s, strings.TrimSpace(rest[len(parts[0]):]))
		}
	}
	return fmt.Errorf("unknown plugin: %s", name)
}

func (s *Session) cmdPluginOff(parts []string) error {
	if len(parts) == 0 {
		s.plugins.deregisterAll()
		s.policy = nil
		_, _ = fmt.Fprintln(s.out, "  All plugins disabled")
		return nil
	}
	name := strings.ToLower(parts[0])
	if !s.plugins.deregister(name) {
		return fmt.Errorf("plugin %q is not enabled", name)
	}
	if name == "policy" {
		s.policy = nil
	}
	_, _ = fmt.Fprintf(s.out, "  %s disabled\n", name)
	return nil
}

func (s *Session) cmdPlugins() {
	_, _ = fmt.Fprintln(s.out, "  Available plugins:")
	for _, c := range s.configurers {
		if entry, ok := s.plugins.get(c.name); ok {
			_, _ = fmt.Fprintf(s.out, "    %-14s on   (%s)\n", c.name, entry.status())
		} else {
			_, _ = fmt.Fprintf(s.out, "    %-14s off\n", c.name)
		}
	}
}

func (s *Session) cmdConnect(args string) error {
	dsn := strings.TrimSpace(args)

	if s.conn != nil {
		return fmt.Errorf("already connected to %s (use 'disconnect' first)", txn.SanitizeDSN(s.conn.dsn))
	}

	// Direct DSN provided, connect immediately.
	if dsn != "" {
		return s.connectWithDSN(dsn)
	}

	// Interactive: offer reconnect if we have a previous DSN, otherwise wizard.
	if s.lastDSN != "" {
		choice := prompt(s.rl, fmt.Sprintf("Reconnect to %s? (y/n/setup)", txn.SanitizeDSN(s.lastDSN)), "y")
		switch strings.ToLower(choice) {
		case "y", "yes":
			return s.connectWithDSN(s.lastDSN)
		case "s", "setup":
			return s.connectViaWizard()
		default:
			_, _ = fmt.Fprintln(s.out, "  Connect cancelled")
			return nil
		}
	}

	return s.connectViaWizard()
}

func (s *Session) connectWithDSN(dsn string) error {
	conn, err := connect(context.Background(), s.engine, dsn, s.logger)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	s.conn = conn
	s.lastDSN = dsn
	_, _ = fmt.Fprintf(s.out, "  Connected to %s (%s)\n", txn.SanitizeDSN(dsn), s.engine)
	return nil
}

func (s *Session) connectViaWizard() error {
	dsn := buildDSN(s.rl, s.engine)
	if dsn == "" {
		_, _ = fmt.Fprintln(s.out, "  No connection configured")
		return nil
	}
	_, _ = fmt.Fprintf(s.out, "  DSN: %s\n", txn.SanitizeDSN(dsn))
	return s.connectWithDSN(dsn)
}

func (s *Session) cmdDisconnect() error {
	if s.conn == nil {
		return errors.New("not connected")
	}
	dsn := txn.SanitizeDSN(s.conn.dsn)
	if err := s.conn.close(); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	s.conn = nil
	_, _ = fmt.Fprintf(s.out, "  Disconnected from %s\n", dsn)
	return nil
}

// cmdExec runs the current query in a transaction on the connected
// database. Arguments bind $1, $2, ... in order.
func (s *Session) cmdExec(args string) error {
	if s.conn == nil {
		return errors.New("not connected (use 'connect <dsn>' first)")
	}
	values, err := parseArgs(args)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	stmt, err := s.statement()
	if err != nil {
		return err
	}
	if e := s.conn.engine(); e != s.engine {
		_, _ = fmt.Fprintf(s.out, "  Warning: connected to %s but engine is set to %s\n", e, s.engine)
	}
	return s.conn.execQuery(context.Background(), stmt, values, s.out)
}

// parseArgs splits exec arguments. Quoted values ('it''s') are text,
// null/true/false and numbers are typed, anything else is text.
func parseArgs(text string) ([]any, error) {
	var out []any
	i := 0
	for i < len(text) {
		switch {
		case text[i] == ' ' || text[i] == '\t':
			i++
		case text[i] == '\'':
			var sb strings.Builder
			i++
			for {
				if i >= len(text) {
					return nil, errors.New("unterminated string")
				}
				if text[i] == '\'' {
					if i+1 < len(text) && text[i+1] == '\'' {
						sb.WriteByte('\'')
						i += 2
						continue
					}
					i++
					break
				}
				sb.WriteByte(text[i])
				i++
			}
			out = append(out, sb.String())
		default:
			start := i
			for i < len(text) && text[i] != ' ' && text[i] != '\t' {
				i++
			}
			out = append(out, argValue(text[start:i]))
		}
	}
	return out, nil
}

func argValue(tok string) any {
	switch strings.ToLower(tok) {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f
	}
	return tok
}

func (s *Session) cmdReset() error {
	s.query = nil
	_, _ = fmt.Fprintln(s.out, "  Query cleared")
	return nil
}

func (s *Session) cmdHelp() {
	_, _ = fmt.Fprintln(s.out, `
  Tables:
    table <name> <col>:<type>[?] ...   Register a table (? marks nullable)
                                       types: bool, int, text, float, time, unknown
    tables                    List registered tables
    load [table ...]          Import tables from the connected database

  Query Building:
    from <table>              Start a new query (sets FROM)
    join <table> on <cond>    INNER JOIN
    inner join <table> on <cond>
    left join <table> on <cond>    Right side becomes nullable
    right join <table> on <cond>   Earlier tables become nullable
    full join <table> on <cond>    Every table becomes nullable
    where <condition>         Add a WHERE condition (AND-ed)
    select <expr>, ...        Set projections (* for all columns)
    expr <expr>               Type-check an expression against the query
    reset                     Clear the current query

  Expressions:
    table.column, 42, 'text', true, false, $1
    = <> != < <= > >=  AND  OR  NOT  IS NULL  IS NOT NULL
    Comparisons need matching types and nullability. WHERE and ON
    conditions must be non-nullable booleans.

  Output:
    sql                       Print the SQL for the current engine
    format                    Print multi-line SQL
    ast                       Summarise the query and its types
    dot <file>                Write the AST as a Graphviz DOT file
    engine <name>             Switch engine (postgres, mysql, sqlite)

  Plugins:
    plugin softdelete [col]   Add "<col> IS NULL" for tables with a nullable <col>
    plugin softdelete <col> on <t1> [t2 ...]
    plugin softdelete t1.col, t2.col
    plugin policy deny <t1> [t2 ...]   Reject queries touching a table
    plugin policy <table> <cond>       Add a condition whenever table is read
    plugin off [name]         Disable one or all plugins
    plugins                   Show plugin status

  Database:
    connect [dsn]             Connect (prompts when no DSN is given)
    disconnect                Close the connection
    exec [args ...]           Run the query in a transaction; args bind $1, $2, ...

  help                        Show this help
  exit, quit                  Leave the REPL`)
}
