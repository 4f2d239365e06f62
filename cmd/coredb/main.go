// Package main provides the coredb CLI entry point: a thin cobra command
// tree wiring flags straight onto internal/coredb.Database methods, per
// spec.md §6's CLI surface. The terminal renderer and the NL-to-plan
// translator are out-of-scope collaborators; the bare positional query
// argument is forwarded to Database.Query as-is, on the assumption that
// whatever sits in front of this binary has already turned natural
// language into the SQL/plan text this CLI understands.
//
// Grounded on the teacher's cmd/nornicdb/main.go command-tree shape
// (cobra root command, one subcommand per operation, RunE functions
// reading flags bound to variables with StringVar/IntVar/BoolVar).
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coredb/coredb/internal/coredb"
	"github.com/coredb/coredb/internal/model"
	"github.com/coredb/coredb/internal/query"
	"github.com/coredb/coredb/internal/schema"
)

var (
	flagDatabase string
	flagFormat   string
	flagLimit    int
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := &cobra.Command{
		Use:   "coredb",
		Short: "coredb - an embedded AI-native database",
		Long: `coredb unifies a key/value store, a property graph, and a tabular
view over one physical store, with a SQL-compatible query engine, a
schema registry with migration synthesis, and an optional cloud bucket
mirror.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runFreeformQuery(strings.Join(args, " "))
		},
	}
	rootCmd.PersistentFlags().StringVar(&flagDatabase, "database", ".", "database directory")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "table", "output format: table|json|csv")
	rootCmd.PersistentFlags().IntVar(&flagLimit, "limit", 0, "maximum rows to return (0 = unbounded)")

	rootCmd.AddCommand(
		newInitCmd(),
		newQueryCmd(),
		newSchemaCmd(),
		newViewCmd(),
		newTraverseCmd(),
		newPushCmd(),
		newConnectCmd(),
		newSyncCmd(),
		newStatusCmd(),
		newInsertCmd(),
		newGetCmd(),
		newDeleteCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		return exitCodeFor(err)
	}
	return 0
}

// exitCodeFor maps a coredb.Error's Kind to spec.md §6's two-tier exit
// code scheme: validation/query/not-found/config/readonly/conflict are
// the caller's mistake (1); io/connection/corruption/timeout are ours
// or the environment's (2). Anything else (cobra arg errors) is a user
// error.
func exitCodeFor(err error) int {
	var coreErr *coredb.Error
	if !asCoredbError(err, &coreErr) {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprintln(os.Stderr, formatError(coreErr))
	switch coreErr.Kind {
	case coredb.KindIO, coredb.KindConnection, coredb.KindCorruption, coredb.KindTimeout:
		return 2
	default:
		return 1
	}
}

func formatError(err *coredb.Error) string {
	msg := fmt.Sprintf("%s: %s", err.Kind, err.Subject)
	if err.Hint != "" {
		msg += " (" + err.Hint + ")"
	}
	return msg
}

func asCoredbError(err error, target **coredb.Error) bool {
	for err != nil {
		if ce, ok := err.(*coredb.Error); ok {
			*target = ce
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func openDB() (*coredb.Database, error) {
	return coredb.Open(flagDatabase)
}

func newInitCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Create a new database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if name == "" {
				name = path
			}
			db, err := coredb.Create(path, name)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Printf("initialized database %q at %s\n", name, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "database name (defaults to the path)")
	return cmd
}

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a query against the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := db.Query(args[0])
			if err != nil {
				return err
			}
			return renderResult(result)
		},
	}
}

func runFreeformQuery(text string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := db.Query(text)
	if err != nil {
		return err
	}
	return renderResult(result)
}

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage schemas and relations",
	}

	var fields, alias string
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create or update a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			s, err := db.CreateSchema(args[0], fields)
			if err != nil {
				return err
			}
			fmt.Printf("schema %q created with %d field(s)\n", s.Name, len(s.Fields))
			return nil
		},
	}
	createCmd.Flags().StringVar(&fields, "fields", "", `field list, e.g. "name:string,age:int"`)

	var relType string
	linkCmd := &cobra.Command{
		Use:   "link <from> <to>",
		Short: "Register a relation between two schemas",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			rel, err := db.CreateRelationship(args[0], args[1], relType, alias)
			if err != nil {
				return err
			}
			fmt.Printf("linked %s -> %s as %s (edge type %s)\n", rel.FromSchema, rel.ToSchema, rel.Kind, rel.EdgeType)
			return nil
		},
	}
	linkCmd.Flags().StringVar(&relType, "type", "HasMany", "relation kind: HasOne|HasMany|BelongsTo|ManyToMany")
	linkCmd.Flags().StringVar(&alias, "alias", "", "optional relation alias")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every registered schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			schemas, err := db.ListSchemas()
			if err != nil {
				return err
			}
			for _, s := range schemas {
				fmt.Printf("%s (%d field(s))\n", s.Name, len(s.Fields))
			}
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show one schema's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			s, err := db.GetSchema(args[0])
			if err != nil {
				return err
			}
			fmt.Println(s.ToSQL())
			return nil
		},
	}

	var force bool
	dropCmd := &cobra.Command{
		Use:   "drop <name>",
		Short: "Drop a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.DropSchema(args[0], force); err != nil {
				return err
			}
			fmt.Printf("schema %q dropped\n", args[0])
			return nil
		},
	}
	dropCmd.Flags().BoolVar(&force, "force", false, "drop even if nodes of this type exist")

	var migrateFields string
	migrateCmd := &cobra.Command{
		Use:   "migrate <name>",
		Short: "Synthesize and apply a schema migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			parsedFields, err := schema.ParseFields(migrateFields)
			if err != nil {
				return err
			}
			updated := schema.NewSchema(args[0], parsedFields)

			m, err := db.MigrateSchema(args[0], updated, migrateFields)
			if err != nil {
				return err
			}
			fmt.Printf("migration %s applied (%d action(s))\n", m.ID, len(m.Actions))
			for _, a := range m.Actions {
				fmt.Println("  " + a.ToSQL())
			}
			return nil
		},
	}
	migrateCmd.Flags().StringVar(&migrateFields, "fields", "", "the schema's new field list")

	var exportOut string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export every registered schema as a YAML document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			data, err := db.ExportSchemas()
			if err != nil {
				return err
			}
			if exportOut == "" || exportOut == "-" {
				_, err := os.Stdout.Write(data)
				return err
			}
			return os.WriteFile(exportOut, data, 0o644)
		},
	}
	exportCmd.Flags().StringVar(&exportOut, "out", "-", "output file, or - for stdout")

	var importIn string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Register every schema in a YAML document produced by export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if importIn == "" || importIn == "-" {
				data, err = io.ReadAll(os.Stdin)
			} else {
				data, err = os.ReadFile(importIn)
			}
			if err != nil {
				return fmt.Errorf("reading schema document: %w", err)
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			schemas, err := db.ImportSchemas(data)
			if err != nil {
				return err
			}
			fmt.Printf("imported %d schema(s)\n", len(schemas))
			return nil
		},
	}
	importCmd.Flags().StringVar(&importIn, "in", "-", "input file, or - for stdin")

	cmd.AddCommand(createCmd, linkCmd, listCmd, showCmd, dropCmd, migrateCmd, exportCmd, importCmd)
	return cmd
}

func newViewCmd() *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "view <name>",
		Short: "Render a node type as a table, graph, or key/value view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			switch as {
			case "graph":
				graph, err := db.GetAsGraph(args[0], flagLimit)
				if err != nil {
					return err
				}
				return renderGraph(graph)
			case "kv":
				kv, err := db.GetAsKV(args[0], flagLimit)
				if err != nil {
					return err
				}
				return renderKV(kv)
			default:
				nodes, err := db.NodesByType(args[0], flagLimit)
				if err != nil {
					return err
				}
				return renderResult(query.FromNodes(nodes))
			}
		},
	}
	cmd.Flags().StringVar(&as, "as", "table", "view kind: table|graph|kv")
	return cmd
}

func newTraverseCmd() *cobra.Command {
	var depth int
	var edges []string
	cmd := &cobra.Command{
		Use:   "traverse <node>",
		Short: "Breadth-first walk from a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := db.Traverse(args[0], uint32(depth), edges)
			if err != nil {
				return err
			}
			return renderResult(result.ToQueryResult())
		},
	}
	cmd.Flags().IntVar(&depth, "depth", 1, "maximum traversal depth")
	cmd.Flags().StringSliceVar(&edges, "edges", nil, "edge types to follow (default: all)")
	return cmd
}

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <url>",
		Short: "Upload the local database to a cloud bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.PushToBucket(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("pushed to %s\n", args[0])
			return nil
		},
	}
}

func newConnectCmd() *cobra.Command {
	var readonly bool
	cmd := &cobra.Command{
		Use:   "connect <url>",
		Short: "Open a database backed entirely by a cloud bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := flagDatabase
			if dir == "" || dir == "." {
				dir, _ = os.MkdirTemp("", "coredb-connect-*")
			}
			db, err := coredb.ConnectRemote(context.Background(), args[0], dir, readonly)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Printf("connected to %s (cached at %s)\n", args[0], dir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&readonly, "readonly", false, "reject writes to the bucket")
	return cmd
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <url>",
		Short: "Bidirectionally sync the local database with a cloud bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			stats, err := db.SyncWithBucket(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("uploaded %d, downloaded %d\n", stats.Uploaded, stats.Downloaded)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show database statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			status, err := db.Status()
			if err != nil {
				return err
			}
			fmt.Printf("name:    %s\n", status.Name)
			fmt.Printf("path:    %s\n", status.Path)
			fmt.Printf("nodes:   %d\n", status.NodeCount)
			fmt.Printf("edges:   %d\n", status.EdgeCount)
			fmt.Printf("schemas: %d\n", status.SchemaCount)
			fmt.Printf("size:    %d bytes\n", status.SizeBytes)
			return nil
		},
	}
}

func newInsertCmd() *cobra.Command {
	var propsJSON string
	cmd := &cobra.Command{
		Use:   "insert <type>",
		Short: "Insert a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			props, err := parseProps(propsJSON)
			if err != nil {
				return &coredb.Error{Kind: coredb.KindValidation, Subject: "--props", Hint: "must be a JSON object", Cause: err}
			}
			n, err := db.InsertNode(args[0], props)
			if err != nil {
				return err
			}
			fmt.Println(n.ID.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&propsJSON, "props", "{}", "node properties as a JSON object")
	return cmd
}

func parseProps(propsJSON string) (*model.Object, error) {
	if propsJSON == "" {
		return model.NewObject(), nil
	}
	v, err := model.ParseJSON([]byte(propsJSON))
	if err != nil {
		return nil, err
	}
	obj, ok := v.AsObject()
	if !ok {
		return nil, fmt.Errorf("--props must be a JSON object")
	}
	return obj, nil
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch a node by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			n, err := db.GetNode(args[0])
			if err != nil {
				return err
			}
			return renderResult(query.FromNodes([]*model.Node{n}))
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a node (cascading to its edges)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.DeleteNode(args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	}
}

// ========== Rendering ==========
//
// Deliberately plain: the real terminal renderer is an out-of-scope
// collaborator. This is just enough formatting to make the CLI usable
// on its own.

func renderResult(result query.QueryResult) error {
	rows := result.Rows
	if flagLimit > 0 && flagLimit < len(rows) {
		rows = rows[:flagLimit]
	}

	switch flagFormat {
	case "json":
		return renderJSON(result.Columns, rows)
	case "csv":
		return renderCSV(result.Columns, rows)
	default:
		return renderTable(result.Columns, rows)
	}
}

func renderTable(columns []string, rows [][]model.Value) error {
	fmt.Println(strings.Join(columns, "\t"))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = cellString(v)
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
	return nil
}

func renderCSV(columns []string, rows [][]model.Value) error {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()
	if err := w.Write(columns); err != nil {
		return err
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = cellString(v)
		}
		if err := w.Write(cells); err != nil {
			return err
		}
	}
	return nil
}

func renderJSON(columns []string, rows [][]model.Value) error {
	out := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		m := make(map[string]interface{}, len(columns))
		for c, col := range columns {
			m[col] = row[c].ToJSON()
		}
		out[i] = m
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func cellString(v model.Value) string {
	if v.IsNull() {
		return ""
	}
	return fmt.Sprintf("%v", v.ToJSON())
}

func renderGraph(graph *coredb.GraphView) error {
	fmt.Printf("nodes: %d, edges: %d\n", len(graph.Nodes), len(graph.Edges))
	if err := renderResult(query.FromNodes(graph.Nodes)); err != nil {
		return err
	}
	return renderResult(edgesToResult(graph.Edges))
}

func edgesToResult(edges []*model.Edge) query.QueryResult {
	return query.FromEdges(edges)
}

func renderKV(view *coredb.KVView) error {
	for _, entry := range view.Entries {
		data, err := json.Marshal(entry.Value)
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", entry.Key, string(data))
	}
	return nil
}
