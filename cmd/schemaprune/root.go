package main

// root.go has the root command which loads the configuration and creates the logger for the others

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/diconium/schemapruner"
	"github.com/diconium/schemapruner/internal/config"
	"github.com/diconium/schemapruner/internal/logging"
	"github.com/diconium/schemapruner/internal/upstream"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// app holds what the root command sets up for its subcommands
type app struct {
	configFile, envFile, logLevel string

	// schema source flags, overriding the upstream section of the configuration
	schemaFile, url string
	headers         map[string]string

	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop(), closer: io.NopCloser(nil)}
	root := &cobra.Command{
		Use:           "schemaprune",
		Short:         "Prune a GraphQL schema to the fields, arguments and input fields used by a set of queries.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.closer.Close()
		},
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "YAML configuration file")
	flags.StringVar(&a.envFile, "env", ".env", "file of environment variables to load if it exists")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error), overrides log.level")

	root.AddCommand(newPruneCmd(a), newUsageCmd(a), newIntrospectCmd(a), newServeCmd(a))
	return root
}

func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load(a.configFile, a.envFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.url != "" {
		cfg.Upstream.URL, cfg.Upstream.Schema = a.url, ""
	} else if a.schemaFile != "" {
		cfg.Upstream.URL, cfg.Upstream.Schema = "", a.schemaFile
	}
	for k, v := range a.headers {
		if cfg.Upstream.Headers == nil {
			cfg.Upstream.Headers = make(map[string]string)
		}
		cfg.Upstream.Headers[k] = v
	}

	a.cfg = cfg
	a.log, a.closer, err = logging.New(cfg.Log, stderr)
	return err
}

// schemaFlags adds the flags that say where the schema comes from
func (a *app) schemaFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&a.schemaFile, "schema", "s", "", "introspection result (JSON) or SDL (.graphql) file")
	cmd.Flags().StringVarP(&a.url, "url", "u", "", "GraphQL endpoint to introspect")
	cmd.Flags().StringToStringVarP(&a.headers, "header", "H", nil, "header for the introspection request (name=value)")
	cmd.MarkFlagsMutuallyExclusive("schema", "url")
}

// loader returns the Loader for the configured schema source
func (a *app) loader() (upstream.Loader, error) {
	switch {
	case a.cfg.Upstream.URL != "":
		return upstream.NewFetcher(a.cfg.Upstream.URL,
			upstream.Timeout(a.cfg.Upstream.Timeout),
			upstream.Headers(a.cfg.Upstream.Headers),
			upstream.WithLogger(a.log),
		), nil
	case a.cfg.Upstream.Schema != "":
		return upstream.FileLoader{Path: a.cfg.Upstream.Schema}, nil
	}
	return nil, fmt.Errorf("no schema: use --schema or --url (or upstream.schema/upstream.url in the configuration)")
}

// session loads the schema and processes the queries
func (a *app) session(ctx context.Context, q *queryFlags) (*schemapruner.Session, error) {
	queries, err := q.read(a.cfg.Upstream.Schema, a.log)
	if err != nil {
		return nil, err
	}
	l, err := a.loader()
	if err != nil {
		return nil, err
	}
	data, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	s, err := schemapruner.NewFromJSON(data, schemapruner.Logger(a.log), schemapruner.Indent("  "))
	if err != nil {
		return nil, err
	}
	if err := s.ProcessAll(ctx, queries); err != nil {
		return nil, err
	}
	a.log.Info().Int("queries", len(queries)).Msg("queries processed")
	return s, nil
}

// queryFlags are the flags that supply queries
type queryFlags struct {
	queries []string
	dirs    []string
	files   []string
}

func (q *queryFlags) add(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&q.queries, "query", "q", nil, "query document (repeatable)")
	cmd.Flags().StringArrayVar(&q.files, "query-file", nil, "file containing a query document (repeatable)")
	cmd.Flags().StringArrayVar(&q.dirs, "query-dir", nil, "directory searched recursively for .graphql and .gql query files (repeatable)")
}

// read returns all the queries: those given directly then the contents of files then directories.
// Files found in a directory are skipped if they are the schema file or hold type definitions (SDL).
func (q *queryFlags) read(schemaFile string, log zerolog.Logger) ([]string, error) {
	r := append([]string(nil), q.queries...)
	for _, f := range q.files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading query: %w", err)
		}
		r = append(r, string(data))
	}

	for _, dir := range q.dirs {
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".graphql", ".gql":
			default:
				return nil
			}
			if d.IsDir() || samePath(path, schemaFile) {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading query: %w", err)
			}
			if isSchemaDocument(string(data)) {
				log.Debug().Str("file", path).Msg("skipping schema definition file")
				return nil
			}
			r = append(r, string(data))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("reading query directory: %w", err)
		}
	}
	return r, nil
}

func samePath(a, b string) bool {
	if b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// isSchemaDocument is true if the text parses as type system definitions. Executable
// documents (operations and fragments) never do.
func isSchemaDocument(text string) bool {
	doc, err := parser.ParseSchema(&ast.Source{Input: text})
	if err != nil {
		return false
	}
	return len(doc.Definitions)+len(doc.Extensions)+len(doc.Schema)+len(doc.SchemaExtension)+len(doc.Directives) > 0
}

// output writes to the file named by the -o flag, or standard output
func output(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
