package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/restql/internal/config"
	domschema "github.com/kailas-cloud/restql/internal/domain/schema"
	schemarepo "github.com/kailas-cloud/restql/internal/repository/schema"
	"github.com/kailas-cloud/restql/internal/usecase/compile"
	"github.com/kailas-cloud/restql/internal/usecase/resolve"
	"github.com/kailas-cloud/restql/internal/version"
)

// app carries what every subcommand needs after flag parsing.
type app struct {
	env     string
	schemas []string
	cfg     config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "restql",
		Short:         "compile REST list query parameters into search backend queries",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.load()
		},
	}
	root.PersistentFlags().StringVarP(&a.env, "env", "e", config.GetEnv(), "config environment (local, dev, prod)")
	root.PersistentFlags().StringSliceVarP(&a.schemas, "schemas", "s", nil, "schema file globs (overrides schema.files)")

	root.AddCommand(serveCmd(a), compileCmd(a), fieldsCmd(a), versionCmd())
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.env)
	if err != nil {
		return err
	}
	if len(a.schemas) > 0 {
		cfg.Schema.Files = a.schemas
	}
	a.cfg = cfg
	return nil
}

// registry loads the configured schema files.
func (a *app) registry() (*domschema.Registry, error) {
	reg, err := schemarepo.Load(a.cfg.Schema.Files...)
	if err != nil {
		return nil, fmt.Errorf("load schemas: %w", err)
	}
	return reg, nil
}

// compiler wires the compile service from configuration. exec may be nil.
func (a *app) compiler(reg *domschema.Registry, exec compile.Executor) *compile.Service {
	q := a.cfg.Query
	resolver := resolve.New(resolve.WithKeywordSuffix(q.KeywordSuffix))
	return compile.New(reg, exec, resolver, compile.Options{
		SearchDepth: q.SearchDepth,
		FilterDepth: q.FilterDepth,
		MaxClauses:  q.MaxClauses,
		Separators:  q.ClauseSeparators,
	})
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func logFields(a *app) []zap.Field {
	return []zap.Field{
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Strings("schemas", a.cfg.Schema.Files),
	}
}
