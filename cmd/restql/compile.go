package main

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/restql/internal/domain/query/request"
	"github.com/kailas-cloud/restql/internal/domain/violation"
	logpkg "github.com/kailas-cloud/restql/internal/logger"
	"github.com/kailas-cloud/restql/internal/render/elastic"
)

type compileFlags struct {
	typeName string
	params   request.Params
	lang     string
	dump     bool
}

func compileCmd(a *app) *cobra.Command {
	var f compileFlags
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "compile list parameters for a type and print the backend query",
		Example: `  restql compile --type User --filter 'age.$gte.18;tags.label.$eq.go' --sort 'age desc'
  restql compile --type Article --search golang --fields title --dump`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompile(cmd, a, f)
		},
	}
	cmd.Flags().StringVarP(&f.typeName, "type", "t", "", "record type name")
	cmd.Flags().StringVar(&f.params.Filter, "filter", "", "filter clauses")
	cmd.Flags().StringVar(&f.params.Sort, "sort", "", "sort expression")
	cmd.Flags().StringVar(&f.params.Search, "search", "", "search keyword")
	cmd.Flags().StringSliceVar(&f.params.SearchFields, "fields", nil, "explicit search fields")
	cmd.Flags().StringVar(&f.params.Before, "before", "", "cursor of the page after the wanted one")
	cmd.Flags().StringVar(&f.params.After, "after", "", "cursor of the page before the wanted one")
	cmd.Flags().IntVar(&f.params.Limit, "limit", 0, "page size")
	cmd.Flags().StringVar(&f.lang, "lang", violation.LangEn, "violation message language (en, vi)")
	cmd.Flags().BoolVar(&f.dump, "dump", false, "dump the compiled tree")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func runCompile(cmd *cobra.Command, a *app, f compileFlags) error {
	out := cmd.OutOrStdout()

	log, err := logpkg.NewLogger("cli")
	if err != nil {
		return err
	}
	ctx := logpkg.ContextWithLogger(cmd.Context(), log)

	reg, err := a.registry()
	if err != nil {
		return err
	}
	req, err := request.New(f.params, a.cfg.Query.DefaultPageSize, a.cfg.Query.MaxPageSize)
	if err != nil {
		return err
	}

	c, err := a.compiler(reg, nil).Compile(ctx, f.typeName, req)
	if err != nil {
		if vs, ok := violation.From(err); ok {
			printViolations(out, vs, violation.Language(f.lang))
		}
		return err
	}

	body, err := elastic.Body(c)
	if err != nil {
		return err
	}

	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(out, "# %s (index %s)\n", c.Type(), c.Index())
	fmt.Fprintln(out, c.Query())
	header.Fprintln(out, "# body")
	fmt.Fprintln(out, elastic.Pretty(body))
	if f.dump {
		header.Fprintln(out, "# tree")
		spew.Fdump(out, c.Query())
	}
	return nil
}

func printViolations(w io.Writer, vs []violation.Violation, lang string) {
	red := color.New(color.FgRed).SprintFunc()
	for _, v := range vs {
		fmt.Fprintf(w, "%s %s: %s", red("✗"), v.Key(), v.Message(lang))
		if v.Clause != "" {
			fmt.Fprintf(w, " (%q)", v.Clause)
		}
		fmt.Fprintln(w)
	}
}
