package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func fieldsCmd(a *app) *cobra.Command {
	var (
		typeName string
		depth    int
	)
	cmd := &cobra.Command{
		Use:   "fields",
		Short: "list the field paths a type exposes to filters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			paths, err := a.compiler(reg, nil).Fields(typeName, depth)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tKIND\tCONTAINER\tKEYWORD\tSCOPES")
			for _, p := range paths {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					p.Name, p.Kind, p.Container, p.Keyword, strings.Join(p.Scopes, ","))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "record type name")
	cmd.Flags().IntVarP(&depth, "depth", "d", -1, "nesting depth (filter depth when negative)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
