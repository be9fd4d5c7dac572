package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/omsapp/tag-server/internal/service"
)

func newFindCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "find <text>",
		Short: "Run the tag typeahead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(func(injector do.Injector) error {
				tags, err := do.Invoke[*service.TagService](injector)
				if err != nil {
					return err
				}

				found, err := tags.Find(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(w, "ID\tTITLE\tCOLOR")
				for _, t := range found {
					_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", t.ID, t.Title, t.Color)
				}
				return w.Flush()
			})
		},
	}
}
