package main

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/omsapp/tag-server/internal/service"
)

func newReindexCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.noIndex {
				return fmt.Errorf("reindex needs the search index; drop --no-index")
			}
			return opts.withContainer(func(injector do.Injector) error {
				tags, err := do.Invoke[*service.TagService](injector)
				if err != nil {
					return err
				}

				count, err := tags.ReindexAll(cmd.Context())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d tags\n", count)
				return err
			})
		},
	}
}
