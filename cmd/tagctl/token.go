package main

import (
	"fmt"
	"strconv"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/omsapp/tag-server/internal/auth"
	"github.com/omsapp/tag-server/internal/domain"
)

func newTokenCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token <account-id>",
		Short: "Mint an access token for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || accountID <= 0 {
				return fmt.Errorf("invalid account id %q", args[0])
			}

			return opts.withContainer(func(injector do.Injector) error {
				tokens, err := do.Invoke[*auth.TokenService](injector)
				if err != nil {
					return err
				}

				token, err := tokens.Issue(domain.Account{ID: accountID})
				if err != nil {
					return fmt.Errorf("issue token: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
				return err
			})
		},
	}
}
