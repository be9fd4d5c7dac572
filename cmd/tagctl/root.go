package main

import (
	"fmt"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/omsapp/tag-server/internal/config"
	"github.com/omsapp/tag-server/internal/di"
)

// cliOptions are the persistent flags shared by every subcommand.
// Empty values fall through to the server's environment and .env handling.
type cliOptions struct {
	dataPath string
	dbDriver string
	dbPath   string
	envFile  string
	noIndex  bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "tagctl",
		Short:         "Administer the tag server's data",
		Long:          `Mint access tokens, seed tags from YAML, run the typeahead and rebuild the search index.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.dataPath, "data-path", "", "Base path for application data")
	flags.StringVar(&opts.dbDriver, "db-driver", "", "Storage backend: sqlite or badger")
	flags.StringVar(&opts.dbPath, "db-path", "", "Database path")
	flags.StringVar(&opts.envFile, "env-file", ".env", "Path to .env file")
	flags.BoolVar(&opts.noIndex, "no-index", false, "Skip the search index and query the store directly")

	root.AddCommand(
		newTokenCmd(opts),
		newSeedCmd(opts),
		newFindCmd(opts),
		newReindexCmd(opts),
	)
	return root
}

// loadConfig builds the server configuration from the CLI flags.
func (o *cliOptions) loadConfig() (*config.Config, error) {
	args := []string{"--log-level=error", "--env-file=" + o.envFile}
	if o.dataPath != "" {
		args = append(args, "--data-path="+o.dataPath)
	}
	if o.dbDriver != "" {
		args = append(args, "--db-driver="+o.dbDriver)
	}
	if o.dbPath != "" {
		args = append(args, "--db-path="+o.dbPath)
	}
	if o.noIndex {
		args = append(args, "--search-enabled=false")
	}

	cfg, err := config.Load(args)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// withContainer runs fn against a container built from the CLI flags.
// The container is shut down afterwards, closing the store and index.
func (o *cliOptions) withContainer(fn func(injector do.Injector) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	injector := di.NewContainerWithConfig(cfg)
	defer func() { _ = injector.Shutdown() }()

	return fn(injector)
}
