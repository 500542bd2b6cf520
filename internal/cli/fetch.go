package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/artframe/pkg/config"
	"github.com/matzehuels/artframe/pkg/fetcher"
	"github.com/matzehuels/artframe/pkg/store"
)

// fetchCommand creates the fetch command.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		limit       int
		skipCatalog bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Mirror the museum catalog, records and images into the cache",
		Long: `Fetch downloads the collection listing, then every object record and its
primary image into the cache directory. Files already present are kept, so
an interrupted fetch resumes where it stopped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("limit") {
				cfg.Fetch.Limit = limit
			}
			st, err := openStore(cfg, nil)
			if err != nil {
				return err
			}
			return c.runFetch(cmd.Context(), cfg, st, skipCatalog)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many objects (0 = all)")
	cmd.Flags().BoolVar(&skipCatalog, "skip-catalog", false, "reuse the cached catalog instead of downloading it")

	return cmd
}

// runFetch runs one fetch pass and prints a summary.
func (c *CLI) runFetch(ctx context.Context, cfg config.Config, st *store.Store, skipCatalog bool) error {
	stats, err := c.fetch(ctx, cfg, st, skipCatalog)
	if err != nil {
		return err
	}

	printSuccess("Fetched %d of %d objects", stats.Processed, stats.IDs)
	printFile(st.CatalogPath())
	if line := fetchStatsLine(stats); line != "" {
		fmt.Println(line)
	}
	if stats.Failed > 0 {
		printWarning("%d objects failed, run fetch again to retry them", stats.Failed)
	}
	printNewline()
	printNextStep("Paint", appName+" paint "+st.CatalogPath())
	return nil
}

// fetch builds a fetcher from cfg and runs it against st.
func (c *CLI) fetch(ctx context.Context, cfg config.Config, st *store.Store, skipCatalog bool) (*fetcher.Stats, error) {
	prog := newProgress(c.Logger)
	f := fetcher.New(newMuseumClient(cfg.Museum), st, fetcher.Options{
		Retries:     cfg.Fetch.Retries,
		Timeout:     cfg.Fetch.Timeout.Std(),
		Limit:       cfg.Fetch.Limit,
		SkipCatalog: skipCatalog,
	}, c.Logger)

	stats, err := f.Run(ctx)
	if err != nil {
		return stats, err
	}
	prog.done(fmt.Sprintf("Fetch finished: %d objects", stats.Processed))
	return stats, nil
}
