// Package cli implements the artframe command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matzehuels/artframe/pkg/buildinfo"
	"github.com/matzehuels/artframe/pkg/config"
	"github.com/matzehuels/artframe/pkg/museum"
	"github.com/matzehuels/artframe/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used in help text and hints.
	appName = "artframe"

	// envConfig names the config file when --config is not given.
	envConfig = "ARTFRAME_CONFIG"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Artframe paints museum artworks onto e-paper displays",
		Long: `Artframe mirrors an open-access museum collection into a local cache and
paints a randomly chosen artwork, captioned with its title, artist and date,
onto an e-paper panel, a Quote/0 device, a PNG file or a browser preview.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional; variables already set win.
			_ = godotenv.Load()
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $"+envConfig+" or ./"+config.DefaultFile+")")

	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.paintCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

// newMuseumClient builds the collection API client from the [museum] section.
func newMuseumClient(cfg config.MuseumConfig) *museum.Client {
	ua := cfg.UserAgent
	if ua == "" {
		ua = buildinfo.UserAgent()
	}
	return museum.NewClient(cfg.BaseURL,
		museum.WithDepartments(cfg.DepartmentIDs...),
		museum.WithUserAgent(ua),
		museum.WithTimeout(cfg.Timeout.Std()),
	)
}

// openStore returns the cache named by the optional catalog argument, or
// the configured cache directory when no argument is given.
func openStore(cfg config.Config, args []string) (*store.Store, error) {
	if len(args) > 0 && args[0] != "" {
		return store.ForCatalog(args[0]), nil
	}
	return store.Open(cfg.Cache.Dir, cfg.Cache.CatalogFile)
}
