package cli

import (
	"os"

	"github.com/matzehuels/artframe/pkg/config"
)

// configSource resolves which config file to read. The flag wins over the
// environment; the implicit ./artframe.toml may be absent.
func (c *CLI) configSource() (path string, optional bool) {
	if c.configPath != "" {
		return c.configPath, false
	}
	if p := os.Getenv(envConfig); p != "" {
		return p, false
	}
	return config.DefaultFile, true
}

// loadConfig reads the configuration every command starts from.
func (c *CLI) loadConfig() (config.Config, error) {
	path, optional := c.configSource()
	cfg, err := config.Load(path, optional)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("Configuration loaded", "path", path, "cache", cfg.Cache.Dir, "display", cfg.Display.Kind)
	return cfg, nil
}
