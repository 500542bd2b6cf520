package cli

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/matzehuels/artframe/pkg/config"
	"github.com/matzehuels/artframe/pkg/display"
	aferrors "github.com/matzehuels/artframe/pkg/errors"
	"github.com/matzehuels/artframe/pkg/pipeline"
	"github.com/matzehuels/artframe/pkg/store"
)

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		schedule string
		fetch    bool
		kind     string
	)

	cmd := &cobra.Command{
		Use:   "watch [catalog.json]",
		Short: "Repaint the display on a schedule",
		Long: `Watch paints once immediately and then again on every tick of the
schedule until interrupted. The schedule is a cron expression or a
descriptor such as "@hourly" or "@every 30m".

With --fetch, each tick first runs a fetch pass so the cache keeps growing.`,
		Example: `  artframe watch collection.json --schedule "0 7 * * *"
  artframe watch --schedule "@every 2h" --fetch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if schedule != "" {
				cfg.Watch.Schedule = schedule
			}
			if cmd.Flags().Changed("fetch") {
				cfg.Watch.Fetch = fetch
			}
			applyDisplayFlags(&cfg, kind, "")
			if err := cfg.Validate(); err != nil {
				return err
			}
			st, err := openStore(cfg, args)
			if err != nil {
				return err
			}
			return c.runWatch(cmd.Context(), cfg, st)
		},
	}

	cmd.Flags().StringVarP(&schedule, "schedule", "s", "", `repaint schedule (default from config, "@every 1h")`)
	cmd.Flags().BoolVar(&fetch, "fetch", false, "run a fetch pass before every repaint")
	cmd.Flags().StringVarP(&kind, "display", "d", "", "display: auto, inky, quote0, file or web")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, cfg config.Config, st *store.Store) error {
	opts, err := pipeline.OptionsFromConfig(cfg.Paint)
	if err != nil {
		return err
	}

	d, err := display.Open(cfg.Display, c.Logger)
	if err != nil {
		return err
	}
	defer d.Close()

	w := &watcher{
		runner: pipeline.NewRunner(st, d, c.Logger),
		opts:   opts,
	}
	if cfg.Watch.Fetch {
		w.fetch = func(ctx context.Context) error {
			_, err := c.fetch(ctx, cfg, st, false)
			return err
		}
	}

	logger := cronLogger{c.Logger}
	sched := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := sched.AddFunc(cfg.Watch.Schedule, func() { w.tick(ctx) }); err != nil {
		return aferrors.Wrap(aferrors.ErrCodeInvalidConfig, err, "invalid schedule %q", cfg.Watch.Schedule)
	}

	c.Logger.Info("Watching", "schedule", cfg.Watch.Schedule, "display", d.Name(), "fetch", cfg.Watch.Fetch)
	w.tick(ctx)

	sched.Start()
	<-ctx.Done()
	<-sched.Stop().Done()
	c.Logger.Info("Stopped watching", "paints", w.paints, "failures", w.failures)
	return ctx.Err()
}

// watcher is one repaint loop. tick never returns an error: a failed paint
// is logged and the next tick tries again.
type watcher struct {
	runner *pipeline.Runner
	opts   pipeline.Options
	fetch  func(context.Context) error

	mu       sync.Mutex
	paints   int
	failures int
}

func (w *watcher) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	logger := w.runner.Logger

	if w.fetch != nil {
		if err := w.fetch(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("Fetch failed, painting from the existing cache", "err", err)
		}
	}

	result, err := w.runner.Execute(ctx, w.opts)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		if ctx.Err() == nil {
			w.failures++
			logger.Error("Paint failed", "code", aferrors.GetCode(err), "err", err)
		}
		return
	}
	w.paints++
	logger.Info("Painted", "id", result.ID, "title", result.Record.Title, "run", result.RunID[:8])
}
