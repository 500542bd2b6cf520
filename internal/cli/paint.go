package cli

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/artframe/pkg/config"
	"github.com/matzehuels/artframe/pkg/display"
	"github.com/matzehuels/artframe/pkg/pipeline"
	"github.com/matzehuels/artframe/pkg/store"
)

type paintFlags struct {
	id     int64
	pick   bool
	kind   string
	output string
	rotate int
}

// paintCommand creates the paint command.
func (c *CLI) paintCommand() *cobra.Command {
	var flags paintFlags

	cmd := &cobra.Command{
		Use:   "paint [catalog.json]",
		Short: "Compose one artwork and show it on the display",
		Long: `Paint picks an artwork from the cache (at random unless --id or --pick is
given), captions it, fits it to the display and shows it.

The cache is the directory holding catalog.json. Without an argument the
configured cache directory is used.`,
		Example: `  artframe paint collection.json
  artframe paint collection.json --id 436535 --output preview.png
  artframe paint --pick --display web`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			applyDisplayFlags(&cfg, flags.kind, flags.output)
			if cmd.Flags().Changed("rotate") {
				cfg.Paint.Rotate = flags.rotate
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			st, err := openStore(cfg, args)
			if err != nil {
				return err
			}
			return c.runPaint(cmd.Context(), cfg, st, flags)
		},
	}

	cmd.Flags().Int64Var(&flags.id, "id", 0, "paint this object instead of a random one")
	cmd.Flags().BoolVar(&flags.pick, "pick", false, "choose the artwork from an interactive list")
	cmd.Flags().StringVarP(&flags.kind, "display", "d", "", "display: auto, inky, quote0, file or web")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the canvas to this PNG file")
	cmd.Flags().IntVar(&flags.rotate, "rotate", 0, "rotate the canvas by 0, 90, 180 or 270 degrees")
	cmd.MarkFlagsMutuallyExclusive("id", "pick")

	return cmd
}

// applyDisplayFlags overrides the display section. An output path without
// an explicit display selects the file display.
func applyDisplayFlags(cfg *config.Config, kind, output string) {
	if kind != "" {
		cfg.Display.Kind = kind
	}
	if output != "" {
		cfg.Display.Output = output
		if kind == "" {
			cfg.Display.Kind = config.DisplayFile
		}
	}
}

func (c *CLI) runPaint(ctx context.Context, cfg config.Config, st *store.Store, flags paintFlags) error {
	opts, err := pipeline.OptionsFromConfig(cfg.Paint)
	if err != nil {
		return err
	}
	opts.ID = flags.id

	if flags.pick {
		spinner := newSpinner(ctx, "Reading cached records...")
		spinner.Start()
		items, err := loadArtworkItems(st)
		spinner.Stop()
		if err != nil {
			return err
		}
		if len(items) == 0 {
			printWarning("No cached records in %s", st.Dir())
			printNextStep("Fetch some", appName+" fetch")
			return nil
		}
		item, err := pickArtwork(items)
		if err != nil {
			return err
		}
		if item == nil {
			printInfo("Nothing selected")
			return nil
		}
		opts.ID = item.ID
	}

	d, err := display.Open(cfg.Display, c.Logger)
	if err != nil {
		return err
	}
	defer d.Close()

	prog := newProgress(c.Logger)
	result, err := pipeline.NewRunner(st, d, c.Logger).Execute(ctx, opts)
	if err != nil {
		return err
	}
	prog.done("Painted " + strconv.FormatInt(result.ID, 10))

	printPaintResult(result, d)

	if w, ok := d.(display.Waiter); ok {
		printNewline()
		printInfo("Serving preview, press Ctrl+C to stop")
		return w.Wait(ctx)
	}
	return nil
}

func printPaintResult(result *pipeline.Result, d display.Display) {
	rec := result.Record
	printSuccess("Painted %s", StyleTitle.Render(orNone(rec.Title)))
	printKeyValue("Artist", rec.ArtistDisplayName)
	printKeyValue("Date", rec.ObjectEndDate.String())
	printKeyValue("Object", strconv.FormatInt(result.ID, 10))
	printKeyValue("Layout", result.Canvas.Layout.Strategy.String())
	printKeyValue("Display", d.Name())
	if result.Attempts > 1 {
		printDetail("%d attempts", result.Attempts)
	}

	switch d := d.(type) {
	case *display.File:
		printFile(d.Path())
	case *display.Web:
		fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleLink.Render(previewURL(d.Addr())))
	}
}

// previewURL turns a listen address such as ":8080" into a browsable URL.
func previewURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/"
	}
	switch host {
	case "", "::", "0.0.0.0":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}
