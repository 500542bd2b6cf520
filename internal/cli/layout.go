package cli

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	aferrors "github.com/matzehuels/artframe/pkg/errors"
	"github.com/matzehuels/artframe/pkg/render"
	"github.com/matzehuels/artframe/pkg/render/layout"
)

// layoutCommand creates the layout debug command. It prints where an image
// and caption of the given sizes would be placed, without reading any cache.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		board, caption string
		aspect         float64
		border, rotate int
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show how an image and caption would be placed (debug tool)",
		Example: `  artframe layout --board 1600x1200 --aspect 1.5 --caption 400x40 --border 5
  artframe layout --board 1600x1200 --rotate 90 --aspect 0.75`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := parseSize(board)
			if err != nil {
				return err
			}
			capSize, err := parseSize(caption)
			if err != nil {
				return err
			}
			switch rotate {
			case 0, 90, 180, 270:
			default:
				return aferrors.New(aferrors.ErrCodeInvalidConfig, "rotate must be 0, 90, 180 or 270, got %d", rotate)
			}

			in := layout.Input{
				Board:   render.LayoutBoard(b, rotate),
				Aspect:  aspect,
				Caption: capSize,
				Border:  border,
			}
			if err := in.Validate(); err != nil {
				return aferrors.Wrap(aferrors.ErrCodeInvalidConfig, err, "layout input")
			}
			c.Logger.Debug("Computing layout", "board", in.Board, "aspect", in.Aspect, "caption", in.Caption, "border", in.Border)

			res := layout.Compute(in)
			fmt.Println(StyleTitle.Render("Layout"))
			printKeyValue("Board", formatSize(in.Board))
			printKeyValue("Strategy", res.Strategy.String())
			printKeyValue("Image", fmt.Sprintf("%s at %s", formatSize(res.ImageSize), formatPoint(res.ImagePos)))
			printKeyValue("Caption", fmt.Sprintf("%s at %s", formatSize(in.Caption), formatPoint(res.CaptionPos)))
			if rotate != 0 {
				printDetail("rotated %d° onto a %s panel", rotate, formatSize(b))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&board, "board", "1600x1200", "panel resolution WxH")
	cmd.Flags().Float64Var(&aspect, "aspect", 1.5, "image aspect ratio (width / height)")
	cmd.Flags().StringVar(&caption, "caption", "400x40", "caption box WxH including the border")
	cmd.Flags().IntVar(&border, "border", 5, "caption border in pixels")
	cmd.Flags().IntVar(&rotate, "rotate", 0, "canvas rotation in degrees")

	return cmd
}

// parseSize parses "WxH". Both dimensions must be non-negative integers.
func parseSize(s string) (image.Point, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return image.Point{}, aferrors.New(aferrors.ErrCodeInvalidConfig, "invalid size %q, want WxH", s)
	}
	x, errX := strconv.Atoi(w)
	y, errY := strconv.Atoi(h)
	if errX != nil || errY != nil || x < 0 || y < 0 {
		return image.Point{}, aferrors.New(aferrors.ErrCodeInvalidConfig, "invalid size %q, want WxH", s)
	}
	return image.Pt(x, y), nil
}

func formatSize(p image.Point) string  { return fmt.Sprintf("%dx%d", p.X, p.Y) }
func formatPoint(p image.Point) string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }
