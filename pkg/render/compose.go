package render

import (
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	aferrors "github.com/matzehuels/artframe/pkg/errors"
	"github.com/matzehuels/artframe/pkg/render/layout"
)

// Options controls [Compose].
type Options struct {
	// Board is the panel resolution as reported by the display.
	Board image.Point
	// Rotate is 0, 90, 180 or 270 degrees counter-clockwise.
	Rotate     int
	Brightness float64
	Contrast   float64
	Face       font.Face
	Background color.Color // black when nil
	Foreground color.Color // white when nil
}

// Canvas is a composed frame.
type Canvas struct {
	Image   *image.NRGBA
	Layout  layout.Result
	Caption Caption
	// Board is the resolution the layout ran on, swapped for portrait.
	Board image.Point
}

// LayoutBoard returns the board to lay out on for a panel rotated by rotate.
func LayoutBoard(board image.Point, rotate int) image.Point {
	if rotate == 90 || rotate == 270 {
		return image.Pt(board.Y, board.X)
	}
	return board
}

// Open decodes the image file at path.
func Open(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, aferrors.Wrap(aferrors.ErrCodeImage, err, "cannot open file %s", path)
	}
	return img, nil
}

// Compose lays out img and caption, resizes and enhances img, paints both
// onto a solid canvas and rotates the result.
func Compose(img image.Image, caption string, opts Options) (*Canvas, error) {
	if opts.Face == nil {
		return nil, aferrors.New(aferrors.ErrCodeImage, "no caption font")
	}
	size := img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil, aferrors.New(aferrors.ErrCodeImage, "empty image %dx%d", size.X, size.Y)
	}
	bg, fg := opts.Background, opts.Foreground
	if bg == nil {
		bg = color.Black
	}
	if fg == nil {
		fg = color.White
	}

	board := LayoutBoard(opts.Board, opts.Rotate)
	c := MeasureCaption(opts.Face, caption)
	in := layout.Input{
		Board:   board,
		Aspect:  float64(size.X) / float64(size.Y),
		Caption: c.Size,
		Border:  c.Border,
	}
	if err := in.Validate(); err != nil {
		return nil, aferrors.Wrap(aferrors.ErrCodeImage, err, "layout")
	}
	res := layout.Compute(in)

	art := imaging.Resize(img, res.ImageSize.X, res.ImageSize.Y, imaging.Lanczos)
	art = Enhance(art, opts.Brightness, opts.Contrast)

	canvas := imaging.New(board.X, board.Y, bg)
	canvas = imaging.Paste(canvas, art, res.ImagePos)

	dc := gg.NewContextForImage(canvas)
	dc.SetFontFace(opts.Face)
	dc.SetColor(fg)
	c.draw(dc, res.CaptionPos)

	return &Canvas{
		Image:   rotate(imaging.Clone(dc.Image()), opts.Rotate),
		Layout:  res,
		Caption: c,
		Board:   board,
	}, nil
}

func rotate(img *image.NRGBA, degrees int) *image.NRGBA {
	switch degrees {
	case 90:
		return imaging.Rotate90(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate270(img)
	default:
		return img
	}
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return aferrors.Wrap(aferrors.ErrCodeImage, err, "encode png")
	}
	return nil
}
