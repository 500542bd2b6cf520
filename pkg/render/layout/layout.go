// Package layout places an artwork and its caption on a fixed-size board.
//
// Two strategies are tried in order:
//
//   - [Letterbox]: the image fills one full board dimension and the caption
//     goes into the margin that leaves, if it fits. Wider images are centred
//     vertically with the caption below; taller (or equal) images are
//     centred horizontally with the caption in the bottom-left margin.
//   - [Band]: a strip of caption height is reserved at the bottom and the
//     image is fitted into the remaining area, caption below the image.
//
// Band always produces a placement, so [Compute] never fails. All pixel
// arithmetic truncates toward zero and sizes are at least one pixel.
package layout

import (
	"fmt"
	"image"
)

// Strategy identifies which placement rule produced a [Result].
type Strategy int

const (
	// Letterbox fills a full board dimension and uses the margin for the caption.
	Letterbox Strategy = iota
	// Band reserves a bottom strip for the caption.
	Band
)

func (s Strategy) String() string {
	switch s {
	case Letterbox:
		return "letterbox"
	case Band:
		return "band"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Input describes what has to be placed.
type Input struct {
	Board   image.Point // board width and height in pixels
	Aspect  float64     // image width / height
	Caption image.Point // caption box including the border on every side
	Border  int         // caption padding
}

// Result is where things go. ImageSize is the resize target.
type Result struct {
	ImagePos   image.Point
	ImageSize  image.Point
	CaptionPos image.Point
	Strategy   Strategy
}

// ImageRect returns the board rectangle covered by the image.
func (r Result) ImageRect() image.Rectangle {
	return image.Rectangle{Min: r.ImagePos, Max: r.ImagePos.Add(r.ImageSize)}
}

// Validate reports inputs Compute cannot place.
func (in Input) Validate() error {
	if in.Board.X <= 0 || in.Board.Y <= 0 {
		return fmt.Errorf("board must be positive, got %dx%d", in.Board.X, in.Board.Y)
	}
	if !(in.Aspect > 0) {
		return fmt.Errorf("aspect must be positive, got %v", in.Aspect)
	}
	if in.Caption.X < 0 || in.Caption.Y < 0 || in.Border < 0 {
		return fmt.Errorf("caption %dx%d and border %d must not be negative", in.Caption.X, in.Caption.Y, in.Border)
	}
	return nil
}

// Compute runs the letterbox strategy and falls back to the band strategy.
// Inputs are assumed valid; see [Input.Validate].
func Compute(in Input) Result {
	if r, ok := letterbox(in); ok {
		return r
	}
	return band(in)
}

func letterbox(in Input) (Result, bool) {
	bw, bh := in.Board.X, in.Board.Y
	cw, ch := in.Caption.X, in.Caption.Y
	boardAspect := float64(bw) / float64(bh)

	if in.Aspect > boardAspect {
		w := bw
		h := atLeastOne(int(float64(w) / in.Aspect))
		y := int(float64(bh)/2 - float64(h)/2)
		if y < ch {
			return Result{}, false
		}
		return Result{
			ImagePos:   image.Pt(0, y),
			ImageSize:  image.Pt(w, h),
			CaptionPos: image.Pt(centred(bw, cw, in.Border), y+h+in.Border),
			Strategy:   Letterbox,
		}, true
	}

	h := bh
	w := atLeastOne(int(float64(h) * in.Aspect))
	x := int(float64(bw)/2 - float64(w)/2)
	if x < cw {
		return Result{}, false
	}
	return Result{
		ImagePos:   image.Pt(x, 0),
		ImageSize:  image.Pt(w, h),
		CaptionPos: image.Pt(x-cw+in.Border, bh-ch+in.Border),
		Strategy:   Letterbox,
	}, true
}

func band(in Input) Result {
	bw, bh := in.Board.X, in.Board.Y
	avail := atLeastOne(bh - in.Caption.Y)
	bandAspect := float64(bw) / float64(avail)

	var pos, size image.Point
	if in.Aspect > bandAspect {
		size = image.Pt(bw, atLeastOne(int(float64(bw)/in.Aspect)))
		pos = image.Pt(0, int(float64(avail)/2-float64(size.Y)/2))
	} else {
		size = image.Pt(atLeastOne(int(float64(avail)*in.Aspect)), avail)
		pos = image.Pt(int(float64(bw)/2-float64(size.X)/2), 0)
	}
	return Result{
		ImagePos:   pos,
		ImageSize:  size,
		CaptionPos: image.Pt(centred(bw, in.Caption.X, in.Border), pos.Y+size.Y+in.Border),
		Strategy:   Band,
	}
}

// centred returns the left edge that centres width within total, never
// left of border. There is no clamp on the right.
func centred(total, width, border int) int {
	return max(int(float64(total)/2-float64(width)/2), border)
}

func atLeastOne(n int) int { return max(n, 1) }
