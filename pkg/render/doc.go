// Package render composes the framed canvas for one artwork.
//
// # Overview
//
// A canvas is built in a fixed order:
//
//  1. The caption text is formatted from the record ([CaptionText]) and
//     measured with the caption font ([MeasureCaption]).
//  2. The [layout] package places image and caption on the board.
//  3. The image is resized to the layout target and enhanced ([Enhance]).
//  4. The image is pasted onto a solid background, the caption is drawn on
//     top, and the whole canvas is rotated ([Compose]).
//
// When the panel is mounted in portrait (rotation 90 or 270), the board is
// swapped before layout so the rotated canvas matches the panel's native
// resolution:
//
//	opts := render.Options{Board: image.Pt(1600, 1200), Rotate: 90, Face: face}
//	c, err := render.Compose(img, caption, opts)
//	// c.Image.Bounds().Size() == image.Pt(1600, 1200)
//	// c.Layout was computed on a 1200x1600 board
//
// Image work uses [imaging]; text is measured and drawn with [gg].
//
// [layout]: github.com/matzehuels/artframe/pkg/render/layout
// [imaging]: https://pkg.go.dev/github.com/disintegration/imaging
// [gg]: https://pkg.go.dev/github.com/fogleman/gg
package render
