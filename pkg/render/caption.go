package render

import (
	"image"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/artframe/pkg/museum"
)

// CaptionText returns the title, followed on a second line by whichever of
// artist and date are known.
func CaptionText(r *museum.Record) string {
	text := r.Title
	artist, date := r.ArtistDisplayName, r.ObjectEndDate.String()
	switch {
	case artist != "" && date != "":
		text += "\n" + artist + ", " + date
	case artist != "":
		text += "\n" + artist
	case date != "":
		text += "\n" + date
	}
	return text
}

// Caption is measured caption text.
type Caption struct {
	Text     string
	Lines    []string
	Border   int         // padding on every side
	TextSize image.Point // text box without padding
	Size     image.Point // text box plus padding

	// LineHeight and Ascent are in pixels.
	LineHeight float64
	Ascent     float64
}

// MeasureCaption lays out text with face. The border is half the height of
// a single line, the same padding a space glyph would give.
func MeasureCaption(face font.Face, text string) Caption {
	m := face.Metrics()
	lineHeight := float64(m.Height) / 64
	border := (m.Ascent + m.Descent).Ceil() / 2

	dc := gg.NewContext(1, 1)
	dc.SetFontFace(face)
	w, h := dc.MeasureMultilineString(text, 1)
	textSize := image.Pt(int(math.Ceil(w)), int(math.Ceil(h)))

	return Caption{
		Text:       text,
		Lines:      strings.Split(text, "\n"),
		Border:     border,
		TextSize:   textSize,
		Size:       textSize.Add(image.Pt(2*border, 2*border)),
		LineHeight: lineHeight,
		Ascent:     float64(m.Ascent) / 64,
	}
}

// draw renders the caption centred line by line with its text box at pos.
func (c Caption) draw(dc *gg.Context, pos image.Point) {
	cx := float64(pos.X) + float64(c.TextSize.X)/2
	for i, line := range c.Lines {
		baseline := float64(pos.Y) + float64(i)*c.LineHeight + c.Ascent
		dc.DrawStringAnchored(line, cx, baseline, 0.5, 0)
	}
}
