package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"

	"github.com/matzehuels/artframe/pkg/fonts"
	"github.com/matzehuels/artframe/pkg/museum"
)

func testFace(t *testing.T) font.Face {
	t.Helper()
	f, err := fonts.Default()
	if err != nil {
		t.Fatal(err)
	}
	face, err := fonts.NewFace(f, 12)
	if err != nil {
		t.Fatal(err)
	}
	return face
}

func TestCaptionText(t *testing.T) {
	tests := []struct {
		name string
		rec  museum.Record
		want string
	}{
		{"all", museum.Record{Title: "Irises", ArtistDisplayName: "Vincent van Gogh", ObjectEndDate: "1889"}, "Irises\nVincent van Gogh, 1889"},
		{"artist only", museum.Record{Title: "Irises", ArtistDisplayName: "Vincent van Gogh"}, "Irises\nVincent van Gogh"},
		{"date only", museum.Record{Title: "Vase", ObjectEndDate: "1650"}, "Vase\n1650"},
		{"title only", museum.Record{Title: "Fragment"}, "Fragment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CaptionText(&tt.rec); got != tt.want {
				t.Errorf("CaptionText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMeasureCaption(t *testing.T) {
	face := testFace(t)
	one := MeasureCaption(face, "Irises")
	two := MeasureCaption(face, "Irises\nVincent van Gogh, 1889")

	if one.Border <= 0 {
		t.Fatalf("Border = %d, want positive", one.Border)
	}
	for _, c := range []Caption{one, two} {
		want := c.TextSize.Add(image.Pt(2*c.Border, 2*c.Border))
		if c.Size != want {
			t.Errorf("Size = %v, want text box plus border %v", c.Size, want)
		}
	}
	if len(two.Lines) != 2 {
		t.Errorf("Lines = %q, want 2 lines", two.Lines)
	}
	if two.TextSize.X <= one.TextSize.X || two.TextSize.Y <= one.TextSize.Y {
		t.Errorf("two-line caption %v should be larger than %v", two.TextSize, one.TextSize)
	}
}

func TestEnhance(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 100, G: 50, B: 200, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 100, G: 50, B: 200, A: 255})

	if got := Enhance(src, 1.0, 0.8).NRGBAAt(0, 0); got != src.NRGBAAt(0, 0) {
		t.Errorf("neutral factors changed pixel to %v", got)
	}
	want := color.NRGBA{R: 120, G: 60, B: 240, A: 255}
	if got := Enhance(src, 1.2, 1.0).NRGBAAt(1, 0); got != want {
		t.Errorf("brightness 1.2: got %v, want %v", got, want)
	}

	two := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	two.SetNRGBA(0, 0, color.NRGBA{A: 255})
	two.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	out := Enhance(two, 1.0, 1.5)
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{A: 255}) {
		t.Errorf("contrast dark pixel = %v, want black", got)
	}
	if got := out.NRGBAAt(1, 0); got != (color.NRGBA{R: 250, G: 250, B: 250, A: 255}) {
		t.Errorf("contrast light pixel = %v, want 250 grey", got)
	}
}

func TestComposeDimensions(t *testing.T) {
	face := testFace(t)
	src := imaging.New(40, 20, color.NRGBA{R: 255, A: 255})

	tests := []struct {
		rotate    int
		wantBoard image.Point
	}{
		{0, image.Pt(160, 120)},
		{90, image.Pt(120, 160)},
		{180, image.Pt(160, 120)},
		{270, image.Pt(120, 160)},
	}
	for _, tt := range tests {
		c, err := Compose(src, "Title\nArtist", Options{Board: image.Pt(160, 120), Rotate: tt.rotate, Face: face})
		if err != nil {
			t.Fatalf("Compose(rotate=%d) error: %v", tt.rotate, err)
		}
		if got := c.Image.Bounds().Size(); got != image.Pt(160, 120) {
			t.Errorf("rotate=%d: canvas size = %v, want 160x120", tt.rotate, got)
		}
		if c.Board != tt.wantBoard {
			t.Errorf("rotate=%d: layout board = %v, want %v", tt.rotate, c.Board, tt.wantBoard)
		}
	}
}

func TestComposePaintsImageAndCaption(t *testing.T) {
	face := testFace(t)
	src := imaging.New(40, 20, color.NRGBA{R: 255, A: 255})
	c, err := Compose(src, "Title\nArtist", Options{Board: image.Pt(160, 120), Face: face})
	if err != nil {
		t.Fatal(err)
	}

	r := c.Layout.ImageRect()
	centre := c.Image.NRGBAAt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
	if centre.R < 200 || centre.G > 50 {
		t.Errorf("image centre = %v, want red", centre)
	}

	captionRect := image.Rectangle{Min: c.Layout.CaptionPos, Max: c.Layout.CaptionPos.Add(c.Caption.Size)}
	light := 0
	for y := captionRect.Min.Y; y < captionRect.Max.Y; y++ {
		for x := captionRect.Min.X; x < captionRect.Max.X; x++ {
			if p := c.Image.NRGBAAt(x, y); p.R > 128 && p.G > 128 && p.B > 128 {
				light++
			}
		}
	}
	if light == 0 {
		t.Error("no caption pixels drawn")
	}

	size := c.Image.Bounds().Size()
	for _, p := range []image.Point{{0, 0}, {size.X - 1, 0}, {0, size.Y - 1}, {size.X - 1, size.Y - 1}} {
		if p.In(r) || p.In(captionRect) {
			continue
		}
		if got := c.Image.NRGBAAt(p.X, p.Y); got != (color.NRGBA{A: 255}) {
			t.Errorf("background at %v = %v, want black", p, got)
		}
	}
}

func TestComposeRejectsEmptyImage(t *testing.T) {
	_, err := Compose(image.NewNRGBA(image.Rect(0, 0, 0, 0)), "x", Options{Board: image.Pt(10, 10), Face: testFace(t)})
	if err == nil {
		t.Error("Compose() with empty image should fail")
	}
	_, err = Compose(imaging.New(4, 4, color.Black), "x", Options{Board: image.Pt(10, 10)})
	if err == nil {
		t.Error("Compose() without a face should fail")
	}
}

func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, imaging.New(7, 5, color.White)); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(7, 5) {
		t.Errorf("size = %v, want 7x5", got)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.Color
		wantErr bool
	}{
		{in: "black", want: color.Black},
		{in: " White ", want: color.White},
		{in: "#ff8000", want: color.RGBA{R: 255, G: 128, A: 255}},
		{in: "#fff", want: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{in: "#12345", wantErr: true},
		{in: "mauve", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
