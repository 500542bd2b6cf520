// Package fonts provides the caption font.
//
// The Go Regular font is compiled into the binary, so a caption can always
// be drawn even when the configured font file is missing.
package fonts

import (
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontFamily is the name of the embedded font.
const FontFamily = "Go Regular"

// Parsed once on first access.
var (
	defaultFont     *opentype.Font
	defaultFontErr  error
	defaultFontOnce sync.Once
)

// Default returns the embedded Go Regular font.
func Default() (*opentype.Font, error) {
	defaultFontOnce.Do(func() {
		defaultFont, defaultFontErr = opentype.Parse(goregular.TTF)
	})
	return defaultFont, defaultFontErr
}

// Load parses a TrueType or OpenType font file.
func Load(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return opentype.Parse(data)
}

// NewFace returns a face of f at size. The DPI is 72, so size is in pixels.
func NewFace(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// LoadFace returns a face from the font file at path, or from the embedded
// font when path is empty or cannot be loaded. The returned error is the
// reason for falling back, and is nil when path was used.
func LoadFace(path string, size float64) (font.Face, error) {
	var loadErr error
	if path != "" {
		f, err := Load(path)
		if err == nil {
			return NewFace(f, size)
		}
		loadErr = err
	}
	f, err := Default()
	if err != nil {
		return nil, err
	}
	face, err := NewFace(f, size)
	if err != nil {
		return nil, err
	}
	return face, loadErr
}
