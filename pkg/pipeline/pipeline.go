// Package pipeline runs the compositor: select an artwork from the local
// cache, compose it onto a canvas and deliver the canvas to a display.
//
// # Architecture
//
// A run is a single linear pass:
//
//  1. Select: the explicit identifier if one was given, otherwise a
//     uniformly random identifier from the catalog.
//  2. Load: the cached record and image. A failure logs and goes back to
//     step 1, up to Options.Retries times.
//  3. Compose: caption, layout, resize, enhance, paint, rotate.
//  4. Show: hand the canvas to the display.
//
// Only step 2 retries. When every attempt fails the run returns
// [ErrNoArtwork] and nothing is shown.
//
// # Usage
//
//	runner := pipeline.NewRunner(store, display, logger)
//	opts, err := pipeline.OptionsFromConfig(cfg.Paint)
//	if err != nil {
//	    return err
//	}
//	opts.ID = 436535
//	result, err := runner.Execute(ctx, opts)
package pipeline

import (
	"image"
	"image/color"
	"time"

	"github.com/matzehuels/artframe/pkg/config"
	aferrors "github.com/matzehuels/artframe/pkg/errors"
	"github.com/matzehuels/artframe/pkg/museum"
	"github.com/matzehuels/artframe/pkg/render"
)

const (
	// DefaultRetries is the number of selection attempts per run.
	DefaultRetries = 10

	// DefaultFontSize is the caption font size in pixels.
	DefaultFontSize = 18.0
)

// ErrNoArtwork is returned when no selection attempt could be loaded.
var ErrNoArtwork = aferrors.New(aferrors.ErrCodeNoContent, "no artwork could be loaded")

// Options configures a compositor run.
type Options struct {
	// ID selects a specific object. Zero selects at random.
	ID int64

	Retries    int
	Rotate     int
	Brightness float64
	Contrast   float64
	FontPath   string
	FontSize   float64
	Background color.Color
	Foreground color.Color

	// Board overrides the display resolution when non-zero.
	Board image.Point

	// SkipShow composes without delivering to the display.
	SkipShow bool
}

// OptionsFromConfig converts the [paint] section into run options.
func OptionsFromConfig(cfg config.PaintConfig) (Options, error) {
	bg, err := render.ParseColor(cfg.Background)
	if err != nil {
		return Options{}, aferrors.Wrap(aferrors.ErrCodeInvalidConfig, err, "paint.background")
	}
	fg, err := render.ParseColor(cfg.Foreground)
	if err != nil {
		return Options{}, aferrors.Wrap(aferrors.ErrCodeInvalidConfig, err, "paint.foreground")
	}
	return Options{
		Retries:    cfg.Retries,
		Rotate:     cfg.Rotate,
		Brightness: cfg.Brightness,
		Contrast:   cfg.Contrast,
		FontPath:   cfg.FontPath,
		FontSize:   cfg.FontSize,
		Background: bg,
		Foreground: fg,
	}, nil
}

// SetDefaults fills zero values.
func (o *Options) SetDefaults() {
	if o.Retries <= 0 {
		o.Retries = DefaultRetries
	}
	if o.FontSize <= 0 {
		o.FontSize = DefaultFontSize
	}
	if o.Background == nil {
		o.Background = color.Black
	}
	if o.Foreground == nil {
		o.Foreground = color.White
	}
}

// Validate rejects options Execute cannot honour.
func (o Options) Validate() error {
	switch o.Rotate {
	case 0, 90, 180, 270:
	default:
		return aferrors.New(aferrors.ErrCodeInvalidConfig, "rotate must be 0, 90, 180 or 270, got %d", o.Rotate)
	}
	if o.ID < 0 {
		return aferrors.New(aferrors.ErrCodeInvalidConfig, "invalid id %d", o.ID)
	}
	return nil
}

// Result is the outcome of a run.
type Result struct {
	// RunID correlates the log lines of one run.
	RunID string

	ID       int64
	Record   *museum.Record
	Canvas   *render.Canvas
	Display  string
	Attempts int

	Stats Stats
}

// Stats holds stage timings.
type Stats struct {
	LoadTime    time.Duration
	ComposeTime time.Duration
	ShowTime    time.Duration
}
