// Package display delivers a composed canvas to an output device.
//
// Every backend implements [Display]. The backend is chosen by
// configuration through [Open]; with kind "auto" an attached Inky
// Impression panel is probed and, when none answers, the canvas is written
// to a preview PNG instead.
//
//	d, err := display.Open(cfg.Display, logger)
//	if err != nil {
//	    return err
//	}
//	defer d.Close()
//	err = d.Show(ctx, canvas)
package display

import (
	"context"
	"image"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/artframe/pkg/config"
	aferrors "github.com/matzehuels/artframe/pkg/errors"
)

// Display is an output device with a fixed resolution.
type Display interface {
	// Name identifies the backend in logs.
	Name() string
	// Resolution is the panel size in its native orientation.
	Resolution() image.Point
	// Show replaces what the device shows with img.
	Show(ctx context.Context, img image.Image) error
	Close() error
}

// Waiter is implemented by displays that keep serving after Show returns.
// Wait blocks until ctx is done.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Open returns the display selected by cfg.Kind.
func Open(cfg config.DisplayConfig, logger *log.Logger) (Display, error) {
	if logger == nil {
		logger = log.Default()
	}
	size := image.Pt(cfg.Width, cfg.Height)

	switch cfg.Kind {
	case config.DisplayInky:
		d, err := OpenInky(logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.DisplayQuote0:
		d, err := NewQuote0(cfg.Quote0APIKey, cfg.Quote0DeviceID, logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.DisplayFile:
		return NewFile(cfg.Output, size, logger), nil
	case config.DisplayWeb:
		w := NewWeb(cfg.Addr, size, logger)
		if err := w.Start(); err != nil {
			return nil, err
		}
		return w, nil
	case config.DisplayAuto, "":
		d, err := OpenInky(logger)
		if err == nil {
			return d, nil
		}
		logger.Info("No display detected, writing preview", "path", cfg.Output, "reason", err)
		return NewFile(cfg.Output, size, logger), nil
	default:
		return nil, aferrors.New(aferrors.ErrCodeInvalidConfig, "unknown display kind %q", cfg.Kind)
	}
}
