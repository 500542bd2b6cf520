package display

import (
	"context"
	"image"

	"github.com/charmbracelet/log"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/inky"
	"periph.io/x/host/v3"

	aferrors "github.com/matzehuels/artframe/pkg/errors"
)

// BCM pin numbers of the Inky Impression HAT.
const (
	inkyPinDC    = "22"
	inkyPinReset = "27"
	inkyPinBusy  = "17"
)

// Inky drives a Pimoroni Inky Impression panel over SPI. The panel model
// and resolution are read from the EEPROM on the HAT.
type Inky struct {
	dev    *inky.DevImpression
	port   spi.PortCloser
	bus    i2c.BusCloser
	logger *log.Logger
}

// OpenInky probes for an Inky Impression HAT. It fails on machines
// without one, which is how auto-detection falls back to the preview.
func OpenInky(logger *log.Logger) (*Inky, error) {
	if logger == nil {
		logger = log.Default()
	}
	if _, err := host.Init(); err != nil {
		return nil, aferrors.Wrap(aferrors.ErrCodeDisplay, err, "init host drivers")
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, aferrors.Wrap(aferrors.ErrCodeDisplay, err, "open i2c bus")
	}
	opts, err := inky.DetectOpts(bus)
	if err != nil {
		bus.Close()
		return nil, aferrors.Wrap(aferrors.ErrCodeDisplay, err, "read inky eeprom")
	}

	port, err := spireg.Open("")
	if err != nil {
		bus.Close()
		return nil, aferrors.Wrap(aferrors.ErrCodeDisplay, err, "open spi port")
	}

	dc, reset, busy := gpioreg.ByName(inkyPinDC), gpioreg.ByName(inkyPinReset), gpioreg.ByName(inkyPinBusy)
	if dc == nil || reset == nil || busy == nil {
		port.Close()
		bus.Close()
		return nil, aferrors.New(aferrors.ErrCodeDisplay, "inky gpio pins %s/%s/%s not available", inkyPinDC, inkyPinReset, inkyPinBusy)
	}

	dev, err := inky.NewImpression(port, dc, reset, busy, opts)
	if err != nil {
		port.Close()
		bus.Close()
		return nil, aferrors.Wrap(aferrors.ErrCodeDisplay, err, "open inky impression")
	}

	d := &Inky{dev: dev, port: port, bus: bus, logger: logger}
	logger.Info("Board detected", "model", opts.Model, "resolution", d.Resolution())
	return d, nil
}

func (d *Inky) Name() string { return "inky" }

func (d *Inky) Resolution() image.Point { return d.dev.Bounds().Size() }

// Show draws img and waits for the refresh, which takes about half a minute.
// A refresh that has started cannot be interrupted.
func (d *Inky) Show(ctx context.Context, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.logger.Info("Showing image...")
	if err := d.dev.Draw(d.dev.Bounds(), img, image.Point{}); err != nil {
		return aferrors.Wrap(aferrors.ErrCodeDisplay, err, "inky refresh")
	}
	return nil
}

// Close releases the SPI port and the I2C bus.
func (d *Inky) Close() error {
	err := d.port.Close()
	if berr := d.bus.Close(); err == nil {
		err = berr
	}
	return err
}
