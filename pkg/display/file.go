package display

import (
	"context"
	"image"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	aferrors "github.com/matzehuels/artframe/pkg/errors"
	"github.com/matzehuels/artframe/pkg/render"
)

// File writes each canvas to a PNG file. It stands in for a panel when
// none is attached.
type File struct {
	path   string
	size   image.Point
	logger *log.Logger
}

// NewFile returns a preview display of the given size writing to path.
func NewFile(path string, size image.Point, logger *log.Logger) *File {
	if logger == nil {
		logger = log.Default()
	}
	return &File{path: path, size: size, logger: logger}
}

func (f *File) Name() string            { return "file" }
func (f *File) Resolution() image.Point { return f.size }
func (f *File) Close() error            { return nil }

// Path returns the output file.
func (f *File) Path() string { return f.path }

// Show writes img to the output file, replacing it atomically.
func (f *File) Show(ctx context.Context, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return aferrors.Wrap(aferrors.ErrCodeDisplay, err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.part")
	if err != nil {
		return aferrors.Wrap(aferrors.ErrCodeDisplay, err, "create preview")
	}
	defer os.Remove(tmp.Name())

	if err := render.EncodePNG(tmp, img); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return aferrors.Wrap(aferrors.ErrCodeDisplay, err, "write preview")
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return aferrors.Wrap(aferrors.ErrCodeDisplay, err, "chmod preview")
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return aferrors.Wrap(aferrors.ErrCodeDisplay, err, "write %s", f.path)
	}
	f.logger.Info("Preview written", "path", f.path)
	return nil
}
