package pipeline

import (
	"context"
	"image"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/artframe/pkg/display"
	aferrors "github.com/matzehuels/artframe/pkg/errors"
	"github.com/matzehuels/artframe/pkg/fonts"
	"github.com/matzehuels/artframe/pkg/museum"
	"github.com/matzehuels/artframe/pkg/observability"
	"github.com/matzehuels/artframe/pkg/render"
	"github.com/matzehuels/artframe/pkg/store"
)

// Runner executes compositor runs against one cache and one display.
//
// The Runner holds no per-run state, so one Runner can serve every tick of
// a watch loop.
type Runner struct {
	Store   *store.Store
	Display display.Display
	Logger  *log.Logger

	// IntN returns a uniform random integer in [0, n).
	IntN func(n int) int
}

// NewRunner creates a runner. A nil logger uses log.Default().
// The display may be nil when every run sets Options.Board and SkipShow.
func NewRunner(st *store.Store, d display.Display, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:   st,
		Display: d,
		Logger:  logger,
		IntN:    rand.IntN,
	}
}

// Artwork is a loaded record and its decoded image.
type Artwork struct {
	ID        int64
	Record    *museum.Record
	Image     image.Image
	ImagePath string
}

// Execute runs select, load, compose and show.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString()}
	logger := r.Logger.With("run", result.RunID[:8])

	board := opts.Board
	if board == (image.Point{}) {
		if r.Display == nil {
			return nil, aferrors.New(aferrors.ErrCodeDisplay, "no display and no board resolution")
		}
		board = r.Display.Resolution()
		result.Display = r.Display.Name()
	}
	logger.Info("Board resolution", "width", board.X, "height", board.Y)

	ids, err := r.Store.ReadCatalog()
	if err != nil {
		return nil, err
	}
	logger.Info("Number of IDs", "count", len(ids))

	// Stage 1: Select and load
	loadStart := time.Now()
	art, attempts, err := r.Select(ctx, ids, opts, logger)
	result.Attempts = attempts
	if err != nil {
		return result, err
	}
	result.ID, result.Record = art.ID, art.Record
	result.Stats.LoadTime = time.Since(loadStart)

	// Stage 2: Compose
	composeStart := time.Now()
	face, err := fonts.LoadFace(opts.FontPath, opts.FontSize)
	if face == nil {
		return result, aferrors.Wrap(aferrors.ErrCodeImage, err, "load caption font")
	}
	if err != nil {
		logger.Warn("Cannot load font, using "+fonts.FontFamily, "path", opts.FontPath, "err", err)
	}
	canvas, err := render.Compose(art.Image, render.CaptionText(art.Record), render.Options{
		Board:      board,
		Rotate:     opts.Rotate,
		Brightness: opts.Brightness,
		Contrast:   opts.Contrast,
		Face:       face,
		Background: opts.Background,
		Foreground: opts.Foreground,
	})
	result.Stats.ComposeTime = time.Since(composeStart)
	var strategy string
	if canvas != nil {
		strategy = canvas.Layout.Strategy.String()
	}
	observability.Paint().OnCompose(ctx, art.ID, strategy, result.Stats.ComposeTime, err)
	if err != nil {
		return result, err
	}
	result.Canvas = canvas
	logger.Debug("Composed canvas",
		"strategy", canvas.Layout.Strategy,
		"image", canvas.Layout.ImageRect(),
		"caption", canvas.Layout.CaptionPos,
		"duration", result.Stats.ComposeTime)

	if opts.SkipShow || r.Display == nil {
		return result, nil
	}

	// Stage 3: Show
	showStart := time.Now()
	logger.Info("Showing image...", "display", r.Display.Name())
	err = r.Display.Show(ctx, canvas.Image)
	result.Stats.ShowTime = time.Since(showStart)
	observability.Paint().OnShow(ctx, r.Display.Name(), result.Stats.ShowTime, err)
	if err != nil {
		return result, err
	}
	return result, nil
}

// Select picks identifiers until one loads, at most opts.Retries times.
// It returns the number of attempts made.
func (r *Runner) Select(ctx context.Context, ids []int64, opts Options, logger *log.Logger) (*Artwork, int, error) {
	if logger == nil {
		logger = r.Logger
	}
	if len(ids) == 0 && opts.ID == 0 {
		return nil, 0, aferrors.New(aferrors.ErrCodeEmptyCatalog, "no IDs to choose from")
	}
	retries := max(opts.Retries, 1)
	for attempt := 1; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, attempt - 1, err
		}

		id := opts.ID
		if id == 0 {
			id = ids[r.IntN(len(ids))]
		}
		logger.Info("ID", "id", id, "attempt", attempt)

		art, err := r.Load(id)
		observability.Paint().OnSelect(ctx, id, err)
		if err != nil {
			logger.Warn("Skipping", "id", id, "reason", aferrors.UserMessage(err))
			continue
		}
		logger.Info("Title", "title", art.Record.Title)
		logger.Info("Artist", "artist", art.Record.ArtistDisplayName)
		logger.Info("Date", "date", art.Record.ObjectEndDate.String())
		logger.Info("Image size", "size", art.Image.Bounds().Size())
		return art, attempt, nil
	}
	return nil, retries, aferrors.Wrap(aferrors.ErrCodeNoContent, ErrNoArtwork, "gave up after %d attempts", retries)
}

// Load reads the cached record and image for id.
func (r *Runner) Load(id int64) (*Artwork, error) {
	rec, err := r.Store.ReadRecord(id)
	if err != nil {
		return nil, err
	}
	path, err := r.Store.FindImage(id)
	if err != nil {
		return nil, err
	}
	img, err := render.Open(path)
	if err != nil {
		return nil, err
	}
	return &Artwork{ID: id, Record: rec, Image: img, ImagePath: path}, nil
}
