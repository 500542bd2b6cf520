package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/matzehuels/artframe/pkg/config"
	aferrors "github.com/matzehuels/artframe/pkg/errors"
	"github.com/matzehuels/artframe/pkg/observability"
	"github.com/matzehuels/artframe/pkg/store"
)

type fakeDisplay struct {
	size  image.Point
	shown []image.Image
}

func (d *fakeDisplay) Name() string            { return "fake" }
func (d *fakeDisplay) Resolution() image.Point { return d.size }
func (d *fakeDisplay) Close() error            { return nil }
func (d *fakeDisplay) Show(_ context.Context, img image.Image) error {
	d.shown = append(d.shown, img)
	return nil
}

// newCache writes a catalog of ids 1, 2 and 3. Object 1 and 3 are fully
// cached, object 2 has a record but no image.
func newCache(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"collection.json": `{"total":3,"objectIDs":[1,2,3]}`,
		"1.json":          `{"objectID":1,"title":"Wheat Field","artistDisplayName":"Vincent van Gogh","objectEndDate":1889}`,
		"2.json":          `{"objectID":2,"title":"Lost"}`,
		"3.json":          `{"objectID":3,"title":"Portrait","objectEndDate":"ca. 1660"}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := imaging.Save(imaging.New(80, 40, color.NRGBA{R: 200, G: 120, B: 40, A: 255}), filepath.Join(dir, "1.jpg")); err != nil {
		t.Fatal(err)
	}
	if err := imaging.Save(imaging.New(30, 60, color.NRGBA{B: 200, A: 255}), filepath.Join(dir, "3.png")); err != nil {
		t.Fatal(err)
	}
	return store.ForCatalog(filepath.Join(dir, "collection.json"))
}

func newTestRunner(t *testing.T, st *store.Store) (*Runner, *fakeDisplay) {
	t.Helper()
	d := &fakeDisplay{size: image.Pt(160, 120)}
	return NewRunner(st, d, log.New(io.Discard)), d
}

// sequence returns a random source yielding the given indexes in order.
func sequence(idx ...int) func(int) int {
	i := 0
	return func(n int) int {
		v := idx[i%len(idx)] % n
		i++
		return v
	}
}

func TestExecuteExplicitID(t *testing.T) {
	r, d := newTestRunner(t, newCache(t))

	res, err := r.Execute(context.Background(), Options{ID: 1})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.ID != 1 || res.Attempts != 1 || res.Display != "fake" {
		t.Errorf("result = %+v", res)
	}
	if res.Record.Title != "Wheat Field" {
		t.Errorf("Title = %q", res.Record.Title)
	}
	if _, err := uuid.Parse(res.RunID); err != nil {
		t.Errorf("RunID %q is not a uuid: %v", res.RunID, err)
	}
	if len(d.shown) != 1 {
		t.Fatalf("display showed %d images, want 1", len(d.shown))
	}
	if got := d.shown[0].Bounds().Size(); got != image.Pt(160, 120) {
		t.Errorf("canvas size = %v, want 160x120", got)
	}
}

func TestExecuteRotationSwapsBoard(t *testing.T) {
	for _, rot := range []int{90, 270} {
		r, d := newTestRunner(t, newCache(t))
		res, err := r.Execute(context.Background(), Options{ID: 3, Rotate: rot})
		if err != nil {
			t.Fatalf("rotate %d: %v", rot, err)
		}
		if res.Canvas.Board != image.Pt(120, 160) {
			t.Errorf("rotate %d: layout board = %v, want 120x160", rot, res.Canvas.Board)
		}
		if got := d.shown[0].Bounds().Size(); got != image.Pt(160, 120) {
			t.Errorf("rotate %d: shown size = %v, want panel size 160x120", rot, got)
		}
	}
}

func TestExecuteMissingIDShowsNothing(t *testing.T) {
	r, d := newTestRunner(t, newCache(t))

	res, err := r.Execute(context.Background(), Options{ID: 99, Retries: 4})
	if !errors.Is(err, ErrNoArtwork) {
		t.Fatalf("Execute() error = %v, want ErrNoArtwork", err)
	}
	if !aferrors.Is(err, aferrors.ErrCodeNoContent) {
		t.Errorf("error code = %s, want NO_CONTENT", aferrors.GetCode(err))
	}
	if res.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", res.Attempts)
	}
	if len(d.shown) != 0 {
		t.Errorf("display showed %d images, want none", len(d.shown))
	}
}

func TestSelectRandom(t *testing.T) {
	tests := []struct {
		name         string
		indexes      []int
		wantID       int64
		wantAttempts int
	}{
		{"last index is reachable", []int{2}, 3, 1},
		{"first index", []int{0}, 1, 1},
		{"skips object without image", []int{1, 0}, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRunner(t, newCache(t))
			r.IntN = sequence(tt.indexes...)
			res, err := r.Execute(context.Background(), Options{SkipShow: true})
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if res.ID != tt.wantID || res.Attempts != tt.wantAttempts {
				t.Errorf("got id %d after %d attempts, want id %d after %d", res.ID, res.Attempts, tt.wantID, tt.wantAttempts)
			}
		})
	}
}

func TestSelectCoversWholeCatalog(t *testing.T) {
	r, _ := newTestRunner(t, newCache(t))
	seen := map[int64]bool{}
	for range 200 {
		art, _, err := r.Select(context.Background(), []int64{1, 3}, Options{Retries: 1}, nil)
		if err != nil {
			t.Fatal(err)
		}
		seen[art.ID] = true
	}
	if diff := cmp.Diff(map[int64]bool{1: true, 3: true}, seen); diff != "" {
		t.Errorf("selected ids mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteEmptyCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "collection.json")
	if err := os.WriteFile(path, []byte(`{"objectIDs":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	r, d := newTestRunner(t, store.ForCatalog(path))
	_, err := r.Execute(context.Background(), Options{})
	if !aferrors.Is(err, aferrors.ErrCodeEmptyCatalog) {
		t.Errorf("Execute() error = %v, want EMPTY_CATALOG", err)
	}
	if len(d.shown) != 0 {
		t.Error("display used for an empty catalog")
	}
}

func TestExecuteWithoutDisplay(t *testing.T) {
	r := NewRunner(newCache(t), nil, log.New(io.Discard))
	res, err := r.Execute(context.Background(), Options{ID: 1, Board: image.Pt(296, 152), SkipShow: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Canvas.Image.Bounds().Size(); got != image.Pt(296, 152) {
		t.Errorf("canvas size = %v, want 296x152", got)
	}

	if _, err := r.Execute(context.Background(), Options{ID: 1}); !aferrors.Is(err, aferrors.ErrCodeDisplay) {
		t.Errorf("Execute() without board error = %v, want DISPLAY", err)
	}
}

func TestExecuteCancelled(t *testing.T) {
	r, d := newTestRunner(t, newCache(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Execute(ctx, Options{ID: 1}); !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if len(d.shown) != 0 {
		t.Error("cancelled run reached the display")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default().Paint
	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := Options{
		Retries:    10,
		Brightness: 1.2,
		Contrast:   1.2,
		FontPath:   "NotoSans-Regular.otf",
		FontSize:   18,
		Background: color.Black,
		Foreground: color.White,
	}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Errorf("OptionsFromConfig() mismatch (-want +got):\n%s", diff)
	}

	cfg.Background = "ultraviolet"
	if _, err := OptionsFromConfig(cfg); !aferrors.Is(err, aferrors.ErrCodeInvalidConfig) {
		t.Errorf("bad colour error = %v, want INVALID_CONFIG", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	o := Options{Rotate: 45}
	o.SetDefaults()
	if err := o.Validate(); !aferrors.Is(err, aferrors.ErrCodeInvalidConfig) {
		t.Errorf("Validate() error = %v, want INVALID_CONFIG", err)
	}
}

type recordingHooks struct {
	observability.NoopPaintHooks
	selects  []int64
	strategy string
	shownOn  string
}

func (h *recordingHooks) OnSelect(_ context.Context, id int64, _ error) {
	h.selects = append(h.selects, id)
}

func (h *recordingHooks) OnCompose(_ context.Context, _ int64, strategy string, _ time.Duration, _ error) {
	h.strategy = strategy
}

func (h *recordingHooks) OnShow(_ context.Context, display string, _ time.Duration, _ error) {
	h.shownOn = display
}

func TestExecuteEmitsPaintHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPaintHooks(hooks)
	t.Cleanup(observability.Reset)

	r, _ := newTestRunner(t, newCache(t))
	r.IntN = sequence(1, 0) // object 2 has no image, then object 1
	if _, err := r.Execute(context.Background(), Options{}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if diff := cmp.Diff([]int64{2, 1}, hooks.selects); diff != "" {
		t.Errorf("OnSelect ids mismatch (-want +got):\n%s", diff)
	}
	if hooks.strategy == "" || hooks.shownOn != "fake" {
		t.Errorf("strategy = %q, display = %q", hooks.strategy, hooks.shownOn)
	}
}
