package display

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1set/quote0"
	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/artframe/pkg/config"
	aferrors "github.com/matzehuels/artframe/pkg/errors"
	"github.com/matzehuels/artframe/pkg/httputil"
)

var quiet = log.New(io.Discard)

func testCanvas() image.Image {
	return imaging.New(16, 8, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
}

func TestFileShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "preview.png")
	d := NewFile(path, image.Pt(1600, 1200), quiet)

	if d.Resolution() != image.Pt(1600, 1200) || d.Name() != "file" {
		t.Errorf("unexpected display %s %v", d.Name(), d.Resolution())
	}
	if err := d.Show(context.Background(), testCanvas()); err != nil {
		t.Fatalf("Show() error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(16, 8) {
		t.Errorf("preview size = %v, want 16x8", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("output dir has %d entries, want only the preview", len(entries))
	}
}

func TestFileShowCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.png")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewFile(path, image.Pt(1, 1), quiet).Show(ctx, testCanvas()); err != context.Canceled {
		t.Errorf("Show() error = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("cancelled Show() wrote a file")
	}
}

func TestWebHandler(t *testing.T) {
	w := NewWeb("127.0.0.1:0", image.Pt(600, 448), quiet)
	server := httptest.NewServer(w.Handler())
	defer server.Close()

	get := func(path string) (*http.Response, []byte) {
		t.Helper()
		resp, err := server.Client().Get(server.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp, body
	}

	if resp, body := get("/healthz"); resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "ok" {
		t.Errorf("/healthz = %d %q", resp.StatusCode, body)
	}
	if resp, _ := get("/canvas.png"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("/canvas.png before Show = %d, want 404", resp.StatusCode)
	}
	if _, body := get("/"); strings.Contains(string(body), "<img") {
		t.Error("page shows an image before Show")
	}

	if err := w.Show(context.Background(), testCanvas()); err != nil {
		t.Fatalf("Show() error: %v", err)
	}

	resp, body := get("/canvas.png")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/canvas.png = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	img, err := png.Decode(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("decode canvas: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(16, 8) {
		t.Errorf("canvas size = %v, want 16x8", got)
	}

	if _, body := get("/"); !strings.Contains(string(body), `src="/canvas.png?v=1"`) {
		t.Errorf("page does not reference the canvas:\n%s", body)
	}
}

func TestWebStartAndClose(t *testing.T) {
	w := NewWeb("127.0.0.1:0", image.Pt(10, 10), quiet)
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	resp, err := http.Get("http://" + w.ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Wait(ctx); err != nil {
		t.Errorf("Wait() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

type quote0Request struct {
	DeviceID   string `json:"deviceId"`
	Image      string `json:"image"`
	RefreshNow *bool  `json:"refreshNow"`
}

func TestQuote0Show(t *testing.T) {
	var got quote0Request
	var auth string
	fail := 1
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/open/image" {
			http.NotFound(w, r)
			return
		}
		if fail > 0 {
			fail--
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"code":0,"message":"ok"}`)
	}))
	defer server.Close()

	q, err := NewQuote0("dot_app_test", "ABCDEF012345", quiet,
		quote0.WithBaseURL(server.URL), quote0.WithRateLimiter(nil))
	if err != nil {
		t.Fatal(err)
	}
	q.retryDelay = time.Millisecond

	if q.Resolution() != image.Pt(296, 152) {
		t.Errorf("Resolution() = %v", q.Resolution())
	}
	if err := q.Show(context.Background(), testCanvas()); err != nil {
		t.Fatalf("Show() error: %v", err)
	}
	if auth != "Bearer dot_app_test" {
		t.Errorf("Authorization = %q", auth)
	}
	if got.DeviceID != "ABCDEF012345" || got.RefreshNow == nil || !*got.RefreshNow {
		t.Errorf("request = %+v", got)
	}
	data, err := base64.StdEncoding.DecodeString(got.Image)
	if err != nil {
		t.Fatalf("image is not base64: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("image is not a PNG: %v", err)
	}
}

func TestQuote0AuthErrorNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	q, err := NewQuote0("dot_app_bad", "ABCDEF012345", quiet,
		quote0.WithBaseURL(server.URL), quote0.WithRateLimiter(nil))
	if err != nil {
		t.Fatal(err)
	}
	q.retryDelay = time.Millisecond

	err = q.Show(context.Background(), testCanvas())
	if !aferrors.Is(err, aferrors.ErrCodeDisplay) || httputil.IsRetryable(err) {
		t.Errorf("Show() error = %v, want non-retryable DISPLAY", err)
	}
	if calls != 1 {
		t.Errorf("server called %d times, want 1", calls)
	}
}

func TestNewQuote0RequiresCredentials(t *testing.T) {
	t.Setenv(EnvQuote0APIKey, "")
	t.Setenv(EnvQuote0DeviceID, "")
	if _, err := NewQuote0("", "ABC", quiet); !aferrors.Is(err, aferrors.ErrCodeInvalidConfig) {
		t.Errorf("missing key: error = %v, want INVALID_CONFIG", err)
	}
	if _, err := NewQuote0("dot_app_x", "", quiet); !aferrors.Is(err, aferrors.ErrCodeInvalidConfig) {
		t.Errorf("missing device: error = %v, want INVALID_CONFIG", err)
	}

	t.Setenv(EnvQuote0APIKey, "dot_app_env")
	t.Setenv(EnvQuote0DeviceID, "ENVDEVICE")
	if _, err := NewQuote0("", "", quiet); err != nil {
		t.Errorf("credentials from env: error = %v", err)
	}
}

func TestOpen(t *testing.T) {
	base := config.Default().Display
	base.Output = filepath.Join(t.TempDir(), "preview.png")

	file := base
	file.Kind = config.DisplayFile
	d, err := Open(file, quiet)
	if err != nil {
		t.Fatalf("Open(file) error: %v", err)
	}
	if d.Name() != "file" || d.Resolution() != image.Pt(1600, 1200) {
		t.Errorf("Open(file) = %s %v", d.Name(), d.Resolution())
	}

	auto := base
	auto.Kind = config.DisplayAuto
	if d, err := Open(auto, quiet); err != nil || d.Name() != "file" {
		t.Errorf("Open(auto) without hardware = %v, %v; want file preview", d, err)
	}

	bad := base
	bad.Kind = "hologram"
	if _, err := Open(bad, quiet); !aferrors.Is(err, aferrors.ErrCodeInvalidConfig) {
		t.Errorf("Open(hologram) error = %v, want INVALID_CONFIG", err)
	}
}
