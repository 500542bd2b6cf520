package display

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"image"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	aferrors "github.com/matzehuels/artframe/pkg/errors"
	"github.com/matzehuels/artframe/pkg/render"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="60">
<title>artframe</title>
<style>body{margin:0;background:#000;display:flex;align-items:center;justify-content:center;height:100vh}img{max-width:100%;max-height:100%}</style>
</head>
<body>{{if .Ready}}<img src="/canvas.png?v={{.Version}}" width="{{.Width}}" height="{{.Height}}" alt="{{.Caption}}">{{end}}</body>
</html>
`))

// Web serves the last canvas over HTTP. It is the on-screen preview.
type Web struct {
	addr   string
	size   image.Point
	logger *log.Logger

	mu      sync.RWMutex
	png     []byte
	version int
	updated time.Time

	server *http.Server
	ln     net.Listener
}

// NewWeb returns a web display of the given size listening on addr once started.
func NewWeb(addr string, size image.Point, logger *log.Logger) *Web {
	if logger == nil {
		logger = log.Default()
	}
	return &Web{addr: addr, size: size, logger: logger}
}

func (w *Web) Name() string            { return "web" }
func (w *Web) Resolution() image.Point { return w.size }

// Handler returns the router:
//
//	GET /            page showing the canvas
//	GET /canvas.png  the canvas, 404 until the first Show
//	GET /healthz     liveness
func (w *Web) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(w.logRequests)

	r.Get("/", w.handlePage)
	r.Get("/canvas.png", w.handleCanvas)
	r.Get("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = rw.Write([]byte("ok\n"))
	})
	return r
}

func (w *Web) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		ww := middleware.NewWrapResponseWriter(rw, req.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, req)
		w.logger.Debug("HTTP", "method", req.Method, "path", req.URL.Path, "status", ww.Status(), "duration", time.Since(start))
	})
}

func (w *Web) handlePage(rw http.ResponseWriter, _ *http.Request) {
	w.mu.RLock()
	data := struct {
		Ready         bool
		Version       int
		Width, Height int
		Caption       string
	}{len(w.png) > 0, w.version, w.size.X, w.size.Y, "artframe canvas"}
	w.mu.RUnlock()

	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(rw, data); err != nil {
		w.logger.Warn("Cannot render page", "err", err)
	}
}

func (w *Web) handleCanvas(rw http.ResponseWriter, req *http.Request) {
	w.mu.RLock()
	data, updated := w.png, w.updated
	w.mu.RUnlock()

	if len(data) == 0 {
		http.Error(rw, "no canvas yet", http.StatusNotFound)
		return
	}
	rw.Header().Set("Content-Type", "image/png")
	rw.Header().Set("Cache-Control", "no-store")
	http.ServeContent(rw, req, "canvas.png", updated, bytes.NewReader(data))
}

// Show encodes img and serves it from now on.
func (w *Web) Show(ctx context.Context, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, img); err != nil {
		return err
	}
	w.mu.Lock()
	w.png = buf.Bytes()
	w.version++
	w.updated = time.Now()
	w.mu.Unlock()

	if w.ln != nil {
		w.logger.Info("Canvas served", "url", "http://"+w.ln.Addr().String()+"/")
	}
	return nil
}

// Start listens on the configured address and serves in the background.
func (w *Web) Start() error {
	ln, err := net.Listen("tcp", w.addr)
	if err != nil {
		return aferrors.Wrap(aferrors.ErrCodeDisplay, err, "listen on %s", w.addr)
	}
	w.ln = ln
	w.server = &http.Server{Handler: w.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := w.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.logger.Error("Preview server stopped", "err", err)
		}
	}()
	w.logger.Info("Preview server listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the address being served, or the configured one before Start.
func (w *Web) Addr() string {
	if w.ln != nil {
		return w.ln.Addr().String()
	}
	return w.addr
}

// Wait blocks until ctx is done, then stops the server.
func (w *Web) Wait(ctx context.Context) error {
	<-ctx.Done()
	return w.Close()
}

// Close stops the server.
func (w *Web) Close() error {
	if w.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := w.server.Shutdown(ctx)
	w.server = nil
	return err
}
