package display

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"strings"
	"time"

	"github.com/1set/quote0"
	"github.com/charmbracelet/log"

	aferrors "github.com/matzehuels/artframe/pkg/errors"
	"github.com/matzehuels/artframe/pkg/httputil"
	"github.com/matzehuels/artframe/pkg/render"
)

// Quote0Resolution is the panel size the Quote/0 image API accepts.
var Quote0Resolution = image.Pt(296, 152)

// Environment variables consulted when the configuration leaves the
// credentials empty.
const (
	EnvQuote0APIKey   = "QUOTE0_API_KEY"
	EnvQuote0DeviceID = "QUOTE0_DEVICE_ID"
)

const (
	quote0Attempts = 3
	quote0Delay    = 2 * time.Second
)

// Quote0 uploads the canvas to a Quote/0 Wi-Fi e-paper panel.
type Quote0 struct {
	client     *quote0.Client
	logger     *log.Logger
	retryDelay time.Duration
}

// NewQuote0 builds the backend. Empty credentials fall back to
// QUOTE0_API_KEY and QUOTE0_DEVICE_ID.
func NewQuote0(apiKey, deviceID string, logger *log.Logger, opts ...quote0.ClientOption) (*Quote0, error) {
	if logger == nil {
		logger = log.Default()
	}
	if strings.TrimSpace(apiKey) == "" {
		apiKey = os.Getenv(EnvQuote0APIKey)
	}
	if strings.TrimSpace(deviceID) == "" {
		deviceID = os.Getenv(EnvQuote0DeviceID)
	}
	if strings.TrimSpace(deviceID) == "" {
		return nil, aferrors.New(aferrors.ErrCodeInvalidConfig, "quote0 device id missing: set display.quote0_device_id or %s", EnvQuote0DeviceID)
	}

	opts = append([]quote0.ClientOption{quote0.WithDefaultDeviceID(deviceID)}, opts...)
	client, err := quote0.NewClient(apiKey, opts...)
	if err != nil {
		return nil, aferrors.Wrap(aferrors.ErrCodeInvalidConfig, err, "quote0 client (set display.quote0_api_key or %s)", EnvQuote0APIKey)
	}
	return &Quote0{client: client, logger: logger, retryDelay: quote0Delay}, nil
}

func (q *Quote0) Name() string            { return "quote0" }
func (q *Quote0) Resolution() image.Point { return Quote0Resolution }
func (q *Quote0) Close() error            { return nil }

// Show uploads img and asks the panel to refresh. Rate-limit and server
// errors are retried.
func (q *Quote0) Show(ctx context.Context, img image.Image) error {
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, img); err != nil {
		return err
	}
	req := quote0.ImageRequest{
		RefreshNow:   quote0.Bool(true),
		Border:       quote0.BorderBlack,
		DitherType:   quote0.DitherDiffusion,
		DitherKernel: quote0.KernelFloydSteinberg,
	}

	return httputil.Retry(ctx, quote0Attempts, q.retryDelay, func() error {
		resp, err := q.client.SendImageBytes(ctx, buf.Bytes(), req)
		if err != nil {
			wrapped := aferrors.Wrap(aferrors.ErrCodeDisplay, err, "quote0 upload")
			var apiErr *quote0.APIError
			if errors.As(err, &apiErr) && (apiErr.StatusCode == 429 || apiErr.StatusCode >= 500) {
				q.logger.Debug("Quote/0 upload failed, retrying", "err", err)
				return httputil.Retryable(wrapped)
			}
			return wrapped
		}
		q.logger.Info("Quote/0 updated", "status", resp.StatusCode, "message", resp.Message)
		return nil
	})
}
