package museum

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	aferrors "github.com/matzehuels/artframe/pkg/errors"
	"github.com/matzehuels/artframe/pkg/httputil"
	"github.com/matzehuels/artframe/pkg/observability"
)

const defaultTimeout = 30 * time.Second

// Client downloads catalog, record and image bytes from the collection API.
// It classifies failures so [httputil.Retry] only retries transient ones.
type Client struct {
	http          *http.Client
	baseURL       string
	departmentIDs []int
	userAgent     string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient installs a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithDepartments restricts the catalog to the given department IDs.
func WithDepartments(ids ...int) Option {
	return func(c *Client) { c.departmentIDs = ids }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// CatalogURL is the listing endpoint, filtered by department when configured.
func (c *Client) CatalogURL() string {
	u := c.baseURL + "/objects"
	if len(c.departmentIDs) == 0 {
		return u
	}
	ids := make([]string, len(c.departmentIDs))
	for i, id := range c.departmentIDs {
		ids[i] = strconv.Itoa(id)
	}
	return u + "?departmentIds=" + url.QueryEscape(strings.Join(ids, "|"))
}

// ObjectURL is the record endpoint for id.
func (c *Client) ObjectURL(id int64) string {
	return c.baseURL + "/objects/" + FormatID(id)
}

// Download performs a GET and returns the body on 200.
// The caller must close the body.
func (c *Client) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, aferrors.Wrap(aferrors.ErrCodeNetwork, err, "build request for %s", rawURL)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, httputil.Retryable(aferrors.Wrap(aferrors.ErrCodeNetwork, err, "GET %s", rawURL))
	}
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))
	if err := checkStatus(rawURL, resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// DownloadTo copies the body of rawURL into w. A failure while streaming
// the body is retryable like any other transport failure.
func (c *Client) DownloadTo(ctx context.Context, rawURL string, w io.Writer) error {
	body, err := c.Download(ctx, rawURL)
	if err != nil {
		return err
	}
	defer body.Close()
	if _, err := io.Copy(w, body); err != nil {
		return httputil.Retryable(aferrors.Wrap(aferrors.ErrCodeNetwork, err, "read %s", rawURL))
	}
	return nil
}

func checkStatus(rawURL string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return aferrors.New(aferrors.ErrCodeNotFound, "GET %s: status %d", rawURL, code)
	case code == http.StatusTooManyRequests || code >= 500:
		return httputil.Retryable(aferrors.New(aferrors.ErrCodeNetwork, "GET %s: status %d", rawURL, code))
	default:
		return aferrors.New(aferrors.ErrCodeNetwork, "GET %s: status %d %s", rawURL, code, http.StatusText(code))
	}
}
