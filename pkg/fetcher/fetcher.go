// Package fetcher mirrors a remote museum catalog into a local [store.Store].
//
// A run is strictly sequential:
//
//  1. Download the catalog (retried; on exhaustion the run falls through
//     to whatever catalog file is already on disk).
//  2. Read the catalog. An unreadable catalog or an empty identifier list
//     is fatal.
//  3. For each identifier: fetch the record unless cached, parse it, fetch
//     the primary image unless cached, then pause for the courtesy delay.
//     Any per-identifier failure abandons that identifier only.
//
// Files already present are never downloaded again.
package fetcher

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/artframe/pkg/httputil"
	"github.com/matzehuels/artframe/pkg/museum"
	"github.com/matzehuels/artframe/pkg/observability"
	"github.com/matzehuels/artframe/pkg/store"
)

// Options is the fetch policy.
type Options struct {
	// Retries is the number of attempts per download.
	Retries int
	// Timeout is the sleep between attempts and after each image download.
	Timeout time.Duration
	// Limit stops after this many identifiers. Zero means all.
	Limit int
	// SkipCatalog reuses an existing catalog file instead of downloading it.
	SkipCatalog bool
}

// Stats counts what a run did.
type Stats struct {
	IDs            int
	Processed      int
	RecordsFetched int
	RecordsCached  int
	ImagesFetched  int
	ImagesCached   int
	NoImage        int
	Failed         int
	Duration       time.Duration
}

// Fetcher downloads records and images into a store.
type Fetcher struct {
	client *museum.Client
	store  *store.Store
	opts   Options
	logger *log.Logger
}

// New creates a Fetcher. A nil logger uses log.Default().
func New(client *museum.Client, st *store.Store, opts Options, logger *log.Logger) *Fetcher {
	if logger == nil {
		logger = log.Default()
	}
	opts.Retries = max(opts.Retries, 1)
	return &Fetcher{client: client, store: st, opts: opts, logger: logger}
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeNoImage
	outcomeFailed
)

// Run executes one pass over the catalog. The returned error is non-nil
// only for fatal conditions (catalog unreadable or empty) or cancellation.
func (f *Fetcher) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	hooks := observability.Cache()
	if f.opts.SkipCatalog && f.catalogPresent() {
		hooks.OnCacheHit(ctx, "catalog")
		f.logger.Info("Using cached catalog", "path", f.store.CatalogPath())
	} else if err := f.fetchCatalog(ctx); err != nil {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		f.logger.Error("Cannot retrieve catalog", "url", f.client.CatalogURL(), "err", err)
	}

	ids, err := f.store.ReadCatalog()
	if err != nil {
		return stats, err
	}
	stats.IDs = len(ids)
	f.logger.Info("Number of IDs", "count", len(ids))

	for i, id := range ids {
		if f.opts.Limit > 0 && i >= f.opts.Limit {
			f.logger.Info("Limit reached", "limit", f.opts.Limit)
			break
		}
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}

		stats.Processed++
		switch f.fetchObject(ctx, id, stats) {
		case outcomeNoImage:
			stats.NoImage++
		case outcomeFailed:
			stats.Failed++
		}
	}

	stats.Duration = time.Since(start)
	return stats, ctx.Err()
}

func (f *Fetcher) catalogPresent() bool {
	_, err := f.store.ReadCatalog()
	return err == nil
}

func (f *Fetcher) fetchCatalog(ctx context.Context) error {
	url := f.client.CatalogURL()
	return f.retry(ctx, func() error {
		f.logger.Info("Downloading", "url", url)
		return f.store.WriteCatalog(func(w io.Writer) error {
			return f.client.DownloadTo(ctx, url, w)
		})
	})
}

func (f *Fetcher) fetchObject(ctx context.Context, id int64, stats *Stats) outcome {
	logger := f.logger.With("id", id)
	hooks := observability.Cache()

	if f.store.HasRecord(id) {
		hooks.OnCacheHit(ctx, "record")
		stats.RecordsCached++
	} else {
		hooks.OnCacheMiss(ctx, "record")
		url := f.client.ObjectURL(id)
		err := f.retry(ctx, func() error {
			logger.Debug("Downloading", "url", url)
			return f.store.WriteRecord(id, func(w io.Writer) error {
				return f.client.DownloadTo(ctx, url, w)
			})
		})
		if err != nil {
			logger.Warn("Cannot retrieve url", "url", url, "err", err)
			return outcomeFailed
		}
		stats.RecordsFetched++
	}

	rec, err := f.store.ReadRecord(id)
	if err != nil {
		logger.Warn("Cannot open record", "err", err)
		return outcomeFailed
	}

	imageURL := museum.EncodeImageURL(rec.PrimaryImage)
	if imageURL == "" {
		logger.Info("No image found", "title", rec.Title)
		return outcomeNoImage
	}

	ext := museum.ImageExtension(imageURL)
	if f.store.HasImage(id, ext) {
		hooks.OnCacheHit(ctx, "image")
		stats.ImagesCached++
	} else {
		hooks.OnCacheMiss(ctx, "image")
		err := f.retry(ctx, func() error {
			logger.Debug("Downloading", "url", imageURL)
			return f.store.WriteImage(id, ext, func(w io.Writer) error {
				return f.client.DownloadTo(ctx, imageURL, w)
			})
		})
		if err != nil {
			logger.Warn("Cannot retrieve url", "url", imageURL, "err", err)
			return outcomeFailed
		}
		stats.ImagesFetched++
		if err := httputil.Sleep(ctx, f.opts.Timeout); err != nil {
			return outcomeFailed
		}
	}

	logger.Info("Fetched", "title", rec.Title, "artist", rec.ArtistDisplayName, "date", rec.ObjectEndDate.String())
	return outcomeOK
}

func (f *Fetcher) retry(ctx context.Context, fn func() error) error {
	err := httputil.Retry(ctx, f.opts.Retries, f.opts.Timeout, fn)
	if httputil.IsRetryable(err) {
		f.logger.Debug("Retries exhausted", "attempts", f.opts.Retries)
	}
	return err
}
