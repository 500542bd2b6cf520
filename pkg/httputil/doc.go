// Package httputil provides the retry policy shared by the museum client
// and the fetcher.
//
// # Retry
//
// [Retry] runs an operation up to a fixed number of attempts with a fixed
// sleep between them. Only failures wrapped in [RetryableError] are retried:
//
//   - transport errors (timeouts, resets, DNS)
//   - 5xx server errors
//   - 429 rate limit responses
//
// Anything else (404, a bad status, a parse error) is returned after the
// first attempt so a missing object does not cost retries*timeout seconds.
//
//	err := httputil.Retry(ctx, 3, 15*time.Second, func() error {
//	    return client.DownloadTo(ctx, url, w)
//	})
//
// [Sleep] is the context-aware courtesy delay used between image downloads.
package httputil
