// Package download provides the retrying HTTP client used to fetch release
// files, package indices, and package bodies, generalized from the
// teacher's pkg/download (grab-based) client and its exponential backoff
// loop in WithResume.
package download

import (
	"context"
	"time"

	"github.com/cavaliergopher/grab/v3"

	"github.com/heroku/deb-packages-buildpack/internal/bperrors"
	"github.com/heroku/deb-packages-buildpack/internal/scheduler"
)

// Client fetches URLs to local files with the connect/read timeouts and
// retry policy from spec.md §5: "connect timeout 10s, read timeout 10s,
// exponential-backoff retry up to 5 attempts on transient transport errors
// or 5xx; 4xx is not retried."
type Client struct {
	grabClient  *grab.Client
	maxAttempts int
	baseDelay   time.Duration
}

// NewClient builds a Client with the default CNB-pipeline retry policy.
func NewClient() *Client {
	grabClient := grab.NewClient()
	grabClient.HTTPClient.Timeout = 0 // per-attempt deadline applied via context below

	return &Client{
		grabClient:  grabClient,
		maxAttempts: 5,
		baseDelay:   time.Second,
	}
}

// DownloadToFile fetches url into destination, retrying transient failures.
// A 4xx response fails immediately with no retry (matches "RequestPackage");
// a 5xx or connection-level failure is retried with doubling backoff, for at
// most maxAttempts attempts in total.
func (c *Client) DownloadToFile(ctx context.Context, url, destination string) error {
	return scheduler.Retry(ctx, c.maxAttempts, c.baseDelay, isRetryableError, func(ctx context.Context) error {
		reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		req, err := grab.NewRequest(destination, url)
		if err != nil {
			return bperrors.Wrap(err, bperrors.KindNetwork, "building request for "+url)
		}

		req = req.WithContext(reqCtx)

		resp := c.grabClient.Do(req)
		if err := resp.Err(); err != nil {
			return classifyTransportOrStatusError(url, resp, err)
		}

		return nil
	})
}

func classifyTransportOrStatusError(url string, resp *grab.Response, err error) error {
	if resp != nil && resp.HTTPResponse != nil {
		status := resp.HTTPResponse.StatusCode

		switch {
		case status >= 400 && status < 500:
			return bperrors.Wrapf(bperrors.ErrClientError, bperrors.KindNetwork, "request failed with status %d for %s", status, url).
				WithOperation("RequestPackage")
		case status >= 500:
			return bperrors.Newf(bperrors.KindNetwork, "upstream returned %d for %s", status, url)
		}
	}

	return bperrors.Wrapf(err, bperrors.KindNetwork, "transport error fetching %s", url)
}

// isRetryableError implements "4xx is not retried; checksum failure is
// never retried." Everything else routed through bperrors.Retryable is a
// transient transport/5xx failure eligible for backoff.
func isRetryableError(err error) bool {
	return bperrors.Retryable(err)
}
