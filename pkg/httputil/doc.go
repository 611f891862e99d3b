// Package httputil provides the HTTP plumbing used to fetch remote icons.
//
// # Overview
//
//   - [Client]: GET requests with default headers, status classification
//     and automatic retry of transient failures
//   - [Retry]: retry with exponential backoff for any operation
//
// # Retry
//
// Only errors wrapped in [RetryableError] are retried. [Client] wraps
// network errors and 5xx responses; a 404 surfaces at once as [ErrNotFound]
// and other statuses as [ErrStatus].
//
//	c := httputil.NewClient(map[string]string{"User-Agent": "graphrender/1.0"})
//	data, err := c.GetBytes(ctx, "https://api.iconify.design/mdi/router.svg")
//
// # Configuration
//
// Defaults are tuned for small interactive fetches:
//
//   - Request timeout: 5 seconds
//   - Attempts: 3
//   - Base backoff: 200 milliseconds, doubling
//   - Response size limit: 1 MiB
package httputil
