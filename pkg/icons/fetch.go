package icons

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/graphrender/pkg/buildinfo"
	"github.com/matzehuels/graphrender/pkg/errors"
	"github.com/matzehuels/graphrender/pkg/httputil"
)

// Fetcher retrieves the markup of one icon from outside the process.
type Fetcher interface {
	Fetch(ctx context.Context, icon string) ([]byte, error)
}

// FetcherFunc adapts a function to [Fetcher].
type FetcherFunc func(ctx context.Context, icon string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, icon string) ([]byte, error) { return f(ctx, icon) }

// Iconify defaults.
const (
	DefaultBaseURL = "https://api.iconify.design"
	DefaultTimeout = 5 * time.Second
)

// IconifyFetcher downloads icons from an Iconify-compatible API as
// GET {base}/{icon}.svg.
type IconifyFetcher struct {
	base   string
	client *httputil.Client
}

// NewIconifyFetcher creates a fetcher for base. Empty base selects
// [DefaultBaseURL]; a non-positive timeout selects [DefaultTimeout].
func NewIconifyFetcher(base string, timeout time.Duration) (*IconifyFetcher, error) {
	if base == "" {
		base = DefaultBaseURL
	}
	if err := errors.ValidateURL(base); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := httputil.NewClient(map[string]string{
		"User-Agent": buildinfo.UserAgent(),
		"Accept":     "image/svg+xml",
	}).WithHTTPClient(httputil.NewHTTPClient(timeout))
	return &IconifyFetcher{base: strings.TrimRight(base, "/"), client: client}, nil
}

// Fetch implements [Fetcher]. Every failure carries the FETCH code.
func (f *IconifyFetcher) Fetch(ctx context.Context, icon string) ([]byte, error) {
	if err := errors.ValidateIconID(icon); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "fetch icon %s", icon)
	}
	data, err := f.client.GetBytes(ctx, f.URL(icon))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "fetch icon %s", icon)
	}
	return data, nil
}

// URL returns the address Fetch requests for icon.
func (f *IconifyFetcher) URL(icon string) string {
	return f.base + "/" + url.PathEscape(icon) + ".svg"
}
