// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/charmbracelet/log"
)

const (
	// DefaultUserAgent is sent with every download. Some archive hosts reject
	// requests without a well-known client identifier.
	DefaultUserAgent = "curl/8.7.1"

	// maxArchiveBytes is the upper bound on a downloaded archive (1 GB).
	maxArchiveBytes = 1 << 30
)

var (
	// ErrTransport is the sentinel wrapped by TransportError.
	ErrTransport = errors.New("transport error")

	errArchiveTooLarge = fmt.Errorf("response body exceeds %d bytes", maxArchiveBytes)
)

type (
	// TransportError is returned when a download cannot be completed, either
	// because the connection failed or the server answered with a non-success
	// status. It wraps ErrTransport so callers can use errors.Is.
	TransportError struct {
		URL        string
		StatusCode int // zero when no response was received
		Err        error
	}

	// Fetcher downloads release archives over HTTP.
	Fetcher struct {
		httpClient *http.Client
		userAgent  string
		logger     *log.Logger
	}

	// FetcherOption configures a Fetcher during construction.
	FetcherOption func(*Fetcher)
)

// Error returns a message that never includes URL query parameters.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("downloading %s: unexpected status %d", redactURL(e.URL), e.StatusCode)
	}
	return fmt.Sprintf("downloading %s: %v", redactURL(e.URL), e.Err)
}

// Unwrap exposes both ErrTransport and the underlying cause.
func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy configurations.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithLogger sets the logger used for download progress.
func WithLogger(l *log.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher creates a Fetcher. Defaults: http.DefaultClient, DefaultUserAgent
// and a logger that discards output.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		httpClient: http.DefaultClient,
		userAgent:  DefaultUserAgent,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues a GET request for rawURL and returns the full response body.
// There is no retry; any failure is reported as a *TransportError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req) //nolint:gosec // URL comes from the module's own source template
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveBytes+1))
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	if len(data) > maxArchiveBytes {
		return nil, &TransportError{URL: rawURL, Err: errArchiveTooLarge}
	}

	return data, nil
}

// FetchToFile downloads rawURL into dest, replacing any existing file, and
// returns the downloaded bytes so callers can digest exactly what was written.
func (f *Fetcher) FetchToFile(ctx context.Context, rawURL, dest string) ([]byte, error) {
	f.logger.Info("Download", "url", redactURL(rawURL), "file", dest)

	data, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", dest, err)
	}

	f.logger.Debug("Downloaded archive", "file", dest, "bytes", len(data))
	return data, nil
}

// redactURL strips query parameters and fragments from a URL for safe inclusion
// in error messages and logs.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
