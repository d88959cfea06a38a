// Package http provides the plain-HTTP implementation of pagecut.Fetcher
// and the web UI server.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/fwojciec/pagecut"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/publicsuffix"
)

// MobileUserAgent identifies requests as a phone browser, matching the
// device the browser fetchers emulate.
const MobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

// Ensure Fetcher implements pagecut.Fetcher at compile time.
var _ pagecut.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using HTTP requests.
// Unlike the browser fetchers it does not execute JavaScript, so
// interstitials are left for goquery.StripOverlays to handle.
// Each fetch uses a fresh cookie jar so gateway cookies stay per fetch.
type Fetcher struct {
	timeout      time.Duration
	gatewayURL   string
	gatewayPause time.Duration
	userAgent    string
	transport    http.RoundTripper
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout bounds each Fetch, gateway visit included.
// Defaults to pagecut.DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithGateway sets the page requested before every target and how long to
// wait before requesting the target.
func WithGateway(url string, pause time.Duration) Option {
	return func(f *Fetcher) {
		f.gatewayURL = url
		f.gatewayPause = pause
	}
}

// WithUserAgent overrides MobileUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithTransport sets the round tripper used for requests.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) {
		f.transport = rt
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      pagecut.DefaultFetchTimeout,
		gatewayPause: pagecut.DefaultGatewayPause,
		userAgent:    MobileUserAgent,
		transport:    http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch requests the gateway, pauses, then retrieves url and returns its
// body decoded to UTF-8.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return "", err
	}
	client := &http.Client{Jar: jar, Transport: f.transport}

	if f.gatewayURL != "" {
		if _, err := f.get(ctx, client, f.gatewayURL); err != nil {
			return "", fmt.Errorf("visiting gateway: %w", err)
		}
		if err := pagecut.Pause(ctx, f.gatewayPause); err != nil {
			return "", err
		}
	}
	return f.get(ctx, client, url)
}

func (f *Fetcher) get(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "ja,en;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", nil
	}
	enc, _, _ := charset.DetermineEncoding(raw, resp.Header.Get("Content-Type"))
	body, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", url, err)
	}
	return string(body), nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
