// Package chromedp implements pagecut.Fetcher on the Chrome DevTools
// Protocol through chromedp. It is an alternative to package rod for
// environments where rod's launcher cannot manage the browser.
package chromedp

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/device"
	"github.com/fwojciec/pagecut"
)

// Ensure Fetcher implements pagecut.Fetcher at compile time.
var _ pagecut.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML through a gateway page. One browser is
// started per Fetcher and each fetch opens its own tab.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	fetchTimeout time.Duration
	gatewayURL   string
	gatewayPause time.Duration
	idleWait     time.Duration
	device       chromedp.Device
	rules        *pagecut.Rules
	annotate     bool
	execPath     string
	language     string

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout bounds each Fetch, gateway visit included.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.fetchTimeout = d
	}
}

// WithGateway sets the page visited before every target and how long to
// stay there.
func WithGateway(url string, pause time.Duration) Option {
	return func(f *Fetcher) {
		f.gatewayURL = url
		f.gatewayPause = pause
	}
}

// WithInterstitials runs pagecut.NeutralizeScript with the gate keywords
// and overlay threshold from rules after the target has settled.
func WithInterstitials(rules *pagecut.Rules) Option {
	return func(f *Fetcher) {
		f.rules = rules
	}
}

// WithComputedStyles stamps computed colour and weight onto elements
// before the markup is captured.
func WithComputedStyles() Option {
	return func(f *Fetcher) {
		f.annotate = true
	}
}

// WithDevice sets the emulated device. The default is an iPhone 12.
func WithDevice(d chromedp.Device) Option {
	return func(f *Fetcher) {
		f.device = d
	}
}

// WithIdleWait sets how long to wait after the body is ready for late
// scripts and requests to settle.
func WithIdleWait(d time.Duration) Option {
	return func(f *Fetcher) {
		f.idleWait = d
	}
}

// WithExecPath sets the Chrome binary. By default chromedp searches the
// usual install locations.
func WithExecPath(path string) Option {
	return func(f *Fetcher) {
		f.execPath = path
	}
}

// WithAcceptLanguage sets the Accept-Language header sent with every
// request. The default prefers Japanese.
func WithAcceptLanguage(lang string) Option {
	return func(f *Fetcher) {
		f.language = lang
	}
}

// NewFetcher starts a headless Chrome. Close must be called when the
// Fetcher is no longer needed.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		fetchTimeout: pagecut.DefaultFetchTimeout,
		gatewayPause: pagecut.DefaultGatewayPause,
		idleWait:     pagecut.DefaultIdleWait,
		device:       device.IPhone12,
		language:     "ja,en;q=0.8",
	}
	for _, opt := range opts {
		opt(f)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
	)
	if f.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(f.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	f.allocCancel = allocCancel
	f.browserCtx = browserCtx
	f.browserCancel = browserCancel
	return f, nil
}

// Fetch visits the gateway, pauses, navigates to url, waits for the body,
// optionally neutralizes interstitials and annotates computed styles, and
// returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", pagecut.Errorf(pagecut.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tabCtx, tabCancel := chromedp.NewContext(f.browserCtx)
	defer tabCancel()
	if f.fetchTimeout > 0 {
		var cancel context.CancelFunc
		tabCtx, cancel = context.WithTimeout(tabCtx, f.fetchTimeout)
		defer cancel()
	}
	// The tab lives under the browser context, so tie it to the caller.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	tasks := chromedp.Tasks{
		chromedp.Emulate(f.device),
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": f.language}),
	}
	if f.gatewayURL != "" {
		tasks = append(tasks,
			chromedp.Navigate(f.gatewayURL),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Sleep(f.gatewayPause),
		)
	}
	tasks = append(tasks,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(f.idleWait),
	)

	if f.rules != nil {
		expr, err := pagecut.Invoke(pagecut.NeutralizeScript, f.rules.GateKeywords, f.rules.OverlayZIndex)
		if err != nil {
			return "", err
		}
		var clicks int
		tasks = append(tasks,
			chromedp.Evaluate(expr, &clicks),
			chromedp.WaitReady("body", chromedp.ByQuery),
		)
	}
	if f.annotate {
		expr, err := pagecut.Invoke(pagecut.AnnotateScript)
		if err != nil {
			return "", err
		}
		var count int
		tasks = append(tasks, chromedp.Evaluate(expr, &count))
	}

	var html string
	tasks = append(tasks, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(tabCtx, tasks); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if ctxErr := tabCtx.Err(); ctxErr == context.DeadlineExceeded {
			return "", fmt.Errorf("fetch %s: %w", url, ctxErr)
		}
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	return html, nil
}

// Close shuts the browser down. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	f.closeOnce.Do(func() {
		f.closed.Store(true)
		f.closeErr = chromedp.Cancel(f.browserCtx)
		f.browserCancel()
		f.allocCancel()
	})
	return f.closeErr
}
