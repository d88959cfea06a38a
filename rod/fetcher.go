// Package rod implements pagecut.Fetcher with headless Chrome driven by
// go-rod.
package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/pagecut"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/devices"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements pagecut.Fetcher at compile time.
var _ pagecut.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML through a gateway page using Chrome
// browser automation. Each fetch runs in its own incognito context so
// cookies set by one gateway visit never leak into another fetch.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	browser  *rod.Browser
	launcher *launcher.Launcher

	fetchTimeout time.Duration
	gatewayURL   string
	gatewayPause time.Duration
	idleWait     time.Duration
	device       devices.Device
	rules        *pagecut.Rules
	annotate     bool

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

// WithDevice sets the emulated device. The default is an iPhone X; use
// devices.Clear for a desktop viewport.
func WithDevice(d devices.Device) Option {
	return func(f *Fetcher) {
		f.device = d
	}
}

// WithIdleWait sets the quiet period treated as network idle.
func WithIdleWait(d time.Duration) Option {
	return func(f *Fetcher) {
		f.idleWait = d
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		fetchTimeout: pagecut.DefaultFetchTimeout,
		gatewayPause: pagecut.DefaultGatewayPause,
		idleWait:     pagecut.DefaultIdleWait,
		device:       devices.IPhoneX,
	}
	for _, opt := range opts {
		opt(f)
	}

	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Set("disable-dev-shm-usage").
		Set("disable-gpu")
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	f.browser = browser
	f.launcher = l
	return f, nil
}

// Fetch visits the gateway, pauses, navigates to url, waits for the page
// to settle, optionally neutralizes interstitials and annotates computed
// styles, and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", pagecut.Errorf(pagecut.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.fetchTimeout)
		defer cancel()
	}

	incognito, err := f.browser.Incognito()
	if err != nil {
		return "", fmt.Errorf("creating browser context: %w", err)
	}
	defer incognito.Close()

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("creating page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx)
	if err := page.Emulate(f.device); err != nil {
		return "", fmt.Errorf("emulating device: %w", err)
	}

	if f.gatewayURL != "" {
		if err := f.navigate(page, f.gatewayURL); err != nil {
			return "", fmt.Errorf("visiting gateway: %w", err)
		}
		if err := pagecut.Pause(ctx, f.gatewayPause); err != nil {
			return "", err
		}
	}

	if err := f.navigate(page, url); err != nil {
		return "", err
	}

	if f.rules != nil {
		if _, err := page.Eval(pagecut.NeutralizeScript, f.rules.GateKeywords, f.rules.OverlayZIndex); err != nil {
			return "", fmt.Errorf("neutralizing interstitials: %w", err)
		}
		// A gate click may reload or navigate the page.
		if err := page.WaitLoad(); err != nil {
			return "", err
		}
	}
	if f.annotate {
		if _, err := page.Eval(pagecut.AnnotateScript); err != nil {
			return "", fmt.Errorf("annotating styles: %w", err)
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return html, nil
}

// navigate loads url and waits for the load event and network idle.
func (f *Fetcher) navigate(page *rod.Page, url string) error {
	wait := page.WaitRequestIdle(f.idleWait, nil, nil, nil)
	if err := page.Navigate(url); err != nil {
		return err
	}
	if err := page.WaitLoad(); err != nil {
		return err
	}
	wait()
	return page.GetContext().Err()
}

// LauncherPID returns the process ID of the launched browser.
func (f *Fetcher) LauncherPID() int {
	return f.launcher.PID()
}

// Close releases browser resources and kills the launched process.
// Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	f.closeOnce.Do(func() {
		f.closed.Store(true)
		f.closeErr = f.browser.Close()
		f.launcher.Kill()
		f.launcher.Cleanup()
	})
	return f.closeErr
}
