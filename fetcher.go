package pagecut

import (
	"context"
	"time"
)

// Defaults shared by the fetchers.
const (
	// DefaultFetchTimeout bounds one fetch, gateway visit included.
	DefaultFetchTimeout = 60 * time.Second

	// DefaultGatewayPause is how long to stay on the gateway page so it
	// can set its cookies before the target is requested.
	DefaultGatewayPause = 3 * time.Second

	// DefaultGatewayURL is the entry page visited before every target so
	// the site's session cookies are set.
	DefaultGatewayURL = "https://www.h-ken.net/mypage/20250611_1605697556/"

	// DefaultIdleWait is the quiet period that counts as network idle.
	DefaultIdleWait = 500 * time.Millisecond
)

// Fetcher retrieves rendered HTML from URLs.
// Implementations visit the configured gateway URL before the target and
// may run the interstitial scripts before capturing markup.
type Fetcher interface {
	// Fetch navigates to the URL, waits for the page to settle,
	// and returns the rendered HTML. No partial markup is returned on error.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases browser resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// Pause waits for d or until ctx is done, whichever comes first.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
