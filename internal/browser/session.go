package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// ErrTimeout is returned when a navigation or element wait exceeds its bound.
var ErrTimeout = errors.New("timeout exceeded")

const textPollInterval = 100 * time.Millisecond

// Options configures the browser process and its single tab.
type Options struct {
	ExecPath          string
	Headless          bool
	UserAgent         string
	Proxy             string
	ViewportWidth     int
	ViewportHeight    int
	NavigationTimeout time.Duration
}

// Session owns one browser process and one tab. It is not safe for
// concurrent use; Close may be called from any goroutine.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	navTimeout  time.Duration
	closeOnce   sync.Once
	closeErr    error
}

// allocatorOptions mirrors the flag set used for stable headless runs in CI
// containers and on Windows.
func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("force-color-profile", "srgb"),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-features", "site-per-process,TranslateUI"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(opts.ViewportWidth, opts.ViewportHeight),
	}

	if opts.ExecPath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(opts.ExecPath)}, allocOpts...)
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}
	return allocOpts
}

// Launch starts a browser and opens its first tab. The returned Session must
// be closed by the caller.
func Launch(ctx context.Context, opts Options) (*Session, error) {
	if opts.ViewportWidth <= 0 || opts.ViewportHeight <= 0 {
		opts.ViewportWidth, opts.ViewportHeight = 1280, 720
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 30 * time.Second
	}
	if opts.ExecPath == "" {
		opts.ExecPath = FindChrome("")
	}

	// The browser outlives individual request contexts; it is torn down by Close.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocatorOptions(opts)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			log.Debug().Msgf("chromedp: "+format, args...)
		}),
	)

	s := &Session{
		ctx:         tabCtx,
		cancel:      tabCancel,
		allocCancel: allocCancel,
		navTimeout:  opts.NavigationTimeout,
	}

	// The first Run allocates the browser and must use the tab context itself,
	// so startup is bounded by a watchdog instead of a derived deadline.
	start := time.Now()
	watchdog := time.AfterFunc(opts.NavigationTimeout, func() { s.Close() })
	stop := context.AfterFunc(ctx, func() { s.Close() })
	err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(opts.ViewportWidth), int64(opts.ViewportHeight)),
	)
	timedOut := !watchdog.Stop()
	cancelled := !stop()
	if err != nil || timedOut || cancelled {
		s.Close()
		switch {
		case cancelled && ctx.Err() != nil:
			return nil, ctx.Err()
		case timedOut:
			return nil, fmt.Errorf("failed to start browser: %w: %s", ErrTimeout, opts.NavigationTimeout)
		}
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.Debug().
		Str("exec_path", opts.ExecPath).
		Bool("headless", opts.Headless).
		Dur("elapsed", time.Since(start)).
		Msg("Browser session started")
	return s, nil
}

// scope derives a bounded context from the tab that is also cancelled
// when the caller's ctx is.
func (s *Session) scope(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

// classify turns a deadline hit on the scoped context into ErrTimeout.
func classify(ctx, runCtx context.Context, timeout time.Duration, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) || errors.Is(err, chromedp.ErrPollingTimeout) {
		return fmt.Errorf("%w: %s", ErrTimeout, timeout)
	}
	return err
}

// Navigate loads url and waits for the load event. It returns the HTTP
// status of the main document, or 0 when the browser reported none.
// HTTP error statuses are not treated as failures.
func (s *Session) Navigate(ctx context.Context, url string) (int, error) {
	runCtx, done := s.scope(ctx, s.navTimeout)
	defer done()

	resp, err := chromedp.RunResponse(runCtx, chromedp.Navigate(url))
	if err = classify(ctx, runCtx, s.navTimeout, err); err != nil {
		return 0, err
	}
	return statusOf(resp), nil
}

func statusOf(resp *network.Response) int {
	if resp == nil {
		return 0
	}
	return int(resp.Status)
}

// WaitFor blocks until an element satisfying cond is visible.
func (s *Session) WaitFor(ctx context.Context, cond Condition, timeout time.Duration) error {
	runCtx, done := s.scope(ctx, timeout)
	defer done()

	var action chromedp.Action
	switch cond.Kind {
	case KindText:
		// WaitVisible on a node set needs every node visible; text needs any.
		var found bool
		action = chromedp.Poll(cond.Script(), &found,
			chromedp.WithPollingInterval(textPollInterval),
			chromedp.WithPollingTimeout(0),
		)
	default:
		action = chromedp.WaitVisible(cond.Value, chromedp.ByQuery)
	}

	return classify(ctx, runCtx, timeout, chromedp.Run(runCtx, action))
}

// Screenshot captures the current viewport as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	runCtx, done := s.scope(ctx, s.navTimeout)
	defer done()

	var buf []byte
	if err := chromedp.Run(runCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, classify(ctx, runCtx, s.navTimeout, err)
	}
	return buf, nil
}

// HTML returns the serialized document.
func (s *Session) HTML(ctx context.Context) (string, error) {
	runCtx, done := s.scope(ctx, s.navTimeout)
	defer done()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", classify(ctx, runCtx, s.navTimeout, err)
	}
	return html, nil
}

// Close shuts the tab and terminates the browser process. Subsequent calls
// return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if err := chromedp.Cancel(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.closeErr = fmt.Errorf("close browser: %w", err)
		}
		s.cancel()
		s.allocCancel()
		log.Debug().Msg("Browser session closed")
	})
	return s.closeErr
}
