package verify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/octans/frontcheck/internal/retry"
)

// StartupWaiter holds the run until the application under test is expected
// to be serving.
type StartupWaiter interface {
	Wait(ctx context.Context) error
}

// Delay is a blind wait of fixed length.
type Delay struct {
	Duration time.Duration
	// Sleep defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (d Delay) Wait(ctx context.Context) error {
	zerolog.Ctx(ctx).Debug().Dur("delay", d.Duration).Msg("Waiting for server startup")
	sleep := d.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, d.Duration)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Probe polls URL until the server answers with any HTTP status or Timeout
// elapses.
type Probe struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
	Retry   retry.Config
}

func (p Probe) Wait(ctx context.Context) error {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	cfg := p.Retry
	if cfg.InitialBackoff <= 0 {
		cfg = retry.DefaultConfig()
	}

	start := time.Now()
	attempts := 0
	err := retry.WithRetry(ctx, cfg, func(ctx context.Context) error {
		attempts++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrStartup, p.URL, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("url", p.URL).
		Int("attempts", attempts).
		Dur("elapsed", time.Since(start)).
		Msg("Server is answering")
	return nil
}
