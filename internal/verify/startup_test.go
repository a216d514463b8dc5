package verify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/octans/frontcheck/internal/retry"
)

func fastRetry() retry.Config {
	return retry.Config{InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond, Multiplier: 2}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestDelay_Waits(t *testing.T) {
	start := time.Now()
	if err := (Delay{Duration: 30 * time.Millisecond}).Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("Expected at least 30ms, waited %v", elapsed)
	}
}

func TestDelay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := (Delay{Duration: time.Minute}).Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline error, got %v", err)
	}
}

func TestProbe_ReadyServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Any status counts as the server being up.
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := Probe{URL: server.URL, Timeout: time.Second, Retry: fastRetry()}
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Expected ready, got %v", err)
	}
}

func TestProbe_BecomesReady(t *testing.T) {
	var calls int32
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return nil, errors.New("connection refused")
		}
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader("ok")), Request: r}, nil
	})}

	p := Probe{URL: "http://localhost:5229", Client: client, Timeout: time.Second, Retry: fastRetry()}
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Expected ready, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestProbe_NeverReady(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	p := Probe{URL: url, Timeout: 50 * time.Millisecond, Retry: fastRetry()}
	err := p.Wait(context.Background())
	if !errors.Is(err, ErrStartup) {
		t.Fatalf("Expected ErrStartup, got %v", err)
	}
	if !strings.Contains(err.Error(), url) {
		t.Errorf("Expected URL in message, got %q", err.Error())
	}
}

func TestProbe_InvalidURLIsPermanent(t *testing.T) {
	p := Probe{URL: "http://bad host/", Timeout: time.Second, Retry: fastRetry()}
	start := time.Now()
	if err := p.Wait(context.Background()); !errors.Is(err, ErrStartup) {
		t.Fatalf("Expected ErrStartup, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Expected invalid URL to fail without retrying until timeout")
	}
}

func TestStepError_Messages(t *testing.T) {
	cause := errors.New("boom")
	cases := []struct {
		err  *StepError
		want string
	}{
		{&StepError{Phase: PhaseLaunch, Err: cause}, "launch browser: boom"},
		{&StepError{Phase: PhaseStartup, Target: testBase, Err: cause}, "wait for server: boom"},
		{&StepError{Check: "gallery", Phase: PhaseNavigate, Target: testBase + "/gallery", Err: cause}, "gallery: navigate to " + testBase + "/gallery: boom"},
		{&StepError{Check: "gallery", Phase: PhaseWait, Target: ".gallery-container", Err: cause}, `gallery: wait for ".gallery-container": boom`},
		{&StepError{Check: "import", Phase: PhaseScreenshot, Err: cause}, "import: capture screenshot: boom"},
	}
	for _, c := range cases {
		if got := c.err.Error(); got != c.want {
			t.Errorf("got %q, want %q", got, c.want)
		}
		if !errors.Is(c.err, cause) {
			t.Errorf("Expected %q to unwrap to cause", c.err.Error())
		}
	}
}

func TestWaitForServer_CancelledKeepsCause(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	p := Probe{URL: url, Timeout: time.Minute, Retry: fastRetry()}
	err := p.Wait(ctx)
	if !errors.Is(err, ErrStartup) {
		t.Fatalf("Expected ErrStartup, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in the chain, got %v", err)
	}
}
