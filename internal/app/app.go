// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/octans/frontcheck/internal/browser"
	"github.com/octans/frontcheck/internal/config"
	"github.com/octans/frontcheck/internal/metrics"
	"github.com/octans/frontcheck/internal/report"
	"github.com/octans/frontcheck/internal/retry"
	"github.com/octans/frontcheck/internal/runctx"
	"github.com/octans/frontcheck/internal/verify"
	"github.com/octans/frontcheck/pkg/models"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once per CLI invocation. Use Close() to release resources.
type Application struct {
	Config     *config.Config
	Logger     *zerolog.Logger
	Metrics    *metrics.Recorder
	HTTPClient *http.Client
	Verifier   *verify.Verifier
	startTime  time.Time
}

// Option customizes New.
type Option func(*settings)

type settings struct {
	launcher  verify.Launcher
	logWriter io.Writer
	onStep    func(models.StepResult)
}

// WithLauncher replaces the chromedp launcher, mainly for tests.
func WithLauncher(l verify.Launcher) Option {
	return func(s *settings) { s.launcher = l }
}

// WithLogWriter sends logs somewhere other than stderr.
func WithLogWriter(w io.Writer) Option {
	return func(s *settings) { s.logWriter = w }
}

// WithStepHook is called for every finished check.
func WithStepHook(fn func(models.StepResult)) Option {
	return func(s *settings) { s.onStep = fn }
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Chooses the startup waiter (fixed delay or readiness probe)
//   - Builds the chromedp-backed launcher and the verifier
//   - Creates the metrics recorder
//
// No browser is started until Run is called.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	s := settings{logWriter: os.Stderr}
	for _, o := range opts {
		o(&s)
	}

	logger := newLogger(cfg, s.logWriter)
	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	httpClient := &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:      2,
			IdleConnTimeout:   30 * time.Second,
			DisableKeepAlives: true,
		},
	}

	var startup verify.StartupWaiter = verify.Delay{Duration: cfg.StartupDelay}
	if cfg.ReadyProbe {
		startup = verify.Probe{
			URL:     cfg.BaseURL,
			Client:  httpClient,
			Timeout: cfg.ReadyTimeout,
			Retry:   retry.DefaultConfig(),
		}
	}

	launcher := s.launcher
	if launcher == nil {
		launcher = chromeLauncher(cfg)
	}

	verifier, err := verify.New(verify.Options{
		BaseURL:     cfg.BaseURL,
		OutputDir:   cfg.OutputDir,
		Checks:      verify.DefaultChecks(),
		WaitTimeout: cfg.WaitTimeout,
		Startup:     startup,
		Launch:      launcher,
		Snapshot:    cfg.Snapshot,
		OnStep:      s.onStep,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build verifier: %w", err)
	}

	app := &Application{
		Config:     cfg,
		Logger:     &logger,
		Metrics:    metrics.NewRecorder(),
		HTTPClient: httpClient,
		Verifier:   verifier,
		startTime:  time.Now(),
	}

	logger.Debug().
		Str("base_url", cfg.BaseURL).
		Str("output_dir", cfg.OutputDir).
		Bool("ready_probe", cfg.ReadyProbe).
		Msg("Application initialized")
	return app, nil
}

func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	// The default level is error so a passing run prints nothing.
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.JSONLog {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	logger := zerolog.New(w).With().Timestamp().Logger()
	// Packages that log through the global logger share the same sink.
	log.Logger = logger
	return logger
}

func chromeLauncher(cfg *config.Config) verify.Launcher {
	return func(ctx context.Context) (verify.Driver, error) {
		return browser.Launch(ctx, browser.Options{
			ExecPath:          browser.FindChrome(cfg.ChromePath),
			Headless:          cfg.Headless,
			UserAgent:         cfg.UserAgent,
			Proxy:             cfg.Proxy,
			ViewportWidth:     cfg.ViewportWidth,
			ViewportHeight:    cfg.ViewportHeight,
			NavigationTimeout: cfg.NavigationTimeout,
		})
	}
}

// Run performs one verification and writes the optional report and metrics
// files. Failures writing those files are logged and do not change err.
func (a *Application) Run(ctx context.Context) (*models.Report, error) {
	ctx = runctx.WithRun(ctx, *a.Logger)
	logger := zerolog.Ctx(ctx)

	rep, err := a.Verifier.Run(ctx)

	a.Metrics.Observe(rep)
	if path := a.Config.MetricsFile; path != "" {
		if werr := a.Metrics.WriteTextfile(path); werr != nil {
			logger.Warn().Err(werr).Str("path", path).Msg("Failed to write metrics file")
		}
	}
	if path := a.Config.ReportPath; path != "" {
		if werr := report.SaveJSON(rep, path); werr != nil {
			logger.Warn().Err(werr).Str("path", path).Msg("Failed to write report")
		}
	}
	return rep, err
}

// Close releases idle connections. The browser is owned by each Run and is
// already closed when Run returns.
func (a *Application) Close(ctx context.Context) error {
	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}
	a.Logger.Debug().Dur("uptime", time.Since(a.startTime)).Msg("Application shutdown complete")
	return nil
}
