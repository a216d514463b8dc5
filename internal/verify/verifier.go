// Package verify runs the navigate, wait and capture sequence against the
// application under test and reports what happened.
package verify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/octans/frontcheck/internal/browser"
	"github.com/octans/frontcheck/internal/runctx"
	"github.com/octans/frontcheck/internal/snapshot"
	urlutil "github.com/octans/frontcheck/internal/utils/url"
	"github.com/octans/frontcheck/pkg/models"
)

// Driver is the part of a browser session the verifier needs.
type Driver interface {
	Navigate(ctx context.Context, url string) (int, error)
	WaitFor(ctx context.Context, cond browser.Condition, timeout time.Duration) error
	Screenshot(ctx context.Context) ([]byte, error)
	HTML(ctx context.Context) (string, error)
	Close() error
}

var _ Driver = (*browser.Session)(nil)

// Launcher opens a fresh Driver for one run.
type Launcher func(ctx context.Context) (Driver, error)

// Options configures a Verifier.
type Options struct {
	BaseURL     string
	OutputDir   string
	Checks      []models.Check
	WaitTimeout time.Duration
	Startup     StartupWaiter
	Launch      Launcher
	// Snapshot saves a Markdown rendition next to each screenshot.
	Snapshot bool
	// OnStep is called once per check, including skipped ones.
	OnStep func(models.StepResult)
}

type plannedCheck struct {
	models.Check
	url  string
	cond browser.Condition
	out  string
}

// Verifier executes the checks in order against one browser session.
type Verifier struct {
	baseURL     string
	plan        []plannedCheck
	waitTimeout time.Duration
	startup     StartupWaiter
	launch      Launcher
	snapshot    bool
	onStep      func(models.StepResult)
	now         func() time.Time
}

// New validates opts and resolves every check's URL, condition and output path.
func New(opts Options) (*Verifier, error) {
	if opts.Launch == nil {
		return nil, errors.New("launcher is required")
	}
	if err := urlutil.ValidateURL(opts.BaseURL); err != nil {
		return nil, err
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 30 * time.Second
	}
	if opts.Startup == nil {
		opts.Startup = Delay{}
	}
	checks := opts.Checks
	if checks == nil {
		checks = DefaultChecks()
	}

	plan := make([]plannedCheck, 0, len(checks))
	for _, c := range checks {
		cond, err := browser.ParseCondition(c.Condition)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", c.Name, err)
		}
		if c.Screenshot == "" {
			return nil, fmt.Errorf("check %s: screenshot file is required", c.Name)
		}
		out := c.Screenshot
		if !filepath.IsAbs(out) {
			out = filepath.Join(opts.OutputDir, out)
		}
		plan = append(plan, plannedCheck{
			Check: c,
			url:   urlutil.JoinPath(opts.BaseURL, c.Path),
			cond:  cond,
			out:   out,
		})
	}

	return &Verifier{
		baseURL:     opts.BaseURL,
		plan:        plan,
		waitTimeout: opts.WaitTimeout,
		startup:     opts.Startup,
		launch:      opts.Launch,
		snapshot:    opts.Snapshot,
		onStep:      opts.OnStep,
		now:         time.Now,
	}, nil
}

// Checks returns the resolved checks in run order.
func (v *Verifier) Checks() []models.StepResult {
	out := make([]models.StepResult, len(v.plan))
	for i, p := range v.plan {
		out[i] = models.StepResult{
			Check:      p.Name,
			URL:        p.url,
			Condition:  p.cond.String(),
			Screenshot: p.out,
		}
	}
	return out
}

// Run performs one verification. The report is always returned; err is a
// *StepError when any part of the run failed, including a panic in a step.
// The browser is released on every path.
func (v *Verifier) Run(ctx context.Context) (report *models.Report, err error) {
	logger := zerolog.Ctx(ctx)
	report = &models.Report{
		RunID:     runctx.FromContext(ctx).RunID,
		BaseURL:   v.baseURL,
		StartedAt: v.now(),
	}
	defer func() {
		report.FinishedAt = v.now()
		if err != nil {
			report.Error = err.Error()
			logger.Debug().Err(err).Msg("Verification failed")
		} else {
			logger.Debug().Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).Msg("Verification passed")
		}
	}()

	var drv Driver
	err = safely(func() (lerr error) {
		drv, lerr = v.launch(ctx)
		return lerr
	})
	if err != nil {
		v.skipFrom(report, 0)
		return report, &StepError{Phase: PhaseLaunch, Err: err}
	}
	defer func() {
		if cerr := drv.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("Error closing browser session")
		}
	}()

	if err := safely(func() error { return v.startup.Wait(ctx) }); err != nil {
		v.skipFrom(report, 0)
		return report, &StepError{Phase: PhaseStartup, Target: v.baseURL, Err: err}
	}

	for i, p := range v.plan {
		res, err := v.runCheck(ctx, drv, p)
		report.Steps = append(report.Steps, res)
		v.notify(res)
		if err != nil {
			v.skipFrom(report, i+1)
			return report, err
		}
	}
	return report, nil
}

func (v *Verifier) runCheck(ctx context.Context, drv Driver, p plannedCheck) (res models.StepResult, err error) {
	logger := zerolog.Ctx(ctx).With().Str("check", p.Name).Logger()
	res = models.StepResult{
		Check:     p.Name,
		URL:       p.url,
		Condition: p.cond.String(),
		StartedAt: v.now(),
	}
	fail := func(phase Phase, target string, err error) (models.StepResult, error) {
		res.Status = models.StatusFailed
		res.Phase = string(phase)
		serr := &StepError{Check: p.Name, Phase: phase, Target: target, Err: err}
		res.Error = serr.Error()
		v.finish(&res)
		return res, serr
	}

	// phase and target track the step in progress so a panic is reported
	// against it.
	phase, target := PhaseNavigate, p.url
	defer func() {
		if r := recover(); r != nil {
			res, err = fail(phase, target, panicError(r))
		}
	}()

	status, err := drv.Navigate(ctx, p.url)
	if err != nil {
		return fail(phase, target, err)
	}
	res.StatusCode = status
	logger.Debug().Str("url", p.url).Int("status", status).Msg("Page loaded")

	phase, target = PhaseWait, p.cond.String()
	if err := drv.WaitFor(ctx, p.cond, v.waitTimeout); err != nil {
		return fail(phase, target, err)
	}

	phase, target = PhaseScreenshot, ""
	png, err := drv.Screenshot(ctx)
	if err != nil {
		return fail(phase, target, err)
	}
	phase, target = PhaseWrite, p.out
	if err := os.WriteFile(p.out, png, 0644); err != nil {
		return fail(phase, target, err)
	}
	res.Screenshot = p.out

	// Inspection and snapshots describe the page; they never fail the check.
	if html, err := drv.HTML(ctx); err != nil {
		logger.Warn().Err(err).Msg("Could not read page HTML")
	} else {
		summary := snapshot.Inspect(html, p.cond)
		res.Title = summary.Title
		res.Matches = summary.Matches
		if v.snapshot {
			path := snapshot.PathFor(p.out)
			if err := snapshot.SaveMarkdown(html, p.url, path); err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("Could not save text snapshot")
			} else {
				res.Snapshot = path
			}
		}
	}

	res.Status = models.StatusPassed
	v.finish(&res)
	logger.Debug().
		Str("screenshot", p.out).
		Int64("duration_ms", res.DurationMs).
		Msg("Check passed")
	return res, nil
}

// ErrPanic wraps a panic recovered from a step.
var ErrPanic = errors.New("panic")

func panicError(r any) error {
	return fmt.Errorf("%w: %v", ErrPanic, r)
}

// safely runs fn and reports a panic in it as an error.
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return fn()
}

func (v *Verifier) finish(res *models.StepResult) {
	res.FinishedAt = v.now()
	res.DurationMs = res.FinishedAt.Sub(res.StartedAt).Milliseconds()
}

// skipFrom records every check from index i onward as skipped.
func (v *Verifier) skipFrom(report *models.Report, i int) {
	for _, p := range v.plan[i:] {
		res := models.StepResult{
			Check:     p.Name,
			URL:       p.url,
			Condition: p.cond.String(),
			Status:    models.StatusSkipped,
		}
		report.Steps = append(report.Steps, res)
		v.notify(res)
	}
}

func (v *Verifier) notify(res models.StepResult) {
	if v.onStep != nil {
		v.onStep(res)
	}
}
