// Package cli provides the command-line interface for frontcheck.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/octans/frontcheck/internal/app"
	"github.com/octans/frontcheck/internal/config"
	"github.com/octans/frontcheck/internal/report"
	"github.com/octans/frontcheck/internal/ui"
	"github.com/octans/frontcheck/internal/verify"
	"github.com/octans/frontcheck/pkg/models"
)

// errFailedRun signals a failed verification under --strict. The
// "Error:" line has already been printed.
var errFailedRun = errors.New("verification failed")

// appOptions are applied to every application the root command builds.
var appOptions []app.Option

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frontcheck",
		Short: "Capture screenshots of the gallery and import pages",
		Long: `Frontcheck launches a headless browser, waits for the application to start,
then visits the gallery and import pages. It waits for each page's marker
element and saves a screenshot for manual review.

A failed step prints a single "Error:" line. The exit status stays 0 unless
--strict is given.`,
		Example: `  # Check the default local server
  frontcheck

  # Poll for readiness instead of sleeping, and fail the process on errors
  frontcheck --ready-probe --strict

  # Save screenshots elsewhere and keep a JSON report
  frontcheck --output-dir ./shots --report ./shots/report.json`,
		Version:       "0.1.0",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runVerify,
	}
	config.RegisterFlags(cmd)
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.AddCommand(newChecksCmd())
	return cmd
}

// Execute runs the root command with ctx and exits non-zero on failure.
// This is called by main.main().
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailedRun) {
			fmt.Fprintln(os.Stderr, ui.Error("Error: "+err.Error()))
		}
		os.Exit(1)
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	opts := append([]app.Option(nil), appOptions...)
	if cfg.Progress {
		bar := newProgressBar(len(verify.DefaultChecks()))
		defer bar.Finish()
		opts = append(opts, app.WithStepHook(func(r models.StepResult) {
			bar.Describe(r.Check + " " + string(r.Status))
			bar.Add(1)
		}))
	}

	a, err := app.New(cmd.Context(), cfg, opts...)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(cmd.Context()))

	_, runErr := a.Run(cmd.Context())
	report.Outcome(cmd.OutOrStdout(), runErr)

	if runErr != nil && cfg.Strict {
		return errFailedRun
	}
	return nil
}

func newProgressBar(steps int) *progressbar.ProgressBar {
	return progressbar.NewOptions(steps,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("starting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
}
