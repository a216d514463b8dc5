package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/octans/frontcheck/internal/config"
	"github.com/octans/frontcheck/internal/ui"
	"github.com/octans/frontcheck/internal/verify"
	"github.com/octans/frontcheck/pkg/models"
)

func newChecksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checks",
		Short: "List the pages, markers and screenshot files of a run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			v, err := verify.New(verify.Options{
				BaseURL:   cfg.BaseURL,
				OutputDir: cfg.OutputDir,
				Launch: func(context.Context) (verify.Driver, error) {
					return nil, errors.New("listing only")
				},
			})
			if err != nil {
				return err
			}
			printChecks(cmd.OutOrStdout(), v.Checks())
			return nil
		},
	}
}

func printChecks(w io.Writer, checks []models.StepResult) {
	for i, c := range checks {
		fmt.Fprintf(w, "%d. %s\n", i+1, ui.Bold(c.Check))
		fmt.Fprintf(w, "   url:        %s\n", c.URL)
		fmt.Fprintf(w, "   wait for:   %s\n", ui.Info(c.Condition))
		fmt.Fprintf(w, "   screenshot: %s\n", c.Screenshot)
	}
}
