package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starxnet/mining-credits-cli/internal/application"
	"github.com/starxnet/mining-credits-cli/internal/domain"
)

func newRunCmd(app *app) *cobra.Command {
	var (
		slash       bool
		slashAllow  []string
		dryRun      bool
		asJSON      bool
		submitLimit int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one accrual pass over all accounts",
		Long:  "Takes one snapshot of the account population, credits open mining sessions for elapsed minutes (including referral and manual boosts), closes sessions past their maximum duration, optionally slashes inactive balances, and prints the aggregate report.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := application.RunOptions{
				SlashEnabled: slash,
				SlashAllow:   toAccountIDs(slashAllow),
				DryRun:       dryRun,
				SubmitLimit:  submitLimit,
			}

			var rep application.Report
			runPass := func() error {
				var err error
				rep, err = app.runService.Run(cmd.Context(), opts)
				return err
			}

			if asJSON {
				if err := runPass(); err != nil {
					return err
				}
			} else {
				if err := runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), "Processing mining accounts...", runPass); err != nil {
					return err
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return err
				}
			} else {
				rendered, err := app.renderReport(rep)
				if err != nil {
					return fmt.Errorf("render report: %w", err)
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), rendered); err != nil {
					return err
				}
			}

			if len(rep.Failures) > 0 {
				return fmt.Errorf("%d account write(s) failed", len(rep.Failures))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&slash, "slash", app.slashEnabled, "Slash inactive account balances")
	cmd.Flags().StringSliceVar(&slashAllow, "slash-allow", app.slashAllow, "Restrict slashing to these account IDs (empty allows all)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Evaluate without writing mutations")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().IntVar(&submitLimit, "submit-limit", 0, "Max concurrent mutation writes (0 = default)")

	return cmd
}

func toAccountIDs(raw []string) []domain.AccountID {
	ids := make([]domain.AccountID, 0, len(raw))
	for _, id := range raw {
		if id == "" {
			continue
		}
		ids = append(ids, domain.AccountID(id))
	}

	return ids
}
