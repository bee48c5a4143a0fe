package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/starxnet/mining-credits-cli/internal/domain"
)

func newMineCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Open and close mining sessions",
	}

	cmd.AddCommand(
		newMineStartCmd(app),
		newMineStopCmd(app),
	)

	return cmd
}

func newMineStartCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "start <account-id>",
		Short: "Open a mining session for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.miningService.StartMining(cmd.Context(), domain.AccountID(args[0]))
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Mining started for %s at %s\n",
				args[0], session.StartTime.UTC().Format(time.RFC3339))
			return nil
		},
	}
}

func newMineStopCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <account-id>",
		Short: "Close an account's mining session, crediting earned minutes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accrual, err := app.miningService.StopMining(cmd.Context(), domain.AccountID(args[0]))
			if err != nil {
				return err
			}

			if accrual.Minutes > 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Mining stopped for %s: credited %.5f coins for %d minute(s)\n",
					args[0], accrual.Coins, accrual.Minutes)
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Mining stopped for %s: nothing to credit\n", args[0])
			}
			return nil
		},
	}
}
