package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starxnet/mining-credits-cli/internal/domain"
)

func newAccountCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}

	cmd.AddCommand(
		newAccountAddCmd(app),
		newAccountListCmd(app),
	)

	return cmd
}

func newAccountAddCmd(app *app) *cobra.Command {
	var (
		name         string
		referralCode string
		referredBy   string
		boostRate    float64
	)

	cmd := &cobra.Command{
		Use:   "add <account-id>",
		Short: "Register a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account := domain.Account{
				ID:           domain.AccountID(args[0]),
				Name:         name,
				ReferralCode: referralCode,
				ReferredBy:   referredBy,
				BoostRate:    boostRate,
			}

			if err := app.miningService.AddAccount(cmd.Context(), account); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added account %s\n", account.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&referralCode, "referral-code", "", "Referral code this account exposes to others")
	cmd.Flags().StringVar(&referredBy, "referred-by", "", "Referral code of this account's referrer")
	cmd.Flags().Float64Var(&boostRate, "boost-rate", 0, "Manually assigned extra accrual rate (coins/hour)")

	return cmd
}

func newAccountListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			statuses, err := app.miningService.GetStatusAll(cmd.Context())
			if err != nil {
				return err
			}

			for _, status := range statuses {
				state := "idle"
				if status.Open {
					state = "mining"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.5f\t%s\n",
					status.Account.ID, status.Account.Name, status.Account.Balance, state)
			}

			return nil
		},
	}
}
