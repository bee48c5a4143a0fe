package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	reportadapter "github.com/starxnet/mining-credits-cli/internal/adapters/render/report"
	"github.com/starxnet/mining-credits-cli/internal/application"
	"github.com/starxnet/mining-credits-cli/internal/domain"
)

func newStatusCmd(app *app) *cobra.Command {
	var accountID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show account balances and session state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			statuses, err := loadStatuses(cmd, app, accountID)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(statuses)
			}

			rendered, err := app.renderStatuses(statuses, reportadapter.RenderOptions{Now: app.now()})
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "Account ID (empty shows all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print statuses as JSON")

	return cmd
}

func loadStatuses(cmd *cobra.Command, app *app, accountID string) ([]application.Status, error) {
	if accountID == "" {
		return app.miningService.GetStatusAll(cmd.Context())
	}

	status, err := app.miningService.GetStatus(cmd.Context(), domain.AccountID(accountID))
	if err != nil {
		return nil, err
	}

	return []application.Status{status}, nil
}
