package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mcc",
		Short:         "Mining Credits CLI (mcc): scheduled accrual for mining accounts",
		Long:          "mcc credits mining sessions for elapsed time, applies referral speed boosts, closes sessions at their maximum duration, and optionally slashes inactive balances.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return app.Close()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newAccountCmd(app),
		newMineCmd(app),
		newRunCmd(app),
		newStatusCmd(app),
	)

	return rootCmd
}
