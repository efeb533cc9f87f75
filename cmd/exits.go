package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/storydrill/internal/report"
)

var exitsCmd = &cobra.Command{
	Use:   "exits",
	Short: "Show how many emergency exits are left",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Emergency exits remaining: %d of %d (rolling %d-day window)\n",
			a.guard.Remaining(), a.guard.Limit(), cfg.Exits.WindowDays)
		if at, ok := a.guard.NextAvailable(); ok {
			fmt.Fprintf(out, "Next exit returns: %s\n", report.FormatTimestamp(at))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exitsCmd)
}
