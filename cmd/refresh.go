package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rescan the images directory and update the usage table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.reload(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if a.lib.Len() == 0 {
			fmt.Fprintf(out, "No images found in %s.\n", cfg.ImagesDir)
			return nil
		}
		fmt.Fprintf(out, "%d image(s) in catalog.\n", a.lib.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
