package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// parseDirection maps an adjustment word to a delta. "-1" is only reachable
// after "--", since pflag reads it as a shorthand flag.
func parseDirection(s string) (int, error) {
	switch strings.ToLower(s) {
	case "up", "inc", "+1", "+":
		return 1, nil
	case "down", "dec", "-1", "-":
		return -1, nil
	}
	return 0, fmt.Errorf("invalid adjustment %q: use up or down", s)
}

var adjustCmd = &cobra.Command{
	Use:   "adjust <image-id> <up|down>",
	Short: "Correct the show count of an image by one",
	Example: `  storydrill adjust beach.png up
  storydrill adjust beach.png down`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		delta, err := parseDirection(args[1])
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.reload(); err != nil {
			return err
		}

		found := false
		for _, img := range a.lib.Images() {
			if img.ID == id {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown image %q", id)
		}
		if err := a.lib.Adjust(id, delta); err != nil {
			return err
		}
		for _, img := range a.lib.Images() {
			if img.ID == id {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: shown %d time(s).\n", id, img.ShowCount)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adjustCmd)
}
