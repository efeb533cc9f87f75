package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/storydrill/internal/catalog"
	"github.com/fakeyudi/storydrill/internal/report"
	"github.com/fakeyudi/storydrill/internal/tui"
)

var (
	statsSort  string
	statsPlain bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how often each image has been shown",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		by, err := catalog.ParseSort(statsSort)
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

		if statsPlain || !term.IsTerminal(os.Stdout.Fd()) {
			printStats(cmd.OutOrStdout(), catalog.Sort(a.lib.Images(), by))
			return nil
		}
		return tui.RunStats(tui.NewStats(a.lib, by, logger), cfg.ImagesDir)
	},
}

// printStats writes the usage table as aligned plain text.
func printStats(out io.Writer, images []catalog.ImageRecord) {
	if len(images) == 0 {
		fmt.Fprintln(out, "No images found. Add images to the images directory.")
		return
	}
	idWidth := runewidth.StringWidth("Image")
	for _, img := range images {
		idWidth = max(idWidth, runewidth.StringWidth(img.ID))
	}
	fmt.Fprintf(out, "%s  %5s  %s\n", runewidth.FillRight("Image", idWidth), "Shown", "Last shown")
	for _, img := range images {
		fmt.Fprintf(out, "%s  %5d  %s\n", runewidth.FillRight(img.ID, idWidth), img.ShowCount, report.FormatTimestamp(img.LastShownAt))
	}
	total := 0
	for _, img := range images {
		total += img.ShowCount
	}
	fmt.Fprintf(out, "\n%d image(s), %d show(s) in total.\n", len(images), total)
}

func init() {
	statsCmd.Flags().StringVar(&statsSort, "sort", "default", "sort order: default, newest, oldest, highest, lowest, name")
	statsCmd.Flags().BoolVar(&statsPlain, "plain", false, "plain text output instead of TUI")
	rootCmd.AddCommand(statsCmd)
}
