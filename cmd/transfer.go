package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/storydrill/internal/catalog"
	"github.com/fakeyudi/storydrill/internal/report"
)

var (
	exportFormat string
	exportSort   string
	importFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the usage table as JSON, YAML or Markdown",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if format == "" {
			format = report.FormatJSON
			if len(args) == 1 {
				format = report.FormatFromPath(args[0])
			}
		}
		renderer, err := report.RendererFor(format)
		if err != nil {
			return err
		}
		by, err := catalog.ParseSort(exportSort)
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

		data, err := renderer.Render(report.New(catalog.Sort(a.lib.Images(), by), a.clock.Now()))
		if err != nil {
			return err
		}
		if len(args) == 0 {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(args[0], data, 0o644); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
		logger.Info("usage table exported", "file", args[0], "format", format, "images", a.lib.Len())
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d image(s) to %s\n", a.lib.Len(), args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the usage table with a previously exported one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format := importFormat
		if format == "" {
			format = report.FormatFromPath(path)
		}
		parser, err := report.ParserFor(format)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", path)
			}
			return err
		}
		rep, err := parser.Parse(data)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.lib.Replace(rep.Images); err != nil && !errors.Is(err, catalog.ErrNoImages) {
			return err
		}
		logger.Info("usage table imported", "file", path, "records", len(rep.Images), "images", a.lib.Len())
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d record(s); %d image(s) in catalog.\n", len(rep.Images), a.lib.Len())
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "json, yaml or markdown (default: from file extension, else json)")
	exportCmd.Flags().StringVar(&exportSort, "sort", "default", "row order: default, newest, oldest, highest, lowest, name")
	importCmd.Flags().StringVar(&importFormat, "format", "", "json, yaml or markdown (default: from file extension)")
	rootCmd.AddCommand(exportCmd, importCmd)
}
