package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/storydrill/internal/config"
	"github.com/fakeyudi/storydrill/internal/logging"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// logger is the file logger opened for the running command.
var logger = logging.Discard()

var logCloser io.Closer

var imagesDirFlag string

var rootCmd = &cobra.Command{
	Use:          "storydrill",
	Short:        "Practise timed picture-story tests (PPDT and TAT)",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = closeLog()
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
		if imagesDirFlag != "" {
			cfg.ImagesDir = imagesDirFlag
		}

		stateDir, err := config.StateDir()
		if err != nil {
			return fmt.Errorf("resolving state directory: %w", err)
		}
		l, closer, err := logging.Open(stateDir, cfg.LogLevel)
		if err != nil {
			return err
		}
		logger, logCloser = l, closer
		logger.Debug("command started", "command", cmd.Name(), "store", cfg.Store, "images", cfg.ImagesDir)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func closeLog() error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	logger = logging.Discard()
	return err
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	err := rootCmd.Execute()
	_ = closeLog()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&imagesDirFlag, "images-dir", "", "directory to discover images in (overrides images_dir)")
}
