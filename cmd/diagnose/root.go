package main

import (
	"log/slog"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/diagnosis/pkg/log"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "diagnose",
		Short:        "Train and explain a breast cancer diagnosis classifier",
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

// setupLogging sends structured logs and library warnings to stderr so
// stdout carries only the report.
func setupLogging(cmd *cobra.Command, level string) error {
	lv, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	slog.SetDefault(log.NewJSONLogger(cmd.ErrOrStderr(), lv))
	log.InstallZerologWarnings(zerolog.New(cmd.ErrOrStderr()).With().Timestamp().Logger())
	return nil
}
