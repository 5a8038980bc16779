package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/pairtrack/pairtrack/internal/app"
	"github.com/pairtrack/pairtrack/internal/config"
	"github.com/pairtrack/pairtrack/internal/logger"
	"github.com/spf13/cobra"
)

// withApp loads config, opens the app and closes it after fn returns.
func withApp(fn func(cmd *cobra.Command, args []string, a *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
		defer logger.Flush()

		a, err := app.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}
		defer func() {
			closeErr := a.Close()
			if closeErr != nil {
				slog.Error("failed to close app", "error", closeErr)
			}
		}()

		return fn(cmd, args, a)
	}
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
