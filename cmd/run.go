package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/mockprep/internal/app"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to --log-file or nowhere.
	logger := slog.New(slog.DiscardHandler)
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = cfg.NewLogger(f)
	}
	slog.SetDefault(logger)

	svc, err := openServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.withLLM(ctx); err != nil {
		return err
	}

	return app.Run(app.Options{
		Owner:        cfg.Identity,
		NewInterview: svc.newInterview,
		Sessions:     svc.repo,
		Users:        svc.persist,
	})
}
