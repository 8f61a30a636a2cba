package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/mockprep/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		logger := cfg.NewLogger(os.Stderr)
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := openServices(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.withLLM(ctx); err != nil {
			return err
		}
		if svc.transcriber == nil {
			logger.Warn("transcription disabled: no API key configured")
		}

		srv := server.New(server.Deps{
			Generator:   svc.generator,
			Scorer:      svc.scorer,
			Persister:   svc.persist,
			Users:       svc.persist,
			Sessions:    svc.repo,
			Transcriber: svc.transcriber,
			Pinger:      svc.pinger,
			Session:     cfg.Session(),
			Logger:      logger,

			InterviewTTL:  cfg.Server.InterviewTTL,
			MaxInterviews: cfg.Server.MaxInterviews,
		})

		logger.Info("listening", "addr", cfg.Server.Addr, "driver", cfg.Database.Driver, "llm", cfg.LLM.Provider)
		return srv.Run(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
