package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mockprep/internal/report"
	"github.com/abhisek/mockprep/internal/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect and export saved interview sessions",
}

// withSessions opens storage for the configured identity and runs fn with
// the user's local id.
func withSessions(cmd *cobra.Command, fn func(ctx context.Context, svc *services, userID string) error) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)

	svc, err := openServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	userID, err := svc.persist.SyncUser(ctx, cfg.Identity)
	if err != nil {
		return err
	}
	return fn(ctx, svc, userID)
}

// ownSession loads a session and hides those of other users.
func ownSession(ctx context.Context, repo store.Repository, userID, id string) (*store.Session, error) {
	s, err := repo.GetSession(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && s.UserID != userID) {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return s, err
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your saved sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessions(cmd, func(ctx context.Context, svc *services, userID string) error {
			list, err := svc.repo.ListSessions(ctx, userID)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			if len(list) == 0 {
				fmt.Println("No saved sessions.")
				return nil
			}

			fmt.Printf("%-36s  %-16s  %-32s  %9s  %6s\n", "ID", "Date", "Role", "Questions", "Score")
			fmt.Println(strings.Repeat("─", 107))
			for _, s := range list {
				fmt.Printf("%-36s  %-16s  %-32s  %9d  %6.1f\n",
					s.ID,
					s.CreatedAt.Local().Format("2006-01-02 15:04"),
					truncate(s.JobRole, 32),
					s.QuestionCount,
					s.TotalScore,
				)
			}
			return nil
		})
	},
}

var sessionsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Print a saved session as Markdown or HTML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asHTML, _ := cmd.Flags().GetBool("html")
		return withSessions(cmd, func(ctx context.Context, svc *services, userID string) error {
			s, err := ownSession(ctx, svc.repo, userID, args[0])
			if err != nil {
				return err
			}
			out := report.Markdown(s)
			if asHTML {
				out = report.HTML(s)
			}
			_, err = os.Stdout.Write(out)
			return err
		})
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all saved sessions to an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		return withSessions(cmd, func(ctx context.Context, svc *services, userID string) error {
			list, err := svc.repo.ListSessions(ctx, userID)
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			details := make([]*store.Session, 0, len(list))
			for _, sum := range list {
				s, err := svc.repo.GetSession(ctx, sum.ID)
				if err != nil {
					return fmt.Errorf("get session %s: %w", sum.ID, err)
				}
				details = append(details, s)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := report.WriteWorkbook(f, list, details); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Printf("Exported %d sessions to %s\n", len(list), out)
			return nil
		})
	},
}

func init() {
	sessionsViewCmd.Flags().Bool("html", false, "Render HTML instead of Markdown")
	sessionsExportCmd.Flags().StringP("out", "o", "mockprep-sessions.xlsx", "Output file")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsViewCmd)
	sessionsCmd.AddCommand(sessionsExportCmd)
}
