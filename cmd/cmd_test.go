package cmd

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mockprep/internal/config"
	"github.com/abhisek/mockprep/internal/identity"
	"github.com/abhisek/mockprep/internal/session"
	"github.com/abhisek/mockprep/internal/store"
)

func testCommand(t *testing.T) *cobra.Command {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, k := range []string{"MOCKPREP_CONFIG", "MOCKPREP_DB", "MOCKPREP_DB_DRIVER", "MOCKPREP_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	c := &cobra.Command{}
	c.Flags().String("config", "", "")
	c.Flags().String("db", "", "")
	c.Flags().String("log-level", "", "")
	return c
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	c := testCommand(t)
	dbPath := filepath.Join(t.TempDir(), "data", "test.db")
	require.NoError(t, c.Flags().Set("db", dbPath))
	require.NoError(t, c.Flags().Set("log-level", "debug"))

	cfg, err := loadConfig(c)
	require.NoError(t, err)
	assert.Equal(t, dbPath, cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)

	got, err := resolveDBPath(cfg)
	require.NoError(t, err)
	assert.Equal(t, dbPath, got)
	assert.DirExists(t, filepath.Dir(dbPath))
}

func TestLoadConfig_BadLogLevel(t *testing.T) {
	c := testCommand(t)
	require.NoError(t, c.Flags().Set("log-level", "loud"))

	_, err := loadConfig(c)
	assert.Error(t, err)
}

func testServices(t *testing.T) *services {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "mockprep.db")
	cfg.LLM.Provider = "mock"

	svc, err := openServices(context.Background(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestOpenServices_SQLite(t *testing.T) {
	svc := testServices(t)
	ctx := context.Background()

	require.NoError(t, svc.pinger.Ping(ctx))
	require.NoError(t, svc.withLLM(ctx))
	assert.NotNil(t, svc.generator)
	assert.NotNil(t, svc.scorer)
	assert.Nil(t, svc.transcriber)

	iv := svc.newInterview()
	assert.Equal(t, svc.cfg.Identity, iv.Owner())
	assert.Equal(t, session.StepRole, iv.State().Step)
}

func TestOwnSession(t *testing.T) {
	svc := testServices(t)
	ctx := context.Background()

	alice, err := svc.persist.SyncUser(ctx, identity.Identity{ExternalID: "alice"})
	require.NoError(t, err)
	bob, err := svc.persist.SyncUser(ctx, identity.Identity{ExternalID: "bob"})
	require.NoError(t, err)

	id, err := svc.repo.CreateSession(ctx, store.NewSession{UserID: alice, JobRole: "SRE", TotalScore: 7})
	require.NoError(t, err)

	s, err := ownSession(ctx, svc.repo, alice, id)
	require.NoError(t, err)
	assert.Equal(t, "SRE", s.JobRole)

	_, err = ownSession(ctx, svc.repo, bob, id)
	assert.ErrorContains(t, err, "not found")

	_, err = ownSession(ctx, svc.repo, alice, "missing")
	assert.ErrorContains(t, err, "not found")
}
