//go:build integration

package session_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/loom/pkg/db"
	"github.com/dmitrymomot/loom/pkg/session"
)

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.Connect(ctx, db.Config{ConnectionString: url, RetryAttempts: 1})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(ctx, pool, session.PostgresMigrations(), "", nil))

	testStore(t, func(t *testing.T) session.Store {
		_, err := pool.Exec(ctx, "TRUNCATE loom_sessions")
		require.NoError(t, err)
		return session.NewPostgresStore(pool)
	})
}
