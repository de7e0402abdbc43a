//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"secretsanta/internal/activity/ports"
	"secretsanta/internal/activity/store/storetest"
	"secretsanta/pkg/testutil/containers"
)

func TestPostgresStoreSuite(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()

	store, err := Open(ctx, pg.DSN, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	// running migrations twice is a no-op
	again, err := Open(ctx, pg.DSN, 0)
	require.NoError(t, err)
	require.NoError(t, again.Close())

	suite.Run(t, &storetest.Suite{NewStore: func() ports.Store {
		_, err := store.db.ExecContext(ctx, `TRUNCATE participants, activities`)
		require.NoError(t, err)
		return store
	}})
}
