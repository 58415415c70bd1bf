package pg_test

import (
	"context"
	"os"
	"testing"
	"time"

	"marketsync-service/internal/infrastructure/pg"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	marketDBName = "marketsync_test"
	marketDBUser = "marketsync"
	marketDBPass = "marketsync"

	// schemaVersion is the latest migration under migrations/.
	schemaVersion = uint(1)
)

// startMarketDB boots a throwaway Postgres with the market schema applied.
// The container and pool are released when t finishes.
func startMarketDB(t *testing.T) *pg.DB {
	t.Helper()
	if os.Getenv("TESTCONTAINERS") == "" {
		t.Skip("set TESTCONTAINERS=1 to run the market store against Postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pgc, err := postgres.RunContainer(ctx,
		postgres.WithDatabase(marketDBName),
		postgres.WithUsername(marketDBUser),
		postgres.WithPassword(marketDBPass),
	)
	require.NoError(t, err, "start market postgres")
	t.Cleanup(func() { _ = pgc.Terminate(context.Background()) })

	dsn, err := pgc.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := pg.Connect(ctx, dsn)
	require.NoError(t, err, "connect market store")
	t.Cleanup(db.Close)

	applied, err := pg.RunMigrations(ctx, db)
	require.NoError(t, err, "migrate market store")
	require.Equal(t, schemaVersion, applied)
	return db
}
