package sqlstore_test

import (
	"context"
	"testing"

	"github.com/alexa-mart-pipe/sword-be-challenge/internal/config"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/domain"
	"github.com/alexa-mart-pipe/sword-be-challenge/internal/platform/sqlstore"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a private in-memory SQLite database with the schema applied.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	db, err := sqlstore.Open(ctx, config.DatabaseConfig{
		Driver: sqlstore.DriverSQLite,
		URL:    ":memory:",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlstore.Migrate(ctx, db, sqlstore.DriverSQLite))
	return db
}

func createUser(t *testing.T, users *sqlstore.UserStore, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:        email,
		PasswordHash: "$2a$04$hash",
		FirstName:    "First",
		LastName:     "Last",
		Role:         role,
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}
