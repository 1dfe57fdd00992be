//go:build integration

package store_test

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"threadline/internal/db"
	"threadline/internal/store"
)

// openGorm connects to DATABASE_URL and empties every table.
func openGorm(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	conn, err := db.Open(dsn, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, conn.Exec("TRUNCATE TABLE votes, comments, posts, communities, users RESTART IDENTITY CASCADE").Error)

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func TestGormStore_CommunityPostCount(t *testing.T) {
	checkCommunityPostCount(t, store.NewGormStore(openGorm(t)))
}
