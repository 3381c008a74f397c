// Package repotest opens throwaway SQLite databases with the chat schema for
// tests that need a real store.
package repotest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"handyhub/internal/domain/user"
	"handyhub/internal/repository"
)

var seq atomic.Int64

// Open returns an in-memory database private to the test, migrated and with
// foreign keys enforced.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, seq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repository.InitSchema(db))
	return db
}

// Users inserts one user per name and returns them in the same order.
func Users(t *testing.T, db *gorm.DB, names ...string) []user.User {
	t.Helper()

	out := make([]user.User, 0, len(names))
	for _, name := range names {
		u := user.User{
			Name:  name,
			Email: strings.ToLower(name) + "@handyhub.test",
			Role:  user.RoleCustomer,
		}
		require.NoError(t, db.Create(&u).Error)
		out = append(out, u)
	}
	return out
}
