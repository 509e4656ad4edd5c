// Package testutil provides shared fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"hotorflop/internal/audience"
	"hotorflop/internal/database"
	"hotorflop/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens a migrated in-memory sqlite database private to t.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

// NewMockDB creates a GORM *gorm.DB backed by sqlmock for unit tests.
func NewMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return gormDB, mock
}

// CreateUser inserts a user named username.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Name: username, Email: username + "@example.com"}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreatePost inserts a post by authorID for audience a.
func CreatePost(t *testing.T, db *gorm.DB, authorID uint, a audience.Audience) *models.Post {
	t.Helper()
	p := &models.Post{Title: fmt.Sprintf("post by %d", authorID), AuthorID: authorID, Audience: a}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Follow inserts userID -> friendID, optionally marked close.
func Follow(t *testing.T, db *gorm.DB, userID, friendID uint, close bool) {
	t.Helper()
	require.NoError(t, db.Create(&models.Relationship{UserID: userID, FriendID: friendID, CloseFriend: close}).Error)
}
