package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"hotorflop/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBDriver:                 "postgres",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)

	cfg.DBDriver = "sqlite"
	require.NoError(t, configurePool(db, cfg))
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestDialector(t *testing.T) {
	d, err := Dialector(&config.Config{DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = Dialector(&config.Config{DBDriver: "postgres"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = Dialector(&config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestConnect_SQLiteMigrates(t *testing.T) {
	db, err := Connect(&config.Config{Env: "test", DBDriver: "sqlite", DBPath: ":memory:"})
	require.NoError(t, err)

	versions, err := AppliedVersions(context.Background(), db)
	require.NoError(t, err)
	want := make([]int, 0, SchemaVersion)
	for v := 1; v <= SchemaVersion; v++ {
		want = append(want, v)
	}
	assert.Equal(t, want, versions)
	assert.Len(t, schemaHistory, SchemaVersion, "every schema version needs a name")

	for _, table := range []string{"users", "posts", "votes", "relationships", "comments", "wishlist_items", "reports", "messages"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	// Migrating twice is a no-op.
	require.NoError(t, Migrate(context.Background(), db))
	versions, err = AppliedVersions(context.Background(), db)
	require.NoError(t, err)
	assert.Len(t, versions, SchemaVersion)
}

func TestMigrate_RejectsNewerSchema(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&MigrationLog{}))
	require.NoError(t, db.Create(&MigrationLog{Version: SchemaVersion + 1, Name: "future"}).Error)

	err = Migrate(context.Background(), db)
	assert.ErrorContains(t, err, "newer than this binary")
}

func TestCustomGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	assert.Contains(t, buf.String(), "GORM query error")

	buf.Reset()
	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	assert.Contains(t, buf.String(), "GORM slow query")

	buf.Reset()
	l.LogMode(logger.Silent).Trace(context.Background(), time.Now(), sql, errors.New("boom"))
	assert.Empty(t, buf.String())
}
