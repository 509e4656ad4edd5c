package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hotorflop/internal/middleware"
	"hotorflop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SchemaVersion is bumped whenever a model changes shape.
const SchemaVersion = 4

var schemaHistory = map[int]string{
	1: "users_posts_votes",
	2: "relationships_close_friends",
	3: "comments_wishlist_reports",
	4: "direct_messages",
}

// MigrationLog records each schema version applied to the database.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for MigrationLog.
func (MigrationLog) TableName() string {
	return "migration_logs"
}

// Migrate brings the schema up to SchemaVersion and logs every version it applied.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	if err := db.AutoMigrate(&MigrationLog{}); err != nil {
		return fmt.Errorf("failed to ensure migration logs table: %w", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	applied, err := AppliedVersions(ctx, db)
	if err != nil {
		return err
	}
	seen := make(map[int]bool, len(applied))
	for _, v := range applied {
		if v > SchemaVersion {
			return fmt.Errorf("database schema version %d is newer than this binary (%d)", v, SchemaVersion)
		}
		seen[v] = true
	}

	for v := 1; v <= SchemaVersion; v++ {
		if seen[v] {
			continue
		}
		entry := MigrationLog{Version: v, Name: schemaHistory[v]}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to record migration %d: %w", v, err)
		}
		middleware.Logger.InfoContext(ctx, "Migration applied", slog.Int("version", v), slog.String("name", entry.Name))
	}
	return nil
}

// AppliedVersions lists recorded schema versions in ascending order.
func AppliedVersions(ctx context.Context, db *gorm.DB) ([]int, error) {
	var versions []int
	if err := db.WithContext(ctx).Model(&MigrationLog{}).Order("version ASC").Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return versions, nil
}
