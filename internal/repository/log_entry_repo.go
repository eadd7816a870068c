package repository

import (
	"context"
	"time"

	"github.com/SrebrinSharbanov/ControlCards/internal/entity"
	"gorm.io/gorm"
)

// LogEntryRepository stores audit log entries.
type LogEntryRepository struct {
	db *gorm.DB
}

func NewLogEntryRepository(db *gorm.DB) *LogEntryRepository {
	return &LogEntryRepository{db: db}
}

func (r *LogEntryRepository) Create(ctx context.Context, logEntry *entity.LogEntry) error {
	return r.db.WithContext(ctx).Create(logEntry).Error
}

// FindRecent returns the newest entries, capped at limit.
func (r *LogEntryRepository) FindRecent(ctx context.Context, limit int) ([]entity.LogEntry, error) {
	var entries []entity.LogEntry
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// CountOlderThan counts entries created before the cutoff.
func (r *LogEntryRepository) CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.LogEntry{}).
		Where("created_at < ?", cutoff).
		Count(&count).Error
	return count, err
}

// DeleteOlderThan removes entries created before the cutoff and returns how
// many rows were deleted.
func (r *LogEntryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&entity.LogEntry{})
	return result.RowsAffected, result.Error
}
