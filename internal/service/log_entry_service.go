package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SrebrinSharbanov/ControlCards/internal/entity"
	"github.com/SrebrinSharbanov/ControlCards/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const logDescriptionMaxLen = 1000

// LogEntryService writes the audit trail. Recording is best effort: a failed
// write is logged and swallowed so it can never fail the action it describes.
type LogEntryService struct {
	logEntryRepo *repository.LogEntryRepository
	logger       *zap.Logger
}

func NewLogEntryService(logEntryRepo *repository.LogEntryRepository, logger *zap.Logger) *LogEntryService {
	return &LogEntryService{logEntryRepo: logEntryRepo, logger: logger}
}

// Record appends an audit entry for the given actor.
func (s *LogEntryService) Record(ctx context.Context, actor *entity.User, description string) {
	if len([]rune(description)) > logDescriptionMaxLen {
		description = string([]rune(description)[:logDescriptionMaxLen])
	}
	logEntry := &entity.LogEntry{
		ID:          uuid.New().String()[:32],
		UserID:      actor.ID,
		Username:    actor.Username,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := s.logEntryRepo.Create(ctx, logEntry); err != nil {
		s.logger.Warn("audit log write failed",
			zap.String("user_id", actor.ID),
			zap.String("description", description),
			zap.Error(err))
	}
}

// GetRecent returns the newest audit entries, capped at limit. A non-positive
// limit falls back to 100.
func (s *LogEntryService) GetRecent(ctx context.Context, limit int) ([]entity.LogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.logEntryRepo.FindRecent(ctx, limit)
}

// DeleteOldLogs removes entries older than retentionDays and returns how many
// rows were deleted.
func (s *LogEntryService) DeleteOldLogs(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("%w: retention days must be positive", ErrValidation)
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	deleted, err := s.logEntryRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("audit log retention sweep",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}

// RunRetention sweeps expired audit entries every interval until the context
// is cancelled. Intended to run in its own goroutine.
func (s *LogEntryService) RunRetention(ctx context.Context, retentionDays int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.DeleteOldLogs(ctx, retentionDays); err != nil {
				s.logger.Error("audit log retention sweep failed", zap.Error(err))
			}
		}
	}
}

// describeCard is the audit line fragment for a card: its id plus the short
// description.
func describeCard(card *entity.Card) string {
	return card.ID + " - " + strings.TrimSpace(card.ShortDescription)
}
