package service

import (
	"time"

	"github.com/SrebrinSharbanov/ControlCards/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services bundles all services for wiring.
type Services struct {
	Auth       *AuthService
	Card       *CardService
	Workshop   *WorkshopService
	WorkCenter *WorkCenterService
	User       *UserService
	LogEntry   *LogEntryService
	Schedule   *ScheduleService
}

// NewServices wires the service layer on top of the repositories.
func NewServices(
	repos *repository.Repositories,
	logger *zap.Logger,
	jwtSecret string,
	jwtExpiry time.Duration,
	scheduleAPI ScheduleAPI,
	rdb *redis.Client,
	scheduleCacheTTL time.Duration,
) *Services {
	logs := NewLogEntryService(repos.LogEntry, logger)
	return &Services{
		Auth: NewAuthService(repos.User, logs, logger, jwtSecret, jwtExpiry),
		Card: NewCardService(
			repos.Card, repos.ArchivedCard,
			repos.Workshop, repos.WorkCenter, repos.User,
			logs, logger,
		),
		Workshop:   NewWorkshopService(repos.Workshop, logs),
		WorkCenter: NewWorkCenterService(repos.WorkCenter, repos.Workshop, logs),
		User:       NewUserService(repos.User, repos.Workshop, logs),
		LogEntry:   logs,
		Schedule:   NewScheduleService(scheduleAPI, rdb, scheduleCacheTTL, logger),
	}
}
