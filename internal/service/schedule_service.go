package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SrebrinSharbanov/ControlCards/internal/entity"
	"github.com/SrebrinSharbanov/ControlCards/internal/schedule"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ScheduleAPI is the MES schedule surface the service needs. The real
// implementation is schedule.Client; tests substitute their own.
type ScheduleAPI interface {
	FetchSchedules(ctx context.Context, workCenter, date, shift string) ([]schedule.WorkSchedule, error)
	FetchSchedule(ctx context.Context, id string) (*schedule.WorkSchedule, error)
	CreateSchedule(ctx context.Context, ws schedule.WorkSchedule) (*schedule.WorkSchedule, error)
	UpdateSchedule(ctx context.Context, id string, ws schedule.WorkSchedule) (*schedule.WorkSchedule, error)
	DeleteSchedule(ctx context.Context, id string) error
}

// ScheduleService answers "what was this work center producing on that day",
// fronting the MES API with a short-lived redis cache. Schedules change a
// few times a day at most, so stale reads within the TTL are acceptable;
// mutations drop the affected cache entries.
type ScheduleService struct {
	api      ScheduleAPI
	rdb      *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewScheduleService wires the schedule lookup. rdb may be nil, in which
// case every lookup goes straight to the MES API.
func NewScheduleService(api ScheduleAPI, rdb *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *ScheduleService {
	return &ScheduleService{api: api, rdb: rdb, cacheTTL: cacheTTL, logger: logger}
}

// GetSchedules returns the planned runs for a work center number on a date
// (YYYY-MM-DD), optionally narrowed to one shift. Cache problems are logged
// and ignored; only the MES API itself can fail the lookup.
func (s *ScheduleService) GetSchedules(ctx context.Context, workCenter, date, shift string) ([]schedule.WorkSchedule, error) {
	if workCenter == "" || date == "" {
		return nil, fmt.Errorf("%w: work center and date are required", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if shift != "" && !entity.IsValidShift(shift) {
		return nil, fmt.Errorf("%w: unknown shift %q", ErrValidation, shift)
	}

	key := cacheKey(workCenter, date, shift)
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var schedules []schedule.WorkSchedule
			if err := json.Unmarshal(cached, &schedules); err == nil {
				return schedules, nil
			}
			s.logger.Warn("corrupt schedule cache entry", zap.String("key", key))
		} else if err != redis.Nil {
			s.logger.Warn("schedule cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	schedules, err := s.api.FetchSchedules(ctx, workCenter, date, shift)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(schedules); err == nil {
			if err := s.rdb.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("schedule cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return schedules, nil
}

// GetSchedule returns one planned run by its MES id, uncached.
func (s *ScheduleService) GetSchedule(ctx context.Context, id string) (*schedule.WorkSchedule, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: schedule id is required", ErrValidation)
	}
	ws, err := s.api.FetchSchedule(ctx, id)
	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrScheduleNotFound, id)
		}
		return nil, err
	}
	return ws, nil
}

// CreateSchedule registers a planned run in the MES.
func (s *ScheduleService) CreateSchedule(ctx context.Context, ws schedule.WorkSchedule) (*schedule.WorkSchedule, error) {
	if err := validateSchedule(ws); err != nil {
		return nil, err
	}
	created, err := s.api.CreateSchedule(ctx, ws)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, created.WorkCenter, created.Date)
	return created, nil
}

// UpdateSchedule replaces a planned run. The cache for both the old and the
// new work-center/date pair is dropped, in case the run was moved.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, id string, ws schedule.WorkSchedule) (*schedule.WorkSchedule, error) {
	if err := validateSchedule(ws); err != nil {
		return nil, err
	}
	current, err := s.GetSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.api.UpdateSchedule(ctx, id, ws)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, current.WorkCenter, current.Date)
	s.invalidate(ctx, updated.WorkCenter, updated.Date)
	return updated, nil
}

// DeleteSchedule removes a planned run from the MES.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, id string) error {
	current, err := s.GetSchedule(ctx, id)
	if err != nil {
		return err
	}
	if err := s.api.DeleteSchedule(ctx, id); err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrScheduleNotFound, id)
		}
		return err
	}
	s.invalidate(ctx, current.WorkCenter, current.Date)
	return nil
}

func validateSchedule(ws schedule.WorkSchedule) error {
	if ws.WorkCenter == "" || ws.Date == "" {
		return fmt.Errorf("%w: work center and date are required", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", ws.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if !entity.IsValidShift(ws.Shift) {
		return fmt.Errorf("%w: unknown shift %q", ErrValidation, ws.Shift)
	}
	return nil
}

func cacheKey(workCenter, date, shift string) string {
	return "schedules:" + workCenter + ":" + date + ":" + shift
}

// invalidate drops every cached list for the work-center/date pair: the
// unfiltered lookup plus one entry per shift.
func (s *ScheduleService) invalidate(ctx context.Context, workCenter, date string) {
	if s.rdb == nil {
		return
	}
	keys := []string{cacheKey(workCenter, date, "")}
	for shift := range entity.ShiftDisplayNames {
		keys = append(keys, cacheKey(workCenter, date, shift))
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("schedule cache invalidation failed",
			zap.String("work_center", workCenter), zap.String("date", date), zap.Error(err))
	}
}
