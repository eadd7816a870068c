package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SrebrinSharbanov/ControlCards/internal/entity"
	"github.com/SrebrinSharbanov/ControlCards/internal/repository"
	"github.com/google/uuid"
)

const (
	workCenterNumberMaxLen = 5
	machineTypeMaxLen      = 100
)

// WorkCenterRequest creates or updates a work center.
type WorkCenterRequest struct {
	Number      string `json:"number" binding:"required"`
	Description string `json:"description"`
	MachineType string `json:"machine_type"`
	WorkshopID  string `json:"workshop_id" binding:"required"`
	Active      *bool  `json:"active"`
}

// WorkCenterService manages work centers. Admin-only surface.
type WorkCenterService struct {
	workCenterRepo *repository.WorkCenterRepository
	workshopRepo   *repository.WorkshopRepository
	logs           *LogEntryService
}

func NewWorkCenterService(
	workCenterRepo *repository.WorkCenterRepository,
	workshopRepo *repository.WorkshopRepository,
	logs *LogEntryService,
) *WorkCenterService {
	return &WorkCenterService{
		workCenterRepo: workCenterRepo,
		workshopRepo:   workshopRepo,
		logs:           logs,
	}
}

func (s *WorkCenterService) validate(ctx context.Context, req *WorkCenterRequest) error {
	req.Number = strings.TrimSpace(req.Number)
	if req.Number == "" {
		return fmt.Errorf("%w: work center number is required", ErrValidation)
	}
	if len([]rune(req.Number)) > workCenterNumberMaxLen {
		return fmt.Errorf("%w: work center number exceeds %d characters", ErrValidation, workCenterNumberMaxLen)
	}
	if len([]rune(req.MachineType)) > machineTypeMaxLen {
		return fmt.Errorf("%w: machine type exceeds %d characters", ErrValidation, machineTypeMaxLen)
	}
	if _, err := s.workshopRepo.FindByID(ctx, req.WorkshopID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrWorkshopNotFound, req.WorkshopID)
		}
		return err
	}
	return nil
}

func (s *WorkCenterService) CreateWorkCenter(ctx context.Context, actor *entity.User, req WorkCenterRequest) (*entity.WorkCenter, error) {
	if err := s.validate(ctx, &req); err != nil {
		return nil, err
	}
	wc := &entity.WorkCenter{
		ID:          uuid.New().String()[:32],
		Number:      req.Number,
		Description: strings.TrimSpace(req.Description),
		MachineType: strings.TrimSpace(req.MachineType),
		WorkshopID:  req.WorkshopID,
		Active:      true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if req.Active != nil {
		wc.Active = *req.Active
	}
	if err := s.workCenterRepo.Create(ctx, wc); err != nil {
		return nil, err
	}
	s.logs.Record(ctx, actor, "Създаден нов работен център: "+wc.Number)
	return wc, nil
}

func (s *WorkCenterService) GetWorkCenter(ctx context.Context, id string) (*entity.WorkCenter, error) {
	wc, err := s.workCenterRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrWorkCenterNotFound, id)
		}
		return nil, err
	}
	return wc, nil
}

// ListWorkCenters returns work centers, optionally limited to one workshop.
func (s *WorkCenterService) ListWorkCenters(ctx context.Context, workshopID string) ([]entity.WorkCenter, error) {
	if workshopID != "" {
		return s.workCenterRepo.FindByWorkshopID(ctx, workshopID)
	}
	return s.workCenterRepo.FindAll(ctx)
}

func (s *WorkCenterService) UpdateWorkCenter(ctx context.Context, actor *entity.User, id string, req WorkCenterRequest) (*entity.WorkCenter, error) {
	if err := s.validate(ctx, &req); err != nil {
		return nil, err
	}
	wc, err := s.GetWorkCenter(ctx, id)
	if err != nil {
		return nil, err
	}
	wc.Number = req.Number
	wc.Description = strings.TrimSpace(req.Description)
	wc.MachineType = strings.TrimSpace(req.MachineType)
	wc.WorkshopID = req.WorkshopID
	if req.Active != nil {
		wc.Active = *req.Active
	}
	wc.UpdatedAt = time.Now()
	if err := s.workCenterRepo.Update(ctx, wc); err != nil {
		return nil, err
	}
	s.logs.Record(ctx, actor, "Обновен работен център: "+wc.Number)
	return wc, nil
}
