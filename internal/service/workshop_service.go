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

const workshopNameMaxLen = 100

// WorkshopRequest creates or updates a workshop.
type WorkshopRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

// WorkshopService manages workshops. Admin-only surface.
type WorkshopService struct {
	workshopRepo *repository.WorkshopRepository
	logs         *LogEntryService
}

func NewWorkshopService(workshopRepo *repository.WorkshopRepository, logs *LogEntryService) *WorkshopService {
	return &WorkshopService{workshopRepo: workshopRepo, logs: logs}
}

func (s *WorkshopService) validate(req *WorkshopRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fmt.Errorf("%w: workshop name is required", ErrValidation)
	}
	if len([]rune(req.Name)) > workshopNameMaxLen {
		return fmt.Errorf("%w: workshop name exceeds %d characters", ErrValidation, workshopNameMaxLen)
	}
	return nil
}

func (s *WorkshopService) CreateWorkshop(ctx context.Context, actor *entity.User, req WorkshopRequest) (*entity.Workshop, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}
	workshop := &entity.Workshop{
		ID:          uuid.New().String()[:32],
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Active:      true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if req.Active != nil {
		workshop.Active = *req.Active
	}
	if err := s.workshopRepo.Create(ctx, workshop); err != nil {
		return nil, err
	}
	s.logs.Record(ctx, actor, "Създаден нов цех: "+workshop.Name)
	return workshop, nil
}

func (s *WorkshopService) GetWorkshop(ctx context.Context, id string) (*entity.Workshop, error) {
	workshop, err := s.workshopRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrWorkshopNotFound, id)
		}
		return nil, err
	}
	return workshop, nil
}

// ListWorkshops returns all workshops; with activeOnly set, only the active
// ones (the set offered when raising a card).
func (s *WorkshopService) ListWorkshops(ctx context.Context, activeOnly bool) ([]entity.Workshop, error) {
	if activeOnly {
		return s.workshopRepo.FindAllActive(ctx)
	}
	return s.workshopRepo.FindAll(ctx)
}

func (s *WorkshopService) UpdateWorkshop(ctx context.Context, actor *entity.User, id string, req WorkshopRequest) (*entity.Workshop, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}
	workshop, err := s.GetWorkshop(ctx, id)
	if err != nil {
		return nil, err
	}
	workshop.Name = req.Name
	workshop.Description = strings.TrimSpace(req.Description)
	if req.Active != nil {
		workshop.Active = *req.Active
	}
	workshop.UpdatedAt = time.Now()
	if err := s.workshopRepo.Update(ctx, workshop); err != nil {
		return nil, err
	}
	s.logs.Record(ctx, actor, "Обновен цех: "+workshop.Name)
	return workshop, nil
}
