package repository

import (
	"context"
	"errors"

	"github.com/SrebrinSharbanov/ControlCards/internal/entity"
	"gorm.io/gorm"
)

// WorkCenterRepository stores work centers.
type WorkCenterRepository struct {
	db *gorm.DB
}

func NewWorkCenterRepository(db *gorm.DB) *WorkCenterRepository {
	return &WorkCenterRepository{db: db}
}

func (r *WorkCenterRepository) Create(ctx context.Context, wc *entity.WorkCenter) error {
	return r.db.WithContext(ctx).Create(wc).Error
}

func (r *WorkCenterRepository) FindByID(ctx context.Context, id string) (*entity.WorkCenter, error) {
	var wc entity.WorkCenter
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&wc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wc, nil
}

// FindByIDs returns work centers keyed by id for batch resolution.
func (r *WorkCenterRepository) FindByIDs(ctx context.Context, ids []string) (map[string]entity.WorkCenter, error) {
	result := make(map[string]entity.WorkCenter, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var centers []entity.WorkCenter
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&centers).Error; err != nil {
		return nil, err
	}
	for _, wc := range centers {
		result[wc.ID] = wc
	}
	return result, nil
}

func (r *WorkCenterRepository) FindByWorkshopID(ctx context.Context, workshopID string) ([]entity.WorkCenter, error) {
	var centers []entity.WorkCenter
	err := r.db.WithContext(ctx).
		Where("workshop_id = ?", workshopID).
		Order("number").
		Find(&centers).Error
	return centers, err
}

func (r *WorkCenterRepository) FindAll(ctx context.Context) ([]entity.WorkCenter, error) {
	var centers []entity.WorkCenter
	err := r.db.WithContext(ctx).Order("number").Find(&centers).Error
	return centers, err
}

func (r *WorkCenterRepository) Update(ctx context.Context, wc *entity.WorkCenter) error {
	return r.db.WithContext(ctx).Save(wc).Error
}
