package repository

import (
	"context"
	"errors"

	"github.com/SrebrinSharbanov/ControlCards/internal/entity"
	"gorm.io/gorm"
)

// WorkshopRepository stores workshops.
type WorkshopRepository struct {
	db *gorm.DB
}

func NewWorkshopRepository(db *gorm.DB) *WorkshopRepository {
	return &WorkshopRepository{db: db}
}

func (r *WorkshopRepository) Create(ctx context.Context, workshop *entity.Workshop) error {
	return r.db.WithContext(ctx).Create(workshop).Error
}

func (r *WorkshopRepository) FindByID(ctx context.Context, id string) (*entity.Workshop, error) {
	var workshop entity.Workshop
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&workshop).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &workshop, nil
}

// FindByIDs returns the workshops for the given ids keyed by id, for batch
// name resolution in view projections.
func (r *WorkshopRepository) FindByIDs(ctx context.Context, ids []string) (map[string]entity.Workshop, error) {
	result := make(map[string]entity.Workshop, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var workshops []entity.Workshop
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&workshops).Error; err != nil {
		return nil, err
	}
	for _, w := range workshops {
		result[w.ID] = w
	}
	return result, nil
}

func (r *WorkshopRepository) FindAll(ctx context.Context) ([]entity.Workshop, error) {
	var workshops []entity.Workshop
	err := r.db.WithContext(ctx).Order("name").Find(&workshops).Error
	return workshops, err
}

func (r *WorkshopRepository) FindAllActive(ctx context.Context) ([]entity.Workshop, error) {
	var workshops []entity.Workshop
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("name").Find(&workshops).Error
	return workshops, err
}

func (r *WorkshopRepository) Update(ctx context.Context, workshop *entity.Workshop) error {
	return r.db.WithContext(ctx).Save(workshop).Error
}
