package repository

import (
	"context"
	"errors"

	"github.com/SrebrinSharbanov/ControlCards/internal/entity"
	"gorm.io/gorm"
)

// ArchivedCardRepository stores immutable card snapshots. Rows are inserted
// once at archival and never updated or deleted.
type ArchivedCardRepository struct {
	db *gorm.DB
}

func NewArchivedCardRepository(db *gorm.DB) *ArchivedCardRepository {
	return &ArchivedCardRepository{db: db}
}

// Create inserts the archive snapshot.
func (r *ArchivedCardRepository) Create(ctx context.Context, card *entity.ArchivedCard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

// FindByID looks an archived card up by id.
func (r *ArchivedCardRepository) FindByID(ctx context.Context, id string) (*entity.ArchivedCard, error) {
	var card entity.ArchivedCard
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &card, nil
}

// FindAll returns every archived card, newest first.
func (r *ArchivedCardRepository) FindAll(ctx context.Context) ([]entity.ArchivedCard, error) {
	var cards []entity.ArchivedCard
	err := r.db.WithContext(ctx).
		Order("archived_at DESC").
		Find(&cards).Error
	return cards, err
}

// FindByWorkshopIDs returns archived cards belonging to any of the given
// workshops, using the workshop reference captured at archival time.
func (r *ArchivedCardRepository) FindByWorkshopIDs(ctx context.Context, workshopIDs []string) ([]entity.ArchivedCard, error) {
	if len(workshopIDs) == 0 {
		return nil, nil
	}
	var cards []entity.ArchivedCard
	err := r.db.WithContext(ctx).
		Where("workshop_id IN ?", workshopIDs).
		Order("archived_at DESC").
		Find(&cards).Error
	return cards, err
}

// Count counts archived cards, optionally scoped to workshops. A nil
// workshopIDs slice means unscoped; an empty one always counts zero.
func (r *ArchivedCardRepository) Count(ctx context.Context, workshopIDs []string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.ArchivedCard{})
	if workshopIDs != nil {
		if len(workshopIDs) == 0 {
			return 0, nil
		}
		q = q.Where("workshop_id IN ?", workshopIDs)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}
