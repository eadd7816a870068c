package repository

import (
	"context"
	"errors"

	"github.com/SrebrinSharbanov/ControlCards/internal/entity"
	"gorm.io/gorm"
)

// CardRepository stores live cards.
type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) *CardRepository {
	return &CardRepository{db: db}
}

// Create inserts a new card.
func (r *CardRepository) Create(ctx context.Context, card *entity.Card) error {
	return r.db.WithContext(ctx).Create(card).Error
}

// FindByID looks a card up by id.
func (r *CardRepository) FindByID(ctx context.Context, id string) (*entity.Card, error) {
	var card entity.Card
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &card, nil
}

// ExistsByID reports whether a live card with this id exists.
func (r *CardRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Card{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// FindByStatus returns all cards in the given status, unscoped.
func (r *CardRepository) FindByStatus(ctx context.Context, status string) ([]entity.Card, error) {
	var cards []entity.Card
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&cards).Error
	return cards, err
}

// FindByStatusAndWorkshopIDs returns cards in the given status belonging to
// any of the given workshops.
func (r *CardRepository) FindByStatusAndWorkshopIDs(ctx context.Context, status string, workshopIDs []string) ([]entity.Card, error) {
	if len(workshopIDs) == 0 {
		return nil, nil
	}
	var cards []entity.Card
	err := r.db.WithContext(ctx).
		Where("status = ? AND workshop_id IN ?", status, workshopIDs).
		Order("created_at DESC").
		Find(&cards).Error
	return cards, err
}

// FindAll returns every live card, unscoped.
func (r *CardRepository) FindAll(ctx context.Context) ([]entity.Card, error) {
	var cards []entity.Card
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&cards).Error
	return cards, err
}

// FindByWorkshopIDs returns every live card belonging to any of the given
// workshops.
func (r *CardRepository) FindByWorkshopIDs(ctx context.Context, workshopIDs []string) ([]entity.Card, error) {
	if len(workshopIDs) == 0 {
		return nil, nil
	}
	var cards []entity.Card
	err := r.db.WithContext(ctx).
		Where("workshop_id IN ?", workshopIDs).
		Order("created_at DESC").
		Find(&cards).Error
	return cards, err
}

// CountByStatus counts cards in a status, optionally scoped to workshops.
// A nil workshopIDs slice means unscoped; an empty one always counts zero.
func (r *CardRepository) CountByStatus(ctx context.Context, status string, workshopIDs []string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.Card{}).Where("status = ?", status)
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

// Update saves all fields of the card.
func (r *CardRepository) Update(ctx context.Context, card *entity.Card) error {
	return r.db.WithContext(ctx).Save(card).Error
}

// Delete removes the live card row.
func (r *CardRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Card{}, "id = ?", id).Error
}

// Archive inserts the archive snapshot and deletes the live row in one
// transaction, so a card is never present in both tables or in neither.
func (r *CardRepository) Archive(ctx context.Context, cardID string, archived *entity.ArchivedCard) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(archived).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Card{}, "id = ?", cardID).Error
	})
}
