package repository

import (
	"context"
	"errors"

	"github.com/SrebrinSharbanov/ControlCards/internal/entity"
	"gorm.io/gorm"
)

// UserRepository stores users and their workshop memberships. Memberships
// live in the user_workshops join table and are loaded explicitly, never as
// a navigation property.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user and the membership rows in one transaction.
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return replaceWorkshops(tx, user.ID, user.WorkshopIDs)
	})
}

// FindByID loads a user with workshop memberships filled in.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.loadWorkshopIDs(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername loads a user by login name, memberships included.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := r.loadWorkshopIDs(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs returns users keyed by id for batch name resolution. Workshop
// memberships are not loaded here.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) (map[string]entity.User, error) {
	result := make(map[string]entity.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var users []entity.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	if err := r.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		if err := r.loadWorkshopIDs(ctx, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// Update saves the user row. Memberships are not touched; use
// ReplaceWorkshops for that.
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// ReplaceWorkshops rewrites the user's workshop memberships.
func (r *UserRepository) ReplaceWorkshops(ctx context.Context, userID string, workshopIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceWorkshops(tx, userID, workshopIDs)
	})
}

func replaceWorkshops(tx *gorm.DB, userID string, workshopIDs []string) error {
	if err := tx.Delete(&entity.UserWorkshop{}, "user_id = ?", userID).Error; err != nil {
		return err
	}
	for _, wid := range workshopIDs {
		if err := tx.Create(&entity.UserWorkshop{UserID: userID, WorkshopID: wid}).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *UserRepository) loadWorkshopIDs(ctx context.Context, user *entity.User) error {
	var rows []entity.UserWorkshop
	if err := r.db.WithContext(ctx).Where("user_id = ?", user.ID).Find(&rows).Error; err != nil {
		return err
	}
	user.WorkshopIDs = make([]string, 0, len(rows))
	for _, row := range rows {
		user.WorkshopIDs = append(user.WorkshopIDs, row.WorkshopID)
	}
	return nil
}
