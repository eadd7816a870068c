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
	"golang.org/x/crypto/bcrypt"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 50
	passwordMinLen = 6
)

// CreateUserRequest registers a new account.
type CreateUserRequest struct {
	Username    string   `json:"username" binding:"required"`
	Password    string   `json:"password" binding:"required"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Role        string   `json:"role" binding:"required"`
	WorkshopIDs []string `json:"workshop_ids"`
}

// UpdateUserRequest edits an account. A blank password keeps the current one.
type UpdateUserRequest struct {
	Password    string   `json:"password"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Role        string   `json:"role" binding:"required"`
	WorkshopIDs []string `json:"workshop_ids"`
}

// UpdateProfileRequest is the self-service account edit. A password change
// requires the current password.
type UpdateProfileRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	CurrentPassword string `json:"current_password"`
	Password        string `json:"password"`
}

// UserService manages accounts and their workshop assignments. Everything
// except UpdateProfile is admin-only surface.
type UserService struct {
	userRepo     *repository.UserRepository
	workshopRepo *repository.WorkshopRepository
	logs         *LogEntryService
}

func NewUserService(
	userRepo *repository.UserRepository,
	workshopRepo *repository.WorkshopRepository,
	logs *LogEntryService,
) *UserService {
	return &UserService{userRepo: userRepo, workshopRepo: workshopRepo, logs: logs}
}

func (s *UserService) CreateUser(ctx context.Context, actor *entity.User, req CreateUserRequest) (*entity.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if n := len([]rune(req.Username)); n < usernameMinLen || n > usernameMaxLen {
		return nil, fmt.Errorf("%w: username must be %d to %d characters", ErrValidation, usernameMinLen, usernameMaxLen)
	}
	if len(req.Password) < passwordMinLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, passwordMinLen)
	}
	if !entity.IsValidRole(req.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, req.Role)
	}
	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("%w: username %q is taken", ErrValidation, req.Username)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if err := s.checkWorkshops(ctx, req.WorkshopIDs); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		ID:          uuid.New().String()[:32],
		Username:    req.Username,
		Password:    string(hash),
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Role:        req.Role,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		WorkshopIDs: req.WorkshopIDs,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logs.Record(ctx, actor, "Създаден нов потребител: "+user.Username)
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]entity.User, error) {
	return s.userRepo.FindAll(ctx)
}

func (s *UserService) UpdateUser(ctx context.Context, actor *entity.User, id string, req UpdateUserRequest) (*entity.User, error) {
	if !entity.IsValidRole(req.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, req.Role)
	}
	if req.Password != "" && len(req.Password) < passwordMinLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, passwordMinLen)
	}
	if err := s.checkWorkshops(ctx, req.WorkshopIDs); err != nil {
		return nil, err
	}
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hash)
	}
	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.Role = req.Role
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := s.userRepo.ReplaceWorkshops(ctx, user.ID, req.WorkshopIDs); err != nil {
		return nil, err
	}
	user.WorkshopIDs = req.WorkshopIDs
	s.logs.Record(ctx, actor, "Обновен потребител: "+user.Username)
	return user, nil
}

// UpdateProfile lets a logged-in user edit their own names and password.
// Role and workshop assignments stay as they are; only an admin changes
// those, through UpdateUser.
func (s *UserService) UpdateProfile(ctx context.Context, actor *entity.User, req UpdateProfileRequest) (*entity.User, error) {
	user, err := s.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if req.Password != "" {
		if len(req.Password) < passwordMinLen {
			return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, passwordMinLen)
		}
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
			return nil, fmt.Errorf("%w: current password does not match", ErrInvalidCredentials)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hash)
	}
	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logs.Record(ctx, user, "Обновен профил: "+user.Username)
	return user, nil
}

func (s *UserService) checkWorkshops(ctx context.Context, workshopIDs []string) error {
	if len(workshopIDs) == 0 {
		return nil
	}
	workshops, err := s.workshopRepo.FindByIDs(ctx, workshopIDs)
	if err != nil {
		return err
	}
	for _, id := range workshopIDs {
		if _, ok := workshops[id]; !ok {
			return fmt.Errorf("%w: %s", ErrWorkshopNotFound, id)
		}
	}
	return nil
}
