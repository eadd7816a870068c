package service

import (
	"context"
	"errors"
	"time"

	"github.com/SrebrinSharbanov/ControlCards/internal/entity"
	"github.com/SrebrinSharbanov/ControlCards/internal/middleware"
	"github.com/SrebrinSharbanov/ControlCards/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates users and issues JWTs.
type AuthService struct {
	userRepo  *repository.UserRepository
	logs      *LogEntryService
	logger    *zap.Logger
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthService(
	userRepo *repository.UserRepository,
	logs *LogEntryService,
	logger *zap.Logger,
	jwtSecret string,
	jwtExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		logs:      logs,
		logger:    logger,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

// Login checks the credentials and returns a signed token plus the account.
// Wrong username and wrong password are reported identically.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *entity.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := middleware.JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.DisplayName(),
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", nil, err
	}

	s.logs.Record(ctx, user, "Вход в системата: "+user.Username)
	s.logger.Info("login", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return token, user, nil
}

// ResolveActor loads the full account behind a token's user id, workshop
// assignments included. Handlers call this before invoking card operations.
func (s *AuthService) ResolveActor(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
