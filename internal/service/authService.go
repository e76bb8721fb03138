package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"files-manager/internal/model/apperr"
	"files-manager/internal/model/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const SessionTTL = 24 * time.Hour

type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string) (int64, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

type SessionRepository interface {
	SaveSession(ctx context.Context, token string, userID int64, ttl time.Duration) error
	GetUserID(ctx context.Context, token string) (int64, bool, error)
	DeleteSession(ctx context.Context, token string) error
}

type AuthService struct {
	userRepo    UserRepository
	sessionRepo SessionRepository
	sessionTTL  time.Duration
}

func New(userRepo UserRepository, sessionRepo SessionRepository) *AuthService {
	return &AuthService{userRepo: userRepo, sessionRepo: sessionRepo, sessionTTL: SessionTTL}
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*user.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperr.Validation("Missing email")
	}
	if password == "" {
		return nil, apperr.Validation("Missing password")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, apperr.New(apperr.ErrAlreadyExists, "Already exist")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.userRepo.Create(ctx, email, string(hashedPassword))
	if errors.Is(err, apperr.ErrAlreadyExists) {
		return nil, apperr.New(apperr.ErrAlreadyExists, "Already exist")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user.User{ID: id, Email: email}, nil
}

// VerifyCredentials never tells an unknown email apart from a wrong password.
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) (int64, error) {
	if email == "" || password == "" {
		return 0, apperr.Unauthorized("Unauthorized")
	}
	u, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return 0, apperr.Unauthorized("Unauthorized")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return 0, apperr.Unauthorized("Unauthorized")
	}
	return u.ID, nil
}

func (s *AuthService) Connect(ctx context.Context, email, password string) (string, error) {
	userID, err := s.VerifyCredentials(ctx, email, password)
	if err != nil {
		return "", err
	}
	return s.CreateSession(ctx, userID)
}

func (s *AuthService) CreateSession(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := s.sessionRepo.SaveSession(ctx, token, userID, s.sessionTTL); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return token, nil
}

// ResolveSession does not extend the session TTL.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, apperr.Unauthorized("Unauthorized")
	}
	userID, ok, err := s.sessionRepo.GetUserID(ctx, token)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve session: %w", err)
	}
	if !ok {
		return 0, apperr.Unauthorized("Unauthorized")
	}
	return userID, nil
}

func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessionRepo.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*user.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}
