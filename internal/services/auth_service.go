package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/limbahku/backend/internal/models"
)

var ErrInvalidPassword = errors.New("invalid password")

// AuthService implements the local email/password fallback used when the
// hosted identity provider is not configured. Production deployments
// authenticate with Firebase ID tokens instead; either way the account record
// lives in the profile store.
type AuthService struct {
	profiles ProfileService
}

func NewAuthService(profiles ProfileService) *AuthService {
	return &AuthService{profiles: profiles}
}

func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UID:          uuid.New().String(),
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Phone:        req.Phone,
		Role:         req.Role,
		Addresses:    []models.Address{},
		CreatedAt:    time.Now().UTC(),
	}
	if req.Address != nil {
		addr := *req.Address
		if addr.AddressID == "" {
			addr.AddressID = uuid.New().String()
		}
		user.Addresses = []models.Address{addr}
	}

	if err := s.profiles.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	user, err := s.profiles.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidPassword
	}
	return user, nil
}
