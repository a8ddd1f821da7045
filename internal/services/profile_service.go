package services

import (
	"context"
	"errors"
	"sync"

	"github.com/limbahku/backend/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already registered")
)

// ProfileService stores account records, keyed by the auth provider's UID.
// ListByRole backs the collector directory shown to sellers.
type ProfileService interface {
	GetByUID(ctx context.Context, uid string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByRole(ctx context.Context, role string) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateAddresses(ctx context.Context, uid string, addresses []models.Address) error
}

// MemoryProfileService is an in-memory ProfileService for local development
// and tests.
type MemoryProfileService struct {
	mu      sync.RWMutex
	users   map[string]*models.User
	byEmail map[string]string // email -> uid
}

func NewMemoryProfileService() *MemoryProfileService {
	return &MemoryProfileService{
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryProfileService) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[uid]
	if !exists {
		return nil, ErrUserNotFound
	}
	return copyUser(user), nil
}

func (s *MemoryProfileService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uid, exists := s.byEmail[email]
	if !exists {
		return nil, ErrUserNotFound
	}
	return copyUser(s.users[uid]), nil
}

func (s *MemoryProfileService) ListByRole(ctx context.Context, role string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0)
	for _, user := range s.users {
		if user.Role == role {
			out = append(out, *copyUser(user))
		}
	}
	return out, nil
}

func (s *MemoryProfileService) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return ErrEmailExists
	}

	s.users[user.UID] = copyUser(user)
	s.byEmail[user.Email] = user.UID
	return nil
}

func (s *MemoryProfileService) UpdateAddresses(ctx context.Context, uid string, addresses []models.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[uid]
	if !exists {
		return ErrUserNotFound
	}

	user.Addresses = append([]models.Address(nil), addresses...)
	return nil
}

// copyUser returns a deep-enough copy so callers cannot mutate stored
// addresses through the returned slice.
func copyUser(u *models.User) *models.User {
	userCopy := *u
	userCopy.Addresses = append([]models.Address(nil), u.Addresses...)
	return &userCopy
}
