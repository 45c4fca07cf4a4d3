// Package memory holds map-backed repository implementations used by tests
// and local development without Postgres.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/crickarena/crickarena/internal/domain/user"
)

type UserRepository struct {
	mu            sync.RWMutex
	nextID        int64
	items         map[int64]user.User
	resetTokens   map[int64]string
	resetExpiries map[int64]time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		items:         make(map[int64]user.User),
		resetTokens:   make(map[int64]string),
		resetExpiries: make(map[int64]time.Time),
	}
}

func (r *UserRepository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.ErrEmailTaken
		}
		if existing.Mobile == u.Mobile {
			return user.ErrMobileTaken
		}
	}

	r.nextID++
	u.ID = r.nextID
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.items[u.ID] = *u
	return nil
}

func (r *UserRepository) getByID(_ context.Context, userID int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[userID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) GetByPublicID(_ context.Context, publicID string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.PublicID == publicID {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UserRepository) GetByResetToken(_ context.Context, token string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, t := range r.resetTokens {
		if t == token && r.resetExpiries[id].After(time.Now()) {
			return r.items[id], nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UserRepository) UpdateProfile(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[u.ID]
	if !ok {
		return user.ErrNotFound
	}
	for id, other := range r.items {
		if id != u.ID && other.Mobile == u.Mobile {
			return user.ErrMobileTaken
		}
	}

	existing.FullName = u.FullName
	existing.Mobile = u.Mobile
	existing.State = u.State
	existing.DateOfBirth = u.DateOfBirth
	existing.UpdatedAt = time.Now()
	r.items[u.ID] = existing
	return nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, userID int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[userID]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	r.items[userID] = u
	return nil
}

func (r *UserRepository) SetResetToken(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[userID]; !ok {
		return user.ErrNotFound
	}
	r.resetTokens[userID] = token
	r.resetExpiries[userID] = expiresAt
	return nil
}

func (r *UserRepository) ClearResetToken(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.resetTokens, userID)
	delete(r.resetExpiries, userID)
	return nil
}
