package sessionauth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is an in-memory UserStore for engine tests. Rotation holds the
// mutex across compare and swap, matching the atomicity the real backends
// provide.
type memStore struct {
	mu    sync.Mutex
	users map[string]UserRecord
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]UserRecord)}
}

func (s *memStore) CreateUser(_ context.Context, user UserRecord) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return UserRecord{}, ErrUserExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = user
	return user, nil
}

func (s *memStore) GetUserByIdentifier(_ context.Context, identifier string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == identifier {
			return user, nil
		}
	}
	for _, user := range s.users {
		if user.Email == identifier {
			return user, nil
		}
	}
	return UserRecord{}, ErrUserNotFound
}

func (s *memStore) GetUserByID(_ context.Context, userID string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return user, nil
}

func (s *memStore) UpdatePasswordHash(_ context.Context, userID, newHash string) error {
	return s.update(userID, func(user *UserRecord) { user.PasswordHash = newHash })
}

func (s *memStore) SetRefreshToken(_ context.Context, userID, token string) error {
	return s.update(userID, func(user *UserRecord) { user.RefreshToken = token })
}

func (s *memStore) GetRefreshToken(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return "", ErrUserNotFound
	}
	return user.RefreshToken, nil
}

func (s *memStore) RotateRefreshToken(_ context.Context, userID, presented, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if user.RefreshToken == "" || user.RefreshToken != presented {
		return ErrTokenReused
	}
	user.RefreshToken = next
	user.UpdatedAt = time.Now().UTC()
	s.users[userID] = user
	return nil
}

func (s *memStore) ClearRefreshToken(_ context.Context, userID string) error {
	return s.update(userID, func(user *UserRecord) { user.RefreshToken = "" })
}

func (s *memStore) update(userID string, fn func(*UserRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	fn(&user)
	user.UpdatedAt = time.Now().UTC()
	s.users[userID] = user
	return nil
}
