package store

import (
	"context"
	"time"

	"pos-terminal-service/internal/domain"
)

func (s *MemoryStore) AddUser(ctx context.Context, user domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].Username == user.Username {
			return nil, ErrUsernameExists
		}
	}
	user.ID = newID()
	user.CreatedAt = time.Now().UTC()
	s.users = append(s.users, user)

	created := user
	return &created, nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, id string, updates UserUpdate) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findUserLocked(id)
	if idx < 0 {
		return nil, ErrUserNotFound
	}

	if updates.Username != nil {
		for i := range s.users {
			if i != idx && s.users[i].Username == *updates.Username {
				return nil, ErrUsernameExists
			}
		}
	}

	u := &s.users[idx]
	if updates.Username != nil {
		u.Username = *updates.Username
	}
	if updates.Email != nil {
		u.Email = *updates.Email
	}
	if updates.Role != nil {
		u.Role = *updates.Role
	}

	updated := *u
	return &updated, nil
}

func (s *MemoryStore) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findUserLocked(id)
	if idx < 0 {
		return ErrUserNotFound
	}
	s.users = append(s.users[:idx], s.users[idx+1:]...)
	return nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].Username == username {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.User, len(s.users))
	copy(users, s.users)
	return users, nil
}

func (s *MemoryStore) SetPassword(ctx context.Context, id string, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findUserLocked(id)
	if idx < 0 {
		return ErrUserNotFound
	}
	s.users[idx].PasswordHash = hash
	return nil
}

func (s *MemoryStore) GetSettings(ctx context.Context) (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *MemoryStore) UpdateSettings(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return s.settings, nil
}
