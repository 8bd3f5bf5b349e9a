package store

import (
	"context"
	"sync"

	"habbitgold/internal/models"
)

// MemoryStore is an in-process backend used by tests and ephemeral runs.
type MemoryStore struct {
	mu      sync.Mutex
	user    *models.User
	habits  []models.Habit
	history []models.HistoryItem
}

func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) GetUser(ctx context.Context) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.User{}, ErrNotFound
	}
	return *s.user, nil
}

func (s *MemoryStore) SaveUser(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user
	s.user = &u
	return nil
}

func (s *MemoryStore) GetHabits(ctx context.Context) ([]models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Habit, len(s.habits))
	copy(out, s.habits)
	return out, nil
}

func (s *MemoryStore) SaveHabits(ctx context.Context, habits []models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits = make([]models.Habit, len(habits))
	copy(s.habits, habits)
	return nil
}

func (s *MemoryStore) GetHistory(ctx context.Context) ([]models.HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.HistoryItem, len(s.history))
	copy(out, s.history)
	return out, nil
}

func (s *MemoryStore) AddHistory(ctx context.Context, item models.HistoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append([]models.HistoryItem{item}, s.history...)
	if len(s.history) > models.HistoryLimit {
		s.history = s.history[:models.HistoryLimit]
	}
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.habits = nil
	s.history = nil
	return nil
}

func (s *MemoryStore) Close() error { return nil }
