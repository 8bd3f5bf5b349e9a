// Package store persists the three application records: profile, habit list,
// and the bounded history log. Implementations are key-value shaped; callers
// read and write whole records.
package store

import (
	"context"
	"errors"

	"habbitgold/internal/models"
)

// ErrNotFound is returned when a record has never been written or was cleared.
var ErrNotFound = errors.New("record not found")

// Record keys, shared by every backend.
const (
	keyUser    = "hg_db_user"
	keyHabits  = "hg_db_habits"
	keyHistory = "hg_db_history"
)

type Store interface {
	GetUser(ctx context.Context) (models.User, error)
	SaveUser(ctx context.Context, user models.User) error

	GetHabits(ctx context.Context) ([]models.Habit, error)
	SaveHabits(ctx context.Context, habits []models.Habit) error

	GetHistory(ctx context.Context) ([]models.HistoryItem, error)
	// AddHistory prepends the item and truncates the log to the most recent
	// models.HistoryLimit entries; the oldest are silently dropped.
	AddHistory(ctx context.Context, item models.HistoryItem) error

	// Clear removes all three records.
	Clear(ctx context.Context) error

	Close() error
}
