package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"habbitgold/internal/models"
)

// SQLStore keeps the three records as JSON values in a single table. The
// schema and statements are portable between the bundled sqlite driver (local
// on-device file, the default) and Postgres via pgx when DATABASE_URL is set.
type SQLStore struct {
	db *sqlx.DB
}

// Open connects with the given sqlx driver name ("sqlite" or "pgx") and runs
// migrations.
func Open(driver, dsn string) (*SQLStore, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(2 * time.Hour)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLStore{db: db}, nil
}

func RunMigrations(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS records (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`
	_, err := db.ExecContext(context.Background(), schema)
	return err
}

func (s *SQLStore) get(ctx context.Context, key string, out any) error {
	var raw string
	err := s.db.GetContext(ctx, &raw, `SELECT value FROM records WHERE key=$1`, key)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), out)
}

func (s *SQLStore) put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO records (key, value, updated_at) VALUES ($1, $2, $3)
	                                ON CONFLICT (key) DO UPDATE SET value=$2, updated_at=$3`,
		key, string(raw), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *SQLStore) GetUser(ctx context.Context) (models.User, error) {
	var u models.User
	if err := s.get(ctx, keyUser, &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *SQLStore) SaveUser(ctx context.Context, user models.User) error {
	return s.put(ctx, keyUser, user)
}

func (s *SQLStore) GetHabits(ctx context.Context) ([]models.Habit, error) {
	var habits []models.Habit
	err := s.get(ctx, keyHabits, &habits)
	if err == ErrNotFound {
		return []models.Habit{}, nil
	}
	if err != nil {
		return nil, err
	}
	return habits, nil
}

func (s *SQLStore) SaveHabits(ctx context.Context, habits []models.Habit) error {
	return s.put(ctx, keyHabits, habits)
}

func (s *SQLStore) GetHistory(ctx context.Context) ([]models.HistoryItem, error) {
	var history []models.HistoryItem
	err := s.get(ctx, keyHistory, &history)
	if err == ErrNotFound {
		return []models.HistoryItem{}, nil
	}
	if err != nil {
		return nil, err
	}
	return history, nil
}

func (s *SQLStore) AddHistory(ctx context.Context, item models.HistoryItem) error {
	history, err := s.GetHistory(ctx)
	if err != nil {
		return err
	}
	history = append([]models.HistoryItem{item}, history...)
	if len(history) > models.HistoryLimit {
		history = history[:models.HistoryLimit]
	}
	return s.put(ctx, keyHistory, history)
}

func (s *SQLStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE key IN ($1, $2, $3)`,
		keyUser, keyHabits, keyHistory)
	return err
}

func (s *SQLStore) Close() error { return s.db.Close() }
