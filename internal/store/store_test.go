package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"habbitgold/internal/models"
)

// backends returns every store implementation under test.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	sqlStore, err := Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlStore.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sqlStore,
	}
}

func testUser() models.User {
	return models.User{
		ID:          "u-1",
		Username:    "hamza",
		Points:      25,
		Streak:      1,
		LastActive:  time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC),
		Theme:       models.ThemeLight,
		DailyPoints: 0,
		PaymentMethods: []models.PaymentMethod{
			{ID: "pm-1", Type: models.PaymentPayPal, Label: "hamza@example.com", IsDefault: true},
		},
	}
}

func TestUserRoundTrip(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := st.GetUser(ctx)
			assert.ErrorIs(t, err, ErrNotFound)

			want := testUser()
			require.NoError(t, st.SaveUser(ctx, want))
			got, err := st.GetUser(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestHabitsRoundTrip(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			habits, err := st.GetHabits(ctx)
			require.NoError(t, err)
			assert.Empty(t, habits, "absent record reads as empty list")

			want := models.StarterHabits()
			require.NoError(t, st.SaveHabits(ctx, want))
			got, err := st.GetHabits(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestHistoryBoundAndOrder(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for i := 0; i < 60; i++ {
				item := models.HistoryItem{
					ID:           fmt.Sprintf("h-%d", i),
					HabitID:      "1",
					HabitTitle:   "Morning Exercise",
					Timestamp:    time.Date(2026, 8, 31, 9, 0, i, 0, time.UTC),
					PointsEarned: 1,
					Status:       models.StatusVerified,
				}
				require.NoError(t, st.AddHistory(ctx, item))
			}

			history, err := st.GetHistory(ctx)
			require.NoError(t, err)
			require.Len(t, history, models.HistoryLimit)
			assert.Equal(t, "h-59", history[0].ID, "newest first")
			assert.Equal(t, "h-10", history[len(history)-1].ID, "oldest dropped")
		})
	}
}

func TestClearRemovesAllRecords(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, st.SaveUser(ctx, testUser()))
			require.NoError(t, st.SaveHabits(ctx, models.StarterHabits()))
			require.NoError(t, st.AddHistory(ctx, models.HistoryItem{ID: "h-1", Status: models.StatusVerified}))

			require.NoError(t, st.Clear(ctx))

			_, err := st.GetUser(ctx)
			assert.ErrorIs(t, err, ErrNotFound)
			habits, err := st.GetHabits(ctx)
			require.NoError(t, err)
			assert.Empty(t, habits)
			history, err := st.GetHistory(ctx)
			require.NoError(t, err)
			assert.Empty(t, history)
		})
	}
}

// markerCipher is a stand-in profile cipher that tags labels so the wrapper's
// transform points are observable without real key material.
type markerCipher struct{}

func (markerCipher) EncryptUser(u *models.User) error {
	methods := make([]models.PaymentMethod, len(u.PaymentMethods))
	copy(methods, u.PaymentMethods)
	for i := range methods {
		methods[i].Label = "enc:" + methods[i].Label
	}
	u.PaymentMethods = methods
	return nil
}

func (markerCipher) DecryptUser(u *models.User) error {
	methods := make([]models.PaymentMethod, len(u.PaymentMethods))
	copy(methods, u.PaymentMethods)
	for i := range methods {
		methods[i].Label = methods[i].Label[len("enc:"):]
	}
	u.PaymentMethods = methods
	return nil
}

func TestEncryptedStore(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	st := NewEncrypted(inner, markerCipher{})

	user := testUser()
	require.NoError(t, st.SaveUser(ctx, user))

	stored, err := inner.GetUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "enc:hamza@example.com", stored.PaymentMethods[0].Label, "label encrypted at rest")

	got, err := st.GetUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hamza@example.com", got.PaymentMethods[0].Label)
	assert.Equal(t, "hamza@example.com", user.PaymentMethods[0].Label, "caller's copy untouched")
}
