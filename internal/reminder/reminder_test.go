package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habbitgold/internal/models"
	"habbitgold/internal/store"
)

type recordingNotifier struct {
	calls []string
	err   error
}

func (n *recordingNotifier) Notify(title, body string) error {
	n.calls = append(n.calls, body)
	return n.err
}

func testScheduler(t *testing.T, habits []models.Habit, notifier, fallback Notifier) (*Scheduler, *time.Time) {
	t.Helper()
	st := store.NewMemory()
	require.NoError(t, st.SaveHabits(context.Background(), habits))

	now := time.Date(2026, 8, 31, 7, 30, 0, 0, time.UTC)
	s := NewScheduler(st, notifier, fallback, slog.Default())
	s.now = func() time.Time { return now }
	return s, &now
}

func TestCheck_FiresForDueHabit(t *testing.T) {
	habits := []models.Habit{
		{ID: "1", Title: "Morning Exercise", ReminderTime: "07:30"},
		{ID: "2", Title: "Read 20 Pages", ReminderTime: "08:00"},
	}
	n := &recordingNotifier{}
	s, _ := testScheduler(t, habits, n, &recordingNotifier{})

	s.check()

	require.Len(t, n.calls, 1)
	assert.Equal(t, "Time to complete your habit: Morning Exercise!", n.calls[0])
}

func TestCheck_OncePerMinute(t *testing.T) {
	habits := []models.Habit{{ID: "1", Title: "Morning Exercise", ReminderTime: "07:30"}}
	n := &recordingNotifier{}
	s, now := testScheduler(t, habits, n, &recordingNotifier{})

	// Several polls land inside the same minute.
	s.check()
	*now = now.Add(10 * time.Second)
	s.check()
	*now = now.Add(10 * time.Second)
	s.check()
	assert.Len(t, n.calls, 1)

	// The next minute is a fresh window.
	*now = now.Add(time.Minute)
	s.check()
	assert.Len(t, n.calls, 1, "reminder time has passed, nothing new fires")
}

func TestCheck_AllDueHabitsFireTogether(t *testing.T) {
	habits := []models.Habit{
		{ID: "1", Title: "Morning Exercise", ReminderTime: "07:30"},
		{ID: "2", Title: "Healthy Meal", ReminderTime: "07:30"},
	}
	n := &recordingNotifier{}
	s, _ := testScheduler(t, habits, n, &recordingNotifier{})

	s.check()
	assert.Len(t, n.calls, 2)
}

func TestCheck_SkipsCompletedHabits(t *testing.T) {
	habits := []models.Habit{{ID: "1", Title: "Morning Exercise", ReminderTime: "07:30", CompletedToday: true}}
	n := &recordingNotifier{}
	s, _ := testScheduler(t, habits, n, &recordingNotifier{})

	s.check()
	assert.Empty(t, n.calls)
}

func TestCheck_FallsBackOnDeliveryFailure(t *testing.T) {
	habits := []models.Habit{{ID: "1", Title: "Morning Exercise", ReminderTime: "07:30"}}
	primary := &recordingNotifier{err: errors.New("relay down")}
	fallback := &recordingNotifier{}
	s, _ := testScheduler(t, habits, primary, fallback)

	s.check()
	require.Len(t, fallback.calls, 1)
	assert.Equal(t, "Time to complete your habit: Morning Exercise!", fallback.calls[0])
}

func TestWebhookNotifier(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	require.NoError(t, n.Notify("HabbitGold Reminder", "Time to complete your habit: Morning Exercise!"))
	assert.Equal(t, "HabbitGold Reminder: Time to complete your habit: Morning Exercise!", got.Text)

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer bad.Close()
	assert.Error(t, NewWebhookNotifier(bad.URL).Notify("t", "b"))
}
