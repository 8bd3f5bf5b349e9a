// Package reminder runs the recurring reminder check: every poll interval the
// current wall-clock minute is compared against each habit's reminder time,
// and due habits that are not yet completed today trigger a notification.
package reminder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"habbitgold/internal/store"
)

const pollInterval = 10 * time.Second

// Notifier delivers a reminder. Delivery is fire-and-forget; a non-nil error
// only routes the reminder to the fallback channel.
type Notifier interface {
	Notify(title, body string) error
}

// WebhookNotifier posts reminders to a local notification relay.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

type webhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{url: url, client: &http.Client{Timeout: 5 * time.Second}}
}

func (n *WebhookNotifier) Notify(title, body string) error {
	payload := webhookPayload{Text: title + ": " + body, DurationMs: 10_000}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification relay returned status %d", resp.StatusCode)
	}
	return nil
}

// LogNotifier is the blocking in-app alert equivalent: the reminder is
// surfaced on the service log. It never fails.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Notify(title, body string) error {
	n.Logger.Info("reminder", slog.String("title", title), slog.String("body", body))
	return nil
}

// Scheduler owns the single repeating timer. The last-checked minute is held
// as scheduler state: one check per distinct minute, shared across habits, so
// every habit due in the same minute fires together but none re-fires within
// that minute.
type Scheduler struct {
	store      store.Store
	notifier   Notifier
	fallback   Notifier
	logger     *slog.Logger
	now        func() time.Time
	lastMinute string
	done       chan struct{}
}

func NewScheduler(st store.Store, notifier Notifier, fallback Notifier, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:    st,
		notifier: notifier,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// Start launches the polling loop. Stop terminates it.
func (s *Scheduler) Start() {
	s.done = make(chan struct{})
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.check()
			case <-s.done:
				return
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
}

func (s *Scheduler) check() {
	minute := s.now().Format("15:04")
	if minute == s.lastMinute {
		return
	}
	s.lastMinute = minute

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	habits, err := s.store.GetHabits(ctx)
	if err != nil {
		s.logger.Warn("reminder check could not load habits", slog.Any("err", err))
		return
	}

	for _, habit := range habits {
		if habit.ReminderTime != minute || habit.CompletedToday {
			continue
		}
		body := fmt.Sprintf("Time to complete your habit: %s!", habit.Title)
		if err := s.notifier.Notify("HabbitGold Reminder", body); err != nil {
			s.logger.Warn("notification delivery failed, falling back",
				slog.String("habit", habit.Title), slog.Any("err", err))
			_ = s.fallback.Notify("HabbitGold Reminder", body)
		}
	}
}
