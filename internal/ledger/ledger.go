// Package ledger implements the points state machine: habit completion under
// the daily cap, cashout at the fixed conversion rate, and payment method
// bookkeeping. All operations are pure: they take the current records, return
// updated copies, and leave persistence to the caller.
package ledger

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"habbitgold/internal/models"
)

var (
	ErrHabitNotFound       = errors.New("habit not found")
	ErrAlreadyCompleted    = errors.New("habit already completed today")
	ErrNoPaymentMethod     = errors.New("no payment method linked")
	ErrInvalidAmount       = errors.New("invalid cashout amount")
	ErrInsufficientBalance = errors.New("insufficient point balance")
)

// Ledger applies the business rules. Now and NewID are swappable for tests.
type Ledger struct {
	Now   func() time.Time
	NewID func() string
}

func New() *Ledger {
	return &Ledger{Now: time.Now, NewID: uuid.NewString}
}

// NewUser builds a fresh profile the way first login does: starting bonus,
// streak at 1, light theme, no payment methods.
func (l *Ledger) NewUser(username string) models.User {
	return models.User{
		ID:             l.NewID(),
		Username:       username,
		Points:         models.LoginBonusPoints,
		DailyPoints:    0,
		LastActive:     l.Now().UTC(),
		Streak:         1,
		TotalEarned:    0,
		PaymentMethods: []models.PaymentMethod{},
		Theme:          models.ThemeLight,
	}
}

// CompletionResult carries the updated records plus what the caller needs to
// report back: the award actually granted and whether the cap advisory fired.
type CompletionResult struct {
	User          models.User
	Habits        []models.Habit
	Entry         models.HistoryItem
	PointsAwarded int
	CapReached    bool
}

// CompleteHabit marks the habit done and awards points. The cap check uses
// the pre-update dailyPoints: a completion starting below the cap is awarded
// the full nominal value even if that pushes dailyPoints past it; one already
// at or above the cap awards zero. The habit is marked complete and a history
// entry appended either way, since the evidence was accepted.
func (l *Ledger) CompleteHabit(user models.User, habits []models.Habit, habitID string, pointsValue int) (CompletionResult, error) {
	idx := -1
	for i := range habits {
		if habits[i].ID == habitID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return CompletionResult{}, ErrHabitNotFound
	}
	if habits[idx].CompletedToday {
		return CompletionResult{}, ErrAlreadyCompleted
	}

	capReached := user.DailyPoints >= models.DailyCap
	actual := pointsValue
	if capReached {
		actual = 0
	}

	updated := make([]models.Habit, len(habits))
	copy(updated, habits)
	updated[idx].CompletedToday = true

	user.Points += actual
	user.DailyPoints += actual

	entry := models.HistoryItem{
		ID:           l.NewID(),
		HabitID:      habitID,
		HabitTitle:   updated[idx].Title,
		Timestamp:    l.Now().UTC(),
		PointsEarned: actual,
		Status:       models.StatusVerified,
	}

	return CompletionResult{
		User:          user,
		Habits:        updated,
		Entry:         entry,
		PointsAwarded: actual,
		CapReached:    capReached,
	}, nil
}

// AddHabit inserts the habit at the front of the list. Titles are not
// deduplicated. Missing defaults are filled in.
func (l *Ledger) AddHabit(habits []models.Habit, habit models.Habit) []models.Habit {
	if habit.ID == "" {
		habit.ID = l.NewID()
	}
	if habit.Frequency == "" {
		habit.Frequency = "Daily"
	}
	if habit.PointsValue == 0 {
		habit.PointsValue = 1
	}
	return append([]models.Habit{habit}, habits...)
}

// SetReminder sets or clears (empty string) the reminder time on a habit.
func (l *Ledger) SetReminder(habits []models.Habit, habitID, reminderTime string) ([]models.Habit, error) {
	updated := make([]models.Habit, len(habits))
	copy(updated, habits)
	for i := range updated {
		if updated[i].ID == habitID {
			updated[i].ReminderTime = reminderTime
			return updated, nil
		}
	}
	return nil, ErrHabitNotFound
}

// Cashout converts points to currency at the fixed rate. Requires a linked
// default payment method, a minimum of $1, and sufficient balance. Failures
// leave the user untouched.
func (l *Ledger) Cashout(user models.User, amountDollars float64) (models.User, error) {
	if user.DefaultPaymentMethod() == nil && len(user.PaymentMethods) == 0 {
		return user, ErrNoPaymentMethod
	}
	if math.IsNaN(amountDollars) || math.IsInf(amountDollars, 0) || amountDollars < 1 {
		return user, ErrInvalidAmount
	}
	maxDollars := float64(user.Points) / models.PointsConversionRate
	if amountDollars > maxDollars {
		return user, ErrInsufficientBalance
	}
	user.Points -= int(math.Round(amountDollars * models.PointsConversionRate))
	user.TotalEarned += amountDollars
	return user, nil
}

// AddPaymentMethod appends the method as the sole default: the flag is
// cleared on every existing method first.
func (l *Ledger) AddPaymentMethod(user models.User, method models.PaymentMethod) models.User {
	if method.ID == "" {
		method.ID = l.NewID()
	}
	method.IsDefault = true
	methods := make([]models.PaymentMethod, len(user.PaymentMethods))
	copy(methods, user.PaymentMethods)
	for i := range methods {
		methods[i].IsDefault = false
	}
	user.PaymentMethods = append(methods, method)
	return user
}

// ToggleTheme flips the display preference on the profile.
func (l *Ledger) ToggleTheme(user models.User) models.User {
	if user.Theme == models.ThemeDark {
		user.Theme = models.ThemeLight
	} else {
		user.Theme = models.ThemeDark
	}
	return user
}
