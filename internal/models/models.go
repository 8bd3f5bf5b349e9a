package models

import "time"

const (
	// DailyCap bounds the points a user may earn per calendar day.
	DailyCap = 5
	// PointsConversionRate is the fixed point-to-currency rate: 100 pts = $1.
	PointsConversionRate = 100
	// HistoryLimit is the number of history entries retained, newest first.
	HistoryLimit = 50
	// LoginBonusPoints is granted when a fresh profile is created.
	LoginBonusPoints = 25
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type PaymentType string

const (
	PaymentCreditCard PaymentType = "credit_card"
	PaymentPayPal     PaymentType = "paypal"
)

type Category string

const (
	CategoryHealth       Category = "Health"
	CategoryFocus        Category = "Focus"
	CategoryProductivity Category = "Productivity"
	CategoryPersonal     Category = "Personal"
)

// ValidCategory reports whether c is one of the four habit categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryHealth, CategoryFocus, CategoryProductivity, CategoryPersonal:
		return true
	}
	return false
}

type PaymentMethod struct {
	ID        string      `json:"id"`
	Type      PaymentType `json:"type"`
	Label     string      `json:"label"` // e.g. "Visa **** 4242"; encrypted at rest
	IsDefault bool        `json:"isDefault"`
	Provider  string      `json:"provider,omitempty"`
}

type User struct {
	ID             string          `json:"id"`
	Username       string          `json:"username"`
	Points         int             `json:"points"`
	DailyPoints    int             `json:"dailyPoints"`
	LastActive     time.Time       `json:"lastActive"`
	Streak         int             `json:"streak"`
	TotalEarned    float64         `json:"totalEarned"`
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
	Theme          Theme           `json:"theme"`
}

// DefaultPaymentMethod returns the method flagged default, or nil when none
// is linked. At most one method carries the flag at any time.
func (u User) DefaultPaymentMethod() *PaymentMethod {
	for i := range u.PaymentMethods {
		if u.PaymentMethods[i].IsDefault {
			return &u.PaymentMethods[i]
		}
	}
	return nil
}

type Habit struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Category       Category `json:"category"`
	Frequency      string   `json:"frequency"`
	CompletedToday bool     `json:"completedToday"`
	PointsValue    int      `json:"pointsValue"`
	ReminderTime   string   `json:"reminderTime,omitempty"` // HH:mm
}

type HistoryStatus string

const (
	StatusVerified HistoryStatus = "verified"
	StatusPending  HistoryStatus = "pending"
)

type HistoryItem struct {
	ID           string        `json:"id"`
	HabitID      string        `json:"habitId"`
	HabitTitle   string        `json:"habitTitle"`
	Timestamp    time.Time     `json:"timestamp"`
	PointsEarned int           `json:"pointsEarned"`
	Status       HistoryStatus `json:"status"`
}

// VerificationResult is the evidence verifier's verdict on a completion claim.
type VerificationResult struct {
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence"`
	Feedback   string  `json:"feedback"`
}

// ScanResult is the insight summarizer's report over habits and history.
type ScanResult struct {
	HealthScore       float64  `json:"healthScore"`
	ProductivityScore float64  `json:"productivityScore"`
	ConsistencyScore  float64  `json:"consistencyScore"`
	Summary           string   `json:"summary"`
	Recommendations   []string `json:"recommendations"`
}

// StarterHabits returns the fixed set seeded on first login. Callers get a
// fresh slice each time so stored copies never alias.
func StarterHabits() []Habit {
	return []Habit{
		{ID: "1", Title: "Morning Exercise", Category: CategoryHealth, Frequency: "Daily", PointsValue: 1},
		{ID: "2", Title: "Read 20 Pages", Category: CategoryFocus, Frequency: "Daily", PointsValue: 1},
		{ID: "3", Title: "Healthy Meal", Category: CategoryHealth, Frequency: "Daily", PointsValue: 1},
		{ID: "4", Title: "Deep Work Session", Category: CategoryProductivity, Frequency: "Daily", PointsValue: 1},
		{ID: "5", Title: "Evening Reflection", Category: CategoryPersonal, Frequency: "Daily", PointsValue: 1},
	}
}
