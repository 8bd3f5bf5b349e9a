package handlers

import (
	"encoding/json"
	"net/http"

	"habbitgold/internal/models"
	"habbitgold/internal/store"
)

type DashboardHandler struct {
	store store.Store
}

func NewDashboardHandler(st store.Store) *DashboardHandler {
	return &DashboardHandler{store: st}
}

type dashboardResponse struct {
	Points            int                  `json:"points"`
	DailyPoints       int                  `json:"dailyPoints"`
	DailyCap          int                  `json:"dailyCap"`
	Streak            int                  `json:"streak"`
	TotalEarned       float64              `json:"totalEarned"`
	RedeemableDollars float64              `json:"redeemableDollars"`
	TotalHabits       int                  `json:"totalHabits"`
	CompletedToday    int                  `json:"completedToday"`
	RecentActivity    []models.HistoryItem `json:"recentActivity"`
}

// Get aggregates the numbers the dashboard view needs from the three records.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r, h.store)
	if !ok {
		http.Error(w, "session expired", http.StatusUnauthorized)
		return
	}
	habits, err := h.store.GetHabits(r.Context())
	if err != nil {
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	history, err := h.store.GetHistory(r.Context())
	if err != nil {
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}

	completed := 0
	for _, habit := range habits {
		if habit.CompletedToday {
			completed++
		}
	}
	recent := history
	if len(recent) > 5 {
		recent = recent[:5]
	}

	resp := dashboardResponse{
		Points:            user.Points,
		DailyPoints:       user.DailyPoints,
		DailyCap:          models.DailyCap,
		Streak:            user.Streak,
		TotalEarned:       user.TotalEarned,
		RedeemableDollars: float64(user.Points) / models.PointsConversionRate,
		TotalHabits:       len(habits),
		CompletedToday:    completed,
		RecentActivity:    recent,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
