package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"habbitgold/internal/models"
	"habbitgold/internal/store"
)

// MigrateHandler moves the three records between devices: export produces a
// snapshot, import replaces the habit list and history log. The profile stays
// with the device so identity and balance cannot be imported twice.
type MigrateHandler struct {
	store store.Store
}

func NewMigrateHandler(st store.Store) *MigrateHandler {
	return &MigrateHandler{store: st}
}

type snapshot struct {
	User    UserDTO              `json:"user"`
	Habits  []models.Habit       `json:"habits"`
	History []models.HistoryItem `json:"history"`
}

type importRequest struct {
	Habits  []models.Habit       `json:"habits"`
	History []models.HistoryItem `json:"history"`
}

func (h *MigrateHandler) Export(w http.ResponseWriter, r *http.Request) {
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
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot{User: ToUserDTO(user), Habits: habits, History: history})
}

func (h *MigrateHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Habits) == 0 && len(req.History) == 0 {
		http.Error(w, "no habits or history provided", http.StatusBadRequest)
		return
	}

	for _, habit := range req.Habits {
		if habit.ID == "" || habit.Title == "" || !models.ValidCategory(habit.Category) {
			http.Error(w, "invalid habit data", http.StatusBadRequest)
			return
		}
		if habit.ReminderTime != "" {
			if _, err := time.Parse("15:04", habit.ReminderTime); err != nil {
				http.Error(w, "invalid reminderTime; expected HH:mm", http.StatusBadRequest)
				return
			}
		}
	}

	if len(req.Habits) > 0 {
		if err := h.store.SaveHabits(r.Context(), req.Habits); err != nil {
			http.Error(w, "could not save habits", http.StatusInternalServerError)
			return
		}
	}
	if len(req.History) > 0 {
		// Replay oldest-first so the store keeps the newest entries once the
		// log is truncated.
		for i := len(req.History) - 1; i >= 0; i-- {
			if err := h.store.AddHistory(r.Context(), req.History[i]); err != nil {
				http.Error(w, "could not save history", http.StatusInternalServerError)
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"message": "Data migrated successfully"})
}
