package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"habbitgold/internal/ledger"
	"habbitgold/internal/models"
	"habbitgold/internal/store"
)

// Verifier is the evidence verification capability consumed by the
// completion flow.
type Verifier interface {
	VerifyCompletion(ctx context.Context, habitTitle, mediaBase64, mimeType string) models.VerificationResult
}

type HabitsHandler struct {
	store    store.Store
	ledger   *ledger.Ledger
	verifier Verifier
	// minAnalysisDelay is the minimum presentation interval for the
	// verification screen: the verdict is buffered until it elapses.
	minAnalysisDelay time.Duration
}

func NewHabitsHandler(st store.Store, l *ledger.Ledger, verifier Verifier, minAnalysisDelay time.Duration) *HabitsHandler {
	return &HabitsHandler{store: st, ledger: l, verifier: verifier, minAnalysisDelay: minAnalysisDelay}
}

func (h *HabitsHandler) List(w http.ResponseWriter, r *http.Request) {
	habits, err := h.store.GetHabits(r.Context())
	if err != nil {
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(habits)
}

type addHabitRequest struct {
	Title        string          `json:"title"`
	Category     models.Category `json:"category"`
	ReminderTime string          `json:"reminderTime"`
}

func (h *HabitsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if !models.ValidCategory(req.Category) {
		http.Error(w, "invalid category", http.StatusBadRequest)
		return
	}
	if req.ReminderTime != "" {
		if _, err := time.Parse("15:04", req.ReminderTime); err != nil {
			http.Error(w, "invalid reminderTime; expected HH:mm", http.StatusBadRequest)
			return
		}
	}

	habits, err := h.store.GetHabits(r.Context())
	if err != nil {
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	habit := models.Habit{
		Title:        req.Title,
		Category:     req.Category,
		ReminderTime: req.ReminderTime,
	}
	updated := h.ledger.AddHabit(habits, habit)
	if err := h.store.SaveHabits(r.Context(), updated); err != nil {
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(updated[0])
}

type reminderRequest struct {
	Time string `json:"time"` // HH:mm, empty clears
}

func (h *HabitsHandler) SetReminder(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "id")
	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Time != "" {
		if _, err := time.Parse("15:04", req.Time); err != nil {
			http.Error(w, "invalid time; expected HH:mm", http.StatusBadRequest)
			return
		}
	}

	habits, err := h.store.GetHabits(r.Context())
	if err != nil {
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	updated, err := h.ledger.SetReminder(habits, habitID, req.Time)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err := h.store.SaveHabits(r.Context(), updated); err != nil {
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type completeRequest struct {
	Media    string `json:"media"` // base64, optionally a data URL
	MimeType string `json:"mimeType"`
}

type completeResponse struct {
	Verified      bool    `json:"verified"`
	Confidence    float64 `json:"confidence"`
	Feedback      string  `json:"feedback"`
	PointsAwarded int     `json:"pointsAwarded"`
	CapReached    bool    `json:"capReached"`
	User          UserDTO `json:"user"`
}

// Complete runs the evidence through the verifier and, on a positive verdict,
// applies the ledger completion. The response is held back until the minimum
// analysis interval has elapsed even when the verifier answers sooner.
func (h *HabitsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	habitID := chi.URLParam(r, "id")
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Media == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.MimeType == "" {
		req.MimeType = "image/jpeg"
	}

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

	var habit *models.Habit
	for i := range habits {
		if habits[i].ID == habitID {
			habit = &habits[i]
			break
		}
	}
	if habit == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if habit.CompletedToday {
		http.Error(w, "habit already completed today", http.StatusConflict)
		return
	}

	started := time.Now()
	verdict := h.verifier.VerifyCompletion(r.Context(), habit.Title, req.Media, req.MimeType)
	h.holdUntil(r.Context(), started)

	if !verdict.Verified {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completeResponse{
			Verified:   false,
			Confidence: verdict.Confidence,
			Feedback:   verdict.Feedback,
			User:       ToUserDTO(user),
		})
		return
	}

	res, err := h.ledger.CompleteHabit(user, habits, habitID, habit.PointsValue)
	if err == ledger.ErrAlreadyCompleted {
		http.Error(w, "habit already completed today", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	if err := h.store.SaveUser(r.Context(), res.User); err != nil {
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}
	if err := h.store.SaveHabits(r.Context(), res.Habits); err != nil {
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}
	if err := h.store.AddHistory(r.Context(), res.Entry); err != nil {
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(completeResponse{
		Verified:      true,
		Confidence:    verdict.Confidence,
		Feedback:      verdict.Feedback,
		PointsAwarded: res.PointsAwarded,
		CapReached:    res.CapReached,
		User:          ToUserDTO(res.User),
	})
}

// holdUntil blocks until minAnalysisDelay has passed since started, or the
// request is abandoned.
func (h *HabitsHandler) holdUntil(ctx context.Context, started time.Time) {
	remaining := h.minAnalysisDelay - time.Since(started)
	if remaining <= 0 {
		return
	}
	select {
	case <-time.After(remaining):
	case <-ctx.Done():
	}
}
