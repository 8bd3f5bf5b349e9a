package handlers

import (
	"encoding/json"
	"net/http"

	"habbitgold/internal/ledger"
	"habbitgold/internal/store"
)

type ProfileHandler struct {
	store  store.Store
	ledger *ledger.Ledger
}

func NewProfileHandler(st store.Store, l *ledger.Ledger) *ProfileHandler {
	return &ProfileHandler{store: st, ledger: l}
}

// GetMe returns the current profile.
func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r, h.store)
	if !ok {
		http.Error(w, "session expired", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ToUserDTO(user))
}

// ToggleTheme flips the display preference and persists it on the profile.
func (h *ProfileHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r, h.store)
	if !ok {
		http.Error(w, "session expired", http.StatusUnauthorized)
		return
	}
	updated := h.ledger.ToggleTheme(user)
	if err := h.store.SaveUser(r.Context(), updated); err != nil {
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"theme": updated.Theme})
}
