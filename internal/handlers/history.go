package handlers

import (
	"encoding/json"
	"net/http"

	"habbitgold/internal/store"
)

type HistoryHandler struct {
	store store.Store
}

func NewHistoryHandler(st store.Store) *HistoryHandler {
	return &HistoryHandler{store: st}
}

// List returns the bounded history log, newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	history, err := h.store.GetHistory(r.Context())
	if err != nil {
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}
