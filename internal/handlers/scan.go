package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"habbitgold/internal/models"
	"habbitgold/internal/store"
)

// Scanner is the insight summarization capability behind the data scan.
type Scanner interface {
	RunDataScan(ctx context.Context, habits []models.Habit, history []models.HistoryItem) models.ScanResult
}

type ScanHandler struct {
	store        store.Store
	scanner      Scanner
	minScanDelay time.Duration
}

func NewScanHandler(st store.Store, scanner Scanner, minScanDelay time.Duration) *ScanHandler {
	return &ScanHandler{store: st, scanner: scanner, minScanDelay: minScanDelay}
}

// Run feeds the full habit and history data through the summarizer. Like the
// verification flow, the result is held until the minimum scan interval has
// elapsed.
func (h *ScanHandler) Run(w http.ResponseWriter, r *http.Request) {
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

	started := time.Now()
	result := h.scanner.RunDataScan(r.Context(), habits, history)
	if remaining := h.minScanDelay - time.Since(started); remaining > 0 {
		select {
		case <-time.After(remaining):
		case <-r.Context().Done():
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
