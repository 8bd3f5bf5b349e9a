package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"habbitgold/internal/ledger"
	"habbitgold/internal/models"
	"habbitgold/internal/store"
)

type RewardsHandler struct {
	store  store.Store
	ledger *ledger.Ledger
	// settleDelay models the payment rail: the cashout is pending for this
	// fixed interval before it commits. It has no failure mode.
	settleDelay time.Duration
}

func NewRewardsHandler(st store.Store, l *ledger.Ledger, settleDelay time.Duration) *RewardsHandler {
	return &RewardsHandler{store: st, ledger: l, settleDelay: settleDelay}
}

type cashoutRequest struct {
	Amount float64 `json:"amount"`
}

type cashoutResponse struct {
	Amount float64 `json:"amount"`
	SentTo string  `json:"sentTo"`
	User   UserDTO `json:"user"`
}

func (h *RewardsHandler) Cashout(w http.ResponseWriter, r *http.Request) {
	var req cashoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	user, ok := currentUser(r, h.store)
	if !ok {
		http.Error(w, "session expired", http.StatusUnauthorized)
		return
	}

	updated, err := h.ledger.Cashout(user, req.Amount)
	switch {
	case errors.Is(err, ledger.ErrNoPaymentMethod):
		http.Error(w, "please link a payment method first", http.StatusBadRequest)
		return
	case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrInsufficientBalance):
		http.Error(w, "invalid cashout amount", http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	// Settlement window. Once preconditions pass the payout always lands.
	if h.settleDelay > 0 {
		time.Sleep(h.settleDelay)
	}

	if err := h.store.SaveUser(r.Context(), updated); err != nil {
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}

	destination := user.PaymentMethods[0].Label
	if m := user.DefaultPaymentMethod(); m != nil {
		destination = m.Label
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cashoutResponse{
		Amount: req.Amount,
		SentTo: destination,
		User:   ToUserDTO(updated),
	})
}

type addPaymentRequest struct {
	Type     models.PaymentType `json:"type"`
	Label    string             `json:"label"`
	Provider string             `json:"provider"`
}

func (h *RewardsHandler) AddPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req addPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Label == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Type != models.PaymentCreditCard && req.Type != models.PaymentPayPal {
		http.Error(w, "invalid payment type", http.StatusBadRequest)
		return
	}

	user, ok := currentUser(r, h.store)
	if !ok {
		http.Error(w, "session expired", http.StatusUnauthorized)
		return
	}

	updated := h.ledger.AddPaymentMethod(user, models.PaymentMethod{
		Type:     req.Type,
		Label:    req.Label,
		Provider: req.Provider,
	})
	if err := h.store.SaveUser(r.Context(), updated); err != nil {
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(updated.PaymentMethods)
}

func (h *RewardsHandler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r, h.store)
	if !ok {
		http.Error(w, "session expired", http.StatusUnauthorized)
		return
	}
	methods := user.PaymentMethods
	if methods == nil {
		methods = []models.PaymentMethod{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(methods)
}
