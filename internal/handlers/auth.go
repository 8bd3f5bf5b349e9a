package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"habbitgold/internal/ledger"
	"habbitgold/internal/models"
	"habbitgold/internal/store"
)

type AuthHandler struct {
	store     store.Store
	ledger    *ledger.Ledger
	jwtSecret []byte
}

func NewAuthHandler(st store.Store, l *ledger.Ledger, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{store: st, ledger: l, jwtSecret: jwtSecret}
}

type loginRequest struct {
	Username string `json:"username"`
}

// Login creates the local profile on first use (starting bonus, streak 1,
// starter habits) or resumes the stored one. The username is the only
// credential.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		http.Error(w, "username required", http.StatusBadRequest)
		return
	}

	user, err := h.store.GetUser(r.Context())
	if err == store.ErrNotFound {
		user = h.ledger.NewUser(req.Username)
		if err := h.store.SaveUser(r.Context(), user); err != nil {
			http.Error(w, "could not create user", http.StatusInternalServerError)
			return
		}
	} else if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	habits, err := h.store.GetHabits(r.Context())
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if len(habits) == 0 {
		if err := h.store.SaveHabits(r.Context(), models.StarterHabits()); err != nil {
			http.Error(w, "could not seed habits", http.StatusInternalServerError)
			return
		}
	}

	token, err := h.issueJWT(user.ID)
	if err != nil {
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"token": token, "user": ToUserDTO(user)})
}

// Logout clears all persisted records; the session token becomes useless
// because there is no longer a profile for it to match.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		http.Error(w, "could not clear data", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) issueJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}

// currentUser loads the stored profile and checks it against the token
// subject. A cleared or replaced profile invalidates old sessions.
func currentUser(r *http.Request, st store.Store) (models.User, bool) {
	userID, _ := r.Context().Value("userID").(string)
	user, err := st.GetUser(r.Context())
	if err != nil || user.ID != userID {
		return models.User{}, false
	}
	return user, true
}
