package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/ayush/task-tracker/internal/apperr"
	"github.com/ayush/task-tracker/internal/middleware"
	"github.com/ayush/task-tracker/internal/models"
	"github.com/ayush/task-tracker/internal/session"
)

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc *Service
	ttl time.Duration
}

func NewHandler(svc *Service, ttl time.Duration) *Handler {
	return &Handler{svc: svc, ttl: ttl}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError maps a service error to its HTTP status and JSON body.
func respondError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("auth: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": apperr.ClientMessage(err)})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.ttl / time.Second),
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// Register creates a new user and logs it in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	user, sid, err := h.svc.Register(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	h.setSessionCookie(w, sid)
	writeJSON(w, http.StatusCreated, user.Public())
}

// Login authenticates a user and creates a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	user, sid, err := h.svc.Login(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	h.setSessionCookie(w, sid)
	writeJSON(w, http.StatusOK, user.Public())
}

// Logout destroys the current session. Succeeds even without one.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), middleware.SessionToken(r)); err != nil {
		respondError(w, err)
		return
	}
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me returns the current user, or null for anonymous requests. Never 401.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.Identity(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	user, err := h.svc.CurrentUser(r.Context(), identity.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ChangeEmail sets a new (normalized) email for the current user.
func (h *Handler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	identity := middleware.Identity(r.Context())

	var req models.ChangeEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	email, err := h.svc.ChangeEmail(r.Context(), identity.UserID, req.NewEmail)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "email": email})
}

// DeleteAccount removes the current user after password confirmation. Owned
// tasks cascade away with the user row.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	identity := middleware.Identity(r.Context())

	var req models.DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.svc.DeleteAccount(r.Context(), identity.UserID, req.Password, middleware.SessionToken(r)); err != nil {
		respondError(w, err)
		return
	}

	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
