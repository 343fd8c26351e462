package handlers

import (
	"net/http"
	"time"

	"github.com/isdelr/tasklist-be/internal/api/respond"
	"github.com/isdelr/tasklist-be/internal/apperrors"
	"github.com/isdelr/tasklist-be/internal/auth"
	"github.com/isdelr/tasklist-be/internal/models"
	"github.com/isdelr/tasklist-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for registration and sessions.
type UserHandler struct {
	service      services.UserServiceProvider
	tokenTTL     time.Duration
	secureCookie bool
}

// NewUserHandler creates a new UserHandler. secureCookie sets the Secure flag
// on the session cookie and should be true in production.
func NewUserHandler(service services.UserServiceProvider, tokenTTL time.Duration, secureCookie bool) *UserHandler {
	return &UserHandler{service: service, tokenTTL: tokenTTL, secureCookie: secureCookie}
}

// CredentialsPayload is the body of register and login requests.
type CredentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := h.service.Register(r.Context(), payload.Username, payload.Password)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindConflict {
			log.Info().Str("username", payload.Username).Msg("Registration with taken username")
		}
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, user)
}

// Login handles authentication. The token is returned in the body and as an
// HttpOnly cookie.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		respond.Error(w, r, err)
		return
	}

	token, user, err := h.service.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindAuthentication {
			log.Warn().Str("username", payload.Username).Msg("Failed authentication attempt")
		}
		respond.Error(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Expires:  time.Now().Add(h.tokenTTL),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	respond.JSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

// Logout clears the session cookie. The token itself stays valid until it
// expires.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	respond.JSON(w, http.StatusOK, respond.MessageBody{Message: "Logged out"})
}

// GetMe returns the authenticated user.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	user, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, user)
}
