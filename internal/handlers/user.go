package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lastchancecy/apiserver/internal/services"
	"github.com/lastchancecy/apiserver/internal/store"
)

// UserHandler provides profile and user lookup endpoints.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler constructs a handler with the provided service.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ProfileRouter registers the profile route on the given router.
func ProfileRouter(r chi.Router, userService *services.UserService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewUserHandler(userService)

	if authMiddleware != nil {
		r.With(authMiddleware).Get("/{userID}", handler.GetProfile)
	} else {
		r.Get("/{userID}", handler.GetProfile)
	}
}

// UserRouter registers the user lookup route on the given router.
func UserRouter(r chi.Router, userService *services.UserService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewUserHandler(userService)

	if authMiddleware != nil {
		r.With(authMiddleware).Get("/{userID}", handler.GetUser)
	} else {
		r.Get("/{userID}", handler.GetUser)
	}
}

// ProfileResponse is the subset of user fields shown on the profile page.
type ProfileResponse struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
}

// GetProfile returns the profile of the requested user. Identity-scoped:
// the token subject must match the requested id.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizedUserID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("fetch profile %d: %v", id, err)
		writeMessage(w, http.StatusInternalServerError, "Error fetching user profile")
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	})
}

// GetUser returns the full user record. Identity-scoped: the token subject
// must match the requested id. The password hash is never serialized.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizedUserID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("fetch user %d: %v", id, err)
		writeMessage(w, http.StatusInternalServerError, "Error fetching user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// authorizedUserID parses the path id and checks it against the token
// subject, writing the error response itself when the check fails.
func (h *UserHandler) authorizedUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		writeMessage(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}

	callerID, err := userIDFromContext(r.Context())
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	if callerID != id {
		writeMessage(w, http.StatusForbidden, "cannot access another user's data")
		return 0, false
	}

	return id, true
}
