package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/schedulr/apiserver/internal/services"
	"github.com/schedulr/apiserver/internal/store"
	"github.com/sirupsen/logrus"
)

// AuthHandler provides registration and login endpoints.
type AuthHandler struct {
	authService *services.AuthService
	logger      *logrus.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(authService *services.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(
	r chi.Router,
	authService *services.AuthService,
	authMiddleware func(http.Handler) http.Handler,
	logger *logrus.Logger,
) {
	handler := NewAuthHandler(authService, logger)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.With(authMiddleware).Get("/me", handler.Me)
}

// Register creates a new user account and returns a JWT.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Please enter all fields")
		return
	}

	token, err := h.authService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeAuthError(w, err, "registration")
		return
	}

	h.logger.WithField("username", req.Username).Info("user registered")
	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, Message: "User registered successfully"})
}

// Login verifies credentials and returns a JWT.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Please enter all fields")
		return
	}

	token, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeAuthError(w, err, "login")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, Message: "Logged in successfully"})
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Token is not valid")
		return
	}

	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "Token is not valid")
			return
		}
		h.logger.WithError(err).Error("failed to load user")
		writeError(w, http.StatusInternalServerError, "Server error loading user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) writeAuthError(w http.ResponseWriter, err error, operation string) {
	var validationErr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Please enter all fields")
	case errors.Is(err, services.ErrUserExists):
		writeError(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "Invalid credentials")
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Message)
	default:
		h.logger.WithError(err).Errorf("error during %s", operation)
		writeError(w, http.StatusInternalServerError, "Server error during "+operation)
	}
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}
