package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/student-records/apiserver/internal/services"
	"github.com/student-records/apiserver/types"
	"go.uber.org/zap"
)

var (
	// ErrUnauthorized covers a missing or malformed header, an invalid or
	// expired token, and a token whose subject no longer exists.
	ErrUnauthorized = errors.New("could not validate credentials")

	ErrInactiveUser = errors.New("inactive user")
)

// UserFinder resolves token subjects to users.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (types.User, bool, error)
}

// TokenVerifier checks access tokens and returns their subject.
type TokenVerifier interface {
	Verify(token string) (string, bool)
}

// TokenIssuer mints access tokens.
type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
}

// Gate authenticates requests carrying a bearer token.
type Gate struct {
	users  UserFinder
	tokens TokenVerifier
	log    *zap.Logger
}

func NewGate(users UserFinder, tokens TokenVerifier, log *zap.Logger) *Gate {
	return &Gate{users: users, tokens: tokens, log: log}
}

// Authenticate resolves the user behind an Authorization header value.
// It fails with ErrUnauthorized or ErrInactiveUser; any other error comes
// from the user store.
func (g *Gate) Authenticate(ctx context.Context, authorization string) (types.User, error) {
	token, err := bearerToken(authorization)
	if err != nil {
		return types.User{}, ErrUnauthorized
	}

	username, ok := g.tokens.Verify(token)
	if !ok {
		return types.User{}, ErrUnauthorized
	}

	user, ok, err := g.users.FindByUsername(ctx, username)
	if err != nil {
		return types.User{}, err
	}
	if !ok {
		return types.User{}, ErrUnauthorized
	}
	if !user.IsActive {
		return types.User{}, ErrInactiveUser
	}
	return user, nil
}

// RequireAuth enforces authentication and injects the user into context.
func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.Authenticate(r.Context(), r.Header.Get("Authorization"))
		switch {
		case errors.Is(err, ErrUnauthorized):
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		case errors.Is(err, ErrInactiveUser):
			writeError(w, http.StatusBadRequest, "Inactive user")
			return
		case err != nil:
			serverError(w, r, g.log, err, "failed to authenticate request")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// AuthHandler provides account and token endpoints.
type AuthHandler struct {
	users    *services.UserService
	tokens   TokenIssuer
	tokenTTL time.Duration
	log      *zap.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(users *services.UserService, tokens TokenIssuer, tokenTTL time.Duration, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		log:      log,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler, gate *Gate) {
	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.With(gate.RequireAuth).Get("/me", handler.Me)
}

// Register creates a new user account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if msg := validateStruct(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrDuplicateUsername):
		writeError(w, http.StatusBadRequest, "Username already exists")
		return
	case errors.Is(err, services.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, "Email already exists")
		return
	case errors.Is(err, services.ErrPasswordTooLong):
		writeError(w, http.StatusBadRequest, "field password must be at most 72 bytes")
		return
	case err != nil:
		serverError(w, r, h.log, err, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login verifies credentials and returns an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if msg := validateStruct(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, ok, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		serverError(w, r, h.log, err, "failed to authenticate")
		return
	}
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := h.tokens.Issue(user.Username, h.tokenTTL)
	if err != nil {
		serverError(w, r, h.log, err, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,bytesmax=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func bearerToken(header string) (string, error) {
	auth := strings.TrimSpace(header)
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
