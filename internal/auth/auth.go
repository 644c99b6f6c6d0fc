// Package auth implements the single-user login flag that gates the API.
// It keeps the user interface honest, it is not an access-control system.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ignite/mailflow/internal/config"
	"github.com/ignite/mailflow/internal/pkg/httputil"
	"github.com/ignite/mailflow/internal/pkg/logger"
)

// ErrInvalidPassword is returned by Login for a wrong password.
var ErrInvalidPassword = errors.New("invalid password")

// SessionStore persists the logged-in flag.
type SessionStore interface {
	Set(ctx context.Context, at time.Time) error
	Clear(ctx context.Context) error
	IsSet(ctx context.Context) (bool, error)
}

// Status is the body of the status endpoint.
type Status struct {
	Enabled       bool `json:"enabled"`
	Authenticated bool `json:"authenticated"`
}

// AuthManager checks the password and tracks the login flag.
type AuthManager struct {
	enabled bool
	hash    []byte
	store   SessionStore
	now     func() time.Time
}

// NewAuthManager creates an AuthManager. A configured bcrypt hash wins
// over the plaintext password, which is hashed once here.
func NewAuthManager(cfg config.AuthConfig, store SessionStore) (*AuthManager, error) {
	hash := []byte(cfg.PasswordHash)
	if len(hash) == 0 {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid password hash: %w", err)
	}
	return &AuthManager{enabled: cfg.Enabled, hash: hash, store: store, now: time.Now}, nil
}

// Enabled reports whether the API requires a login.
func (am *AuthManager) Enabled() bool { return am.enabled }

// Login raises the flag when password matches.
func (am *AuthManager) Login(ctx context.Context, password string) error {
	if err := bcrypt.CompareHashAndPassword(am.hash, []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return am.store.Set(ctx, am.now())
}

// Logout lowers the flag.
func (am *AuthManager) Logout(ctx context.Context) error {
	return am.store.Clear(ctx)
}

// IsAuthenticated reports whether the flag is raised. Storage errors
// count as logged out.
func (am *AuthManager) IsAuthenticated(ctx context.Context) bool {
	ok, err := am.store.IsSet(ctx)
	if err != nil {
		logger.Warn("auth: reading login flag failed", "error", err)
		return false
	}
	return ok
}

// HandleLogin handles POST /api/auth/login.
func (am *AuthManager) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	switch err := am.Login(r.Context(), req.Password); {
	case errors.Is(err, ErrInvalidPassword):
		httputil.Unauthorized(w, "Invalid password")
	case err != nil:
		httputil.InternalError(w, err)
	default:
		httputil.OK(w, Status{Enabled: am.enabled, Authenticated: true})
	}
}

// HandleLogout handles POST /api/auth/logout.
func (am *AuthManager) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := am.Logout(r.Context()); err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, Status{Enabled: am.enabled})
}

// HandleStatus handles GET /api/auth/status.
func (am *AuthManager) HandleStatus(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, Status{
		Enabled:       am.enabled,
		Authenticated: !am.enabled || am.IsAuthenticated(r.Context()),
	})
}

// RequireAuth rejects requests while the flag is lowered. It passes
// everything through when auth is disabled.
func (am *AuthManager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if am.enabled && !am.IsAuthenticated(r.Context()) {
			httputil.Unauthorized(w, "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
