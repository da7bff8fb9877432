package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/iho/splitledger/internal/adapter/http/dto"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/auth"
)

// Header names used by the header authenticator.
const (
	UserIDHeader   = "X-User-ID"
	UserNameHeader = "X-User-Name"
)

// TokenVerifier validates a bearer token.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// UserRegistrar records the display name of an authenticated caller.
type UserRegistrar interface {
	Register(ctx context.Context, user *domain.User) error
}

// maxRegisteredNames bounds the names remembered between requests.
const maxRegisteredNames = 10000

// Authenticator binds the caller identity to the request context.
type Authenticator struct {
	verifier  TokenVerifier
	registrar UserRegistrar
	logger    zerolog.Logger

	mu         sync.Mutex
	registered map[string]string
}

// NewAuthenticator creates an Authenticator. With a nil verifier the caller is
// taken from the X-User-ID header, which is only suitable behind a trusted gateway.
// registrar may be nil.
func NewAuthenticator(verifier TokenVerifier, registrar UserRegistrar, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		verifier:   verifier,
		registrar:  registrar,
		logger:     logger,
		registered: make(map[string]string),
	}
}

// Wrap rejects requests without a valid caller.
func (a *Authenticator) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.identify(r)
		if err != nil {
			unauthorized(w, err.Error())
			return
		}

		ctx := domain.WithUser(r.Context(), user)
		a.register(ctx, user)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) identify(r *http.Request) (*domain.User, error) {
	if a.verifier == nil {
		id := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if id == "" {
			return nil, domain.ErrUnauthorized
		}
		return &domain.User{ID: id, Name: strings.TrimSpace(r.Header.Get(UserNameHeader))}, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, domain.ErrUnauthorized
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, domain.ErrInvalidToken
	}

	claims, err := a.verifier.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, err
	}

	return claims.User(), nil
}

// register is best effort: a caller without a stored name shows as Unknown.
// A name already written by this process is not written again.
func (a *Authenticator) register(ctx context.Context, user *domain.User) {
	if a.registrar == nil || user.Name == "" {
		return
	}

	a.mu.Lock()
	known, ok := a.registered[user.ID]
	a.mu.Unlock()
	if ok && known == user.Name {
		return
	}

	if err := a.registrar.Register(ctx, user); err != nil {
		a.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to register user name")
		return
	}

	a.mu.Lock()
	if len(a.registered) >= maxRegisteredNames {
		clear(a.registered)
	}
	a.registered[user.ID] = user.Name
	a.mu.Unlock()
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "unauthorized", Message: message})
}
