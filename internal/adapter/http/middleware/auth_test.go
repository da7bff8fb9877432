package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/infrastructure/auth"
)

type recordingRegistrar struct {
	users []*domain.User
	err   error
}

func (r *recordingRegistrar) Register(_ context.Context, user *domain.User) error {
	r.users = append(r.users, user)
	return r.err
}

func captureUser(got **domain.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := domain.UserFromContext(r.Context())
		*got = user
	})
}

func TestAuthenticator_BearerToken(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	token, err := manager.Generate(&domain.User{ID: "alice", Name: "Alice"})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	registrar := &recordingRegistrar{}
	a := NewAuthenticator(manager, registrar, zerolog.Nop())

	var got *domain.User
	req := httptest.NewRequest(http.MethodGet, "/api/v1/balances", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	a.Wrap(captureUser(&got)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || got == nil || got.ID != "alice" {
		t.Fatalf("expected alice to be authenticated, got %d %+v", rr.Code, got)
	}
	if len(registrar.users) != 1 || registrar.users[0].Name != "Alice" {
		t.Fatalf("expected display name to be registered, got %+v", registrar.users)
	}
}

func TestAuthenticator_Rejects(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	a := NewAuthenticator(manager, nil, zerolog.Nop())

	for name, header := range map[string]string{
		"missing":   "",
		"scheme":    "Basic abc",
		"malformed": "Bearer not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/balances", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rr := httptest.NewRecorder()
			a.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			})).ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
		})
	}
}

func TestAuthenticator_HeaderMode(t *testing.T) {
	registrar := &recordingRegistrar{err: errors.New("db down")}
	a := NewAuthenticator(nil, registrar, zerolog.Nop())

	var got *domain.User
	req := httptest.NewRequest(http.MethodGet, "/api/v1/balances", nil)
	req.Header.Set(UserIDHeader, "bob")
	req.Header.Set(UserNameHeader, "Bob")
	rr := httptest.NewRecorder()
	a.Wrap(captureUser(&got)).ServeHTTP(rr, req)

	// registration failures do not fail the request
	if rr.Code != http.StatusOK || got == nil || got.ID != "bob" || got.Name != "Bob" {
		t.Fatalf("expected bob from headers, got %d %+v", rr.Code, got)
	}

	rr = httptest.NewRecorder()
	a.Wrap(captureUser(&got)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/balances", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without header, got %d", rr.Code)
	}
}

func TestAuthenticator_RegistersEachNameOnce(t *testing.T) {
	registrar := &recordingRegistrar{}
	a := NewAuthenticator(nil, registrar, zerolog.Nop())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	send := func(name string) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/balances", nil)
		req.Header.Set(UserIDHeader, "bob")
		req.Header.Set(UserNameHeader, name)
		a.Wrap(next).ServeHTTP(httptest.NewRecorder(), req)
	}

	send("Bob")
	send("Bob")
	send("Bob")
	if len(registrar.users) != 1 {
		t.Fatalf("expected one write for a repeated name, got %d", len(registrar.users))
	}

	send("Robert")
	if len(registrar.users) != 2 || registrar.users[1].Name != "Robert" {
		t.Fatalf("expected a renamed caller to be written again, got %+v", registrar.users)
	}
}

func TestAuthenticator_RetriesFailedRegistration(t *testing.T) {
	registrar := &recordingRegistrar{err: errors.New("db down")}
	a := NewAuthenticator(nil, registrar, zerolog.Nop())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/balances", nil)
		req.Header.Set(UserIDHeader, "bob")
		req.Header.Set(UserNameHeader, "Bob")
		a.Wrap(next).ServeHTTP(httptest.NewRecorder(), req)
	}

	if len(registrar.users) != 2 {
		t.Fatalf("expected a failed write to be retried, got %d attempts", len(registrar.users))
	}
}
