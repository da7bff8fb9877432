package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/splitledger/internal/adapter/repository/memory"
	"github.com/iho/splitledger/internal/domain"
	"github.com/iho/splitledger/internal/usecase"
)

type fakeIdempotencyStore struct {
	checkAndSetFn func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	updateFn      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	released      []string
}

func (f *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if f.checkAndSetFn != nil {
		return f.checkAndSetFn(ctx, key, response, ttl)
	}
	return false, nil, nil
}

func (f *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, key, response, ttl)
	}
	return nil
}

func (f *fakeIdempotencyStore) Release(ctx context.Context, key string) error {
	f.released = append(f.released, key)
	return nil
}

func newIdempotentRequest(key, user string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/settlements", bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, key)
	if user != "" {
		req = req.WithContext(domain.WithUser(req.Context(), &domain.User{ID: user}))
	}
	return req
}

func TestIdempotencyMiddleware_FailsOnStoreErrors(t *testing.T) {
	var called bool
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, context.DeadlineExceeded
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop())

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, newIdempotentRequest("key-err", "bob"))

	if called {
		t.Fatalf("handler should not be called when store errors")
	}

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ReleasesFailedResponses(t *testing.T) {
	var updated bool
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updated = true
			return nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop())

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})).ServeHTTP(rr, newIdempotentRequest("key-fail", "bob"))

	if updated {
		t.Fatalf("expected error responses not to be cached")
	}
	if len(store.released) != 1 || store.released[0] != "bob:/api/v1/settlements:key-fail" {
		t.Fatalf("expected scoped key to be released, got %v", store.released)
	}
}

func TestIdempotencyMiddleware_ReplaysStatusAndBody(t *testing.T) {
	mw := NewIdempotencyMiddleware(memory.NewIdempotencyStore(), time.Hour, zerolog.Nop())

	calls := 0
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"set-1"}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, newIdempotentRequest("k1", "bob"))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, newIdempotentRequest("k1", "bob"))

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if second.Code != http.StatusCreated || second.Body.String() != `{"id":"set-1"}` {
		t.Fatalf("unexpected replay: %d %s", second.Code, second.Body.String())
	}
	if second.Header().Get("X-Idempotency-Replay") != "true" {
		t.Fatalf("expected replay header")
	}

	// same key from another caller is a different request
	other := httptest.NewRecorder()
	handler.ServeHTTP(other, newIdempotentRequest("k1", "carol"))
	if calls != 2 {
		t.Fatalf("expected keys to be scoped per caller")
	}
}

func TestIdempotencyMiddleware_PendingIsConflict(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte(usecase.IdempotencyPending), nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop())

	rr := httptest.NewRecorder()
	mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run while the key is pending")
	})).ServeHTTP(rr, newIdempotentRequest("k", "bob"))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_SkipsReadsAndMissingKey(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			t.Fatal("store must not be consulted")
			return false, nil, nil
		},
	}
	mw := NewIdempotencyMiddleware(store, time.Hour, zerolog.Nop())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	get := httptest.NewRequest(http.MethodGet, "/api/v1/balances", nil)
	get.Header.Set(IdempotencyKeyHeader, "k")
	mw.Wrap(next).ServeHTTP(httptest.NewRecorder(), get)

	post := httptest.NewRequest(http.MethodPost, "/api/v1/settlements", nil)
	mw.Wrap(next).ServeHTTP(httptest.NewRecorder(), post)
}

func TestIdempotencyMiddleware_ReleasesKeyWhenHandlerPanics(t *testing.T) {
	mw := NewIdempotencyMiddleware(memory.NewIdempotencyStore(), time.Hour, zerolog.Nop())

	calls := 0
	handler := Recovery(zerolog.Nop())(mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			panic("ledger unavailable")
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"set-1"}`))
	})))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, newIdempotentRequest("k-panic", "bob"))
	if first.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 from the panicking request, got %d", first.Code)
	}

	retry := httptest.NewRecorder()
	handler.ServeHTTP(retry, newIdempotentRequest("k-panic", "bob"))
	if retry.Code != http.StatusCreated {
		t.Fatalf("expected the retry to run the handler, got %d %s", retry.Code, retry.Body.String())
	}
	if calls != 2 {
		t.Fatalf("expected handler to run twice, ran %d times", calls)
	}
}
