package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// memoryStore is an in-memory IdempotencyStore.
type memoryStore struct {
	mu       sync.Mutex
	keys     map[string]bool
	released []string
	err      error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{keys: make(map[string]bool)}
}

func (s *memoryStore) Reserve(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	s.released = append(s.released, key)
	return nil
}

var _ IdempotencyStore = (*memoryStore)(nil)

func idempotentRouter(store IdempotencyStore, status *int, calls *int) *gin.Engine {
	r := gin.New()
	r.POST("/sales",
		func(c *gin.Context) {
			c.Set(ContextUserID, c.GetHeader("X-User"))
			c.Next()
		},
		Idempotency(store, "sales:create"),
		func(c *gin.Context) {
			*calls++
			c.Status(*status)
		},
	)
	return r
}

func postWithKey(key, user string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/sales", nil)
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	req.Header.Set("X-User", user)
	return req
}

func TestIdempotency(t *testing.T) {
	t.Run("repeat_key_conflicts", func(t *testing.T) {
		store := newMemoryStore()
		status, calls := http.StatusCreated, 0
		r := idempotentRouter(store, &status, &calls)

		w := serve(r, postWithKey("abc", "u1"))
		assert.Equal(t, http.StatusCreated, w.Code)

		w = serve(r, postWithKey("abc", "u1"))
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "DUPLICATE_REQUEST", decodeError(t, w).Error.Code)
		assert.Equal(t, 1, calls)
	})

	t.Run("keys_are_per_user", func(t *testing.T) {
		store := newMemoryStore()
		status, calls := http.StatusCreated, 0
		r := idempotentRouter(store, &status, &calls)

		assert.Equal(t, http.StatusCreated, serve(r, postWithKey("abc", "u1")).Code)
		assert.Equal(t, http.StatusCreated, serve(r, postWithKey("abc", "u2")).Code)
		assert.Equal(t, 2, calls)
	})

	t.Run("failure_releases_key", func(t *testing.T) {
		store := newMemoryStore()
		status, calls := http.StatusBadRequest, 0
		r := idempotentRouter(store, &status, &calls)

		assert.Equal(t, http.StatusBadRequest, serve(r, postWithKey("abc", "u1")).Code)
		assert.Equal(t, []string{"sales:create:u1:abc"}, store.released)

		status = http.StatusCreated
		assert.Equal(t, http.StatusCreated, serve(r, postWithKey("abc", "u1")).Code)
		assert.Equal(t, 2, calls)
	})

	t.Run("no_header_passes_through", func(t *testing.T) {
		store := newMemoryStore()
		status, calls := http.StatusCreated, 0
		r := idempotentRouter(store, &status, &calls)

		serve(r, postWithKey("", "u1"))
		serve(r, postWithKey("", "u1"))
		assert.Equal(t, 2, calls)
		assert.Empty(t, store.keys)
	})

	t.Run("nil_store_passes_through", func(t *testing.T) {
		status, calls := http.StatusCreated, 0
		r := idempotentRouter(nil, &status, &calls)

		serve(r, postWithKey("abc", "u1"))
		serve(r, postWithKey("abc", "u1"))
		assert.Equal(t, 2, calls)
	})

	t.Run("store_error_fails_open", func(t *testing.T) {
		store := newMemoryStore()
		store.err = errors.New("connection refused")
		status, calls := http.StatusCreated, 0
		r := idempotentRouter(store, &status, &calls)

		assert.Equal(t, http.StatusCreated, serve(r, postWithKey("abc", "u1")).Code)
		assert.Equal(t, 1, calls)
	})

	t.Run("key_too_long", func(t *testing.T) {
		store := newMemoryStore()
		status, calls := http.StatusCreated, 0
		r := idempotentRouter(store, &status, &calls)

		w := serve(r, postWithKey(strings.Repeat("k", maxIdempotencyKeyLen+1), "u1"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_INPUT", decodeError(t, w).Error.Code)
		assert.Zero(t, calls)
	})
}
