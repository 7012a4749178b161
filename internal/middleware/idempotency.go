package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "stockroom/internal/errors"
	"stockroom/internal/logger"
)

// IdempotencyHeader is the request header clients set to make a POST safe
// to retry.
const IdempotencyHeader = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

// IdempotencyStore remembers which keys have been used.
type IdempotencyStore interface {
	// Reserve claims key, reporting false if it was already claimed.
	Reserve(ctx context.Context, key string) (bool, error)
	// Release forgets key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// Idempotency rejects a repeated Idempotency-Key with 409. Keys are scoped
// per route and per user. A request that does not succeed releases its key.
// Requests without the header, and all requests when the store is
// unreachable, pass straight through.
func Idempotency(store IdempotencyStore, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
		if key == "" || store == nil {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Idempotency-Key is too long"))
			return
		}

		fullKey := scope + ":" + c.GetString(ContextUserID) + ":" + key
		ctx := c.Request.Context()

		reserved, err := store.Reserve(ctx, fullKey)
		if err != nil {
			logger.Get().Warnw("idempotency store unavailable, continuing without it",
				"error", err, "path", c.Request.URL.Path)
			c.Next()
			return
		}
		if !reserved {
			abortWithError(c, apperrors.ErrDuplicateRequest)
			return
		}

		c.Next()

		if c.Writer.Status() >= 300 {
			if err := store.Release(context.WithoutCancel(ctx), fullKey); err != nil {
				logger.Get().Warnw("failed to release idempotency key", "error", err, "key", fullKey)
			}
		}
	}
}
