package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	apperrors "stockroom/internal/errors"
	"stockroom/internal/logger"
)

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperrors.Wrap(apperrors.ErrSaleNotFound, errors.New("record not found")))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})
	r.GET("/written", func(c *gin.Context) {
		c.JSON(http.StatusTeapot, gin.H{"ok": true})
		_ = c.Error(errors.New("late"))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/app", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "SALE_NOT_FOUND", body.Error.Code)
	assert.Equal(t, "Sale not found", body.Error.Message)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, w).Error.Code)
	assert.NotContains(t, w.Body.String(), "boom")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/written", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestRequestLogging_RequestID(t *testing.T) {
	var fromContext string
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/", func(c *gin.Context) {
		fromContext = logger.RequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	incoming := "0190f5a4-0000-7000-8000-0000000000aa"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w := serve(r, req)
	assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))
	assert.Equal(t, incoming, fromContext)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not a uuid")
	w = serve(r, req)
	assert.NotEqual(t, "not a uuid", w.Header().Get(RequestIDHeader))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), fromContext)
}
