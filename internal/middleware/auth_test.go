package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "stockroom/internal/errors"
	"stockroom/internal/models"
)

// userTable is an in-memory UserLookup keyed by user ID.
type userTable map[string]*models.User

func (u userTable) GetUserByID(_ context.Context, id string) (*models.User, error) {
	user, ok := u[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

type failingLookup struct{}

func (failingLookup) GetUserByID(context.Context, string) (*models.User, error) {
	return nil, errors.New("connection refused")
}

func testUser(isStaff bool) *models.User {
	user := &models.User{Username: "clerk", IsStaff: isStaff, IsActive: true}
	user.ID = "0190f5a4-0000-7000-8000-000000000001"
	return user
}

func protectedRouter(users UserLookup) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware()}
	if users != nil {
		handlers = append(handlers, RequireStaff(users))
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetString(ContextUserID),
			"username": c.GetString(ContextUsername),
			"is_staff": c.GetBool(ContextIsStaff),
		})
	})
	r.GET("/protected", handlers...)
	return r
}

func bearer(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	token, expiresAt, err := GenerateAccessToken(testUser(true))
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "0190f5a4-0000-7000-8000-000000000001", claims.UserID)
	assert.Equal(t, "clerk", claims.Username)
	assert.True(t, claims.IsStaff)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	t.Run("wrong_secret", func(t *testing.T) {
		claims := &JWTClaims{
			UserID: "x",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    tokenIssuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("someone-else"))
		require.NoError(t, err)

		_, err = ParseAccessToken(signed)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		claims := &JWTClaims{
			UserID: "x",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    tokenIssuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(getJWTKey())
		require.NoError(t, err)

		_, err = ParseAccessToken(signed)
		assert.Error(t, err)
	})

	t.Run("wrong_issuer", func(t *testing.T) {
		claims := &JWTClaims{
			UserID: "x",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone-else",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(getJWTKey())
		require.NoError(t, err)

		_, err = ParseAccessToken(signed)
		assert.Error(t, err)
	})
}

func TestAuthMiddleware(t *testing.T) {
	r := protectedRouter(nil)

	t.Run("valid_token", func(t *testing.T) {
		token, _, err := GenerateAccessToken(testUser(false))
		require.NoError(t, err)

		w := serve(r, bearer(token))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":"0190f5a4-0000-7000-8000-000000000001"`)
	})

	t.Run("missing_header", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/protected", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, w).Error.Code)
	})

	t.Run("bad_scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		w := serve(r, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage_token", func(t *testing.T) {
		w := serve(r, bearer("not-a-jwt"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, w).Error.Code)
	})
}

func TestRequireStaff(t *testing.T) {
	staff := testUser(true)
	users := userTable{staff.ID: staff}
	r := protectedRouter(users)

	token, _, err := GenerateAccessToken(staff)
	require.NoError(t, err)

	t.Run("staff", func(t *testing.T) {
		staff.IsStaff, staff.IsActive = true, true

		w := serve(r, bearer(token))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"is_staff":true`)
	})

	t.Run("not_staff", func(t *testing.T) {
		clerk := testUser(false)
		clerk.ID = "0190f5a4-0000-7000-8000-000000000002"
		users[clerk.ID] = clerk
		clerkToken, _, err := GenerateAccessToken(clerk)
		require.NoError(t, err)

		w := serve(r, bearer(clerkToken))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "NOT_STAFF", decodeError(t, w).Error.Code)
	})

	t.Run("demoted_after_token_issued", func(t *testing.T) {
		staff.IsStaff, staff.IsActive = false, true
		defer func() { staff.IsStaff = true }()

		w := serve(r, bearer(token))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "NOT_STAFF", decodeError(t, w).Error.Code)
	})

	t.Run("deactivated_after_token_issued", func(t *testing.T) {
		staff.IsStaff, staff.IsActive = true, false
		defer func() { staff.IsActive = true }()

		w := serve(r, bearer(token))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "NOT_STAFF", decodeError(t, w).Error.Code)
	})

	t.Run("user_deleted", func(t *testing.T) {
		ghost := testUser(true)
		ghost.ID = "0190f5a4-0000-7000-8000-000000000003"
		ghostToken, _, err := GenerateAccessToken(ghost)
		require.NoError(t, err)

		w := serve(r, bearer(ghostToken))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, w).Error.Code)
	})

	t.Run("lookup_error", func(t *testing.T) {
		w := serve(protectedRouter(failingLookup{}), bearer(token))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, w).Error.Code)
	})

	t.Run("without_auth_middleware", func(t *testing.T) {
		r := gin.New()
		r.GET("/protected", RequireStaff(users), func(c *gin.Context) { c.Status(http.StatusOK) })

		w := serve(r, httptest.NewRequest(http.MethodGet, "/protected", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, w).Error.Code)
	})
}
