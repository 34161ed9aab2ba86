package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staynest/service-booking/pkg/auth"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(jwtManager *auth.JWTManager, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.NewNop()), RequestIDMiddleware())
	handlers := append([]gin.HandlerFunc{AuthMiddleware(jwtManager)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := GetUserID(c)
		role, _ := GetUserRole(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "role": role})
	})
	r.GET("/whoami", handlers...)
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	m := auth.NewJWTManager("secret", time.Minute)
	r := newRouter(m)

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "garbage").Code)

	token, err := m.GenerateAccessToken(9, auth.RoleTraveler)
	require.NoError(t, err)
	w := do(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":9,"role":"traveler"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequireRole(t *testing.T) {
	m := auth.NewJWTManager("secret", time.Minute)
	r := newRouter(m, RequireRole(auth.RoleOwner, auth.RoleAdmin))

	traveler, _ := m.GenerateAccessToken(1, auth.RoleTraveler)
	owner, _ := m.GenerateAccessToken(2, auth.RoleOwner)

	w := do(r, traveler)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Forbidden","code":"FORBIDDEN"}`, w.Body.String())
	assert.Equal(t, http.StatusOK, do(r, owner).Code)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(1, 2), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_DisabledWhenRateNotPositive(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(0, 0), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for range 5 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestClientRateLimiter_EvictsIdleBuckets(t *testing.T) {
	l := NewClientRateLimiter(1, 1, 50*time.Millisecond)

	first := l.Limiter("ip:10.0.0.1")
	assert.True(t, first.Allow())
	assert.Same(t, first, l.Limiter("ip:10.0.0.1"))
	assert.False(t, l.Limiter("ip:10.0.0.1").Allow())

	time.Sleep(120 * time.Millisecond)
	l.store.DeleteExpired()
	assert.Zero(t, l.store.ItemCount())

	fresh := l.Limiter("ip:10.0.0.1")
	assert.NotSame(t, first, fresh)
	assert.True(t, fresh.Allow())
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.NewNop()))
	r.GET("/", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
