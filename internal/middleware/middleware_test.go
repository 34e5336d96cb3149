package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/petcare-scheduler/internal/config"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func staffRouter() *gin.Engine {
	r := gin.New()
	r.GET("/staff", AuthMiddleware(&config.Config{JWTSecret: secret}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user": c.MustGet(ContextUserID),
			"role": c.MustGet(ContextUserRole),
		})
	})
	return r
}

func callStaff(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := staffRouter()
	exp := time.Now().Add(time.Hour).Unix()

	t.Run("staff token passes", func(t *testing.T) {
		tok := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "u-1", "role": "staff", "exp": exp})
		w := callStaff(r, "Bearer "+tok)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user":"u-1","role":"staff"}`, w.Body.String())
	})

	t.Run("numeric subject", func(t *testing.T) {
		tok := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": 42, "role": "admin", "exp": exp})
		w := callStaff(r, "Bearer "+tok)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user":"42"`)
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, callStaff(r, "").Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok := sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "u-1", "role": "staff", "exp": exp})
		assert.Equal(t, http.StatusUnauthorized, callStaff(r, "Bearer "+tok).Code)
	})

	t.Run("expired", func(t *testing.T) {
		tok := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "u-1", "role": "staff", "exp": time.Now().Add(-time.Hour).Unix()})
		assert.Equal(t, http.StatusUnauthorized, callStaff(r, "Bearer "+tok).Code)
	})

	t.Run("customer role is forbidden", func(t *testing.T) {
		tok := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "u-1", "role": "customer", "exp": exp})
		assert.Equal(t, http.StatusForbidden, callStaff(r, "Bearer "+tok).Code)
	})

	t.Run("no subject", func(t *testing.T) {
		tok := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"role": "staff", "exp": exp})
		assert.Equal(t, http.StatusUnauthorized, callStaff(r, "Bearer "+tok).Code)
	})
}

func TestCustomerToken(t *testing.T) {
	r := gin.New()
	r.GET("/me", RequireCustomerToken(), func(c *gin.Context) {
		c.String(http.StatusOK, CustomerToken(c))
	})

	call := func(h map[string]string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		for k, v := range h {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := call(map[string]string{"token": "abc"})
	assert.Equal(t, "abc", w.Body.String())

	w = call(map[string]string{"Authorization": "Bearer xyz"})
	assert.Equal(t, "xyz", w.Body.String())

	w = call(map[string]string{"token": "abc", "Authorization": "Bearer xyz"})
	assert.Equal(t, "abc", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, call(nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://shop.example/", " https://office.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(method, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/x", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := call(http.MethodOptions, "https://shop.example")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Calendar-View")

	w = call(http.MethodGet, "https://office.example")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://office.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = call(http.MethodGet, "https://evil.example")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowsAnyOriginByDefault(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
