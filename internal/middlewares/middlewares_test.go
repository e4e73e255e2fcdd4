package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SketchShifter/vidtube_backend/internal/apperrors"
	"github.com/SketchShifter/vidtube_backend/internal/controllers"
	"github.com/SketchShifter/vidtube_backend/internal/models"
	"github.com/SketchShifter/vidtube_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuth "good" というトークンだけを受け付ける
type fakeAuth struct {
	services.AuthService
}

func (fakeAuth) GetUserFromToken(_ context.Context, token string) (*models.User, error) {
	if token != "good" {
		return nil, apperrors.Unauthorized("Invalid access token")
	}
	return &models.User{ID: models.NewID(), Username: "johndoe"}, nil
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	return r
}

func whoami(ctx *gin.Context) {
	value, exists := ctx.Get("user")
	if !exists {
		ctx.JSON(http.StatusOK, gin.H{"username": ""})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"username": value.(*models.User).Username})
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine(AuthMiddleware(fakeAuth{}))
	r.GET("/me", whoami)

	cases := []struct {
		name   string
		header string
		cookie string
		status int
	}{
		{name: "bearer", header: "Bearer good", status: http.StatusOK},
		{name: "cookie", cookie: "good", status: http.StatusOK},
		{name: "missing", status: http.StatusUnauthorized},
		{name: "invalid", header: "Bearer bad", status: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic good", status: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: controllers.AccessTokenCookie, Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusUnauthorized {
				var body controllers.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.False(t, body.Success)
				assert.Equal(t, http.StatusUnauthorized, body.StatusCode)
			}
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	r := newEngine(OptionalAuthMiddleware(fakeAuth{}))
	r.GET("/me", whoami)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":""}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"username":"johndoe"}`, w.Body.String())
}

func TestErrorMiddlewareRecoversPanic(t *testing.T) {
	r := newEngine(RequestLogger(), ErrorMiddleware())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body controllers.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Something went wrong", body.Message)
	assert.False(t, body.Success)
}

func TestRequestLoggerRequestID(t *testing.T) {
	r := newEngine(RequestLogger())
	r.GET("/", func(ctx *gin.Context) { ctx.String(http.StatusOK, ctx.GetString("requestId")) })

	const id = "5b7b3c7e-3f6c-4d55-9a0e-0c0a8a8f4f11"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(RequestIDHeader))
	assert.Equal(t, id, w.Body.String())

	// 不正な値は採番し直す
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Header().Get(RequestIDHeader))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestCORSMiddleware(t *testing.T) {
	r := newEngine(CORSMiddleware([]string{"http://localhost:5173"}))
	r.GET("/", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
