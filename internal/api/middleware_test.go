package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nekogravitycat/campus-resource-booking/internal/auth"
	"github.com/nekogravitycat/campus-resource-booking/internal/user"
)

type stubUsers struct {
	user.Service
	users map[string]*user.User
}

func (s *stubUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func newUsers() *stubUsers {
	return &stubUsers{users: map[string]*user.User{
		"admin":   {ID: "admin", Role: user.RoleAdmin, IsActive: true},
		"retired": {ID: "retired", Role: user.RoleAdmin, IsActive: false},
		"student": {ID: "student", Role: user.RoleUser, IsActive: true},
		"alumnus": {ID: "alumnus", Role: user.RoleUser, IsActive: false},
	}}
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		userID string
		role   string
		code   int
	}{
		{"admin", "admin", auth.RoleAdmin, http.StatusOK},
		{"token says admin but db says user", "student", auth.RoleAdmin, http.StatusForbidden},
		{"deactivated admin", "retired", auth.RoleAdmin, http.StatusForbidden},
		{"unknown user", "ghost", auth.RoleAdmin, http.StatusUnauthorized},
		{"anonymous", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin",
				func(c *gin.Context) { auth.SetIdentity(c, tt.userID, tt.role); c.Next() },
				RequireAdmin(newUsers()),
				func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"admin": auth.IsAdmin(c)}) },
			)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestRequestLoggerLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, p := range []string{"/ok", "/bad", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/bad", entries[1].ContextMap()["path"])
	assert.EqualValues(t, 400, entries[1].ContextMap()["status"])
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.ErrorLevel)

	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/panic", func(*gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestNewRouterWiring(t *testing.T) {
	jwt := auth.NewJWTManager("secret", time.Hour)
	r, err := NewRouter(Config{
		Logger:      zap.NewNop(),
		JWTManager:  jwt,
		UserService: newUsers(),
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/bookings", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	call := func(userID, path string) *httptest.ResponseRecorder {
		token, err := jwt.GenerateAccessToken(userID, auth.RoleUser)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusForbidden, call("student", "/v1/admin/dashboard/stats").Code)

	// Tokens outlive deactivation and deletion; the account is re-read per request.
	w = call("alumnus", "/v1/bookings")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"user is inactive"}`, w.Body.String())
	assert.Equal(t, http.StatusUnauthorized, call("ghost", "/v1/bookings").Code)
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"https://a.edu", "https://b.edu"}, splitOrigins(" https://a.edu, ,https://b.edu "))
	assert.Nil(t, splitOrigins(""))
}
