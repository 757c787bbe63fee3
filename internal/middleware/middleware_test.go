package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crack-go/internal/config"
	"crack-go/internal/repository"
	"crack-go/internal/testutil"
	"crack-go/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware(t *testing.T) {
	db := testutil.NewTestDB(t)
	ann := testutil.CreateUser(t, db, "Ann", "ann@x.com")
	jwtManager := utils.NewJWTManager("test-secret", time.Hour)
	logger, _ := test.NewNullLogger()

	r := gin.New()
	r.GET("/me", AuthMiddleware(jwtManager, repository.NewUserRepository(db), logger), func(c *gin.Context) {
		id, ok := GetUserID(c)
		require.True(t, ok)
		user, ok := GetUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id, "email": user.Email})
	})

	annToken, err := jwtManager.GenerateToken(ann.ID)
	require.NoError(t, err)
	ghostToken, err := jwtManager.GenerateToken(ann.ID + 42)
	require.NoError(t, err)
	foreignToken, err := utils.NewJWTManager("other-secret", time.Hour).GenerateToken(ann.ID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, `{"error":"No token provided"}`},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, `{"error":"Invalid authorization header"}`},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, `{"error":"Invalid authorization header"}`},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, `{"error":"Invalid token"}`},
		{"wrong secret", "Bearer " + foreignToken, http.StatusUnauthorized, `{"error":"Invalid token"}`},
		{"deleted user", "Bearer " + ghostToken, http.StatusNotFound, `{"error":"User not found"}`},
		{"valid", "Bearer " + annToken, http.StatusOK, `{"id":1,"email":"ann@x.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(config.CORSConfig{
		Origins:      []string{"http://app.example"},
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Authorization"},
	}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://app.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoggerMiddleware_LevelByStatus(t *testing.T) {
	logger, hook := test.NewNullLogger()

	r := gin.New()
	r.Use(LoggerMiddleware(logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for path, level := range map[string]logrus.Level{
		"/ok":   logrus.InfoLevel,
		"/bad":  logrus.WarnLevel,
		"/boom": logrus.ErrorLevel,
	} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, level, entry.Level, path)
		assert.Equal(t, path, entry.Data["path"])
	}
}
