package middleware

import (
	"ethioheritage_backend/internal/model"
	"ethioheritage_backend/internal/policy"
	"ethioheritage_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-test-secret-test-secret"

func token(t *testing.T, userID uint, role model.UserRole, ttl time.Duration) string {
	t.Helper()
	tok, err := util.GenerateJWT(userID, role, "Tester", "tester@example.et", secret, ttl)
	require.NoError(t, err)
	return tok
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		if claims == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, string(claims.Role))
	})
	r.GET("/", handlers...)
	return r
}

func do(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(secret))

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"expired", "Bearer " + token(t, 1, model.Learner, -time.Minute), http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token(t, 1, model.Learner, time.Hour), http.StatusUnauthorized},
		{"valid", "Bearer " + token(t, 1, model.Learner, time.Hour), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, do(r, tt.header).Code)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	r := newRouter(OptionalAuth(secret))
	assert.Equal(t, "anonymous", do(r, "").Body.String())
	assert.Equal(t, "anonymous", do(r, "Bearer junk").Body.String())
	assert.Equal(t, "instructor", do(r, "Bearer "+token(t, 2, model.Instructor, time.Hour)).Body.String())
}

func TestAuthorize(t *testing.T) {
	r := newRouter(AuthMiddleware(secret), Authorize(policy.ActionRevoke, policy.ResourceCertificate))

	assert.Equal(t, http.StatusForbidden, do(r, "Bearer "+token(t, 1, model.Learner, time.Hour)).Code)
	assert.Equal(t, http.StatusForbidden, do(r, "Bearer "+token(t, 2, model.Instructor, time.Hour)).Code)
	assert.Equal(t, http.StatusOK, do(r, "Bearer "+token(t, 3, model.Admin, time.Hour)).Code)

	anon := newRouter(Authorize(policy.ActionCreate, policy.ResourceCourse))
	assert.Equal(t, http.StatusUnauthorized, do(anon, "").Code)
}
