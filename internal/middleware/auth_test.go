package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmendez/supercerca/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(auth *service.AuthService, roles ...string) *gin.Engine {
	r := gin.New()
	grp := r.Group("/admin", JWTAuth(auth))
	if len(roles) > 0 {
		grp.Use(RequireRole(roles...))
	}
	grp.POST("/refresh", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func adminRequest(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/refresh", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	auth := service.NewAuthService("key", "secret", time.Minute)
	r := newAuthRouter(auth)

	if w := adminRequest(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestJWTAuth_BadFormat(t *testing.T) {
	auth := service.NewAuthService("key", "secret", time.Minute)
	r := newAuthRouter(auth)

	for _, header := range []string{"token-without-scheme", "Basic dXNlcjpwYXNz"} {
		if w := adminRequest(r, header); w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, w.Code)
		}
	}
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	auth := service.NewAuthService("key", "secret", time.Minute)
	r := newAuthRouter(auth)

	if w := adminRequest(r, "Bearer not.a.token"); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestJWTAuth_ValidTokenPasses(t *testing.T) {
	auth := service.NewAuthService("key", "secret", time.Minute)
	token, err := auth.IssueToken("key")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := newAuthRouter(auth)
	if w := adminRequest(r, "Bearer "+token); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	auth := service.NewAuthService("key", "secret", time.Minute)
	token, err := auth.IssueToken("key")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Issued tokens carry role=admin.
	r := newAuthRouter(auth, "admin")
	if w := adminRequest(r, "Bearer "+token); w.Code != http.StatusOK {
		t.Errorf("admin role: status = %d, want 200", w.Code)
	}

	r = newAuthRouter(auth, "superuser")
	if w := adminRequest(r, "Bearer "+token); w.Code != http.StatusForbidden {
		t.Errorf("wrong role: status = %d, want 403", w.Code)
	}
}
