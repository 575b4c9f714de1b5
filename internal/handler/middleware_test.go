package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newAuthRouter(key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", APIKeyAuth(key), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestAPIKeyAuthDisabled(t *testing.T) {
	r := newAuthRouter("")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/guarded", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with auth disabled, got %d", w.Code)
	}
}

func TestAPIKeyAuthMissingHeader(t *testing.T) {
	r := newAuthRouter("secret")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/guarded", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAPIKeyAuthWrongKey(t *testing.T) {
	r := newAuthRouter("secret")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/guarded", nil)
	req.Header.Set("X-API-Key", "nope")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestAPIKeyAuthValidKey(t *testing.T) {
	r := newAuthRouter("secret")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/guarded", nil)
	req.Header.Set("X-API-Key", " secret ")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
