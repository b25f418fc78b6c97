package runtime

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func authedHandler(c echo.Context) error {
	return c.String(http.StatusOK, c.Get("user_id").(string))
}

func TestSignAndVerifyJWT(t *testing.T) {
	secret := []byte("test-secret")
	tok, err := SignJWT("user-123", secret, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := EchoAuthMiddleware(secret)(authedHandler)
	if err := h(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if rec.Body.String() != "user-123" {
		t.Fatalf("subject = %q", rec.Body.String())
	}
}

func TestAuthCookieFallback(t *testing.T) {
	secret := []byte("test-secret")
	tok, err := SignJWT("user-456", secret, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "auth", Value: tok})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := EchoAuthMiddleware(secret)(authedHandler)
	if err := h(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if rec.Body.String() != "user-456" {
		t.Fatalf("subject = %q", rec.Body.String())
	}
}

func TestRejectsBadToken(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	h := EchoAuthMiddleware([]byte("test-secret"))(authedHandler)
	if err := h(c); err == nil {
		t.Fatal("missing token must be rejected")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	c = e.NewContext(req, httptest.NewRecorder())
	if err := h(c); err == nil {
		t.Fatal("garbage token must be rejected")
	}

	// token signed with a different secret
	other, err := SignJWT("user-789", []byte("other-secret"), time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	c = e.NewContext(req, httptest.NewRecorder())
	if err := h(c); err == nil {
		t.Fatal("wrong-secret token must be rejected")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	secret := []byte("test-secret")
	tok, err := SignJWT("user-123", secret, -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	c := e.NewContext(req, httptest.NewRecorder())
	h := EchoAuthMiddleware(secret)(authedHandler)
	if err := h(c); err == nil {
		t.Fatal("expired token must be rejected")
	}
}
