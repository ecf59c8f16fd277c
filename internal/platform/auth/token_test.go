package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "user-1"}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func invoke(t *testing.T, header string) (error, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured string
	h := BearerToken()(func(c echo.Context) error {
		captured = TokenFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	return h(c), captured
}

func TestBearerToken_StoresTokenInContext(t *testing.T) {
	tok := signedToken(t, time.Now().Add(time.Hour))
	err, captured := invoke(t, "Bearer "+tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured != tok {
		t.Errorf("expected token in context, got %q", captured)
	}
}

func TestBearerToken_NoHeaderPassesThrough(t *testing.T) {
	err, captured := invoke(t, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured != "" {
		t.Errorf("expected empty token, got %q", captured)
	}
}

func TestBearerToken_RejectsExpired(t *testing.T) {
	tok := signedToken(t, time.Now().Add(-time.Hour))
	err, _ := invoke(t, "Bearer "+tok)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", httpErr.Code)
	}
}

func TestBearerToken_RejectsNonBearerScheme(t *testing.T) {
	err, _ := invoke(t, "Basic dXNlcjpwYXNz")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", httpErr.Code)
	}
}

func TestBearerToken_TokenWithoutExpAccepted(t *testing.T) {
	tok := signedToken(t, time.Time{})
	err, captured := invoke(t, "Bearer "+tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured == "" {
		t.Error("expected token in context")
	}
}
