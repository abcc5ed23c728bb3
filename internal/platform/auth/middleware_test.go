package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func contextWithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, UserRoleKey, role)
}

var testKey = []byte("test-signing-key")

func signToken(t *testing.T, subject, role string, key []byte) string {
	t.Helper()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func runMiddleware(mw echo.MiddlewareFunc, authHeader string) (int, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured echo.Context
	handler := mw(func(c echo.Context) error {
		captured = c
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he.Code, captured
		}
		return http.StatusInternalServerError, captured
	}
	return rec.Code, captured
}

func TestJWTMiddlewareAcceptsValidToken(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	token := signToken(t, "user-42", "counselor", testKey)

	code, c := runMiddleware(mw, "Bearer "+token)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	ctx := c.Request().Context()
	if got := UserIDFromContext(ctx); got != "user-42" {
		t.Errorf("user id = %q, want user-42", got)
	}
	if got := RoleFromContext(ctx); got != "counselor" {
		t.Errorf("role = %q, want counselor", got)
	}
}

func TestJWTMiddlewareRejectsBadSignature(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	token := signToken(t, "user-42", "patient", []byte("wrong-key"))

	code, _ := runMiddleware(mw, "Bearer "+token)
	if code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", code)
	}
}

func TestJWTMiddlewareRejectsMissingHeader(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})

	code, _ := runMiddleware(mw, "")
	if code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", code)
	}
}

func TestJWTMiddlewareRejectsExpiredToken(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Role: "patient",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	code, _ := runMiddleware(mw, "Bearer "+token)
	if code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", code)
	}
}

func TestDevAuthMiddlewareIdentityParsesAsUUID(t *testing.T) {
	code, c := runMiddleware(DevAuthMiddleware(), "")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	ctx := c.Request().Context()
	if _, err := uuid.Parse(UserIDFromContext(ctx)); err != nil {
		t.Errorf("dev user id %q is not a uuid: %v", UserIDFromContext(ctx), err)
	}
	if got := RoleFromContext(ctx); got != "admin" {
		t.Errorf("role = %q, want admin", got)
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		role     string
		required []string
		want     int
	}{
		{"matching role", "counselor", []string{"counselor"}, http.StatusOK},
		{"admin bypass", "admin", []string{"counselor"}, http.StatusOK},
		{"wrong role", "patient", []string{"counselor"}, http.StatusForbidden},
		{"no role", "", []string{"patient", "counselor"}, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mw := func(next echo.HandlerFunc) echo.HandlerFunc {
				return func(c echo.Context) error {
					ctx := c.Request().Context()
					if tc.role != "" {
						ctx = contextWithRole(ctx, tc.role)
					}
					c.SetRequest(c.Request().WithContext(ctx))
					return RequireRole(tc.required...)(next)(c)
				}
			}
			code, _ := runMiddleware(mw, "")
			if code != tc.want {
				t.Errorf("status = %d, want %d", code, tc.want)
			}
		})
	}
}
