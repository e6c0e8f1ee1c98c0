package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/healthatlas/facility-registry/internal/api/middleware"
	"github.com/healthatlas/facility-registry/internal/application/services"
	"github.com/healthatlas/facility-registry/internal/domain/entities"
	apperrors "github.com/healthatlas/facility-registry/pkg/errors"
)

type staticVerifier struct {
	claims *services.Claims
}

func (v *staticVerifier) VerifyToken(token string) (*services.Claims, error) {
	if token == "valid" && v.claims != nil {
		return v.claims, nil
	}
	return nil, apperrors.NewUnauthorizedError("invalid or expired token")
}

func claimsFor(userID, role string) *services.Claims {
	return &services.Claims{
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
	}
}

func protectedEndpoint(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		assert.True(t, ok)
		assert.NotEmpty(t, userID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	auth := middleware.NewAuthMiddleware(&staticVerifier{claims: claimsFor("user-1", entities.RoleViewer)})
	handler := auth.RequireAuth(protectedEndpoint(t))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer token", "Basic abc", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer valid", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		minimum string
		status  int
	}{
		{"viewer blocked from editor route", entities.RoleViewer, entities.RoleEditor, http.StatusForbidden},
		{"editor allowed on editor route", entities.RoleEditor, entities.RoleEditor, http.StatusOK},
		{"admin allowed on editor route", entities.RoleAdmin, entities.RoleEditor, http.StatusOK},
		{"editor blocked from admin route", entities.RoleEditor, entities.RoleAdmin, http.StatusForbidden},
		{"unknown role blocked", "superuser", entities.RoleViewer, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := middleware.NewAuthMiddleware(&staticVerifier{claims: claimsFor("user-1", tt.role)})
			handler := auth.RequireRole(tt.minimum, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer valid")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
