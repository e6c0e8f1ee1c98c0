package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthatlas/facility-registry/internal/domain/entities"
	apperrors "github.com/healthatlas/facility-registry/pkg/errors"
)

type fakeUserRepo struct {
	byEmail map[string]*entities.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*entities.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *entities.User) error {
	if _, ok := r.byEmail[user.Email]; ok {
		return apperrors.NewConflictError("email already registered")
	}
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	if user, ok := r.byEmail[email]; ok {
		return user, nil
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entities.User, error) {
	for _, user := range r.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

func newTestAuthService() (*AuthService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return NewAuthService(repo, "test-secret", time.Hour), repo
}

func TestAuthServiceRegister(t *testing.T) {
	svc, repo := newTestAuthService()

	user, err := svc.Register(context.Background(), "  Admin@Example.COM ", "correct-horse", "Ada Admin", entities.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.Equal(t, entities.RoleAdmin, user.Role)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	assert.Contains(t, repo.byEmail, "admin@example.com")
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService()

	tests := []struct {
		name     string
		email    string
		password string
		role     string
	}{
		{"blank email", "", "long-enough-pw", ""},
		{"malformed email", "not-an-email", "long-enough-pw", ""},
		{"short password", "user@example.com", "short", ""},
		{"unknown role", "user@example.com", "long-enough-pw", "superuser"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.email, tt.password, "", tt.role)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err))
		})
	}
}

func TestAuthServiceRegisterDefaultsToViewer(t *testing.T) {
	svc, _ := newTestAuthService()

	user, err := svc.Register(context.Background(), "viewer@example.com", "long-enough-pw", "", "")
	require.NoError(t, err)
	assert.Equal(t, entities.RoleViewer, user.Role)
}

func TestAuthServiceLoginAndVerify(t *testing.T) {
	svc, _ := newTestAuthService()

	registered, err := svc.Register(context.Background(), "user@example.com", "long-enough-pw", "U Ser", entities.RoleEditor)
	require.NoError(t, err)

	token, user, err := svc.Login(context.Background(), "user@example.com", "long-enough-pw")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	require.NotEmpty(t, token)
	assert.Equal(t, 3, len(strings.Split(token, ".")))

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.Subject)
	assert.Equal(t, entities.RoleEditor, claims.Role)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), "user@example.com", "long-enough-pw", "", "")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "user@example.com", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, apperrors.TypeOf(err))

	_, _, err = svc.Login(context.Background(), "missing@example.com", "long-enough-pw")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, apperrors.TypeOf(err))
}

func TestAuthServiceVerifyTokenRejectsTampering(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), "user@example.com", "long-enough-pw", "", "")
	require.NoError(t, err)
	token, _, err := svc.Login(context.Background(), "user@example.com", "long-enough-pw")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token + "x")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, apperrors.TypeOf(err))

	other := NewAuthService(newFakeUserRepo(), "different-secret", time.Hour)
	_, err = other.VerifyToken(token)
	require.Error(t, err)
}

func TestAuthServiceVerifyTokenRejectsExpired(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, "test-secret", -time.Minute)

	_, err := svc.Register(context.Background(), "user@example.com", "long-enough-pw", "", "")
	require.NoError(t, err)
	token, _, err := svc.Login(context.Background(), "user@example.com", "long-enough-pw")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, apperrors.TypeOf(err))
}
