package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tedxecu/registration-api/internal/models"
	appErrors "github.com/tedxecu/registration-api/pkg/errors"
)

type mockAuthRepo struct {
	user             *models.User
	findByEmailErr   error
	lastLoginUpdated bool
	created          *models.User
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	return m.user, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return m.user, nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	m.created = user
	return nil
}

func newAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "registration-api",
	})
}

func activeUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "u1",
		Email:        "admin@tedxecu.com",
		PasswordHash: string(hash),
		FullName:     "Dashboard Admin",
		Role:         models.RoleAdmin,
		Active:       true,
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t)}
	svc := newAuthService(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@tedxecu.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "u1", resp.User.ID)
	assert.True(t, repo.lastLoginUpdated)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthService(&mockAuthRepo{user: activeUser(t)})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@tedxecu.com", Password: "nope"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newAuthService(&mockAuthRepo{findByEmailErr: sql.ErrNoRows})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@tedxecu.com", Password: "whatever"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeUser(t)
	user.Active = false
	svc := newAuthService(&mockAuthRepo{user: user})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "correct horse"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestValidateTokenTampered(t *testing.T) {
	svc := newAuthService(&mockAuthRepo{user: activeUser(t)})

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@tedxecu.com", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken + "x")
	assert.Error(t, err)
}

func TestBootstrapCreatesAccount(t *testing.T) {
	repo := &mockAuthRepo{findByEmailErr: sql.ErrNoRows}
	svc := newAuthService(repo)

	err := svc.Bootstrap(context.Background(), "admin@tedxecu.com", "launch-secret", "TEDxECU Admin")
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, models.RoleSuperAdmin, repo.created.Role)
	assert.True(t, repo.created.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.created.PasswordHash), []byte("launch-secret")))
}

func TestBootstrapSkipsExistingAccount(t *testing.T) {
	repo := &mockAuthRepo{user: activeUser(t)}
	svc := newAuthService(repo)

	require.NoError(t, svc.Bootstrap(context.Background(), "admin@tedxecu.com", "launch-secret", "TEDxECU Admin"))
	assert.Nil(t, repo.created)
}

func TestBootstrapNoCredentialsIsNoop(t *testing.T) {
	repo := &mockAuthRepo{findByEmailErr: sql.ErrNoRows}
	svc := newAuthService(repo)

	require.NoError(t, svc.Bootstrap(context.Background(), "", "", ""))
	assert.Nil(t, repo.created)
}
