package service

import (
	"context"
	"testing"

	"github.com/andresbsn/polleria/internal/config"
	"github.com/andresbsn/polleria/internal/dto"
	"github.com/andresbsn/polleria/internal/model"
	"github.com/andresbsn/polleria/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	users map[string]model.User
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	r.users[u.Username] = *u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func newAuthFixture(t *testing.T) (AuthService, *config.Config) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin1234"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubUserRepo{users: map[string]model.User{
		"admin": {
			ID:           uuid.New(),
			Username:     "admin",
			PasswordHash: string(hash),
			Role:         model.RoleAdmin,
			IsActive:     true,
		},
	}}
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 8}
	return NewAuthService(repo, cfg), cfg
}

func TestLoginIssuesSignedToken(t *testing.T) {
	svc, cfg := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "admin", Password: "admin1234"})
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.User.Username)
	assert.Equal(t, model.RoleAdmin, resp.User.Role)

	token, err := jwt.Parse(resp.Token, func(tk *jwt.Token) (any, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "admin", claims["username"])
	assert.Equal(t, model.RoleAdmin, claims["role"])
	assert.Equal(t, resp.User.ID, claims["user_id"])
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "ghost", Password: "admin1234"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
