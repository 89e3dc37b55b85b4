package services

import (
	"context"
	"testing"
	"time"

	"occupancy_backend/internal/models"
	"occupancy_backend/internal/repositories"
	"occupancy_backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	users  map[string]*models.User
	hashes map[string]string
}

func (f *fakeUsers) FindUserByUsername(_ context.Context, username string) (*models.User, string, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, "", repositories.ErrNotFound
	}
	copied := *u
	return &copied, f.hashes[username], nil
}

func (f *fakeUsers) FindUserByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func newAuthFixture(t *testing.T) (AuthService, *utils.TokenManager) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	roleID := int64(1)
	users := &fakeUsers{
		users: map[string]*models.User{
			"manager": {ID: 7, Username: "manager", IsActive: true, RoleID: &roleID, Role: &models.Role{ID: 1, Name: models.RoleManager}},
			"retired": {ID: 8, Username: "retired", IsActive: false},
		},
		hashes: map[string]string{"manager": string(hash), "retired": string(hash)},
	}
	tokens, err := utils.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	return NewAuthService(users, tokens), tokens
}

func TestLoginUserIssuesToken(t *testing.T) {
	svc, tokens := newAuthFixture(t)

	resp, err := svc.LoginUser(context.Background(), models.Credentials{Username: "manager", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Empty(t, resp.User.PasswordHash)

	claims, err := tokens.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, models.RoleManager, claims.Role)
}

func TestLoginUserRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)

	cases := []models.Credentials{
		{Username: "manager", Password: "wrong"},
		{Username: "nobody", Password: "s3cret-pass"},
		{Username: "retired", Password: "s3cret-pass"},
	}
	for _, creds := range cases {
		_, err := svc.LoginUser(context.Background(), creds)
		assert.ErrorIs(t, err, ErrInvalidCredentials, creds.Username)
	}
}

func TestGetUserProfile(t *testing.T) {
	svc, _ := newAuthFixture(t)

	user, err := svc.GetUserProfile(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "manager", user.Username)

	_, err = svc.GetUserProfile(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
