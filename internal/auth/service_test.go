package auth_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/propale/propale/internal/auth"
	"github.com/propale/propale/internal/database/models"
	"github.com/propale/propale/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Login(t *testing.T) {
	ts := testutil.NewTestContext(t)
	ctx := testutil.TestContext(t)
	svc := auth.NewService(ts.Store, ts.JWTService)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := svc.Login(ctx, auth.LoginInput{Email: strings.ToUpper(ts.User.Email), Password: "testpassword123"})
		require.NoError(t, err)
		assert.Equal(t, ts.Profile.ID, resp.Profile.ID)

		claims, err := ts.JWTService.ValidateToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, ts.User.ID, claims.UserID)
		assert.Equal(t, ts.Profile.ID, claims.ProfileID)
		assert.Equal(t, models.RoleAdmin, claims.Role)

		user, err := ts.Store.GetUser(ctx, ts.User.ID)
		require.NoError(t, err)
		assert.NotZero(t, user.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{Email: ts.User.Email, Password: "nope"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{Email: "ghost@example.com", Password: "testpassword123"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("blocked profile", func(t *testing.T) {
		user := testutil.CreateTestUser(t, ts.DB)
		profile := testutil.CreateTestProfile(t, ts.DB, user, models.RoleSales, ts.Org.ID)
		require.NoError(t, ts.DB.Model(profile).Update("blocked", true).Error)

		_, err := svc.Login(ctx, auth.LoginInput{Email: user.Email, Password: "testpassword123"})
		assert.ErrorIs(t, err, auth.ErrBlockedProfile)
	})

	t.Run("inactive user", func(t *testing.T) {
		user := testutil.CreateTestUser(t, ts.DB)
		testutil.CreateTestProfile(t, ts.DB, user, models.RoleSales, ts.Org.ID)
		require.NoError(t, ts.DB.Model(user).Update("is_active", false).Error)

		_, err := svc.Login(ctx, auth.LoginInput{Email: user.Email, Password: "testpassword123"})
		assert.ErrorIs(t, err, auth.ErrInactiveUser)
	})
}

func TestService_CreateUser(t *testing.T) {
	ts := testutil.NewTestContext(t)
	ctx := testutil.TestContext(t)
	svc := auth.NewService(ts.Store, ts.JWTService)

	user, err := svc.CreateUser(ctx, " New@Example.com ", "Str0ngPassword")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.True(t, auth.CheckPassword("Str0ngPassword", user.PasswordHash))

	_, err = svc.CreateUser(ctx, "new@example.com", "Str0ngPassword")
	assert.ErrorIs(t, err, auth.ErrUserExists)

	_, err = svc.CreateUser(ctx, "short@example.com", "abc")
	assert.ErrorIs(t, err, auth.ErrWeakPassword)

	generated, err := svc.CreateUser(ctx, "contact@example.com", "")
	require.NoError(t, err)
	assert.NotEmpty(t, generated.PasswordHash)

	require.NoError(t, svc.DeleteUsers(ctx, []uuid.UUID{user.ID, generated.ID}))
	_, err = svc.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
