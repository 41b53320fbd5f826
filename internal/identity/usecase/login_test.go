package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/gomarket/internal/identity/entity"
	"github.com/shandysiswandi/gomarket/internal/pkg/goerror"
)

func TestLogin(t *testing.T) {
	newAdminFixture := func(t *testing.T, status entity.UserStatus) *fixture {
		t.Helper()
		f := newFixture(t, "{}")
		passHash, err := f.bcrypt.Hash("Secret123!")
		require.NoError(t, err)
		f.db.users[1] = entity.User{
			ID:           1,
			Email:        "admin@market.example",
			PasswordHash: string(passHash),
			Role:         entity.RoleAdmin,
			Status:       status,
		}
		f.db.users[2] = entity.User{ID: 2, Email: "otp-only@market.example", Role: entity.RoleBuyer, Status: entity.UserStatusActive}
		return f
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := newAdminFixture(t, entity.UserStatusActive)

		// Act
		out, err := f.uc.Login(context.Background(), LoginInput{Email: " Admin@Market.Example ", Password: "Secret123!"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(1), out.UserID)
		assert.Equal(t, entity.RoleAdmin, out.Role)

		clm, err := f.jwt.Verify(out.Token)
		require.NoError(t, err)
		assert.Equal(t, "ADMIN", clm.Role)

		require.Len(t, f.msg.sessions, 1)
		assert.Equal(t, "password", f.msg.sessions[0].Method)
	})

	t.Run("UniformFailure", func(t *testing.T) {
		f := newAdminFixture(t, entity.UserStatusActive)

		cases := []LoginInput{
			{Email: "admin@market.example", Password: "wrong-password"},
			{Email: "nobody@market.example", Password: "Secret123!"},
			{Email: "otp-only@market.example", Password: "Secret123!"},
		}

		f.bcrypt.verifies.Store(0)
		for i, in := range cases {
			_, err := f.uc.Login(context.Background(), in)
			requireCode(t, err, goerror.CodeUnauthorized)
			assert.Equal(t, int32(i+1), f.bcrypt.verifies.Load(), "one password compare per attempt")

			var gerr *goerror.Error
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, "invalid email or password", gerr.Msg())
		}
		assert.Empty(t, f.msg.sessions)
	})

	t.Run("BannedAfterPassword", func(t *testing.T) {
		f := newAdminFixture(t, entity.UserStatusBanned)

		_, err := f.uc.Login(context.Background(), LoginInput{Email: "admin@market.example", Password: "Secret123!"})

		requireCode(t, err, goerror.CodeForbidden)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		f := newAdminFixture(t, entity.UserStatusActive)

		_, err := f.uc.Login(context.Background(), LoginInput{Email: "not-an-email", Password: ""})

		requireCode(t, err, goerror.CodeInvalidInput)
	})
}

func TestSessionAndLogout(t *testing.T) {
	f := newFixture(t, "{}")

	_, err := f.uc.Session(context.Background())
	requireCode(t, err, goerror.CodeUnauthorized)

	ctx := withClaims(context.Background(), 5, entity.RoleSeller)
	info, err := f.uc.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.UserID)
	assert.Equal(t, entity.RoleSeller, info.Role)

	token, _, err := f.jwt.Generate(5, entity.RoleSeller.String())
	require.NoError(t, err)

	out, err := f.uc.Logout(context.Background(), LogoutInput{Token: token})
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.UserID)

	out, err = f.uc.Logout(context.Background(), LogoutInput{Token: "not-a-token"})
	require.NoError(t, err)
	assert.Zero(t, out.UserID)

	out, err = f.uc.Logout(context.Background(), LogoutInput{})
	require.NoError(t, err)
	assert.Zero(t, out.UserID)
}

func TestBootstrapAdmin(t *testing.T) {
	t.Run("CreatesOnce", func(t *testing.T) {
		f := newFixture(t, "{}")
		ctx := context.Background()
		in := BootstrapAdminInput{Email: "Root@Market.Example", Password: "Secret123!"}

		require.NoError(t, f.uc.BootstrapAdmin(ctx, in))
		require.NoError(t, f.uc.BootstrapAdmin(ctx, in))

		assert.Len(t, f.db.users, 1)
		user, err := f.db.GetUserByEmail(ctx, "root@market.example")
		require.NoError(t, err)
		assert.Equal(t, entity.RoleAdmin, user.Role)

		out, err := f.uc.Login(ctx, LoginInput{Email: "root@market.example", Password: "Secret123!"})
		require.NoError(t, err)
		assert.Equal(t, entity.RoleAdmin, out.Role)
	})

	t.Run("WeakPassword", func(t *testing.T) {
		f := newFixture(t, "{}")

		err := f.uc.BootstrapAdmin(context.Background(), BootstrapAdminInput{Email: "root@market.example", Password: "short"})

		requireCode(t, err, goerror.CodeInvalidInput)
	})
}
