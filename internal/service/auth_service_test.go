package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai2sql/internal/dto"
	"ai2sql/internal/model"
	"ai2sql/internal/pkg/auth"
	"ai2sql/internal/pkg/config"
	"ai2sql/pkg/constants"
	pkgErrors "ai2sql/pkg/errors"
)

func registerRequest(email string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:           email,
		Name:            " Dev ",
		Password:        testPassword,
		ConfirmPassword: testPassword,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.svc.Auth.Register(registerRequest(" Dev@Corp.IO "))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.EqualValues(t, 3600, resp.ExpiresIn)
	assert.Equal(t, "dev@corp.io", resp.User.Email)
	assert.Equal(t, "Dev", resp.User.Name)
	assert.Equal(t, string(auth.GlobalRoleUser), resp.User.Role)
	assert.False(t, resp.User.IsSuperuser)

	_, err = env.svc.Auth.Register(registerRequest("dev@corp.io"))
	assert.Equal(t, pkgErrors.CodeConflict, pkgErrors.CodeOf(err))

	mismatch := registerRequest("other@corp.io")
	mismatch.ConfirmPassword = "different"
	_, err = env.svc.Auth.Register(mismatch)
	assert.Equal(t, pkgErrors.CodeValidationError, pkgErrors.CodeOf(err))

	login, err := env.svc.Auth.Login(&dto.LoginRequest{Email: "DEV@corp.io", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	var stored model.User
	require.NoError(t, env.db.First(&stored, resp.User.ID).Error)
	assert.NotNil(t, stored.LastLoginAt)
	assert.NotEqual(t, testPassword, stored.Password)

	_, err = env.svc.Auth.Login(&dto.LoginRequest{Email: "dev@corp.io", Password: "wrong-password"})
	assert.ErrorIs(t, err, pkgErrors.ErrInvalidCredentials)
	_, err = env.svc.Auth.Login(&dto.LoginRequest{Email: "nobody@corp.io", Password: testPassword})
	assert.ErrorIs(t, err, pkgErrors.ErrInvalidCredentials)

	_, err = env.svc.Auth.Login(&dto.LoginRequest{Email: "dev@corp.io", Password: testPassword, AuthType: "ldap"})
	assert.Equal(t, pkgErrors.CodeAuthError, pkgErrors.CodeOf(err))

	require.NoError(t, env.db.Model(&model.User{}).Where("id = ?", stored.ID).
		Update("status", constants.StatusDisabled).Error)
	_, err = env.svc.Auth.Login(&dto.LoginRequest{Email: "dev@corp.io", Password: testPassword})
	assert.ErrorIs(t, err, pkgErrors.ErrUserDisabled)
}

func TestRegistrationDisabled(t *testing.T) {
	env := newTestEnv(t, withConfig(func(c *config.Config) {
		c.Auth.Local.AllowRegistration = false
	}))

	_, err := env.svc.Auth.Register(registerRequest("dev@corp.io"))
	assert.Equal(t, pkgErrors.CodeForbidden, pkgErrors.CodeOf(err))

	// existing local accounts still log in
	_, err = env.svc.Auth.Login(&dto.LoginRequest{Email: rootEmail, Password: testPassword})
	assert.NoError(t, err)
}

func TestRefreshToken(t *testing.T) {
	env := newTestEnv(t)

	login, err := env.svc.Auth.Login(&dto.LoginRequest{Email: rootEmail, Password: testPassword})
	require.NoError(t, err)

	refreshed, err := env.svc.Auth.RefreshToken(login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, env.root.ID, refreshed.User.ID)

	_, err = env.svc.Auth.RefreshToken(login.AccessToken)
	assert.Equal(t, pkgErrors.CodeUnauthorized, pkgErrors.CodeOf(err))

	_, err = env.svc.Auth.RefreshToken("garbage")
	assert.Equal(t, pkgErrors.CodeUnauthorized, pkgErrors.CodeOf(err))
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	byEmail := env.user(t, "admin@example.com", auth.GlobalRoleUser)

	me, err := env.svc.Auth.Me(byEmail.ID)
	require.NoError(t, err)
	assert.True(t, me.IsSuperuser)
	assert.Equal(t, string(auth.GlobalRoleUser), me.Role)

	_, err = env.svc.Auth.Me(9999)
	assert.ErrorIs(t, err, pkgErrors.ErrUnauthorized)
}

func TestEnsureSuperuser(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.svc.Auth.EnsureSuperuser(" Boot@Corp.IO ", "", "bootpass")
	require.NoError(t, err)
	assert.Equal(t, "boot@corp.io", created.Email)
	assert.Equal(t, "boot@corp.io", created.Name)
	assert.Equal(t, string(auth.GlobalRoleSuperuser), created.Role)

	login, err := env.svc.Auth.Login(&dto.LoginRequest{Email: "boot@corp.io", Password: "bootpass"})
	require.NoError(t, err)
	assert.True(t, login.User.IsSuperuser)

	plain := env.user(t, "dev@corp.io", auth.GlobalRoleUser)
	promoted, err := env.svc.Auth.EnsureSuperuser("dev@corp.io", "", "")
	require.NoError(t, err)
	assert.Equal(t, plain.ID, promoted.ID)

	var stored model.User
	require.NoError(t, env.db.First(&stored, plain.ID).Error)
	assert.Equal(t, string(auth.GlobalRoleSuperuser), stored.Role)

	again, err := env.svc.Auth.EnsureSuperuser("boot@corp.io", "", "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	_, err = env.svc.Auth.EnsureSuperuser("new@corp.io", "", "123")
	assert.Equal(t, pkgErrors.CodeValidationError, pkgErrors.CodeOf(err))
	_, err = env.svc.Auth.EnsureSuperuser("  ", "", "bootpass")
	assert.Equal(t, pkgErrors.CodeValidationError, pkgErrors.CodeOf(err))
}

func TestRegisterRefusesAllowListedEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Auth.Register(registerRequest(" Admin@Example.com "))
	assert.Equal(t, pkgErrors.CodeForbidden, pkgErrors.CodeOf(err))

	var count int64
	require.NoError(t, env.db.Model(&model.User{}).Where("email = ?", "admin@example.com").Count(&count).Error)
	assert.Zero(t, count)

	// the operator path still works
	_, err = env.svc.Auth.EnsureSuperuser("admin@example.com", "", "bootpass")
	require.NoError(t, err)
	login, err := env.svc.Auth.Login(&dto.LoginRequest{Email: "admin@example.com", Password: "bootpass"})
	require.NoError(t, err)
	assert.True(t, login.User.IsSuperuser)
}

func ldapLogin(env *testEnv, email, password string) (*dto.LoginResponse, error) {
	return env.svc.Auth.Login(&dto.LoginRequest{Email: email, Password: password, AuthType: constants.AuthTypeLDAP})
}

func TestLDAPLogin(t *testing.T) {
	directory := &fakeDirectory{
		passwords: map[string]string{
			"ann@corp.io":       "ldap-pass",
			rootEmail:           "ldap-pass",
			"admin@example.com": "ldap-pass",
		},
		names: map[string]string{"ann@corp.io": "Ann"},
	}

	cases := []struct {
		name string
		opts []envOption
		run  func(t *testing.T, env *testEnv)
	}{
		{
			name: "first bind provisions the account",
			run: func(t *testing.T, env *testEnv) {
				resp, err := ldapLogin(env, "Ann@Corp.io", "ldap-pass")
				require.NoError(t, err)
				assert.Equal(t, "ann@corp.io", resp.User.Email)
				assert.Equal(t, "Ann", resp.User.Name)
				assert.Equal(t, string(auth.GlobalRoleUser), resp.User.Role)
				assert.False(t, resp.User.IsSuperuser)

				var stored model.User
				require.NoError(t, env.db.First(&stored, resp.User.ID).Error)
				assert.Equal(t, constants.AuthTypeLDAP, stored.AuthProvider)
				assert.Empty(t, stored.Password)
				assert.NotNil(t, stored.LastLoginAt)
			},
		},
		{
			name: "second bind reuses the account",
			run: func(t *testing.T, env *testEnv) {
				first, err := ldapLogin(env, "ann@corp.io", "ldap-pass")
				require.NoError(t, err)
				second, err := ldapLogin(env, "ann@corp.io", "ldap-pass")
				require.NoError(t, err)
				assert.Equal(t, first.User.ID, second.User.ID)

				var count int64
				require.NoError(t, env.db.Model(&model.User{}).Where("email = ?", "ann@corp.io").Count(&count).Error)
				assert.EqualValues(t, 1, count)
			},
		},
		{
			name: "wrong password",
			run: func(t *testing.T, env *testEnv) {
				_, err := ldapLogin(env, "ann@corp.io", "nope")
				assert.ErrorIs(t, err, pkgErrors.ErrInvalidCredentials)
			},
		},
		{
			name: "disabled ldap user is rejected",
			run: func(t *testing.T, env *testEnv) {
				resp, err := ldapLogin(env, "ann@corp.io", "ldap-pass")
				require.NoError(t, err)
				require.NoError(t, env.db.Model(&model.User{}).Where("id = ?", resp.User.ID).
					Update("status", constants.StatusDisabled).Error)

				_, err = ldapLogin(env, "ann@corp.io", "ldap-pass")
				assert.ErrorIs(t, err, pkgErrors.ErrUserDisabled)
			},
		},
		{
			name: "local account is not taken over",
			run: func(t *testing.T, env *testEnv) {
				_, err := ldapLogin(env, rootEmail, "ldap-pass")
				assert.ErrorIs(t, err, pkgErrors.ErrInvalidCredentials)
			},
		},
		{
			name: "ldap account cannot log in locally",
			run: func(t *testing.T, env *testEnv) {
				_, err := ldapLogin(env, "ann@corp.io", "ldap-pass")
				require.NoError(t, err)
				_, err = env.svc.Auth.Login(&dto.LoginRequest{Email: "ann@corp.io", Password: "ldap-pass"})
				assert.ErrorIs(t, err, pkgErrors.ErrInvalidCredentials)
			},
		},
		{
			name: "allow-listed email is not provisioned",
			run: func(t *testing.T, env *testEnv) {
				_, err := ldapLogin(env, "admin@example.com", "ldap-pass")
				assert.Equal(t, pkgErrors.CodeForbidden, pkgErrors.CodeOf(err))
			},
		},
		{
			name: "ldap disabled",
			opts: []envOption{withConfig(func(c *config.Config) { c.Auth.LDAP.Enabled = false })},
			run: func(t *testing.T, env *testEnv) {
				_, err := ldapLogin(env, "ann@corp.io", "ldap-pass")
				assert.Equal(t, pkgErrors.CodeAuthError, pkgErrors.CodeOf(err))
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := append([]envOption{withLDAP(directory)}, tc.opts...)
			tc.run(t, newTestEnv(t, opts...))
		})
	}
}
