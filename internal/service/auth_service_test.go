package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-retreat-store/internal/apperr"
	"go-retreat-store/internal/model"
)

func TestAuth_LoginRotatesTokenVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.auth.Login(ctx, &LoginRequest{Username: "leader-a", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.Token)
	assert.Equal(t, model.RoleTeamLeader, first.User.Role)

	var u model.User
	require.NoError(t, env.db.First(&u, env.leaderA.ID).Error)
	v1 := u.TokenVersion
	assert.NotEmpty(t, v1)
	assert.NotNil(t, u.LastLoginAt)

	_, err = env.auth.Login(ctx, &LoginRequest{Username: "leader-a", Password: "password"})
	require.NoError(t, err)
	require.NoError(t, env.db.First(&u, env.leaderA.ID).Error)
	assert.NotEqual(t, v1, u.TokenVersion)
}

func TestAuth_LoginRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Login(ctx, &LoginRequest{Username: "leader-a", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = env.auth.Login(ctx, &LoginRequest{Username: "ghost", Password: "password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, &LoginRequest{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAuth_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := actorOf(env.memberA)

	err := env.auth.ChangePassword(ctx, actor, &ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = env.auth.ChangePassword(ctx, actor, &ChangePasswordRequest{CurrentPassword: "password", NewPassword: "short"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, env.auth.ChangePassword(ctx, actor, &ChangePasswordRequest{CurrentPassword: "password", NewPassword: "newsecret"}))
	_, err = env.auth.Login(ctx, &LoginRequest{Username: "member-a", Password: "newsecret"})
	assert.NoError(t, err)

	me, err := env.auth.Me(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, "A그룹", me.TeamName)
}

func TestAuth_LogoutRevokesSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Login(ctx, &LoginRequest{Username: "leader-a", Password: "password"})
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, actorOf(env.leaderA)))

	var u model.User
	require.NoError(t, env.db.First(&u, env.leaderA.ID).Error)
	assert.Empty(t, u.TokenVersion)
}
