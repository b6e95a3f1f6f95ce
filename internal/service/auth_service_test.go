package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveystudio/internal/backend"
	"surveystudio/internal/cache"
	"surveystudio/internal/logger"
	"surveystudio/internal/model"
)

var secret = []byte("test-secret")

func newAuth(t *testing.T, fb *fakeBackend) (*AuthService, cache.SessionCache) {
	t.Helper()
	sessions := cache.NewSessionCache(newRedis(t), time.Hour)
	return NewAuthService(fb, sessions, secret, time.Hour, logger.Discard()), sessions
}

func adaLogin(model.LoginRequest) (*model.BackendAuthResponse, error) {
	return &model.BackendAuthResponse{
		Token: "backend-token",
		User:  model.BackendUser{UserID: 5, Role: model.RoleAdmin, FirstName: "Ada"},
	}, nil
}

func TestLoginStartsSession(t *testing.T) {
	fb := &fakeBackend{login: adaLogin}
	auth, _ := newAuth(t, fb)
	ctx := context.Background()

	resp, err := auth.Login(ctx, model.LoginRequest{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, resp.Role)
	assert.Equal(t, "Ada", resp.UserName)
	assert.NotEqual(t, "backend-token", resp.Token)

	session, err := auth.Session(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "backend-token", session.Token)
	assert.Equal(t, 5, session.UserID)

	claims, err := auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, claims.SessionID)
}

func TestLoginDefaultsRoleToUser(t *testing.T) {
	fb := &fakeBackend{login: func(model.LoginRequest) (*model.BackendAuthResponse, error) {
		return &model.BackendAuthResponse{Token: "t", User: model.BackendUser{UserID: 1}}, nil
	}}
	auth, _ := newAuth(t, fb)
	resp, err := auth.Register(context.Background(), model.RegisterRequest{Email: "x"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, resp.Role)
}

func TestLoginPassesBackendErrors(t *testing.T) {
	fb := &fakeBackend{login: func(model.LoginRequest) (*model.BackendAuthResponse, error) {
		return nil, &backend.APIError{Status: http.StatusUnauthorized, Message: "bad credentials"}
	}}
	auth, _ := newAuth(t, fb)
	_, err := auth.Login(context.Background(), model.LoginRequest{})
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
}

func TestValidateTokenRejects(t *testing.T) {
	auth, _ := newAuth(t, &fakeBackend{})

	_, err := auth.ValidateToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &model.SessionClaims{
		SessionID: "s",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString(secret)
	require.NoError(t, err)
	_, err = auth.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &model.SessionClaims{SessionID: "s"}).SignedString([]byte("other"))
	require.NoError(t, err)
	_, err = auth.ValidateToken(other)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionGoneAfterLogout(t *testing.T) {
	auth, _ := newAuth(t, &fakeBackend{login: adaLogin})
	ctx := context.Background()

	resp, err := auth.Login(ctx, model.LoginRequest{})
	require.NoError(t, err)
	session, err := auth.Session(ctx, resp.Token)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, session))
	_, err = auth.Session(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpstreamEndsSessionOnAuthFailure(t *testing.T) {
	auth, sessions := newAuth(t, &fakeBackend{login: adaLogin})
	ctx := context.Background()

	resp, err := auth.Login(ctx, model.LoginRequest{})
	require.NoError(t, err)
	session, err := auth.Session(ctx, resp.Token)
	require.NoError(t, err)

	plain := errors.New("boom")
	assert.Equal(t, plain, auth.Upstream(ctx, session, plain))
	assert.Nil(t, auth.Upstream(ctx, session, nil))

	err = auth.Upstream(ctx, session, &backend.APIError{Status: http.StatusForbidden})
	assert.ErrorIs(t, err, ErrSessionEnded)
	stored, err := sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestRefreshPicksUpBan(t *testing.T) {
	fb := &fakeBackend{
		login: adaLogin,
		me: func(string) (*model.BackendUser, error) {
			return &model.BackendUser{UserID: 5, Role: model.RoleAdmin, IsBanned: true}, nil
		},
	}
	auth, sessions := newAuth(t, fb)
	ctx := context.Background()

	resp, err := auth.Login(ctx, model.LoginRequest{})
	require.NoError(t, err)
	session, err := auth.Session(ctx, resp.Token)
	require.NoError(t, err)
	assert.False(t, session.IsBanned)

	updated, err := auth.Refresh(ctx, session)
	require.NoError(t, err)
	assert.True(t, updated.IsBanned)
	assert.Equal(t, "Ada", updated.UserName)

	stored, err := sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsBanned)
}

func TestUpdateProfileRefreshesSession(t *testing.T) {
	var got model.ProfileUpdate
	fb := &fakeBackend{
		login: adaLogin,
		me: func(string) (*model.BackendUser, error) {
			return &model.BackendUser{UserID: 5, FirstName: "Ada", LastName: "Lovelace", Email: "a@b.c"}, nil
		},
		updateMe: func(u model.ProfileUpdate) (*model.BackendUser, error) {
			got = u
			return &model.BackendUser{UserID: 5}, nil
		},
	}
	auth, sessions := newAuth(t, fb)
	ctx := context.Background()

	resp, err := auth.Login(ctx, model.LoginRequest{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)
	session, err := auth.Session(ctx, resp.Token)
	require.NoError(t, err)

	p, err := auth.Profile(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, "Lovelace", p.LastName)

	_, err = auth.UpdateProfile(ctx, session, model.ProfileUpdate{FirstName: " ", Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrInvalidProfile)
	assert.Equal(t, 0, fb.count("updateMe"))

	user, err := auth.UpdateProfile(ctx, session, model.ProfileUpdate{FirstName: " Grace ", Email: "g@h.i", UserPhotoURL: "g.png"})
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.FirstName)
	assert.Equal(t, "Grace", user.FirstName)

	stored, err := sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", stored.UserName)
	assert.Equal(t, "g.png", stored.UserPhoto)
}
