package services

import (
	"context"
	"testing"

	"booktable-api/apperr"
	"booktable-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_RegisterLoginProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	sess, err := e.svc.Auth.Register(ctx, RegisterInput{Email: "Ana@Example.com", Password: "s3cretpass", FullName: "Ana", Role: models.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, "bearer", sess.TokenType)
	assert.Equal(t, "token-for-ana@example.com", sess.AccessToken)
	assert.Equal(t, models.RoleManager, sess.User.Role)
	assert.NotEqual(t, "s3cretpass", sess.User.PasswordHash)

	_, err = e.svc.Auth.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "anotherpass"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = e.svc.Auth.Login(ctx, "ana@example.com", "wrongpass")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = e.svc.Auth.Login(ctx, "nobody@example.com", "s3cretpass")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	login, err := e.svc.Auth.Login(ctx, "ANA@example.com", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, login.User.ID)

	me, err := e.svc.Auth.Profile(ctx, Caller{UserID: sess.User.ID, Role: models.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, "Ana", me.FullName)
}

func TestAuth_RegisterValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"short password", RegisterInput{Email: "a@example.com", Password: "short"}},
		{"bad email", RegisterInput{Email: "not-an-email", Password: "longenough"}},
		{"unknown role", RegisterInput{Email: "a@example.com", Password: "longenough", Role: "Chef"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.svc.Auth.Register(ctx, tc.in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	sess, err := e.svc.Auth.Register(ctx, RegisterInput{Email: "d@example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, sess.User.Role)
}

func TestAuth_TokenFailureIsInternal(t *testing.T) {
	e := newEnv(t)
	e.deps.Tokens = stubTokens{err: errBoom}
	_, err := e.svc.Auth.Register(context.Background(), RegisterInput{Email: "x@example.com", Password: "longenough"})
	assert.ErrorIs(t, err, apperr.ErrInternal)
}
