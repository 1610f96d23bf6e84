package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/signbridge/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterAndBecomeInterpreter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.RegisterUser(ctx, 4242, "anna", "Anna", "")
	require.NoError(t, err)
	assert.Equal(t, model.UserRoleDeaf, user.Role)

	again, err := env.users.RegisterUser(ctx, 4242, "anna_k", "Anna", "K")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "anna_k", again.Username)

	interp, err := env.users.BecomeInterpreter(ctx, 4242)
	require.NoError(t, err)
	assert.True(t, interp.IsInterpreter())

	_, err = env.users.BecomeInterpreter(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
