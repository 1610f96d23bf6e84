package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpreterService_SetQualifications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.interpreters.SetQualifications(ctx, env.interpreter.ID, nil, []int64{auslan})
	assert.ErrorIs(t, err, ErrValidation)

	err = env.interpreters.SetQualifications(ctx, env.deaf.ID, []int64{medical}, []int64{auslan})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, env.interpreters.SetQualifications(ctx, env.interpreter.ID, []int64{medical}, []int64{auslan}))

	p, err := env.interpreters.GetProfile(ctx, env.interpreter.ID)
	require.NoError(t, err)
	assert.True(t, p.HasSpecialisation(medical))
	assert.True(t, p.HasLanguage(auslan))

	_, err = env.interpreters.GetProfile(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
