package chatroom

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvisionRoom(t *testing.T) {
	p := NewProvisioner("")

	first, err := p.ProvisionRoom(context.Background(), 1, 2)
	require.NoError(t, err)
	second, err := p.ProvisionRoom(context.Background(), 1, 2)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	require.True(t, strings.HasPrefix(first, "room-"))
	_, err = uuid.Parse(strings.TrimPrefix(first, "room-"))
	assert.NoError(t, err)
}

func TestProvisionRoom_InvalidParticipants(t *testing.T) {
	p := NewProvisioner("chat")

	_, err := p.ProvisionRoom(context.Background(), 0, 2)
	assert.Error(t, err)
	_, err = p.ProvisionRoom(context.Background(), 3, 3)
	assert.Error(t, err)
}
