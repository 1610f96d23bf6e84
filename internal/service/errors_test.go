package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserMessage_DistinguishesKinds(t *testing.T) {
	invalidInput := UserMessage(invalid("end", "must be after start"))
	unavailable := UserMessage(fmt.Errorf("book: %w", ErrOutsideAvailability))
	failure := UserMessage(storeErr("get availability", errStoreDown))

	assert.Contains(t, invalidInput, "end: must be after start")
	assert.NotEqual(t, invalidInput, unavailable)
	assert.NotEqual(t, unavailable, failure)
	assert.NotEqual(t, invalidInput, failure)
	assert.Empty(t, UserMessage(nil))
}

func TestStoreError(t *testing.T) {
	err := fmt.Errorf("apply: %w", storeErr("upsert", errStoreDown))

	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, ErrValidation)

	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "upsert", se.Op)
}

func TestMultiNotifier(t *testing.T) {
	ok := &recordingNotifier{}
	failing := &recordingNotifier{err: errors.New("broker closed")}
	n := MultiNotifier{ok, nil, failing}

	err := n.Notify(context.Background(), Event{Type: EventRequestCreated, AppointmentID: 7})
	assert.ErrorContains(t, err, "broker closed")
	assert.Len(t, ok.events, 1)
	assert.Len(t, failing.events, 1)
}
